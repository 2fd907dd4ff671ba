package events

// EventQueue 单线程 FIFO 事件队列
// 模拟核心只在宿主循环线程上运行，不需要锁
type EventQueue struct {
	events []GameEvent
}

// NewEventQueue 创建事件队列
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]GameEvent, 0, 32)}
}

// Push 追加事件
func (q *EventQueue) Push(event GameEvent) {
	q.events = append(q.events, event)
}

// Consume 取出全部待处理事件（FIFO），队列清空
func (q *EventQueue) Consume() []GameEvent {
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]GameEvent, 0, cap(out))
	return out
}

// Len 待处理事件数量
func (q *EventQueue) Len() int {
	return len(q.events)
}
