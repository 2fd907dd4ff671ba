package events

import "github.com/rs/zerolog/log"

// maxDispatchRounds 单次 DispatchAll 最多处理的轮数
// 处理器不断产生新事件时用于打断死循环
const maxDispatchRounds = 64

// EventHandler 事件处理器
type EventHandler interface {
	// HandleEvent 处理单个事件，在分发阶段同步调用
	HandleEvent(event GameEvent)
	// EventTypes 返回处理器关心的事件类型
	EventTypes() []EventType
}

// HandlerFunc 将函数适配为单一类型的事件处理器
type HandlerFunc struct {
	Types []EventType
	Fn    func(GameEvent)
}

// HandleEvent 实现 EventHandler
func (h HandlerFunc) HandleEvent(event GameEvent) { h.Fn(event) }

// EventTypes 实现 EventHandler
func (h HandlerFunc) EventTypes() []EventType { return h.Types }

// EventRouter 将队列中的事件分发给注册的处理器
//
// 架构说明：
//   - 单线程分发
//   - 同一类型可注册多个处理器，按注册顺序调用
//   - 处理器产生的新事件在同一次 DispatchAll 中继续分发
type EventRouter struct {
	handlers map[EventType][]EventHandler
	queue    *EventQueue
}

// NewEventRouter 创建绑定到队列的分发器
func NewEventRouter(queue *EventQueue) *EventRouter {
	return &EventRouter{
		handlers: make(map[EventType][]EventHandler),
		queue:    queue,
	}
}

// Register 为处理器声明的所有事件类型注册
func (r *EventRouter) Register(handler EventHandler) {
	for _, t := range handler.EventTypes() {
		r.handlers[t] = append(r.handlers[t], handler)
	}
}

// DispatchAll 消费并分发所有待处理事件，返回分发的事件数量
func (r *EventRouter) DispatchAll() int {
	dispatched := 0
	for round := 0; r.queue.Len() > 0; round++ {
		if round >= maxDispatchRounds {
			log.Warn().Str("system", "EventRouter").Int("pending", r.queue.Len()).
				Msg("事件分发轮数超限，剩余事件留到下一帧")
			break
		}
		for _, ev := range r.queue.Consume() {
			for _, h := range r.handlers[ev.Type] {
				h.HandleEvent(ev)
			}
			dispatched++
		}
	}
	return dispatched
}

// HandlerCount 返回指定类型的处理器数量
func (r *EventRouter) HandlerCount(t EventType) int {
	return len(r.handlers[t])
}
