package systems

import (
	"container/heap"

	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
)

// ActionKind 延迟动作类型
// 同一实体同一类型最多只有一个等待中的动作
type ActionKind int

const (
	ActionDestroy            ActionKind = iota // 延迟销毁实体
	ActionFallbackDetonation                   // 炮弹兜底引爆
	ActionFuse                                 // 爆炸方块引信
	ActionVictory                              // 关卡胜利结算
	ActionDefeat                               // 关卡失败结算
	ActionBossFlip                             // 首领自动转身
	ActionStunRecover                          // 首领眩晕恢复
)

// String 返回动作类型名称
func (k ActionKind) String() string {
	switch k {
	case ActionDestroy:
		return "destroy"
	case ActionFallbackDetonation:
		return "fallback_detonation"
	case ActionFuse:
		return "fuse"
	case ActionVictory:
		return "victory"
	case ActionDefeat:
		return "defeat"
	case ActionBossFlip:
		return "boss_flip"
	case ActionStunRecover:
		return "stun_recover"
	default:
		return "unknown"
	}
}

// maxFiresPerAdvance 单次 Advance 最多触发的动作数，防止零延迟动作互相重排导致死循环
const maxFiresPerAdvance = 4096

type actionKey struct {
	owner ecs.EntityID
	kind  ActionKind
}

type scheduledAction struct {
	handle    components.TimerHandle
	key       actionKey
	deadline  float64
	seq       uint64
	fn        func()
	cancelled bool
}

// actionHeap 按 (deadline, seq) 排序的小顶堆
type actionHeap []*scheduledAction

func (h actionHeap) Len() int { return len(h) }
func (h actionHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h actionHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *actionHeap) Push(x interface{}) { *h = append(*h, x.(*scheduledAction)) }
func (h *actionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Scheduler 延迟动作调度器
//
// 将"等待 N 秒后执行"的协程改写为显式的 (deadline, action, cancel) 记录，
// 由每帧的 Advance 统一推进。所有回调在 Advance 调用线程上串行执行。
//
// 保证：
//   - 同一 (owner, kind) 最多一个等待中的动作，重新调度会先取消旧句柄
//   - 动作按截止时间触发，截止时间相同按调度顺序触发
//   - 已取消的句柄永远不会触发
type Scheduler struct {
	now        float64
	nextHandle uint64
	seq        uint64
	queue      actionHeap
	pending    map[components.TimerHandle]*scheduledAction
	byKey      map[actionKey]components.TimerHandle
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	return &Scheduler{
		nextHandle: 1,
		pending:    make(map[components.TimerHandle]*scheduledAction),
		byKey:      make(map[actionKey]components.TimerHandle),
	}
}

// Now 返回调度器当前时间（秒）
func (s *Scheduler) Now() float64 {
	return s.now
}

// Schedule 在 delay 秒后执行 fn，返回句柄
// 若 (owner, kind) 已有等待中的动作，先取消旧动作
func (s *Scheduler) Schedule(owner ecs.EntityID, kind ActionKind, delay float64, fn func()) components.TimerHandle {
	if delay < 0 {
		delay = 0
	}
	key := actionKey{owner: owner, kind: kind}
	if old, ok := s.byKey[key]; ok {
		s.Cancel(old)
	}

	handle := components.TimerHandle(s.nextHandle)
	s.nextHandle++
	s.seq++

	action := &scheduledAction{
		handle:   handle,
		key:      key,
		deadline: s.now + delay,
		seq:      s.seq,
		fn:       fn,
	}
	heap.Push(&s.queue, action)
	s.pending[handle] = action
	s.byKey[key] = handle
	return handle
}

// Cancel 取消等待中的动作；句柄无效或已触发时返回 false
func (s *Scheduler) Cancel(handle components.TimerHandle) bool {
	action, ok := s.pending[handle]
	if !ok {
		return false
	}
	action.cancelled = true
	s.forget(action)
	return true
}

// CancelOwner 取消实体拥有的全部等待中动作，返回取消数量
func (s *Scheduler) CancelOwner(owner ecs.EntityID) int {
	cancelled := 0
	for handle, action := range s.pending {
		if action.key.owner == owner {
			if s.Cancel(handle) {
				cancelled++
			}
		}
	}
	return cancelled
}

// IsPending 句柄对应的动作是否仍在等待
func (s *Scheduler) IsPending(handle components.TimerHandle) bool {
	_, ok := s.pending[handle]
	return ok
}

// PendingFor 返回 (owner, kind) 的等待中句柄
func (s *Scheduler) PendingFor(owner ecs.EntityID, kind ActionKind) (components.TimerHandle, bool) {
	h, ok := s.byKey[actionKey{owner: owner, kind: kind}]
	return h, ok
}

// PendingCount 等待中的动作数量
func (s *Scheduler) PendingCount() int {
	return len(s.pending)
}

// Advance 推进时间并触发所有到期动作，返回触发数量
// 回调中新调度且已到期的动作会在本次调用中继续触发
// 回调执行时 Now() 等于该动作的截止时间，回调内调度的延迟从截止时间起算
func (s *Scheduler) Advance(dt float64) int {
	target := s.now
	if dt > 0 {
		target += dt
	}

	fired := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.deadline > target {
			break
		}
		heap.Pop(&s.queue)
		if next.cancelled {
			continue
		}
		if fired >= maxFiresPerAdvance {
			// 放回队列，留到下一帧
			heap.Push(&s.queue, next)
			log.Warn().Str("system", "Scheduler").Int("fired", fired).Msg("单帧触发动作数超限")
			break
		}
		s.forget(next)
		fired++
		if next.deadline > s.now {
			s.now = next.deadline
		}
		if next.fn != nil {
			next.fn()
		}
	}
	s.now = target

	// 清理堆顶已取消的条目，避免长期堆积
	for s.queue.Len() > 0 && s.queue[0].cancelled {
		heap.Pop(&s.queue)
	}
	return fired
}

func (s *Scheduler) forget(action *scheduledAction) {
	delete(s.pending, action.handle)
	if h, ok := s.byKey[action.key]; ok && h == action.handle {
		delete(s.byKey, action.key)
	}
}
