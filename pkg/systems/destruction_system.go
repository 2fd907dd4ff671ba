package systems

import (
	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
)

// DestructionSystem 延迟销毁
//
// 死亡实体在表现延迟后释放；释放时取消该实体拥有的全部等待中动作。
// 实体真正从 EntityManager 移除发生在 World.Advance 末尾的 RemoveMarkedEntities。
type DestructionSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *Scheduler
	queue         *events.EventQueue
}

// NewDestructionSystem 创建销毁系统
func NewDestructionSystem(em *ecs.EntityManager, scheduler *Scheduler, queue *events.EventQueue) *DestructionSystem {
	return &DestructionSystem{
		entityManager: em,
		scheduler:     scheduler,
		queue:         queue,
	}
}

// ScheduleDestroy 在 delay 秒后释放实体
// 已有的销毁计时器会被替换；实体不存在时返回 NoTimer
func (s *DestructionSystem) ScheduleDestroy(id ecs.EntityID, delay float64) components.TimerHandle {
	if !s.entityManager.Exists(id) {
		return components.NoTimer
	}
	handle := s.scheduler.Schedule(id, ActionDestroy, delay, func() {
		s.Release(id)
	})
	if destructible, ok := ecs.GetComponent[*components.DestructibleComponent](s.entityManager, id); ok {
		destructible.DestroyTimer = handle
	}
	return handle
}

// Release 立即释放实体
// 实体已释放时为无操作并返回 false
func (s *DestructionSystem) Release(id ecs.EntityID) bool {
	if !s.entityManager.Exists(id) {
		return false
	}

	s.scheduler.CancelOwner(id)

	kind := kindOf(s.entityManager, id)
	if proj, ok := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id); ok {
		proj.Phase = components.ProjectileDestroyed
		proj.FallbackTimer = components.NoTimer
		proj.DestroyTimer = components.NoTimer
	}

	var pos components.PositionComponent
	if p, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id); ok {
		pos = *p
	}

	s.entityManager.DestroyEntity(id)
	s.queue.Push(events.GameEvent{
		Type:     events.EventEntityReleased,
		Entity:   id,
		Kind:     kind,
		Position: pos.Vec(),
	})

	log.Debug().Str("system", "Destruction").Uint64("entity", uint64(id)).Str("kind", kind.String()).Msg("实体已释放")
	return true
}

// kindOf 返回实体种类，无 KindComponent 时视为通用实体
func kindOf(em *ecs.EntityManager, id ecs.EntityID) components.EntityKind {
	if kind, ok := ecs.GetComponent[*components.KindComponent](em, id); ok {
		return kind.Kind
	}
	return components.KindGeneric
}
