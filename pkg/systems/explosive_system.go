package systems

import (
	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
)

// ExplosiveSystem 爆炸方块
//
// 爆炸方块死亡后冻结，引信 PreExplosionTime 秒后在当前位置引爆，
// 再过 ExplosionDuration 秒释放实体。引爆总是由调度器触发，
// 因此连锁爆炸的每一环都是独立的一次结算。
type ExplosiveSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *Scheduler
	explosion     *ExplosionSystem
	destruction   *DestructionSystem
}

// NewExplosiveSystem 创建爆炸方块系统
func NewExplosiveSystem(em *ecs.EntityManager, scheduler *Scheduler, explosion *ExplosionSystem, destruction *DestructionSystem) *ExplosiveSystem {
	return &ExplosiveSystem{
		entityManager: em,
		scheduler:     scheduler,
		explosion:     explosion,
		destruction:   destruction,
	}
}

// HandleEvent 爆炸方块死亡时点燃引信
func (s *ExplosiveSystem) HandleEvent(event events.GameEvent) {
	if event.Type != events.EventDestroyed {
		return
	}
	s.Ignite(event.Entity)
}

// EventTypes 实现 events.EventHandler
func (s *ExplosiveSystem) EventTypes() []events.EventType {
	return []events.EventType{events.EventDestroyed}
}

// Ignite 开始引爆序列，重复调用为无操作
func (s *ExplosiveSystem) Ignite(id ecs.EntityID) bool {
	explosive, ok := ecs.GetComponent[*components.ExplosiveComponent](s.entityManager, id)
	if !ok || !s.entityManager.Exists(id) || explosive.Exploding {
		return false
	}
	explosive.Exploding = true

	// 冻结：不再受冲量和重力影响
	if body, ok := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, id); ok {
		body.Kinematic = true
	}
	if vel, ok := ecs.GetComponent[*components.VelocityComponent](s.entityManager, id); ok {
		vel.VX, vel.VY = 0, 0
	}

	explosive.FuseTimer = s.scheduler.Schedule(id, ActionFuse, explosive.PreExplosionTime, func() {
		s.detonate(id)
	})

	log.Debug().Str("system", "Explosive").Uint64("entity", uint64(id)).Float64("fuse", explosive.PreExplosionTime).Msg("引信点燃")
	return true
}

func (s *ExplosiveSystem) detonate(id ecs.EntityID) {
	explosive, ok := ecs.GetComponent[*components.ExplosiveComponent](s.entityManager, id)
	if !ok || explosive.Detonated {
		return
	}
	explosive.Detonated = true
	explosive.FuseTimer = components.NoTimer

	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id); ok {
		s.explosion.Detonate(explosive.Explosion.At(pos.Vec(), id))
	}
	s.destruction.ScheduleDestroy(id, explosive.ExplosionDuration)
}
