package systems

import (
	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
)

// ProjectileSystem 炮弹生命周期状态机
//
// 状态转换：
//
//	Idle --Activate--> Flying --碰撞/兜底计时器--> Detonating --DetonationDelay--> Destroyed
//
// Detonated 标志保证每枚炮弹最多结算一次爆炸，无论碰撞与计时器同帧触发多少次。
type ProjectileSystem struct {
	entityManager  *ecs.EntityManager
	scheduler      *Scheduler
	explosion      *ExplosionSystem
	destruction    *DestructionSystem
	queue          *events.EventQueue
	offscreenGrace float64
}

// NewProjectileSystem 创建炮弹系统
func NewProjectileSystem(em *ecs.EntityManager, scheduler *Scheduler, explosion *ExplosionSystem, destruction *DestructionSystem, queue *events.EventQueue, offscreenGrace float64) *ProjectileSystem {
	return &ProjectileSystem{
		entityManager:  em,
		scheduler:      scheduler,
		explosion:      explosion,
		destruction:    destruction,
		queue:          queue,
		offscreenGrace: offscreenGrace,
	}
}

// Phase 返回炮弹当前阶段；实体已释放时返回 Destroyed
func (s *ProjectileSystem) Phase(id ecs.EntityID) components.ProjectilePhase {
	proj, ok := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
	if !ok || !s.entityManager.Exists(id) {
		return components.ProjectileDestroyed
	}
	return proj.Phase
}

// Activate 发射炮弹：Idle -> Flying，并启动兜底引爆计时器
// 重复调用为无操作，返回 false
func (s *ProjectileSystem) Activate(id ecs.EntityID) bool {
	proj, ok := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
	if !ok || !s.entityManager.Exists(id) {
		return false
	}
	if proj.Phase != components.ProjectileIdle {
		log.Warn().Str("system", "Projectile").Uint64("entity", uint64(id)).Str("phase", proj.Phase.String()).Msg("炮弹已发射，忽略重复激活")
		return false
	}

	proj.Phase = components.ProjectileFlying
	proj.FallbackTimer = s.scheduler.Schedule(id, ActionFallbackDetonation, proj.ResetTime, func() {
		s.Detonate(id, components.TriggerTimeout)
	})

	log.Debug().Str("system", "Projectile").Uint64("entity", uint64(id)).Float64("resetTime", proj.ResetTime).Msg("炮弹已激活")
	return true
}

// HandleImpact 处理炮弹参与的碰撞
// 飞行中且碰撞即引爆、撞击速度超过阈值时引爆；Idle 炮弹忽略碰撞
func (s *ProjectileSystem) HandleImpact(id ecs.EntityID, impact components.ImpactEvent) bool {
	proj, ok := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
	if !ok || proj.Phase != components.ProjectileFlying || proj.Detonated {
		return false
	}
	if !proj.ExplodeOnContact || impact.Magnitude() <= proj.MinImpactSpeed {
		return false
	}
	return s.Detonate(id, components.TriggerCollision)
}

// MarkOffscreen 炮弹飞出画面：兜底计时器缩短为 offscreenGrace
func (s *ProjectileSystem) MarkOffscreen(id ecs.EntityID) bool {
	proj, ok := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
	if !ok || proj.Phase != components.ProjectileFlying || proj.Detonated {
		return false
	}
	proj.FallbackTimer = s.scheduler.Schedule(id, ActionFallbackDetonation, s.offscreenGrace, func() {
		s.Detonate(id, components.TriggerOffscreen)
	})
	return true
}

// Detonate 引爆炮弹：Flying -> Detonating
//
// 执行顺序：
//  1. 取消兜底计时器并冻结炮弹
//  2. 在当前位置结算一次爆炸（无位置时跳过结算）
//  3. 发出 EventProjectileFinished
//  4. DetonationDelay 秒后释放实体
func (s *ProjectileSystem) Detonate(id ecs.EntityID, trigger components.DetonationTrigger) bool {
	proj, ok := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
	if !ok || !s.entityManager.Exists(id) {
		return false
	}
	if proj.Detonated || proj.Phase != components.ProjectileFlying {
		return false
	}

	proj.Detonated = true
	proj.Phase = components.ProjectileDetonating
	proj.Trigger = trigger
	if proj.FallbackTimer.Valid() {
		s.scheduler.Cancel(proj.FallbackTimer)
		proj.FallbackTimer = components.NoTimer
	}

	if body, ok := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, id); ok {
		body.Kinematic = true
	}
	if vel, ok := ecs.GetComponent[*components.VelocityComponent](s.entityManager, id); ok {
		vel.VX, vel.VY = 0, 0
	}

	event := events.GameEvent{
		Type:   events.EventProjectileFinished,
		Entity: id,
		Kind:   components.KindProjectile,
		Value:  float64(trigger),
	}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id); ok {
		effects := s.explosion.Detonate(proj.Explosion.At(pos.Vec(), id))
		event.Position = pos.Vec()
		event.Amount = float64(len(effects))
	} else {
		log.Warn().Str("system", "Projectile").Uint64("entity", uint64(id)).Msg("炮弹没有位置，跳过爆炸结算")
	}
	s.queue.Push(event)

	proj.DestroyTimer = s.destruction.ScheduleDestroy(id, proj.DetonationDelay)

	log.Info().Str("system", "Projectile").
		Uint64("entity", uint64(id)).
		Str("type", proj.Type).
		Str("trigger", trigger.String()).
		Msg("炮弹引爆")
	return true
}
