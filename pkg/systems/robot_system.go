package systems

import (
	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/utils"
)

// crashDamage 悬浮机器人坠地伤害（必定致死）
const crashDamage = 9999.0

// RobotSystem 机器人的特殊行为
//
//   - 悬浮机器人：生命百分比降到 FallThreshold 以下开始坠落，坠落中接触地面死亡（只发生一次）
//   - 首领机器人：每 FlipInterval 秒转身；炮弹从背面击中造成 BackHitDamage 并眩晕，正面击中无效
type RobotSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *Scheduler
	damage        *DamageSystem
}

// NewRobotSystem 创建机器人系统
func NewRobotSystem(em *ecs.EntityManager, scheduler *Scheduler, damage *DamageSystem) *RobotSystem {
	return &RobotSystem{
		entityManager: em,
		scheduler:     scheduler,
		damage:        damage,
	}
}

// Start 为所有首领机器人启动转身计时器
func (s *RobotSystem) Start() {
	for _, id := range ecs.GetEntitiesWith1[*components.BossComponent](s.entityManager) {
		s.scheduleFlip(id)
	}
}

// HandleEvent 悬浮机器人受伤后检查是否开始坠落
func (s *RobotSystem) HandleEvent(event events.GameEvent) {
	if event.Type != events.EventHealthChanged {
		return
	}
	flying, ok := ecs.GetComponent[*components.FlyingRobotComponent](s.entityManager, event.Entity)
	if !ok || flying.Falling {
		return
	}
	if event.Value <= flying.FallThreshold {
		s.startFalling(event.Entity, flying)
	}
}

// EventTypes 实现 events.EventHandler
func (s *RobotSystem) EventTypes() []events.EventType {
	return []events.EventType{events.EventHealthChanged}
}

// HandleImpact 处理机器人的特殊碰撞
// 返回 true 表示碰撞已被消费，不再走通用伤害规则
func (s *RobotSystem) HandleImpact(impact components.ImpactEvent) (bool, ImpactResult) {
	if consumed, result := s.handleCrash(impact.Target, impact.Source); consumed {
		return true, result
	}
	if consumed, result := s.handleCrash(impact.Source, impact.Target); consumed {
		return true, result
	}
	return s.handleBossHit(impact)
}

// IsStunned 首领是否处于眩晕
func (s *RobotSystem) IsStunned(id ecs.EntityID) bool {
	boss, ok := ecs.GetComponent[*components.BossComponent](s.entityManager, id)
	return ok && boss.Stunned
}

func (s *RobotSystem) startFalling(id ecs.EntityID, flying *components.FlyingRobotComponent) {
	flying.Falling = true
	if body, ok := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, id); ok {
		body.Kinematic = false
		body.GravityScale = flying.FallGravity
	}
	log.Debug().Str("system", "Robot").Uint64("entity", uint64(id)).Msg("悬浮机器人开始坠落")
}

// handleCrash robot 为坠落中的悬浮机器人且 other 为地面时坠毁
func (s *RobotSystem) handleCrash(robot, other ecs.EntityID) (bool, ImpactResult) {
	flying, ok := ecs.GetComponent[*components.FlyingRobotComponent](s.entityManager, robot)
	if !ok || !flying.Falling || flying.Crashed {
		return false, ImpactResult{}
	}
	if other == ecs.InvalidEntity || kindOf(s.entityManager, other) != components.KindGround {
		return false, ImpactResult{}
	}

	flying.Crashed = true
	result := s.damage.ApplyDamage(robot, crashDamage, other, components.DeathCauseFall)
	log.Info().Str("system", "Robot").Uint64("entity", uint64(robot)).Msg("悬浮机器人坠地")
	return true, ImpactResult{Amount: crashDamage, Kind: DamageFallInstantKill, Health: result}
}

func (s *RobotSystem) handleBossHit(impact components.ImpactEvent) (bool, ImpactResult) {
	boss, ok := ecs.GetComponent[*components.BossComponent](s.entityManager, impact.Target)
	if !ok || impact.Source == ecs.InvalidEntity {
		return false, ImpactResult{}
	}
	if kindOf(s.entityManager, impact.Source) != components.KindProjectile {
		return false, ImpactResult{}
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, impact.Target)
	if !ok || health.Dead {
		return true, ImpactResult{}
	}

	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, impact.Target)
	if !ok {
		return true, ImpactResult{}
	}
	if !IsBackHit(boss, impact.Point.Sub(pos.Vec())) {
		log.Debug().Str("system", "Robot").Uint64("boss", uint64(impact.Target)).Msg("正面命中，装甲抵挡")
		return true, ImpactResult{}
	}

	result := s.damage.ApplyDamage(impact.Target, boss.BackHitDamage, impact.Source, components.DeathCauseImpact)
	if !result.Died {
		s.stun(impact.Target, boss)
	}
	log.Info().Str("system", "Robot").Uint64("boss", uint64(impact.Target)).Float64("damage", boss.BackHitDamage).Msg("背面命中")
	return true, ImpactResult{Amount: boss.BackHitDamage, Kind: DamageProjectile, Health: result}
}

// IsBackHit 受击方向（受击点 - 首领位置）与朝向夹角超过 BackDetectionAngle 视为背面
func IsBackHit(boss *components.BossComponent, hitDirection utils.Vec2) bool {
	forward := utils.Vec2{X: -1}
	if boss.FacingRight {
		forward.X = 1
	}
	return utils.AngleBetween(forward, hitDirection) > boss.BackDetectionAngle
}

// stun 眩晕期间停止转身，恢复后转身计时重新开始
func (s *RobotSystem) stun(id ecs.EntityID, boss *components.BossComponent) {
	boss.Stunned = true
	if boss.FlipTimer.Valid() {
		s.scheduler.Cancel(boss.FlipTimer)
		boss.FlipTimer = components.NoTimer
	}
	boss.StunTimer = s.scheduler.Schedule(id, ActionStunRecover, boss.StunDuration, func() {
		boss.Stunned = false
		boss.StunTimer = components.NoTimer
		s.scheduleFlip(id)
	})
}

func (s *RobotSystem) scheduleFlip(id ecs.EntityID) {
	boss, ok := ecs.GetComponent[*components.BossComponent](s.entityManager, id)
	if !ok || boss.FlipInterval <= 0 {
		return
	}
	boss.FlipTimer = s.scheduler.Schedule(id, ActionBossFlip, boss.FlipInterval, func() {
		boss.FlipTimer = components.NoTimer
		if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id); ok && health.Dead {
			return
		}
		if boss.Stunned {
			return
		}
		boss.FacingRight = !boss.FacingRight
		s.scheduleFlip(id)
	})
}
