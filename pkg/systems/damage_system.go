package systems

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
)

// DamageKind 碰撞伤害采用的规则
type DamageKind int

const (
	DamageNone            DamageKind = iota // 低于阈值，忽略
	DamageVelocity                          // 速度规则
	DamageProjectile                        // 炮弹直击
	DamageFall                              // 坠落物按速度和质量计算
	DamageFallInstantKill                   // 坠落物直接致死
)

// String 返回规则名称
func (k DamageKind) String() string {
	switch k {
	case DamageVelocity:
		return "velocity"
	case DamageProjectile:
		return "projectile"
	case DamageFall:
		return "fall"
	case DamageFallInstantKill:
		return "fall_instant_kill"
	default:
		return "none"
	}
}

// ResolveCollisionDamage 根据碰撞事件和规则计算伤害
//
// 规则选择顺序：
//  1. 撞击者是炮弹且规则设置了炮弹倍率：magnitude × ProjectileMultiplier
//  2. 相对速度 Y 分量低于 -MinFallVelocity：坠落规则（可选直接致死，伤害 = maxHealth）
//  3. 否则仅当 magnitude > MinImpactSpeed 时使用速度规则
//
// 低于阈值的碰撞返回 DamageNone，而不是 0 伤害。
func ResolveCollisionDamage(impact components.ImpactEvent, rule components.DamageRule, sourceKind components.EntityKind, maxHealth float64) (float64, DamageKind) {
	magnitude := impact.Magnitude()

	if sourceKind == components.KindProjectile && rule.ProjectileMultiplier > 0 {
		amount := magnitude * rule.ProjectileMultiplier
		if amount <= 0 {
			return 0, DamageNone
		}
		return amount, DamageProjectile
	}

	if rule.MinFallVelocity > 0 && impact.RelativeVelocity.Y < -rule.MinFallVelocity {
		if rule.InstantKillOnFall {
			return maxHealth, DamageFallInstantKill
		}
		amount := math.Abs(impact.RelativeVelocity.Y) * impact.SourceMass * rule.FallDamageMultiplier
		if amount <= 0 {
			return 0, DamageNone
		}
		return amount, DamageFall
	}

	if magnitude <= rule.MinImpactSpeed || rule.Multiplier <= 0 {
		return 0, DamageNone
	}
	amount := magnitude * rule.Multiplier
	if rule.MassScaled {
		if impact.SourceMass <= rule.MinSourceMass {
			return 0, DamageNone
		}
		amount *= impact.SourceMass
	}
	if amount <= rule.MinDamage {
		return 0, DamageNone
	}
	return amount, DamageVelocity
}

// ImpactResult 一次碰撞伤害的结算结果
type ImpactResult struct {
	Amount float64
	Kind   DamageKind
	Health components.HealthResult
}

// DamageSystem 伤害结算
//
// 生命值的唯一修改入口。结算中产生的通知写入事件队列：
//   - EventDamageApplied：每次生效的伤害（含致命），Amount 为实际扣除量
//   - EventHealthChanged：非致命伤害，Value 为新的生命百分比
//   - EventDestroyed：死亡，每个实体一次
type DamageSystem struct {
	entityManager *ecs.EntityManager
	destruction   *DestructionSystem
	queue         *events.EventQueue
}

// NewDamageSystem 创建伤害系统
func NewDamageSystem(em *ecs.EntityManager, destruction *DestructionSystem, queue *events.EventQueue) *DamageSystem {
	return &DamageSystem{
		entityManager: em,
		destruction:   destruction,
		queue:         queue,
	}
}

// ApplyImpact 计算并施加碰撞伤害
// 目标没有生命值或碰撞规则时不产生伤害
func (s *DamageSystem) ApplyImpact(impact components.ImpactEvent) ImpactResult {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, impact.Target)
	if !ok || health.Dead {
		return ImpactResult{}
	}
	impactComp, ok := ecs.GetComponent[*components.ImpactDamageComponent](s.entityManager, impact.Target)
	if !ok {
		return ImpactResult{}
	}

	sourceKind := components.KindGeneric
	if impact.Source != ecs.InvalidEntity {
		sourceKind = kindOf(s.entityManager, impact.Source)
	}

	amount, kind := ResolveCollisionDamage(impact, impactComp.Rule, sourceKind, health.MaxHealth)
	if kind == DamageNone {
		return ImpactResult{}
	}

	cause := components.DeathCauseImpact
	if kind == DamageFall || kind == DamageFallInstantKill {
		cause = components.DeathCauseFall
	}
	result := s.ApplyDamage(impact.Target, amount, impact.Source, cause)

	log.Debug().Str("system", "Damage").
		Uint64("target", uint64(impact.Target)).
		Uint64("source", uint64(impact.Source)).
		Str("rule", kind.String()).
		Float64("amount", amount).
		Bool("died", result.Died).
		Msg("碰撞伤害")

	return ImpactResult{Amount: amount, Kind: kind, Health: result}
}

// ApplyDamage 对实体施加伤害
// 已死亡或无生命值的实体静默忽略
func (s *DamageSystem) ApplyDamage(target ecs.EntityID, amount float64, source ecs.EntityID, cause components.DeathCause) components.HealthResult {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, target)
	if !ok {
		return components.HealthResult{}
	}

	before := health.CurrentHealth
	result := health.ApplyDamage(amount)
	if !result.Applied {
		return result
	}

	kind := kindOf(s.entityManager, target)
	var position components.PositionComponent
	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, target); ok {
		position = *pos
	}

	s.queue.Push(events.GameEvent{
		Type:     events.EventDamageApplied,
		Entity:   target,
		Kind:     kind,
		Source:   source,
		Value:    result.NewHealthPercent,
		Amount:   math.Min(amount, before),
		Position: position.Vec(),
	})

	if block, ok := ecs.GetComponent[*components.BlockComponent](s.entityManager, target); ok {
		block.Tier = components.TierForPercent(result.NewHealthPercent)
	}

	if !result.Died {
		s.queue.Push(events.GameEvent{
			Type:     events.EventHealthChanged,
			Entity:   target,
			Kind:     kind,
			Source:   source,
			Value:    result.NewHealthPercent,
			Position: position.Vec(),
		})
		return result
	}

	health.DeathCause = cause
	s.queue.Push(events.GameEvent{
		Type:     events.EventDestroyed,
		Entity:   target,
		Kind:     kind,
		Source:   source,
		Position: position.Vec(),
	})

	if destructible, ok := ecs.GetComponent[*components.DestructibleComponent](s.entityManager, target); ok && !destructible.Deferred {
		s.destruction.ScheduleDestroy(target, destructible.DestroyDelay)
	}

	log.Info().Str("system", "Damage").
		Uint64("entity", uint64(target)).
		Str("kind", kind.String()).
		Msg("实体死亡")
	return result
}
