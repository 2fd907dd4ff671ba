package systems

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/entities"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/utils"
)

// SpatialQuery 范围查询
// 返回 origin 半径 radius 内具备可破坏或可推动能力的实体
type SpatialQuery interface {
	QueryRadius(origin utils.Vec2, radius float64) []ecs.EntityID
}

// EntityRadiusQuery 基于实体位置的线性扫描查询
type EntityRadiusQuery struct {
	entityManager *ecs.EntityManager
}

// NewEntityRadiusQuery 创建默认范围查询
func NewEntityRadiusQuery(em *ecs.EntityManager) *EntityRadiusQuery {
	return &EntityRadiusQuery{entityManager: em}
}

// QueryRadius 实现 SpatialQuery，结果按实体ID升序
func (q *EntityRadiusQuery) QueryRadius(origin utils.Vec2, radius float64) []ecs.EntityID {
	result := make([]ecs.EntityID, 0)
	for _, id := range ecs.GetEntitiesWith1[*components.PositionComponent](q.entityManager) {
		if !q.entityManager.Exists(id) {
			continue
		}
		if !ecs.HasComponent[*components.HealthComponent](q.entityManager, id) &&
			!ecs.HasComponent[*components.PhysicsBodyComponent](q.entityManager, id) {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](q.entityManager, id)
		if pos.Vec().Distance(origin) <= radius {
			result = append(result, id)
		}
	}
	return result
}

// ExplosionEffect 单个实体受到的爆炸影响
type ExplosionEffect struct {
	Entity   ecs.EntityID
	Distance float64
	Damage   float64    // 计算伤害，无生命值的实体为 0
	Impulse  utils.Vec2 // 冲量，不可推动的实体为零向量
	Died     bool       // 本次爆炸是否导致死亡
}

// ExplosionSystem 范围爆炸结算
//
// 两阶段结算：先基于位置快照计算全部影响，再统一施加，
// 因此结果与候选实体的遍历顺序无关。连锁引爆（如爆炸方块）
// 通过调度器安排为新的结算，不会在本次结算中递归发生。
type ExplosionSystem struct {
	entityManager  *ecs.EntityManager
	damage         *DamageSystem
	destruction    *DestructionSystem
	query          SpatialQuery
	queue          *events.EventQueue
	visualDuration float64
}

// NewExplosionSystem 创建爆炸系统
// query 为 nil 时使用 EntityRadiusQuery；visualDuration 为爆炸标记的保留时间
func NewExplosionSystem(em *ecs.EntityManager, damage *DamageSystem, destruction *DestructionSystem, query SpatialQuery, queue *events.EventQueue, visualDuration float64) *ExplosionSystem {
	if query == nil {
		query = NewEntityRadiusQuery(em)
	}
	return &ExplosionSystem{
		entityManager:  em,
		damage:         damage,
		destruction:    destruction,
		query:          query,
		queue:          queue,
		visualDuration: visualDuration,
	}
}

// Resolve 对给定候选实体执行一次爆炸结算
//
// 规则：
//   - 跳过来源实体、已释放实体、被层过滤排除的实体
//   - t = clamp01(1 - d/radius)，t <= 0（d >= radius）的实体不受影响
//   - 有生命值的实体受到 MaxDamage × t 伤害
//   - 非运动学刚体受到沿 (实体 - 中心) 方向、大小为 MaxImpulse × t 的冲量，距离为 0 时方向为零向量
func (s *ExplosionSystem) Resolve(spec components.ExplosionSpec, candidates []ecs.EntityID) []ExplosionEffect {
	if spec.Radius <= 0 {
		return nil
	}

	ids := dedupeSorted(candidates)
	effects := make([]ExplosionEffect, 0, len(ids))

	// 阶段一：基于快照计算
	for _, id := range ids {
		if spec.Source != ecs.InvalidEntity && id == spec.Source {
			continue
		}
		if !s.entityManager.Exists(id) {
			continue
		}
		layer := components.LayerGeneric
		if kind, ok := ecs.GetComponent[*components.KindComponent](s.entityManager, id); ok {
			layer = kind.Layer
		}
		if !spec.Filter.Matches(layer) {
			continue
		}
		pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		if !ok {
			continue
		}

		offset := pos.Vec().Sub(spec.Origin)
		distance := offset.Len()
		t := spec.Falloff(distance)
		if t <= 0 {
			continue
		}

		effect := ExplosionEffect{Entity: id, Distance: distance}
		damageable := false
		if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id); ok && health.IsAlive() {
			damageable = true
			effect.Damage = spec.MaxDamage * t
		}
		movable := false
		if body, ok := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, id); ok && !body.Kinematic {
			if ecs.HasComponent[*components.VelocityComponent](s.entityManager, id) {
				movable = true
				effect.Impulse = offset.Normalized().Scale(spec.MaxImpulse * t)
			}
		}
		if !damageable && !movable {
			continue
		}
		effects = append(effects, effect)
	}

	// 阶段二：施加
	for i := range effects {
		effect := &effects[i]
		if effect.Damage > 0 {
			result := s.damage.ApplyDamage(effect.Entity, effect.Damage, spec.Source, components.DeathCauseExplosion)
			effect.Died = result.Died
		}
		if effect.Impulse != (utils.Vec2{}) {
			body, _ := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, effect.Entity)
			vel, _ := ecs.GetComponent[*components.VelocityComponent](s.entityManager, effect.Entity)
			body.ApplyImpulse(vel, effect.Impulse)
		}
	}

	return effects
}

// Detonate 查询范围内的实体并结算一次爆炸，同时生成爆炸标记
func (s *ExplosionSystem) Detonate(spec components.ExplosionSpec) []ExplosionEffect {
	if spec.Radius <= 0 {
		log.Warn().Str("system", "Explosion").Float64("radius", spec.Radius).Msg("忽略半径非法的爆炸")
		return nil
	}

	candidates := s.query.QueryRadius(spec.Origin, spec.Radius)
	effects := s.Resolve(spec, candidates)

	marker := entities.NewExplosionMarker(s.entityManager, spec.Origin, spec.Radius, spec.Source)
	s.destruction.ScheduleDestroy(marker, s.visualDuration)

	s.queue.Push(events.GameEvent{
		Type:     events.EventExplosion,
		Entity:   marker,
		Kind:     components.KindExplosion,
		Source:   spec.Source,
		Value:    spec.Radius,
		Amount:   float64(len(effects)),
		Position: spec.Origin,
	})

	log.Info().Str("system", "Explosion").
		Uint64("source", uint64(spec.Source)).
		Float64("x", spec.Origin.X).
		Float64("y", spec.Origin.Y).
		Float64("radius", spec.Radius).
		Int("affected", len(effects)).
		Msg("爆炸结算")
	return effects
}

// dedupeSorted 返回去重并按ID升序排列的副本
func dedupeSorted(ids []ecs.EntityID) []ecs.EntityID {
	out := make([]ecs.EntityID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}
