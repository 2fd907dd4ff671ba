package systems

import (
	"math"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/utils"
)

// WorldBounds 世界可见范围，飞出范围的炮弹视为离开画面
type WorldBounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains 点是否在范围内
func (b WorldBounds) Contains(p utils.Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// ImpactSink 接收物理系统产生的碰撞事件
type ImpactSink func(components.ImpactEvent)

// OffscreenSink 接收飞出画面的炮弹
type OffscreenSink func(ecs.EntityID)

type contactKey struct {
	a, b ecs.EntityID
}

// PhysicsSystem 参考物理系统（可选）
//
// 宿主引擎没有自己的物理时使用：重力积分、AABB 碰撞检测与分离，
// 在接触开始时为双方各产生一个 ImpactEvent（相对速度 = 撞击者速度 - 受击者速度）。
// 碰撞事件在本帧所有接触处理完后统一交给 ImpactSink。
type PhysicsSystem struct {
	entityManager *ecs.EntityManager
	gravity       float64
	bounds        WorldBounds
	impacts       ImpactSink
	offscreen     OffscreenSink

	contacts      map[contactKey]bool
	offscreenSeen map[ecs.EntityID]bool
}

// NewPhysicsSystem 创建物理系统
//
// 参数:
//   - em: 实体管理器
//   - gravity: 重力加速度（向下为正）
//   - bounds: 世界范围
//   - impacts: 碰撞事件接收者，可为 nil
//   - offscreen: 离屏炮弹接收者，可为 nil
func NewPhysicsSystem(em *ecs.EntityManager, gravity float64, bounds WorldBounds, impacts ImpactSink, offscreen OffscreenSink) *PhysicsSystem {
	return &PhysicsSystem{
		entityManager: em,
		gravity:       gravity,
		bounds:        bounds,
		impacts:       impacts,
		offscreen:     offscreen,
		contacts:      make(map[contactKey]bool),
		offscreenSeen: make(map[ecs.EntityID]bool),
	}
}

// body 一帧内的刚体快照
type body struct {
	id   ecs.EntityID
	kind components.EntityKind
	pos  *components.PositionComponent
	vel  *components.VelocityComponent
	col  *components.CollisionComponent
	phys *components.PhysicsBodyComponent
}

func (b *body) dynamic() bool {
	return b.phys != nil && !b.phys.Kinematic && b.vel != nil
}

func (b *body) velocity() utils.Vec2 {
	if b.vel == nil {
		return utils.Vec2{}
	}
	return b.vel.Vec()
}

func (b *body) mass() float64 {
	if b.phys == nil {
		return 0
	}
	return b.phys.Mass
}

// Update 推进一帧物理
func (ps *PhysicsSystem) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}

	ps.integrate(deltaTime)
	bodies := ps.collectBodies()
	pending := ps.detectContacts(bodies)
	ps.checkOffscreen()

	if ps.impacts != nil {
		for _, impact := range pending {
			ps.impacts(impact)
		}
	}
}

// integrate 重力和速度积分
func (ps *PhysicsSystem) integrate(dt float64) {
	ids := ecs.GetEntitiesWith3[*components.PositionComponent, *components.VelocityComponent, *components.PhysicsBodyComponent](ps.entityManager)
	for _, id := range ids {
		phys, _ := ecs.GetComponent[*components.PhysicsBodyComponent](ps.entityManager, id)
		if phys.Kinematic {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](ps.entityManager, id)
		vel, _ := ecs.GetComponent[*components.VelocityComponent](ps.entityManager, id)

		vel.VY -= ps.gravity * phys.GravityScale * dt
		pos.X += vel.VX * dt
		pos.Y += vel.VY * dt
		phys.Grounded = false
	}
}

func (ps *PhysicsSystem) collectBodies() []*body {
	ids := ecs.GetEntitiesWith2[*components.PositionComponent, *components.CollisionComponent](ps.entityManager)
	bodies := make([]*body, 0, len(ids))
	for _, id := range ids {
		if !ps.entityManager.Exists(id) {
			continue
		}
		b := &body{id: id, kind: kindOf(ps.entityManager, id)}
		b.pos, _ = ecs.GetComponent[*components.PositionComponent](ps.entityManager, id)
		b.col, _ = ecs.GetComponent[*components.CollisionComponent](ps.entityManager, id)
		b.vel, _ = ecs.GetComponent[*components.VelocityComponent](ps.entityManager, id)
		b.phys, _ = ecs.GetComponent[*components.PhysicsBodyComponent](ps.entityManager, id)
		bodies = append(bodies, b)
	}
	return bodies
}

// ignorePair 不参与碰撞的组合（炮弹生成在坦克碰撞盒内）
func ignorePair(a, b components.EntityKind) bool {
	if a == components.KindTank && b == components.KindProjectile || a == components.KindProjectile && b == components.KindTank {
		return true
	}
	return false
}

func (ps *PhysicsSystem) detectContacts(bodies []*body) []components.ImpactEvent {
	current := make(map[contactKey]bool)
	pending := make([]components.ImpactEvent, 0)

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if !a.dynamic() && !b.dynamic() {
				continue
			}
			if ignorePair(a.kind, b.kind) {
				continue
			}

			normal, depth, ok := overlap(a, b)
			if !ok {
				continue
			}

			key := contactKey{a: a.id, b: b.id}
			current[key] = true
			if !ps.contacts[key] {
				point := a.pos.Vec().Add(b.pos.Vec()).Scale(0.5)
				pending = append(pending,
					components.ImpactEvent{
						Source:           a.id,
						Target:           b.id,
						Point:            point,
						Normal:           normal,
						RelativeVelocity: a.velocity().Sub(b.velocity()),
						SourceMass:       a.mass(),
					},
					components.ImpactEvent{
						Source:           b.id,
						Target:           a.id,
						Point:            point,
						Normal:           normal.Scale(-1),
						RelativeVelocity: b.velocity().Sub(a.velocity()),
						SourceMass:       b.mass(),
					},
				)
			}

			if depth > 0 {
				separate(a, b, normal, depth)
			}
		}
	}

	ps.contacts = current
	return pending
}

// contactSlop 接触容差：分离后恰好贴合的刚体仍视为保持接触，避免静止接触反复触发碰撞
const contactSlop = 0.01

// overlap 计算 AABB 重叠
// normal 从 a 指向 b，depth 为最小穿透深度（贴合时可能 <= 0）
func overlap(a, b *body) (utils.Vec2, float64, bool) {
	aLeft, aBottom, aRight, aTop := a.col.Bounds(a.pos.X, a.pos.Y)
	bLeft, bBottom, bRight, bTop := b.col.Bounds(b.pos.X, b.pos.Y)

	dx := math.Min(aRight, bRight) - math.Max(aLeft, bLeft)
	dy := math.Min(aTop, bTop) - math.Max(aBottom, bBottom)
	if dx <= -contactSlop || dy <= -contactSlop || (dx <= 0 && dy <= 0) {
		return utils.Vec2{}, 0, false
	}

	// 沿穿透较浅的轴分离
	if dx < dy {
		if a.pos.X+a.col.OffsetX < b.pos.X+b.col.OffsetX {
			return utils.Vec2{X: 1}, dx, true
		}
		return utils.Vec2{X: -1}, dx, true
	}
	if a.pos.Y+a.col.OffsetY < b.pos.Y+b.col.OffsetY {
		return utils.Vec2{Y: 1}, dy, true
	}
	return utils.Vec2{Y: -1}, dy, true
}

// separate 推开重叠的刚体并消除相向速度（完全非弹性）
func separate(a, b *body, normal utils.Vec2, depth float64) {
	aShare, bShare := 0.0, 0.0
	switch {
	case a.dynamic() && b.dynamic():
		aShare, bShare = 0.5, 0.5
	case a.dynamic():
		aShare = 1
	default:
		bShare = 1
	}

	if aShare > 0 {
		a.pos.Set(a.pos.Vec().Sub(normal.Scale(depth * aShare)))
		if v := a.velocity().Dot(normal); v > 0 {
			a.vel.VX -= normal.X * v
			a.vel.VY -= normal.Y * v
		}
		if normal.Y < 0 {
			a.phys.Grounded = true
		}
	}
	if bShare > 0 {
		b.pos.Set(b.pos.Vec().Add(normal.Scale(depth * bShare)))
		if v := b.velocity().Dot(normal); v < 0 {
			b.vel.VX -= normal.X * v
			b.vel.VY -= normal.Y * v
		}
		if normal.Y > 0 {
			b.phys.Grounded = true
		}
	}
}

// checkOffscreen 飞行中的炮弹离开世界范围时通知一次
func (ps *PhysicsSystem) checkOffscreen() {
	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](ps.entityManager) {
		proj, _ := ecs.GetComponent[*components.ProjectileComponent](ps.entityManager, id)
		if proj.Phase != components.ProjectileFlying || ps.offscreenSeen[id] {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](ps.entityManager, id)
		if ps.bounds.Contains(pos.Vec()) {
			continue
		}
		ps.offscreenSeen[id] = true
		if ps.offscreen != nil {
			ps.offscreen(id)
		}
	}
}

// Forget 清除实体的接触记录（实体释放时调用）
func (ps *PhysicsSystem) Forget(id ecs.EntityID) {
	delete(ps.offscreenSeen, id)
	for key := range ps.contacts {
		if key.a == id || key.b == id {
			delete(ps.contacts, key)
		}
	}
}
