// Package entities 提供游戏实体的工厂函数
//
// 每个工厂只负责组装组件，不包含任何行为逻辑；
// 行为由 pkg/systems 中的系统驱动。
package entities

import (
	"fmt"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/config"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/utils"
)

// GenericImpactRule 通用可破坏实体的碰撞规则：撞击速度超过1时伤害 = 速度
var GenericImpactRule = components.DamageRule{
	Multiplier:     1,
	MinImpactSpeed: 1,
}

// 地面和坦克的碰撞盒尺寸（米）
const (
	groundThickness = 1.0
	tankWidth       = 1.6
	tankHeight      = 0.8
)

// addBody 添加位置、速度、刚体和碰撞组件
func addBody(em *ecs.EntityManager, id ecs.EntityID, pos utils.Vec2, mass, width, height float64) {
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &components.VelocityComponent{})
	em.AddComponent(id, &components.PhysicsBodyComponent{Mass: mass, GravityScale: 1})
	em.AddComponent(id, &components.CollisionComponent{Width: width, Height: height})
}

// NewDamageable 创建通用可破坏实体
// 只有生命值和位置，不受爆炸冲量影响
func NewDamageable(em *ecs.EntityManager, maxHealth float64, pos utils.Vec2) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindGeneric))
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, components.NewHealthComponent(maxHealth))
	em.AddComponent(id, &components.ImpactDamageComponent{Rule: GenericImpactRule})
	em.AddComponent(id, &components.DestructibleComponent{})
	return id
}

// NewGround 创建地面实体（顶面位于 groundY）
func NewGround(em *ecs.EntityManager, groundY, width float64) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindGround))
	em.AddComponent(id, &components.PositionComponent{X: 0, Y: groundY - groundThickness/2})
	em.AddComponent(id, &components.PhysicsBodyComponent{Mass: 1, Kinematic: true})
	em.AddComponent(id, &components.CollisionComponent{Width: width, Height: groundThickness})
	return id
}

// NewTank 创建坦克实体，弹匣为空时不可发射
func NewTank(em *ecs.EntityManager, pos utils.Vec2, magazine []string, tuning *config.Tuning) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindTank))
	em.AddComponent(id, &components.PositionComponent{X: pos.X, Y: pos.Y})
	em.AddComponent(id, &components.PhysicsBodyComponent{Mass: 10, Kinematic: true})
	em.AddComponent(id, &components.CollisionComponent{Width: tankWidth, Height: tankHeight})

	launcher := &components.LauncherComponent{
		Magazine: append([]string(nil), magazine...),
		CanShoot: len(magazine) > 0,
	}
	if tuning != nil {
		launcher.MaxLaunchForce = tuning.MaxLaunchForce
		launcher.SpawnOffset = tuning.SpawnOffset
	}
	em.AddComponent(id, launcher)
	return id
}

// NewRobot 根据单位目录创建机器人
func NewRobot(em *ecs.EntityManager, catalog *config.UnitCatalog, robotType string, pos utils.Vec2) (ecs.EntityID, error) {
	stats, ok := catalog.Robots[robotType]
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: robot %q", config.ErrUnknownUnit, robotType)
	}
	variant, err := config.ParseRobotVariant(stats.Variant)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("robot %q: %w", robotType, err)
	}

	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindRobot))
	addBody(em, id, pos, stats.Mass, stats.Width, stats.Height)
	em.AddComponent(id, components.NewHealthComponent(stats.MaxHealth))
	em.AddComponent(id, &components.ImpactDamageComponent{Rule: stats.Impact})
	em.AddComponent(id, &components.DestructibleComponent{DestroyDelay: stats.DestroyDelay})
	em.AddComponent(id, &components.RobotComponent{Type: robotType, Variant: variant})

	switch variant {
	case components.RobotFlying:
		// 悬浮：生命值降到阈值前为运动学刚体，不受重力和冲量影响
		body, _ := ecs.GetComponent[*components.PhysicsBodyComponent](em, id)
		body.GravityScale = 0
		body.Kinematic = true
		em.AddComponent(id, &components.FlyingRobotComponent{
			FallThreshold: stats.FallThreshold,
			FallGravity:   stats.FallGravity,
		})
	case components.RobotBoss:
		em.AddComponent(id, &components.BossComponent{
			FacingRight:        false, // 初始面向左侧（坦克方向），背面在右
			FlipInterval:       stats.FlipInterval,
			BackDetectionAngle: stats.BackDetectionAngle,
			BackHitDamage:      stats.BackHitDamage,
			StunDuration:       stats.StunDuration,
		})
	}
	return id, nil
}

// NewBlock 根据单位目录创建方块（含爆炸方块）
func NewBlock(em *ecs.EntityManager, catalog *config.UnitCatalog, blockType string, pos utils.Vec2) (ecs.EntityID, error) {
	stats, ok := catalog.Blocks[blockType]
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: block %q", config.ErrUnknownUnit, blockType)
	}

	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindBlock))
	addBody(em, id, pos, stats.Mass, stats.Width, stats.Height)
	em.AddComponent(id, components.NewHealthComponent(stats.MaxHealth))
	em.AddComponent(id, &components.ImpactDamageComponent{Rule: stats.Impact})
	em.AddComponent(id, &components.BlockComponent{Type: blockType, Tier: components.TierIntact})

	destructible := &components.DestructibleComponent{DestroyDelay: stats.DestroyDelay}
	if stats.Explosive != nil {
		// 爆炸方块的销毁由爆炸系统在引爆后安排
		destructible.Deferred = true
		em.AddComponent(id, &components.ExplosiveComponent{
			Explosion:         stats.Explosive.Explosion,
			PreExplosionTime:  stats.Explosive.PreExplosionTime,
			ExplosionDuration: stats.Explosive.ExplosionDuration,
		})
	}
	em.AddComponent(id, destructible)
	return id, nil
}

// NewProjectile 创建处于 Idle 阶段的炮弹
// 发射前为运动学刚体，由发射系统赋予速度后才参与物理
func NewProjectile(em *ecs.EntityManager, catalog *config.UnitCatalog, projectileType string, pos utils.Vec2) (ecs.EntityID, error) {
	stats, ok := catalog.Projectiles[projectileType]
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: projectile %q", config.ErrUnknownUnit, projectileType)
	}
	filter, err := config.ParseLayers(stats.Layers)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("projectile %q: %w", projectileType, err)
	}

	explosion := stats.Explosion
	explosion.Filter = filter

	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindProjectile))
	addBody(em, id, pos, stats.Mass, stats.Radius*2, stats.Radius*2)
	body, _ := ecs.GetComponent[*components.PhysicsBodyComponent](em, id)
	body.Kinematic = true
	body.GravityScale = 0

	em.AddComponent(id, &components.ProjectileComponent{
		Type:             projectileType,
		Phase:            components.ProjectileIdle,
		Explosion:        explosion,
		ResetTime:        stats.ResetTime,
		DetonationDelay:  stats.DetonationDelay,
		MinImpactSpeed:   stats.MinImpactSpeed,
		ExplodeOnContact: stats.ExplodeOnContact,
	})
	return id, nil
}

// NewExplosionMarker 创建爆炸标记实体（表现层据此绘制爆炸效果）
func NewExplosionMarker(em *ecs.EntityManager, origin utils.Vec2, radius float64, source ecs.EntityID) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewKindComponent(components.KindExplosion))
	em.AddComponent(id, &components.PositionComponent{X: origin.X, Y: origin.Y})
	em.AddComponent(id, &components.ExplosionMarkerComponent{Radius: radius, Source: source})
	return id
}
