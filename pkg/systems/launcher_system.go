package systems

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/config"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/entities"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/utils"
)

// 发射错误
var (
	ErrNoProjectiles      = errors.New("launcher has no projectiles configured")
	ErrOutOfAmmo          = errors.New("launcher is out of ammo")
	ErrProjectileInFlight = errors.New("a projectile is already in flight")
	ErrLauncherLocked     = errors.New("launcher cannot shoot")
	ErrInvalidDirection   = errors.New("launch direction must be non-zero")
)

// LauncherSystem 坦克发射器
//
// 每次只允许一枚炮弹在飞行中；炮弹结束（EventProjectileFinished）后
// 根据剩余弹药重新允许发射。
type LauncherSystem struct {
	entityManager *ecs.EntityManager
	catalog       *config.UnitCatalog
	projectiles   *ProjectileSystem
	queue         *events.EventQueue
	gravity       float64
}

// NewLauncherSystem 创建发射系统
func NewLauncherSystem(em *ecs.EntityManager, catalog *config.UnitCatalog, projectiles *ProjectileSystem, queue *events.EventQueue, gravity float64) *LauncherSystem {
	return &LauncherSystem{
		entityManager: em,
		catalog:       catalog,
		projectiles:   projectiles,
		queue:         queue,
		gravity:       gravity,
	}
}

// Setup 重新装填弹匣
func (s *LauncherSystem) Setup(tank ecs.EntityID, magazine []string) bool {
	launcher, ok := ecs.GetComponent[*components.LauncherComponent](s.entityManager, tank)
	if !ok {
		return false
	}
	launcher.Magazine = append(launcher.Magazine[:0], magazine...)
	launcher.NextIndex = 0
	launcher.CurrentProjectile = ecs.InvalidEntity
	launcher.CanShoot = len(magazine) > 0
	return true
}

// Lock 禁止发射（关卡结束时使用）
func (s *LauncherSystem) Lock(tank ecs.EntityID) {
	if launcher, ok := ecs.GetComponent[*components.LauncherComponent](s.entityManager, tank); ok {
		launcher.CanShoot = false
	}
}

// Remaining 返回剩余炮弹数量
func (s *LauncherSystem) Remaining(tank ecs.EntityID) int {
	launcher, ok := ecs.GetComponent[*components.LauncherComponent](s.entityManager, tank)
	if !ok {
		return 0
	}
	return launcher.Remaining()
}

// OutOfAmmo 弹匣是否已打空
func (s *LauncherSystem) OutOfAmmo(tank ecs.EntityID) bool {
	return s.Remaining(tank) == 0
}

// Launch 发射下一发炮弹
//
// force 被限制在 [0, MaxLaunchForce]，炮弹生成在坦克位置沿发射方向偏移 SpawnOffset 处，
// 以冲量方式赋予初速度（Δv = force / mass）后激活。
func (s *LauncherSystem) Launch(tank ecs.EntityID, direction utils.Vec2, force float64) (ecs.EntityID, error) {
	launcher, ok := ecs.GetComponent[*components.LauncherComponent](s.entityManager, tank)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("entity %d has no launcher", tank)
	}
	switch {
	case len(launcher.Magazine) == 0:
		return ecs.InvalidEntity, ErrNoProjectiles
	case launcher.CurrentProjectile != ecs.InvalidEntity:
		return ecs.InvalidEntity, ErrProjectileInFlight
	case launcher.OutOfAmmo():
		return ecs.InvalidEntity, ErrOutOfAmmo
	case !launcher.CanShoot:
		return ecs.InvalidEntity, ErrLauncherLocked
	}

	dir := direction.Normalized()
	if dir == (utils.Vec2{}) {
		return ecs.InvalidEntity, ErrInvalidDirection
	}
	force = s.clampForce(launcher, force)

	origin := utils.Vec2{}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, tank); ok {
		origin = pos.Vec()
	}
	spawn := origin.Add(dir.Scale(launcher.SpawnOffset))

	projectileType := launcher.Magazine[launcher.NextIndex]
	id, err := entities.NewProjectile(s.entityManager, s.catalog, projectileType, spawn)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to create projectile: %w", err)
	}

	body, _ := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, id)
	vel, _ := ecs.GetComponent[*components.VelocityComponent](s.entityManager, id)
	body.Kinematic = false
	body.GravityScale = 1
	body.ApplyImpulse(vel, dir.Scale(force))

	s.projectiles.Activate(id)

	launcher.NextIndex++
	launcher.CurrentProjectile = id
	launcher.CanShoot = false

	s.queue.Push(events.GameEvent{
		Type:     events.EventProjectileLaunched,
		Entity:   id,
		Kind:     components.KindProjectile,
		Source:   tank,
		Value:    force,
		Amount:   float64(launcher.Remaining()),
		Position: spawn,
	})

	log.Info().Str("system", "Launcher").
		Uint64("projectile", uint64(id)).
		Str("type", projectileType).
		Float64("force", force).
		Int("remaining", launcher.Remaining()).
		Msg("发射炮弹")
	return id, nil
}

// PredictTrajectory 预测下一发炮弹的弹道（不考虑碰撞）
// 返回从生成点开始、间隔 step 秒的 points 个采样点
func (s *LauncherSystem) PredictTrajectory(tank ecs.EntityID, direction utils.Vec2, force float64, points int, step float64) []utils.Vec2 {
	launcher, ok := ecs.GetComponent[*components.LauncherComponent](s.entityManager, tank)
	if !ok || points <= 0 || launcher.OutOfAmmo() {
		return nil
	}
	dir := direction.Normalized()
	if dir == (utils.Vec2{}) {
		return nil
	}

	mass := 1.0
	if stats, ok := s.catalog.Projectiles[launcher.Magazine[launcher.NextIndex]]; ok && stats.Mass > 0 {
		mass = stats.Mass
	}
	velocity := dir.Scale(s.clampForce(launcher, force) / mass)

	origin := utils.Vec2{}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, tank); ok {
		origin = pos.Vec()
	}
	start := origin.Add(dir.Scale(launcher.SpawnOffset))

	result := make([]utils.Vec2, points)
	for i := range result {
		t := float64(i) * step
		result[i] = utils.Vec2{
			X: start.X + velocity.X*t,
			Y: start.Y + velocity.Y*t - 0.5*s.gravity*t*t,
		}
	}
	return result
}

// HandleEvent 炮弹结束后根据剩余弹药恢复发射
func (s *LauncherSystem) HandleEvent(event events.GameEvent) {
	if event.Type != events.EventProjectileFinished {
		return
	}
	for _, tank := range ecs.GetEntitiesWith1[*components.LauncherComponent](s.entityManager) {
		launcher, _ := ecs.GetComponent[*components.LauncherComponent](s.entityManager, tank)
		if launcher.CurrentProjectile != event.Entity {
			continue
		}
		launcher.CurrentProjectile = ecs.InvalidEntity
		launcher.CanShoot = !launcher.OutOfAmmo()
	}
}

// EventTypes 实现 events.EventHandler
func (s *LauncherSystem) EventTypes() []events.EventType {
	return []events.EventType{events.EventProjectileFinished}
}

func (s *LauncherSystem) clampForce(launcher *components.LauncherComponent, force float64) float64 {
	if launcher.MaxLaunchForce > 0 {
		return utils.Clamp(force, 0, launcher.MaxLaunchForce)
	}
	if force < 0 {
		return 0
	}
	return force
}
