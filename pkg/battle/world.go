// Package battle 组装模拟核心，对外提供单一入口 World
//
// World 持有实体管理器、调度器、事件队列和全部系统。外部调用
// （Create / ReportImpact / LaunchProjectile / Advance 等）结束时统一分发事件，
// 因此 Listener 回调永远不会在伤害或爆炸结算的中途触发。
package battle

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/config"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/entities"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/game"
	"github.com/decker502/robotsiege/pkg/systems"
	"github.com/decker502/robotsiege/pkg/utils"
)

// 关卡流程错误
var (
	ErrLevelNotStarted     = errors.New("level has not been started")
	ErrLevelAlreadyStarted = errors.New("level already started in this world")
	ErrLevelOver           = errors.New("level is already over")
)

// 发射错误（与 systems 中的定义相同，便于调用方只依赖 battle 包）
var (
	ErrNoProjectiles      = systems.ErrNoProjectiles
	ErrOutOfAmmo          = systems.ErrOutOfAmmo
	ErrProjectileInFlight = systems.ErrProjectileInFlight
	ErrLauncherLocked     = systems.ErrLauncherLocked
	ErrInvalidDirection   = systems.ErrInvalidDirection
)

// groundWidth 关卡地面宽度（米）
const groundWidth = 1000.0

// DefaultBounds 参考物理使用的默认世界范围
var DefaultBounds = systems.WorldBounds{MinX: -20, MinY: -10, MaxX: 80, MaxY: 60}

// Options World 的构造参数，零值字段使用默认值
type Options struct {
	Tuning   *config.Tuning
	Catalog  *config.UnitCatalog
	Query    systems.SpatialQuery // 为 nil 时使用 systems.EntityRadiusQuery
	Listener Listener
	Progress *game.ProgressManager // 为 nil 时不记录成绩

	// Physics 为 true 时 Advance 驱动内置参考物理；
	// 宿主有自己的物理引擎时保持 false，通过 ReportImpact 上报碰撞
	Physics bool
	Bounds  systems.WorldBounds

	// MeterProvider 为 nil 时使用 otel 全局 provider
	MeterProvider metric.MeterProvider
}

// ImpactOutcome 一次 ReportImpact 的结算结果
type ImpactOutcome struct {
	Rule      systems.DamageKind // 采用的伤害规则，DamageNone 表示未造成伤害
	Damage    float64
	Died      bool // 受击者因本次碰撞死亡
	Consumed  bool // 被机器人特殊规则（坠毁、首领装甲）处理
	Detonated bool // 参与碰撞的炮弹因此引爆
}

// World 一局模拟
type World struct {
	entityManager *ecs.EntityManager
	scheduler     *systems.Scheduler
	queue         *events.EventQueue
	router        *events.EventRouter
	gameState     *game.GameState

	tuning  *config.Tuning
	catalog *config.UnitCatalog

	destruction *systems.DestructionSystem
	damage      *systems.DamageSystem
	explosion   *systems.ExplosionSystem
	projectiles *systems.ProjectileSystem
	launcher    *systems.LauncherSystem
	explosive   *systems.ExplosiveSystem
	robots      *systems.RobotSystem
	level       *systems.LevelSystem
	score       *systems.ScoreSystem
	physics     *systems.PhysicsSystem

	metrics  *worldMetrics
	progress *game.ProgressManager

	tank   ecs.EntityID
	ground ecs.EntityID
}

// NewWorld 创建模拟世界
func NewWorld(opts Options) (*World, error) {
	tuning := opts.Tuning
	if tuning == nil {
		var err error
		if tuning, err = config.DefaultTuning(); err != nil {
			return nil, fmt.Errorf("invalid tuning: %w", err)
		}
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = config.DefaultUnitCatalog()
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid unit catalog: %w", err)
	}

	em := ecs.NewEntityManager()
	scheduler := systems.NewScheduler()
	queue := events.NewEventQueue()
	router := events.NewEventRouter(queue)
	score := game.NewScoreBoard(game.ScoreRules{
		PointsPerRobot:           tuning.Score.PointsPerRobot,
		PointsPerBlockDamage:     tuning.Score.PointsPerBlockDamage,
		BonusPerUnusedProjectile: tuning.Score.BonusPerUnusedProjectile,
		StarThresholds:           tuning.Score.StarThresholds,
	})
	gs := game.NewGameState(score)

	w := &World{
		entityManager: em,
		scheduler:     scheduler,
		queue:         queue,
		router:        router,
		gameState:     gs,
		tuning:        tuning,
		catalog:       catalog,
		progress:      opts.Progress,
	}

	w.destruction = systems.NewDestructionSystem(em, scheduler, queue)
	w.damage = systems.NewDamageSystem(em, w.destruction, queue)
	w.explosion = systems.NewExplosionSystem(em, w.damage, w.destruction, opts.Query, queue, tuning.ExplosionVisualDuration)
	w.projectiles = systems.NewProjectileSystem(em, scheduler, w.explosion, w.destruction, queue, tuning.OffscreenGrace)
	w.launcher = systems.NewLauncherSystem(em, catalog, w.projectiles, queue, tuning.Gravity)
	w.explosive = systems.NewExplosiveSystem(em, scheduler, w.explosion, w.destruction)
	w.robots = systems.NewRobotSystem(em, scheduler, w.damage)
	w.level = systems.NewLevelSystem(em, scheduler, queue, gs, w.launcher, tuning.VictoryDelay, tuning.DefeatDelay)
	w.score = systems.NewScoreSystem(queue, gs)

	if opts.Physics {
		bounds := opts.Bounds
		if bounds == (systems.WorldBounds{}) {
			bounds = DefaultBounds
		}
		w.physics = systems.NewPhysicsSystem(em, tuning.Gravity, bounds,
			func(impact components.ImpactEvent) { w.reportImpact(impact) },
			func(id ecs.EntityID) { w.markOffscreen(id) },
		)
	}

	metrics, err := newWorldMetrics(opts.MeterProvider, scheduler)
	if err != nil {
		return nil, err
	}
	w.metrics = metrics

	// 发射器必须先于关卡系统处理 ProjectileFinished，关卡系统依赖其弹药状态
	router.Register(w.launcher)
	router.Register(w.robots)
	router.Register(w.explosive)
	router.Register(w.level)
	router.Register(w.score)
	router.Register(w.metrics)
	if w.progress != nil {
		router.Register(events.HandlerFunc{
			Types: []events.EventType{events.EventLevelCleared, events.EventLevelFailed},
			Fn:    w.recordProgress,
		})
	}
	if opts.Listener != nil {
		router.Register(listenerBridge{listener: opts.Listener})
	}

	return w, nil
}

// Create 创建一个满血的通用可破坏实体
func (w *World) Create(maxHealth float64, position utils.Vec2) ecs.EntityID {
	id := entities.NewDamageable(w.entityManager, maxHealth, position)
	log.Debug().Str("system", "World").Uint64("entity", uint64(id)).Float64("maxHealth", maxHealth).Msg("创建实体")
	return id
}

// StartLevel 按关卡配置生成地面、坦克、机器人和方块并开始关卡
// 配置无效或任一实体生成失败时不留下任何实体，LaunchProjectile 返回 ErrLevelNotStarted
func (w *World) StartLevel(cfg *config.LevelConfig) error {
	if w.tank != ecs.InvalidEntity {
		return ErrLevelAlreadyStarted
	}
	if err := config.ValidateLevelConfig(cfg, w.catalog); err != nil {
		log.Error().Str("system", "World").Err(err).Msg("关卡配置无效，拒绝开始")
		return fmt.Errorf("cannot start level: %w", err)
	}

	ground := entities.NewGround(w.entityManager, w.tuning.GroundY, groundWidth)
	tank := entities.NewTank(w.entityManager, cfg.TankSpawn, cfg.Magazine(), w.tuning)
	spawned := []ecs.EntityID{ground, tank}

	for i, spawn := range cfg.RobotSpawns {
		id, err := entities.NewRobot(w.entityManager, w.catalog, spawn.Type, spawn.Position)
		if err != nil {
			w.discard(spawned)
			return fmt.Errorf("failed to spawn robot %d: %w", i, err)
		}
		spawned = append(spawned, id)
	}
	for i, spawn := range cfg.Blocks {
		id, err := entities.NewBlock(w.entityManager, w.catalog, spawn.Type, spawn.Position)
		if err != nil {
			w.discard(spawned)
			return fmt.Errorf("failed to spawn block %d: %w", i, err)
		}
		spawned = append(spawned, id)
	}

	w.ground = ground
	w.tank = tank
	w.level.Start(tank, cfg.ID, cfg.NextLevel, len(cfg.RobotSpawns))
	w.robots.Start()
	w.flush()
	return nil
}

// discard 移除关卡生成失败时已经创建的实体，World 回到未开始状态
func (w *World) discard(ids []ecs.EntityID) {
	for _, id := range ids {
		w.entityManager.DestroyEntity(id)
	}
	w.entityManager.RemoveMarkedEntities()
	log.Warn().Str("system", "World").Int("entities", len(ids)).Msg("关卡生成失败，已回滚")
}

// Advance 推进模拟 dt 秒
//
// 顺序：参考物理（如启用）-> 到期的延迟动作 -> 事件分发 -> 清理已释放实体
func (w *World) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if w.physics != nil {
		w.physics.Update(dt)
	}
	w.scheduler.Advance(dt)
	w.flush()

	for _, id := range w.entityManager.RemoveMarkedEntities() {
		if w.physics != nil {
			w.physics.Forget(id)
		}
	}
}

// ReportImpact 宿主物理引擎上报的碰撞
//
// 受击者先经过机器人特殊规则（坠毁、首领装甲），未被消费时走通用伤害规则；
// 之后碰撞双方中飞行的炮弹按各自规则决定是否引爆。
func (w *World) ReportImpact(impact components.ImpactEvent) ImpactOutcome {
	outcome := w.reportImpact(impact)
	w.flush()
	return outcome
}

func (w *World) reportImpact(impact components.ImpactEvent) ImpactOutcome {
	em := w.entityManager
	if !em.Exists(impact.Target) && !em.Exists(impact.Source) {
		return ImpactOutcome{}
	}

	var outcome ImpactOutcome
	if em.Exists(impact.Target) {
		consumed, result := w.robots.HandleImpact(impact)
		if !consumed {
			result = w.damage.ApplyImpact(impact)
		}
		outcome = ImpactOutcome{
			Rule:     result.Kind,
			Damage:   result.Amount,
			Died:     result.Health.Died,
			Consumed: consumed,
		}
	}

	for _, id := range [2]ecs.EntityID{impact.Source, impact.Target} {
		if id == ecs.InvalidEntity || !ecs.HasComponent[*components.ProjectileComponent](em, id) {
			continue
		}
		if w.projectiles.HandleImpact(id, impact) {
			outcome.Detonated = true
		}
	}

	w.metrics.recordImpact(outcome.Rule, outcome.Detonated)
	return outcome
}

// LaunchProjectile 从坦克发射下一发炮弹
func (w *World) LaunchProjectile(direction utils.Vec2, force float64) (ecs.EntityID, error) {
	if w.tank == ecs.InvalidEntity {
		return ecs.InvalidEntity, ErrLevelNotStarted
	}
	if !w.gameState.IsPlaying() {
		return ecs.InvalidEntity, ErrLevelOver
	}
	id, err := w.launcher.Launch(w.tank, direction, force)
	if err != nil {
		return ecs.InvalidEntity, err
	}
	w.flush()
	return id, nil
}

// Activate 激活一枚已存在的炮弹，重复激活为无操作
func (w *World) Activate(projectile ecs.EntityID) bool {
	ok := w.projectiles.Activate(projectile)
	w.flush()
	return ok
}

// MarkOffscreen 炮弹飞出画面，缩短兜底引爆时间
func (w *World) MarkOffscreen(projectile ecs.EntityID) bool {
	ok := w.markOffscreen(projectile)
	w.flush()
	return ok
}

func (w *World) markOffscreen(projectile ecs.EntityID) bool {
	return w.projectiles.MarkOffscreen(projectile)
}

// Explode 在指定位置结算一次爆炸（不关联炮弹）
func (w *World) Explode(spec components.ExplosionSpec) []systems.ExplosionEffect {
	effects := w.explosion.Detonate(spec)
	w.flush()
	return effects
}

// SpawnProjectile 在指定位置生成一枚 Idle 炮弹（宿主自行发射时使用）
func (w *World) SpawnProjectile(projectileType string, position utils.Vec2) (ecs.EntityID, error) {
	return entities.NewProjectile(w.entityManager, w.catalog, projectileType, position)
}

// PredictTrajectory 预测下一发炮弹的弹道
func (w *World) PredictTrajectory(direction utils.Vec2, force float64, points int, step float64) []utils.Vec2 {
	if w.tank == ecs.InvalidEntity {
		return nil
	}
	return w.launcher.PredictTrajectory(w.tank, direction, force, points, step)
}

// Health 返回实体的当前生命值和生命百分比
func (w *World) Health(id ecs.EntityID) (current, percent float64, ok bool) {
	health, found := ecs.GetComponent[*components.HealthComponent](w.entityManager, id)
	if !found {
		return 0, 0, false
	}
	return health.CurrentHealth, health.HealthPercent(), true
}

// IsDead 实体是否已死亡（包括已释放的实体）
func (w *World) IsDead(id ecs.EntityID) bool {
	health, ok := ecs.GetComponent[*components.HealthComponent](w.entityManager, id)
	return !ok || health.Dead
}

// Exists 实体是否仍存在（未被销毁计时器释放）
func (w *World) Exists(id ecs.EntityID) bool {
	return w.entityManager.Exists(id)
}

// ProjectilePhase 返回炮弹当前阶段
func (w *World) ProjectilePhase(id ecs.EntityID) components.ProjectilePhase {
	return w.projectiles.Phase(id)
}

// RemainingProjectiles 坦克剩余弹药
func (w *World) RemainingProjectiles() int {
	if w.tank == ecs.InvalidEntity {
		return 0
	}
	return w.launcher.Remaining(w.tank)
}

// Tank 返回坦克实体，关卡未开始时为 ecs.InvalidEntity
func (w *World) Tank() ecs.EntityID {
	return w.tank
}

// GameState 返回关卡状态
func (w *World) GameState() *game.GameState {
	return w.gameState
}

// EntityManager 返回实体管理器（表现层只读遍历使用）
func (w *World) EntityManager() *ecs.EntityManager {
	return w.entityManager
}

// Now 返回模拟时间（秒）
func (w *World) Now() float64 {
	return w.scheduler.Now()
}

// PendingActions 等待中的延迟动作数量
func (w *World) PendingActions() int {
	return w.scheduler.PendingCount()
}

// Close 释放 World 持有的外部注册（指标回调）
// 重复调用安全；Close 之后不应再使用该 World
func (w *World) Close() error {
	return w.metrics.close()
}

func (w *World) flush() {
	w.router.DispatchAll()
}

func (w *World) recordProgress(event events.GameEvent) {
	cleared := event.Type == events.EventLevelCleared
	stars := 0
	if cleared {
		stars = int(event.Value)
	}
	// 每次结果都会改变尝试次数和通关状态，不只是最佳分数
	w.progress.Record(w.gameState.LevelID, int(event.Amount), stars, cleared)
	if err := w.progress.Save(); err != nil {
		log.Error().Str("system", "World").Err(err).Msg("保存关卡成绩失败")
	}
}
