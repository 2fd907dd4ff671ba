package systems

import (
	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/config"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/entities"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/game"
	"github.com/decker502/robotsiege/pkg/utils"
)

// testRig 测试用的系统组合，与 battle.World 的装配方式一致
// 测试需要自行调用 flush 分发事件
type testRig struct {
	em          *ecs.EntityManager
	scheduler   *Scheduler
	queue       *events.EventQueue
	router      *events.EventRouter
	gameState   *game.GameState
	catalog     *config.UnitCatalog
	destruction *DestructionSystem
	damage      *DamageSystem
	explosion   *ExplosionSystem
	projectiles *ProjectileSystem
	launcher    *LauncherSystem
	explosive   *ExplosiveSystem
	robots      *RobotSystem
	level       *LevelSystem

	seen []events.GameEvent
}

// newTestRig 创建测试用的系统组合
func newTestRig() *testRig {
	r := &testRig{
		em:        ecs.NewEntityManager(),
		scheduler: NewScheduler(),
		queue:     events.NewEventQueue(),
		gameState: game.NewGameState(nil),
		catalog:   config.DefaultUnitCatalog(),
	}
	r.router = events.NewEventRouter(r.queue)
	r.destruction = NewDestructionSystem(r.em, r.scheduler, r.queue)
	r.damage = NewDamageSystem(r.em, r.destruction, r.queue)
	r.explosion = NewExplosionSystem(r.em, r.damage, r.destruction, nil, r.queue, 3)
	r.projectiles = NewProjectileSystem(r.em, r.scheduler, r.explosion, r.destruction, r.queue, 0.5)
	r.launcher = NewLauncherSystem(r.em, r.catalog, r.projectiles, r.queue, 9.81)
	r.explosive = NewExplosiveSystem(r.em, r.scheduler, r.explosion, r.destruction)
	r.robots = NewRobotSystem(r.em, r.scheduler, r.damage)
	r.level = NewLevelSystem(r.em, r.scheduler, r.queue, r.gameState, r.launcher, 2, 1)

	r.router.Register(r.launcher)
	r.router.Register(r.robots)
	r.router.Register(r.explosive)
	r.router.Register(r.level)
	r.router.Register(NewScoreSystem(r.queue, r.gameState))
	r.router.Register(events.HandlerFunc{
		Types: []events.EventType{
			events.EventHealthChanged,
			events.EventDamageApplied,
			events.EventDestroyed,
			events.EventEntityReleased,
			events.EventExplosion,
			events.EventProjectileLaunched,
			events.EventProjectileFinished,
			events.EventLevelCleared,
			events.EventLevelFailed,
		},
		Fn: func(e events.GameEvent) { r.seen = append(r.seen, e) },
	})
	return r
}

// flush 分发队列中的事件
func (r *testRig) flush() {
	r.router.DispatchAll()
}

// advance 推进调度器并分发事件
func (r *testRig) advance(dt float64) {
	r.scheduler.Advance(dt)
	r.flush()
	r.em.RemoveMarkedEntities()
}

// count 统计已分发的某类事件数量
func (r *testRig) count(t events.EventType) int {
	n := 0
	for _, e := range r.seen {
		if e.Type == t {
			n++
		}
	}
	return n
}

// health 返回实体当前生命值，无生命值组件时返回 -1
func (r *testRig) health(id ecs.EntityID) float64 {
	h, ok := ecs.GetComponent[*components.HealthComponent](r.em, id)
	if !ok {
		return -1
	}
	return h.CurrentHealth
}

// mustRobot 创建机器人，失败时 panic
func (r *testRig) mustRobot(robotType string, pos utils.Vec2) ecs.EntityID {
	id, err := entities.NewRobot(r.em, r.catalog, robotType, pos)
	if err != nil {
		panic(err)
	}
	return id
}

// mustBlock 创建方块，失败时 panic
func (r *testRig) mustBlock(blockType string, pos utils.Vec2) ecs.EntityID {
	id, err := entities.NewBlock(r.em, r.catalog, blockType, pos)
	if err != nil {
		panic(err)
	}
	return id
}

// mustProjectile 创建 Idle 炮弹，失败时 panic
func (r *testRig) mustProjectile(projectileType string, pos utils.Vec2) ecs.EntityID {
	id, err := entities.NewProjectile(r.em, r.catalog, projectileType, pos)
	if err != nil {
		panic(err)
	}
	return id
}

// startLevel 生成坦克并开始关卡
func (r *testRig) startLevel(magazine []string, robots int) ecs.EntityID {
	tuning, err := config.DefaultTuning()
	if err != nil {
		panic(err)
	}
	tank := entities.NewTank(r.em, utils.Vec2{}, magazine, tuning)
	r.level.Start(tank, "test", "", robots)
	r.flush()
	return tank
}
