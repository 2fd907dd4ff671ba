// verify_chain_reaction 无界面验证程序
//
// 从磁盘加载关卡，用参考物理按固定角度和力度连续发射，
// 记录每发炮弹造成的伤害、摧毁和连锁爆炸，最后输出关卡结果。
//
// 用法：
//
//	go run ./cmd/verify_chain_reaction -level data/levels/level-1-3.yaml -angle 35 -power 0.8
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/internal/logging"
	"github.com/decker502/robotsiege/internal/telemetry"
	"github.com/decker502/robotsiege/pkg/battle"
	"github.com/decker502/robotsiege/pkg/config"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/game"
	"github.com/decker502/robotsiege/pkg/utils"
)

const tickSeconds = 1.0 / 60.0

var (
	levelPath  = flag.String("level", "data/levels/level-1-3.yaml", "关卡文件路径")
	tuningPath = flag.String("tuning", "data/tuning.yaml", "调参文件路径")
	unitsPath  = flag.String("units", "data/units.yaml", "单位目录路径（可选）")
	angle      = flag.Float64("angle", 35, "发射仰角（度）")
	power      = flag.Float64("power", 0.8, "力度比例 0~1")
	maxSeconds = flag.Float64("max-seconds", 60, "模拟时长上限（秒）")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	metrics    = flag.Bool("metrics", false, "结束时把指标输出到标准输出")
)

// tally 一次验证的统计
type tally struct {
	shots     int
	finished  int
	hits      int
	destroyed int
	cleared   bool
	failed    bool
	score     int
	stars     int
}

func loadInputs() (*config.Tuning, *config.UnitCatalog, *config.LevelConfig, error) {
	tuning, err := config.LoadTuning(*tuningPath)
	if err != nil {
		return nil, nil, nil, err
	}
	catalog := config.DefaultUnitCatalog()
	if _, err := os.Stat(*unitsPath); err == nil {
		if catalog, err = config.LoadUnitCatalog(*unitsPath); err != nil {
			return nil, nil, nil, err
		}
	}
	level, err := config.LoadLevelConfig(*levelPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return tuning, catalog, level, nil
}

func run() error {
	flag.Parse()

	lvl := "info"
	if *verbose {
		lvl = "debug"
	}
	if _, err := logging.Setup(logging.Options{Level: lvl, Console: os.Stdout}); err != nil {
		return err
	}

	tuning, catalog, level, err := loadInputs()
	if err != nil {
		return err
	}

	tp, err := telemetry.New(telemetry.Config{
		Enabled:     *metrics,
		ServiceName: "verify_chain_reaction",
		Writer:      os.Stdout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn().Str("system", "Verify").Err(err).Msg("指标导出失败")
		}
	}()

	var t tally
	world, err := battle.NewWorld(battle.Options{
		Tuning:        tuning,
		Catalog:       catalog,
		Progress:      game.NewProgressManager(nil),
		MeterProvider: tp.MeterProvider(),
		Physics:       true,
		Listener: battle.ListenerFuncs{
			HealthChanged: func(entity ecs.EntityID, percent float64) {
				t.hits++
				log.Debug().Str("system", "Verify").Uint64("entity", uint64(entity)).Float64("percent", percent).Msg("受到伤害")
			},
			Destroyed: func(entity ecs.EntityID) {
				t.destroyed++
				log.Info().Str("system", "Verify").Uint64("entity", uint64(entity)).Msg("实体被摧毁")
			},
			ProjectileFinished: func(projectile ecs.EntityID) {
				t.finished++
				log.Debug().Str("system", "Verify").Uint64("projectile", uint64(projectile)).Msg("炮弹结束")
			},
			LevelCleared: func(score, stars int) {
				t.cleared, t.score, t.stars = true, score, stars
			},
			LevelFailed: func() {
				t.failed = true
			},
		},
	})
	if err != nil {
		return err
	}
	defer world.Close()

	if err := world.StartLevel(level); err != nil {
		return err
	}

	rad := *angle * math.Pi / 180
	direction := utils.V(math.Cos(rad), math.Sin(rad))
	force := utils.Clamp01(*power) * tuning.MaxLaunchForce

	log.Info().Str("system", "Verify").Str("level", level.ID).
		Int("projectiles", world.RemainingProjectiles()).
		Float64("angle", *angle).Float64("force", force).Msg("开始验证")

	for world.Now() < *maxSeconds && !t.cleared && !t.failed {
		if t.finished == t.shots && world.RemainingProjectiles() > 0 {
			id, err := world.LaunchProjectile(direction, force)
			if err != nil {
				log.Warn().Str("system", "Verify").Err(err).Msg("发射失败")
			} else {
				t.shots++
				log.Info().Str("system", "Verify").Int("shot", t.shots).Uint64("projectile", uint64(id)).Msg("发射")
			}
		}
		world.Advance(tickSeconds)
	}

	gs := world.GameState()
	log.Info().Str("system", "Verify").
		Str("phase", gs.Phase.String()).
		Int("shots", t.shots).
		Int("hits", t.hits).
		Int("destroyed", t.destroyed).
		Int("robotsDestroyed", gs.RobotsDestroyed).
		Int("robotsTotal", gs.RobotsTotal).
		Int("score", t.score).
		Int("stars", t.stars).
		Float64("seconds", world.Now()).
		Msg("验证结束")

	if !t.cleared && !t.failed {
		return fmt.Errorf("level %s did not finish within %.0fs", level.ID, *maxSeconds)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("验证失败")
	}
}
