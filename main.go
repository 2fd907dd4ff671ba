package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/internal/logging"
	"github.com/decker502/robotsiege/internal/telemetry"
	"github.com/decker502/robotsiege/pkg/battle"
	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/config"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/embedded"
	"github.com/decker502/robotsiege/pkg/game"
	"github.com/decker502/robotsiege/pkg/utils"
)

const (
	screenWidth  = 800
	screenHeight = 600

	appName        = "robotsiege"
	pixelsPerMeter = 30.0
	maxPullPixels  = 200.0
	minLaunchPower = 0.05
	tickSeconds    = 1.0 / 60.0
)

var (
	levelFlag    = flag.String("level", "1-1", "起始关卡ID")
	logLevelFlag = flag.String("log-level", "", "日志级别（覆盖 tuning.yaml）")
	logFileFlag  = flag.String("log-file", "", "额外写入的日志文件")
	noSaveFlag   = flag.Bool("no-save", false, "不读写本地进度")
	metricsFlag  = flag.String("metrics-file", "", "指标导出文件（为空时不导出）")
)

var (
	colorSky        = color.RGBA{R: 200, G: 225, B: 245, A: 255}
	colorGround     = color.RGBA{R: 110, G: 90, B: 60, A: 255}
	colorTank       = color.RGBA{R: 60, G: 110, B: 60, A: 255}
	colorRobot      = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	colorBlock      = color.RGBA{R: 170, G: 120, B: 70, A: 255}
	colorExplosive  = color.RGBA{R: 200, G: 40, B: 30, A: 255}
	colorProjectile = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	colorBlast      = color.RGBA{R: 255, G: 160, B: 0, A: 255}
	colorHealthBar  = color.RGBA{R: 40, G: 200, B: 40, A: 255}
	colorAim        = color.RGBA{R: 80, G: 80, B: 80, A: 255}
)

// Game 沙盒：拖拽瞄准、发射、观察伤害与爆炸结算
type Game struct {
	tuning    *config.Tuning
	catalog   *config.UnitCatalog
	progress  *game.ProgressManager
	telemetry *telemetry.Provider

	level  *config.LevelConfig
	world  *battle.World
	drag   utils.DragTracker
	camera utils.Vec2
	status string
}

// NewGame 创建沙盒并加载起始关卡
func NewGame(tuning *config.Tuning, catalog *config.UnitCatalog, progress *game.ProgressManager, tp *telemetry.Provider, levelID string) (*Game, error) {
	g := &Game{tuning: tuning, catalog: catalog, progress: progress, telemetry: tp}
	if err := g.loadLevel(levelID); err != nil {
		return nil, err
	}
	return g, nil
}

// loadLevel 每个关卡使用新的 World
func (g *Game) loadLevel(levelID string) error {
	level, err := embedded.LoadLevel(levelID)
	if err != nil {
		return err
	}

	world, err := battle.NewWorld(battle.Options{
		Tuning:        g.tuning,
		Catalog:       g.catalog,
		Progress:      g.progress,
		MeterProvider: g.telemetry.MeterProvider(),
		Physics:       true,
		Listener: battle.ListenerFuncs{
			Destroyed: func(entity ecs.EntityID) {
				log.Debug().Str("system", "Sandbox").Uint64("entity", uint64(entity)).Msg("实体被摧毁")
			},
			LevelCleared: func(score, stars int) {
				g.status = fmt.Sprintf("胜利！得分 %d，%d 星  [N] 下一关  [R] 重玩", score, stars)
			},
			LevelFailed: func() {
				g.status = "失败  [R] 重玩"
			},
		},
	})
	if err != nil {
		return err
	}
	if err := world.StartLevel(level); err != nil {
		world.Close()
		return err
	}

	g.closeWorld()
	g.level = level
	g.world = world
	g.camera = level.CameraStart
	g.drag.Reset()
	g.status = ""
	log.Info().Str("system", "Sandbox").Str("level", level.ID).Str("name", level.Name).Msg("关卡已加载")
	return nil
}

// closeWorld 替换前注销旧 World 的指标回调
func (g *Game) closeWorld() {
	if g.world == nil {
		return
	}
	if err := g.world.Close(); err != nil {
		log.Warn().Str("system", "Sandbox").Err(err).Msg("关闭 World 失败")
	}
	g.world = nil
}

// Update 每帧推进一次模拟
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.loadLevel(g.level.ID); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && g.world.GameState().Phase == game.PhaseCleared && g.level.NextLevel != "" {
		if err := g.loadLevel(g.level.NextLevel); err != nil {
			log.Warn().Str("system", "Sandbox").Err(err).Msg("无法加载下一关")
		}
	}

	g.drag.Feed(readPointer())
	if g.drag.JustEnded() {
		g.fire()
	}

	g.world.Advance(tickSeconds)
	return nil
}

// fire 按松开时的拖拽发射
func (g *Game) fire() {
	direction, power := g.drag.Aim(maxPullPixels)
	if power < minLaunchPower {
		return
	}
	id, err := g.world.LaunchProjectile(direction, power*g.tuning.MaxLaunchForce)
	if err != nil {
		log.Info().Str("system", "Sandbox").Err(err).Msg("无法发射")
		return
	}
	log.Debug().Str("system", "Sandbox").Uint64("projectile", uint64(id)).Float64("power", power).Msg("发射")
}

// toScreen 世界坐标（米，Y 向上）转屏幕坐标（像素，Y 向下）
func (g *Game) toScreen(p utils.Vec2) (float32, float32) {
	x := (p.X-g.camera.X)*pixelsPerMeter + screenWidth/2
	y := screenHeight/2 - (p.Y-g.camera.Y)*pixelsPerMeter
	return float32(x), float32(y)
}

// Draw 用矢量图形绘制所有实体
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorSky)
	em := g.world.EntityManager()

	for _, id := range ecs.GetEntitiesWith2[*components.KindComponent, *components.PositionComponent](em) {
		kind, _ := ecs.GetComponent[*components.KindComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		center := utils.V(pos.X, pos.Y)

		switch kind.Kind {
		case components.KindExplosion:
			marker, ok := ecs.GetComponent[*components.ExplosionMarkerComponent](em, id)
			if ok {
				x, y := g.toScreen(center)
				vector.StrokeCircle(screen, x, y, float32(marker.Radius*pixelsPerMeter), 2, colorBlast, true)
			}
		case components.KindProjectile:
			x, y := g.toScreen(center)
			radius := float32(0.15 * pixelsPerMeter)
			if box, ok := ecs.GetComponent[*components.CollisionComponent](em, id); ok {
				radius = float32(box.Width / 2 * pixelsPerMeter)
			}
			vector.DrawFilledCircle(screen, x, y, radius, colorProjectile, true)
		default:
			g.drawBox(screen, id, kind.Kind, center)
		}
	}

	g.drawAim(screen)
	g.drawHUD(screen)
}

// drawBox 绘制矩形实体和血条
func (g *Game) drawBox(screen *ebiten.Image, id ecs.EntityID, kind components.EntityKind, center utils.Vec2) {
	em := g.world.EntityManager()
	box, ok := ecs.GetComponent[*components.CollisionComponent](em, id)
	if !ok {
		return
	}

	fill := colorBlock
	switch kind {
	case components.KindGround:
		fill = colorGround
	case components.KindTank:
		fill = colorTank
	case components.KindRobot:
		fill = colorRobot
	case components.KindBlock:
		if ecs.HasComponent[*components.ExplosiveComponent](em, id) {
			fill = colorExplosive
		}
	}

	topLeft := utils.V(center.X+box.OffsetX-box.Width/2, center.Y+box.OffsetY+box.Height/2)
	x, y := g.toScreen(topLeft)
	w := float32(box.Width * pixelsPerMeter)
	h := float32(box.Height * pixelsPerMeter)
	vector.DrawFilledRect(screen, x, y, w, h, fill, false)
	vector.StrokeRect(screen, x, y, w, h, 1, color.Black, false)

	if _, percent, ok := g.world.Health(id); ok && kind != components.KindGround {
		vector.DrawFilledRect(screen, x, y-6, w*float32(percent), 3, colorHealthBar, false)
	}
}

// drawAim 拖拽时绘制预测弹道
func (g *Game) drawAim(screen *ebiten.Image) {
	if !g.drag.Active() {
		return
	}
	direction, power := g.drag.Aim(maxPullPixels)
	if power < minLaunchPower {
		return
	}
	points := g.world.PredictTrajectory(direction, power*g.tuning.MaxLaunchForce, 30, 0.1)
	for i := 1; i < len(points); i++ {
		x0, y0 := g.toScreen(points[i-1])
		x1, y1 := g.toScreen(points[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorAim, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	gs := g.world.GameState()
	hud := fmt.Sprintf("关卡 %s  机器人 %d/%d  弹药 %d  得分 %d",
		g.level.ID, gs.RobotsDestroyed, gs.RobotsTotal, g.world.RemainingProjectiles(), gs.Score.Score())
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 10, 30)
	}
}

// 保存最后一次触摸位置，触摸释放那一帧已经读不到坐标
var lastTouchX, lastTouchY int

// readPointer 读取当前帧的指针状态
// 优先使用触摸输入，没有触摸时使用鼠标左键
func readPointer() utils.PointerSample {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		lastTouchX, lastTouchY = ebiten.TouchPosition(touchIDs[0])
		return utils.PointerSample{Pressed: true, X: lastTouchX, Y: lastTouchY}
	}
	if len(inpututil.AppendJustReleasedTouchIDs(nil)) > 0 {
		return utils.PointerSample{X: lastTouchX, Y: lastTouchY}
	}

	x, y := ebiten.CursorPosition()
	return utils.PointerSample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
	}
}

// Layout 返回逻辑屏幕尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// openProgress 打开本地进度，失败时降级为仅内存
func openProgress(disabled bool) *game.ProgressManager {
	if disabled {
		return game.NewProgressManager(nil)
	}
	storage, err := game.OpenStorage(appName)
	if err != nil {
		log.Warn().Str("system", "Sandbox").Err(err).Msg("无法打开本地存储，进度不会保存")
		return game.NewProgressManager(nil)
	}
	return game.NewProgressManager(storage)
}

func run() error {
	flag.Parse()
	embedded.Init(dataFS)

	tuning, err := embedded.LoadTuning()
	if err != nil {
		return err
	}

	opts := logging.Options{Level: tuning.LogLevel, Console: os.Stderr}
	if *logLevelFlag != "" {
		opts.Level = *logLevelFlag
	}
	if *logFileFlag != "" {
		file, err := os.Create(*logFileFlag)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		defer file.Close()
		opts.File = file
	}
	if _, err := logging.Setup(opts); err != nil {
		return err
	}

	catalog, err := embedded.LoadUnitCatalog()
	if err != nil {
		return err
	}

	tp, err := openTelemetry(*metricsFlag)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn().Str("system", "Sandbox").Err(err).Msg("指标导出失败")
		}
	}()

	g, err := NewGame(tuning, catalog, openProgress(*noSaveFlag), tp, *levelFlag)
	if err != nil {
		return err
	}
	defer g.closeWorld()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Robot Siege")
	return ebiten.RunGame(g)
}

// openTelemetry path 为空时返回 no-op provider
// 文件在 Shutdown 后由进程退出关闭
func openTelemetry(path string) (*telemetry.Provider, error) {
	if path == "" {
		return telemetry.New(telemetry.Config{})
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics file: %w", err)
	}
	return telemetry.New(telemetry.Config{
		Enabled:     true,
		ServiceName: appName,
		Writer:      file,
		Interval:    30 * time.Second,
	})
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("沙盒退出")
	}
}
