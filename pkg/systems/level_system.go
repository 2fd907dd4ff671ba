package systems

import (
	"github.com/rs/zerolog/log"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/game"
)

// LevelSystem 关卡胜负判定
//
// 胜利：最后一个机器人死亡 victoryDelay 秒后。
// 失败：弹药打空、最后一发炮弹结束且仍有机器人存活时，defeatDelay 秒后；
// 计时器到期时重新检查条件，期间机器人全灭或胜利已在等待则不判负。
// 先到期的结果生效，之后的结果被忽略。
type LevelSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *Scheduler
	queue         *events.EventQueue
	gameState     *game.GameState
	launcher      *LauncherSystem
	tank          ecs.EntityID
	victoryDelay  float64
	defeatDelay   float64
}

// NewLevelSystem 创建关卡系统
func NewLevelSystem(em *ecs.EntityManager, scheduler *Scheduler, queue *events.EventQueue, gs *game.GameState, launcher *LauncherSystem, victoryDelay, defeatDelay float64) *LevelSystem {
	return &LevelSystem{
		entityManager: em,
		scheduler:     scheduler,
		queue:         queue,
		gameState:     gs,
		launcher:      launcher,
		victoryDelay:  victoryDelay,
		defeatDelay:   defeatDelay,
	}
}

// Start 开始关卡
func (s *LevelSystem) Start(tank ecs.EntityID, levelID, nextLevelID string, robots int) {
	s.tank = tank
	s.scheduler.Cancel(s.pending(ActionVictory))
	s.scheduler.Cancel(s.pending(ActionDefeat))
	s.gameState.StartLevel(levelID, nextLevelID, robots)

	s.queue.Push(events.GameEvent{
		Type:   events.EventLevelStarted,
		Entity: tank,
		Kind:   components.KindTank,
		Amount: float64(robots),
	})
	log.Info().Str("system", "Level").Str("level", levelID).Int("robots", robots).Msg("关卡开始")
}

// HandleEvent 实现 events.EventHandler
func (s *LevelSystem) HandleEvent(event events.GameEvent) {
	if !s.gameState.IsPlaying() {
		return
	}
	switch event.Type {
	case events.EventDestroyed:
		if event.Kind != components.KindRobot {
			return
		}
		if s.gameState.RobotDestroyed() == 0 {
			s.scheduler.Schedule(ecs.InvalidEntity, ActionVictory, s.victoryDelay, s.victory)
		}
	case events.EventProjectileFinished:
		if s.launcher.OutOfAmmo(s.tank) && s.gameState.RobotsRemaining() > 0 {
			s.scheduler.Schedule(ecs.InvalidEntity, ActionDefeat, s.defeatDelay, s.defeat)
		}
	}
}

// EventTypes 实现 events.EventHandler
func (s *LevelSystem) EventTypes() []events.EventType {
	return []events.EventType{events.EventDestroyed, events.EventProjectileFinished}
}

func (s *LevelSystem) victory() {
	if !s.gameState.Finish(game.PhaseCleared) {
		return
	}
	s.scheduler.Cancel(s.pending(ActionDefeat))
	s.launcher.Lock(s.tank)

	unused := s.launcher.Remaining(s.tank)
	score := s.gameState.Score.AddUnusedProjectiles(unused)
	s.queue.Push(events.GameEvent{Type: events.EventScoreChanged, Amount: float64(score)})
	s.queue.Push(events.GameEvent{
		Type:   events.EventLevelCleared,
		Entity: s.tank,
		Kind:   components.KindTank,
		Value:  float64(s.gameState.Score.Stars()),
		Amount: float64(score),
	})
	log.Info().Str("system", "Level").Str("level", s.gameState.LevelID).Int("score", score).Int("unused", unused).Msg("关卡胜利")
}

func (s *LevelSystem) defeat() {
	if s.gameState.RobotsRemaining() == 0 {
		return
	}
	if _, ok := s.scheduler.PendingFor(ecs.InvalidEntity, ActionVictory); ok {
		return
	}
	if !s.gameState.Finish(game.PhaseFailed) {
		return
	}
	s.launcher.Lock(s.tank)
	s.queue.Push(events.GameEvent{
		Type:   events.EventLevelFailed,
		Entity: s.tank,
		Kind:   components.KindTank,
		Amount: float64(s.gameState.Score.Score()),
	})
	log.Info().Str("system", "Level").Str("level", s.gameState.LevelID).Int("robotsLeft", s.gameState.RobotsRemaining()).Msg("关卡失败")
}

func (s *LevelSystem) pending(kind ActionKind) components.TimerHandle {
	h, _ := s.scheduler.PendingFor(ecs.InvalidEntity, kind)
	return h
}
