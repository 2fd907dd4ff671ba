package systems

import (
	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/game"
)

// ScoreSystem 计分
// 机器人死亡和方块受损时加分，关卡结束后不再计分
type ScoreSystem struct {
	queue     *events.EventQueue
	gameState *game.GameState
}

// NewScoreSystem 创建计分系统
func NewScoreSystem(queue *events.EventQueue, gs *game.GameState) *ScoreSystem {
	return &ScoreSystem{queue: queue, gameState: gs}
}

// HandleEvent 实现 events.EventHandler
func (s *ScoreSystem) HandleEvent(event events.GameEvent) {
	if !s.gameState.IsPlaying() {
		return
	}

	score := s.gameState.Score
	before := score.Score()
	switch {
	case event.Type == events.EventDestroyed && event.Kind == components.KindRobot:
		score.AddRobot()
	case event.Type == events.EventDamageApplied && event.Kind == components.KindBlock:
		score.AddBlockDamage(event.Amount)
	}

	if score.Score() != before {
		s.queue.Push(events.GameEvent{
			Type:   events.EventScoreChanged,
			Entity: event.Entity,
			Kind:   event.Kind,
			Amount: float64(score.Score()),
		})
	}
}

// EventTypes 实现 events.EventHandler
func (s *ScoreSystem) EventTypes() []events.EventType {
	return []events.EventType{events.EventDestroyed, events.EventDamageApplied}
}
