package game

// LevelPhase 关卡阶段
type LevelPhase int

const (
	PhaseNotStarted LevelPhase = iota // 未开始
	PhasePlaying                      // 进行中
	PhaseCleared                      // 胜利
	PhaseFailed                       // 失败
)

// String 返回阶段名称
func (p LevelPhase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseCleared:
		return "cleared"
	case PhaseFailed:
		return "failed"
	default:
		return "not_started"
	}
}

// GameState 存储一局游戏的状态
// 由 battle.World 创建并注入到需要它的系统中，不使用全局单例
type GameState struct {
	LevelID         string
	NextLevelID     string
	Phase           LevelPhase
	RobotsTotal     int
	RobotsDestroyed int

	Score *ScoreBoard
}

// NewGameState 创建游戏状态
func NewGameState(score *ScoreBoard) *GameState {
	if score == nil {
		score = NewScoreBoard(DefaultScoreRules())
	}
	return &GameState{Score: score}
}

// StartLevel 重置状态并进入 Playing 阶段
func (gs *GameState) StartLevel(levelID, nextLevelID string, robots int) {
	gs.LevelID = levelID
	gs.NextLevelID = nextLevelID
	gs.Phase = PhasePlaying
	gs.RobotsTotal = robots
	gs.RobotsDestroyed = 0
	gs.Score.Reset()
}

// RobotDestroyed 记录一个机器人被摧毁，返回剩余数量
func (gs *GameState) RobotDestroyed() int {
	if gs.RobotsDestroyed < gs.RobotsTotal {
		gs.RobotsDestroyed++
	}
	return gs.RobotsRemaining()
}

// RobotsRemaining 剩余机器人数量
func (gs *GameState) RobotsRemaining() int {
	return gs.RobotsTotal - gs.RobotsDestroyed
}

// IsPlaying 关卡是否进行中
func (gs *GameState) IsPlaying() bool {
	return gs.Phase == PhasePlaying
}

// Finish 结束关卡；只有第一次调用生效
func (gs *GameState) Finish(result LevelPhase) bool {
	if gs.Phase != PhasePlaying {
		return false
	}
	if result != PhaseCleared && result != PhaseFailed {
		return false
	}
	gs.Phase = result
	return true
}
