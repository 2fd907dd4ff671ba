package game

import "math"

// ScoreRules 计分规则
type ScoreRules struct {
	PointsPerRobot           int
	PointsPerBlockDamage     int
	BonusPerUnusedProjectile int
	StarThresholds           []int // 升序
}

// DefaultScoreRules 返回默认计分规则
func DefaultScoreRules() ScoreRules {
	return ScoreRules{
		PointsPerRobot:           5000,
		PointsPerBlockDamage:     100,
		BonusPerUnusedProjectile: 10000,
		StarThresholds:           []int{30000, 60000, 90000},
	}
}

// ScoreBoard 当前关卡的分数
type ScoreBoard struct {
	rules           ScoreRules
	score           int
	robotsDestroyed int
}

// NewScoreBoard 创建计分板
func NewScoreBoard(rules ScoreRules) *ScoreBoard {
	return &ScoreBoard{rules: rules}
}

// Reset 清零
func (sb *ScoreBoard) Reset() {
	sb.score = 0
	sb.robotsDestroyed = 0
}

// AddRobot 摧毁一个机器人
func (sb *ScoreBoard) AddRobot() int {
	sb.score += sb.rules.PointsPerRobot
	sb.robotsDestroyed++
	return sb.score
}

// AddBlockDamage 方块受到伤害，分数 = round(damage × PointsPerBlockDamage)
func (sb *ScoreBoard) AddBlockDamage(damage float64) int {
	if damage > 0 {
		sb.score += int(math.Round(damage * float64(sb.rules.PointsPerBlockDamage)))
	}
	return sb.score
}

// AddUnusedProjectiles 胜利时每发剩余炮弹的奖励
func (sb *ScoreBoard) AddUnusedProjectiles(count int) int {
	if count > 0 {
		sb.score += count * sb.rules.BonusPerUnusedProjectile
	}
	return sb.score
}

// Score 当前分数
func (sb *ScoreBoard) Score() int {
	return sb.score
}

// RobotsDestroyed 已摧毁的机器人数量
func (sb *ScoreBoard) RobotsDestroyed() int {
	return sb.robotsDestroyed
}

// Stars 根据分数返回星级（0-3）
func (sb *ScoreBoard) Stars() int {
	for i := len(sb.rules.StarThresholds) - 1; i >= 0; i-- {
		if sb.score >= sb.rules.StarThresholds[i] {
			return i + 1
		}
	}
	return 0
}
