// Package events 提供模拟核心的事件队列与分发器
//
// 伤害、引爆等结算过程中产生的通知先写入队列，结算结束后统一分发，
// 处理器在分发期间产生的新事件会在同一次 DispatchAll 中继续处理。
package events

import (
	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/utils"
)

// EventType 事件类型
type EventType int

const (
	EventHealthChanged      EventType = iota // 受到非致命伤害，Value = 新生命百分比
	EventDamageApplied                       // 任意生效的伤害（含致命），Amount = 伤害值
	EventDestroyed                           // 实体死亡（每个实体一次）
	EventEntityReleased                      // 实体被销毁计时器释放
	EventExplosion                           // 一次引爆结算完成，Value = 半径，Amount = 受影响数量
	EventProjectileLaunched                  // 炮弹发射
	EventProjectileFinished                  // 炮弹引爆完成（关卡推进/下一发）
	EventLevelStarted                        // 关卡开始
	EventLevelCleared                        // 胜利
	EventLevelFailed                         // 失败
	EventScoreChanged                        // 分数变化，Amount = 当前分数
)

// String 返回事件类型名称
func (t EventType) String() string {
	switch t {
	case EventHealthChanged:
		return "health_changed"
	case EventDamageApplied:
		return "damage_applied"
	case EventDestroyed:
		return "destroyed"
	case EventEntityReleased:
		return "entity_released"
	case EventExplosion:
		return "explosion"
	case EventProjectileLaunched:
		return "projectile_launched"
	case EventProjectileFinished:
		return "projectile_finished"
	case EventLevelStarted:
		return "level_started"
	case EventLevelCleared:
		return "level_cleared"
	case EventLevelFailed:
		return "level_failed"
	case EventScoreChanged:
		return "score_changed"
	default:
		return "unknown"
	}
}

// GameEvent 模拟事件
type GameEvent struct {
	Type     EventType
	Entity   ecs.EntityID
	Kind     components.EntityKind // Entity 的种类（事件产生时记录，实体释放后仍可用）
	Source   ecs.EntityID
	Value    float64
	Amount   float64
	Position utils.Vec2
}
