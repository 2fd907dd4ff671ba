package components

import "math"

// DeathCause 死亡原因
// 用于区分不同的死亡表现方式
type DeathCause int

const (
	// DeathCauseImpact 碰撞伤害致死
	DeathCauseImpact DeathCause = iota
	// DeathCauseExplosion 爆炸伤害致死
	DeathCauseExplosion
	// DeathCauseFall 坠落物砸中或坠地致死
	DeathCauseFall
)

// HealthComponent 存储实体的生命值信息
// 用于机器人、方块等可被破坏的实体；生命值只能通过伤害系统修改
type HealthComponent struct {
	CurrentHealth float64    // 当前生命值，内部允许短暂为负，<=0 视为死亡
	MaxHealth     float64    // 最大生命值，必须 > 0
	Dead          bool       // 是否已死亡（单向转换）
	DeathCause    DeathCause // 死亡原因
}

// HealthResult 单次伤害的结果
type HealthResult struct {
	NewHealthPercent float64 // 伤害后的生命百分比 [0,1]
	Died             bool    // 本次伤害是否导致死亡（每个实体只会为 true 一次）
	Applied          bool    // 伤害是否实际生效
}

// NewHealthComponent 创建满血的生命值组件
func NewHealthComponent(maxHealth float64) *HealthComponent {
	if !(maxHealth > 0) || math.IsInf(maxHealth, 1) {
		maxHealth = 1
	}
	return &HealthComponent{CurrentHealth: maxHealth, MaxHealth: maxHealth}
}

// ApplyDamage 扣除生命值
// 已死亡的实体不再受到伤害，返回 Died=false 且生命值不变；负数和 NaN 伤害按 0 处理
func (h *HealthComponent) ApplyDamage(amount float64) HealthResult {
	if h.Dead {
		return HealthResult{NewHealthPercent: h.HealthPercent()}
	}
	if !(amount > 0) {
		return HealthResult{NewHealthPercent: h.HealthPercent()}
	}

	h.CurrentHealth -= amount
	died := false
	if h.CurrentHealth <= 0 {
		h.Dead = true
		died = true
	}

	return HealthResult{
		NewHealthPercent: h.HealthPercent(),
		Died:             died,
		Applied:          true,
	}
}

// HealthPercent 返回生命百分比，范围 [0,1]
func (h *HealthComponent) HealthPercent() float64 {
	if h.Dead || h.MaxHealth <= 0 || h.CurrentHealth <= 0 {
		return 0
	}
	p := h.CurrentHealth / h.MaxHealth
	if p > 1 {
		return 1
	}
	return p
}

// IsAlive 是否存活
func (h *HealthComponent) IsAlive() bool {
	return !h.Dead
}
