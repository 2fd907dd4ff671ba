package components

import (
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/utils"
)

// ImpactEvent 单次碰撞事件
// 由宿主物理引擎（或参考物理系统）构造，伤害系统立即消费，不持久化
type ImpactEvent struct {
	Source           ecs.EntityID // 撞击者（可选，0 表示未知/地形）
	Target           ecs.EntityID // 受击者
	Point            utils.Vec2   // 接触点
	Normal           utils.Vec2   // 接触法线
	RelativeVelocity utils.Vec2   // 撞击者相对受击者的速度
	SourceMass       float64      // 撞击者质量，未知时为 0
}

// Magnitude 撞击强度（相对速度大小）
func (e ImpactEvent) Magnitude() float64 {
	return e.RelativeVelocity.Len()
}

// DamageRule 碰撞伤害规则
type DamageRule struct {
	// 速度规则：magnitude > MinImpactSpeed 时伤害 = magnitude × Multiplier
	Multiplier     float64 `yaml:"multiplier"`
	MinImpactSpeed float64 `yaml:"minImpactSpeed"`
	MassScaled     bool    `yaml:"massScaled"`    // 为 true 时再乘以撞击者质量
	MinSourceMass  float64 `yaml:"minSourceMass"` // MassScaled 时撞击者质量需超过此值
	MinDamage      float64 `yaml:"minDamage"`     // 计算结果不超过此值时忽略

	// 炮弹规则：撞击者是炮弹且 ProjectileMultiplier > 0 时，伤害 = magnitude × ProjectileMultiplier
	ProjectileMultiplier float64 `yaml:"projectileMultiplier"`

	// 坠落规则：相对速度 Y 分量 < -MinFallVelocity 时生效（MinFallVelocity <= 0 表示禁用）
	MinFallVelocity      float64 `yaml:"minFallVelocity"`
	FallDamageMultiplier float64 `yaml:"fallDamageMultiplier"`
	InstantKillOnFall    bool    `yaml:"instantKillOnFall"`
}

// ImpactDamageComponent 声明实体如何承受碰撞伤害
type ImpactDamageComponent struct {
	Rule DamageRule
}
