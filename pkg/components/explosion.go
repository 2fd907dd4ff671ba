package components

import (
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/utils"
)

// ExplosionTemplate 爆炸参数模板（不含爆炸中心）
type ExplosionTemplate struct {
	Radius     float64   `yaml:"radius"`     // 爆炸半径，必须 > 0
	MaxDamage  float64   `yaml:"maxDamage"`  // 中心最大伤害
	MaxImpulse float64   `yaml:"maxImpulse"` // 中心最大冲量
	Filter     LayerMask `yaml:"-"`          // 受影响的层，0 表示全部
}

// At 以给定爆炸中心和来源实体生成一次性爆炸规格
func (t ExplosionTemplate) At(origin utils.Vec2, source ecs.EntityID) ExplosionSpec {
	return ExplosionSpec{
		Origin:     origin,
		Radius:     t.Radius,
		MaxDamage:  t.MaxDamage,
		MaxImpulse: t.MaxImpulse,
		Filter:     t.Filter,
		Source:     source,
	}
}

// ExplosionSpec 一次引爆的完整规格，只用于一次结算
type ExplosionSpec struct {
	Origin     utils.Vec2
	Radius     float64
	MaxDamage  float64
	MaxImpulse float64
	Filter     LayerMask
	Source     ecs.EntityID // 引爆来源，结算时排除
}

// Falloff 线性衰减：clamp01(1 - distance/radius)
func (s ExplosionSpec) Falloff(distance float64) float64 {
	if s.Radius <= 0 {
		return 0
	}
	return utils.Clamp01(1 - distance/s.Radius)
}

// ExplosionMarkerComponent 爆炸标记实体（供表现层绘制爆炸效果）
type ExplosionMarkerComponent struct {
	Radius float64
	Source ecs.EntityID
}

// ExplosiveComponent 爆炸方块
// 死亡后冻结、闪烁 PreExplosionTime 秒后引爆，再等待 ExplosionDuration 秒后销毁
type ExplosiveComponent struct {
	Explosion         ExplosionTemplate
	PreExplosionTime  float64
	ExplosionDuration float64
	Exploding         bool        // 引爆序列是否已开始
	Detonated         bool        // 是否已完成引爆结算
	FuseTimer         TimerHandle // 引信计时器
}
