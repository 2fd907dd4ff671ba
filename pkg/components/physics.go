package components

import "github.com/decker502/robotsiege/pkg/utils"

// PositionComponent 实体在世界坐标中的位置（Y轴向上，单位：米）
type PositionComponent struct {
	X float64
	Y float64
}

// Vec 以向量形式返回位置
func (p *PositionComponent) Vec() utils.Vec2 {
	return utils.Vec2{X: p.X, Y: p.Y}
}

// Set 设置位置
func (p *PositionComponent) Set(v utils.Vec2) {
	p.X, p.Y = v.X, v.Y
}

// VelocityComponent 实体的线速度（米/秒）
type VelocityComponent struct {
	VX float64
	VY float64
}

// Vec 以向量形式返回速度
func (v *VelocityComponent) Vec() utils.Vec2 {
	return utils.Vec2{X: v.VX, Y: v.VY}
}

// PhysicsBodyComponent 刚体属性
// 拥有此组件且非 Kinematic 的实体具备"可被推动"能力（爆炸冲量作用对象）
type PhysicsBodyComponent struct {
	Mass         float64 // 质量（kg），必须 > 0
	GravityScale float64 // 重力系数，0 表示不受重力（悬浮机器人）
	Kinematic    bool    // 运动学刚体：不受冲量和重力影响（引爆前冻结的爆炸方块）
	Grounded     bool    // 是否接触地面（参考物理系统维护）
}

// ApplyImpulse 对刚体施加冲量：Δv = J / m
// 运动学刚体或无速度组件时返回 false
func (b *PhysicsBodyComponent) ApplyImpulse(vel *VelocityComponent, impulse utils.Vec2) bool {
	if b == nil || vel == nil || b.Kinematic || b.Mass <= 0 {
		return false
	}
	vel.VX += impulse.X / b.Mass
	vel.VY += impulse.Y / b.Mass
	return true
}
