package components

// RobotVariant 机器人变体
type RobotVariant int

const (
	RobotBasic  RobotVariant = iota // 普通机器人
	RobotFlying                     // 悬浮机器人
	RobotBoss                       // 首领机器人
)

// RobotComponent 机器人数据
type RobotComponent struct {
	Type    string // 机器人类型ID，如 "basic"
	Variant RobotVariant
}

// FlyingRobotComponent 悬浮机器人
// 生命降到 FallThreshold 以下开始坠落，坠落中接触地面立即死亡
type FlyingRobotComponent struct {
	FallThreshold float64 // 开始坠落的生命百分比
	FallGravity   float64 // 坠落时的重力系数
	Falling       bool
	Crashed       bool // 是否已坠地（保证坠地致死只发生一次）
}

// BossComponent 首领机器人
// 正面装甲免疫炮弹，背面受击造成额外伤害并眩晕
type BossComponent struct {
	FacingRight        bool    // 朝向，背面在朝向的反方向
	FlipInterval       float64 // 自动转身间隔（秒）
	BackDetectionAngle float64 // 受击方向与朝向夹角大于该值视为背面（度）
	BackHitDamage      float64 // 背面受击伤害
	StunDuration       float64 // 眩晕时间（秒）
	Stunned            bool
	FlipTimer          TimerHandle
	StunTimer          TimerHandle
}
