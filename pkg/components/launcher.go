package components

import "github.com/decker502/robotsiege/pkg/ecs"

// LauncherComponent 坦克发射器
type LauncherComponent struct {
	Magazine          []string     // 弹匣：按发射顺序排列的炮弹类型ID
	NextIndex         int          // 下一发炮弹在弹匣中的索引
	CanShoot          bool         // 当前是否允许发射
	CurrentProjectile ecs.EntityID // 飞行中的炮弹
	MaxLaunchForce    float64      // 最大发射力度
	SpawnOffset       float64      // 炮弹沿发射方向的生成偏移
}

// Remaining 剩余炮弹数量
func (l *LauncherComponent) Remaining() int {
	if l.NextIndex >= len(l.Magazine) {
		return 0
	}
	return len(l.Magazine) - l.NextIndex
}

// OutOfAmmo 是否已无炮弹
func (l *LauncherComponent) OutOfAmmo() bool {
	return l.Remaining() == 0
}
