package components

// CollisionComponent 定义实体的碰撞检测边界框
// 用于参考物理系统检测实体之间的接触（如炮弹与方块）
type CollisionComponent struct {
	Width   float64 // 碰撞盒宽度（米）
	Height  float64 // 碰撞盒高度（米）
	OffsetX float64 // 碰撞盒相对于实体位置的X偏移量（米），正值向右偏移
	OffsetY float64 // 碰撞盒相对于实体位置的Y偏移量（米），正值向上偏移
}

// Bounds 返回碰撞盒在世界坐标中的边界（中心对齐实体位置加偏移）
func (c *CollisionComponent) Bounds(x, y float64) (left, bottom, right, top float64) {
	cx := x + c.OffsetX
	cy := y + c.OffsetY
	return cx - c.Width/2, cy - c.Height/2, cx + c.Width/2, cy + c.Height/2
}
