package utils

// PointerSample 单帧指针采样（屏幕坐标，Y 向下）
type PointerSample struct {
	Pressed bool
	X, Y    int
}

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放），只持续一帧
	DragStateEnded
)

// DragTracker 跟踪一次"按下-拖动-松开"的瞄准手势
// 与输入源无关，每帧喂入一个 PointerSample
type DragTracker struct {
	state          DragState
	startX, startY int
	curX, curY     int
}

// Feed 推进一帧并返回新的拖拽状态
func (d *DragTracker) Feed(s PointerSample) DragState {
	switch d.state {
	case DragStateNone, DragStateEnded:
		d.state = DragStateNone
		if s.Pressed {
			d.state = DragStateStarted
			d.startX, d.startY = s.X, s.Y
			d.curX, d.curY = s.X, s.Y
		}
	case DragStateStarted, DragStateDragging:
		d.curX, d.curY = s.X, s.Y
		if s.Pressed {
			d.state = DragStateDragging
		} else {
			d.state = DragStateEnded
		}
	}
	return d.state
}

// State 当前拖拽状态
func (d *DragTracker) State() DragState {
	return d.state
}

// Active 是否处于按下状态（开始或拖拽中）
func (d *DragTracker) Active() bool {
	return d.state == DragStateStarted || d.state == DragStateDragging
}

// JustEnded 是否本帧刚松开
func (d *DragTracker) JustEnded() bool {
	return d.state == DragStateEnded
}

// Reset 放弃当前手势
func (d *DragTracker) Reset() {
	*d = DragTracker{}
}

// Offset 从起点到当前位置的屏幕位移
func (d *DragTracker) Offset() (dx, dy int) {
	return d.curX - d.startX, d.curY - d.startY
}

// Aim 把拖拽换算成发射方向和力度比例
// 弹弓式操作：向后拉，向相反方向发射；屏幕 Y 向下，世界 Y 向上。
// maxPull 为力度达到 1 所需的拖拽像素数
func (d *DragTracker) Aim(maxPull float64) (direction Vec2, power float64) {
	dx, dy := d.Offset()
	pull := V(float64(-dx), float64(dy))
	if maxPull <= 0 {
		return pull.Normalized(), 0
	}
	return pull.Normalized(), Clamp01(pull.Len() / maxPull)
}
