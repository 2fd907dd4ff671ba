package components

// TimerHandle 延迟动作句柄（由调度器分配，0 表示无效句柄）
type TimerHandle uint64

// NoTimer 无效句柄
const NoTimer TimerHandle = 0

// Valid 句柄是否有效（不代表动作仍在等待）
func (h TimerHandle) Valid() bool {
	return h != NoTimer
}
