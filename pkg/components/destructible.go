package components

// DestructibleComponent 死亡后的销毁策略
type DestructibleComponent struct {
	DestroyDelay float64 // 死亡后延迟销毁时间（秒），用于播放死亡表现
	// Deferred 为 true 时伤害系统不安排销毁，由其他系统（如爆炸方块）负责
	Deferred bool
	// DestroyTimer 当前的销毁计时器
	DestroyTimer TimerHandle
}
