package components

// ProjectilePhase 炮弹生命周期阶段
type ProjectilePhase int

const (
	ProjectileIdle       ProjectilePhase = iota // 已生成，未发射
	ProjectileFlying                            // 飞行中
	ProjectileDetonating                        // 已引爆，等待爆炸表现结束
	ProjectileDestroyed                         // 已释放（终态）
)

// String 返回阶段名称
func (p ProjectilePhase) String() string {
	switch p {
	case ProjectileIdle:
		return "idle"
	case ProjectileFlying:
		return "flying"
	case ProjectileDetonating:
		return "detonating"
	case ProjectileDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// DetonationTrigger 引爆触发原因
type DetonationTrigger int

const (
	TriggerCollision DetonationTrigger = iota // 碰撞引爆
	TriggerTimeout                            // 兜底计时器到期
	TriggerOffscreen                          // 飞出画面后的短延迟到期
)

// String 返回触发原因名称
func (t DetonationTrigger) String() string {
	switch t {
	case TriggerCollision:
		return "collision"
	case TriggerTimeout:
		return "timeout"
	case TriggerOffscreen:
		return "offscreen"
	default:
		return "unknown"
	}
}

// ProjectileComponent 炮弹状态机数据
type ProjectileComponent struct {
	Type             string            // 炮弹类型ID，如 "shell"
	Phase            ProjectilePhase   // 当前阶段
	Detonated        bool              // 引爆保护标志，保证最多引爆一次
	Explosion        ExplosionTemplate // 爆炸模板（炮弹独占）
	ResetTime        float64           // 兜底引爆时间（秒）
	DetonationDelay  float64           // 引爆后到释放实体的表现延迟（秒）
	MinImpactSpeed   float64           // 触发碰撞引爆的最小撞击速度（忽略擦碰）
	ExplodeOnContact bool              // 是否碰撞即引爆
	FallbackTimer    TimerHandle       // 兜底计时器句柄
	DestroyTimer     TimerHandle       // 释放计时器句柄
	Trigger          DetonationTrigger // 实际引爆原因
}
