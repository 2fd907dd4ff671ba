package components

// EntityKind 实体种类
type EntityKind int

const (
	KindGeneric    EntityKind = iota // 通用可破坏实体（World.Create 创建）
	KindGround                       // 地面
	KindTank                         // 坦克（发射器）
	KindProjectile                   // 炮弹
	KindBlock                        // 方块
	KindRobot                        // 机器人
	KindExplosion                    // 爆炸标记（表现层使用）
)

// String 返回种类名称（日志使用）
func (k EntityKind) String() string {
	switch k {
	case KindGround:
		return "ground"
	case KindTank:
		return "tank"
	case KindProjectile:
		return "projectile"
	case KindBlock:
		return "block"
	case KindRobot:
		return "robot"
	case KindExplosion:
		return "explosion"
	default:
		return "generic"
	}
}

// LayerMask 碰撞/爆炸过滤层
type LayerMask uint32

const (
	LayerGeneric LayerMask = 1 << iota
	LayerGround
	LayerTank
	LayerProjectile
	LayerBlock
	LayerRobot

	// LayerAll 0 表示不过滤
	LayerAll LayerMask = 0
)

// DefaultLayer 返回种类对应的默认层
func DefaultLayer(kind EntityKind) LayerMask {
	switch kind {
	case KindGround:
		return LayerGround
	case KindTank:
		return LayerTank
	case KindProjectile:
		return LayerProjectile
	case KindBlock:
		return LayerBlock
	case KindRobot:
		return LayerRobot
	default:
		return LayerGeneric
	}
}

// Matches 过滤器是否接受给定层；过滤器为 0 时接受所有层
func (m LayerMask) Matches(layer LayerMask) bool {
	return m == LayerAll || m&layer != 0
}

// KindComponent 实体种类与所在层
type KindComponent struct {
	Kind  EntityKind
	Layer LayerMask
}

// NewKindComponent 使用默认层创建种类组件
func NewKindComponent(kind EntityKind) *KindComponent {
	return &KindComponent{Kind: kind, Layer: DefaultLayer(kind)}
}
