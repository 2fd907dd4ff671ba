package components

// DamageTier 方块破损程度（表现层据此选择贴图）
type DamageTier int

const (
	TierIntact  DamageTier = iota // 生命 > 66%
	TierCracked                   // 33% < 生命 <= 66%
	TierBroken                    // 生命 <= 33%
)

// TierForPercent 根据生命百分比返回破损程度
func TierForPercent(percent float64) DamageTier {
	switch {
	case percent > 0.66:
		return TierIntact
	case percent > 0.33:
		return TierCracked
	default:
		return TierBroken
	}
}

// BlockComponent 方块数据
type BlockComponent struct {
	Type string     // 方块类型ID，如 "wood"
	Tier DamageTier // 当前破损程度
}
