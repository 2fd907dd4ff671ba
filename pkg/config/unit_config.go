package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/robotsiege/pkg/components"
)

// 单位配置
// 本文件定义了游戏单位（机器人、方块、炮弹）的默认属性，并支持通过 YAML 覆盖

// ErrUnknownUnit 关卡引用了目录中不存在的单位类型
var ErrUnknownUnit = errors.New("unknown unit type")

// RobotStats 机器人属性
type RobotStats struct {
	Variant      string                `yaml:"variant"`   // "basic", "flying", "boss"
	MaxHealth    float64               `yaml:"maxHealth"` // 最大生命值
	Mass         float64               `yaml:"mass"`      // 质量
	Width        float64               `yaml:"width"`     // 碰撞盒宽度（米）
	Height       float64               `yaml:"height"`    // 碰撞盒高度（米）
	DestroyDelay float64               `yaml:"destroyDelay"`
	Impact       components.DamageRule `yaml:"impact"` // 碰撞伤害规则

	// 悬浮机器人
	FallThreshold float64 `yaml:"fallThreshold"` // 生命百分比降到此值以下开始坠落
	FallGravity   float64 `yaml:"fallGravity"`

	// 首领机器人
	FlipInterval       float64 `yaml:"flipInterval"`
	BackDetectionAngle float64 `yaml:"backDetectionAngle"`
	BackHitDamage      float64 `yaml:"backHitDamage"`
	StunDuration       float64 `yaml:"stunDuration"`
}

// ExplosiveStats 爆炸方块属性
type ExplosiveStats struct {
	Explosion         components.ExplosionTemplate `yaml:"explosion"`
	PreExplosionTime  float64                      `yaml:"preExplosionTime"`
	ExplosionDuration float64                      `yaml:"explosionDuration"`
}

// BlockStats 方块属性
type BlockStats struct {
	MaxHealth    float64               `yaml:"maxHealth"`
	Mass         float64               `yaml:"mass"`
	Width        float64               `yaml:"width"`
	Height       float64               `yaml:"height"`
	DestroyDelay float64               `yaml:"destroyDelay"`
	Impact       components.DamageRule `yaml:"impact"`
	Explosive    *ExplosiveStats       `yaml:"explosive,omitempty"` // 非空表示爆炸方块
}

// ProjectileStats 炮弹属性
type ProjectileStats struct {
	Mass             float64                      `yaml:"mass"`
	Radius           float64                      `yaml:"radius"` // 碰撞半径
	Explosion        components.ExplosionTemplate `yaml:"explosion"`
	Layers           []string                     `yaml:"layers"` // 爆炸影响的层，空表示全部
	ResetTime        float64                      `yaml:"resetTime"`
	DetonationDelay  float64                      `yaml:"detonationDelay"`
	MinImpactSpeed   float64                      `yaml:"minImpactSpeed"`
	ExplodeOnContact bool                         `yaml:"explodeOnContact"`
}

// UnitCatalog 单位目录：类型ID -> 属性
type UnitCatalog struct {
	Robots      map[string]RobotStats      `yaml:"robots"`
	Blocks      map[string]BlockStats      `yaml:"blocks"`
	Projectiles map[string]ProjectileStats `yaml:"projectiles"`
}

// robotImpactRule 机器人的碰撞规则：炮弹 ×10，坠落物速度超过3直接致死，重物 质量×速度×2 超过20才生效
var robotImpactRule = components.DamageRule{
	Multiplier:           2,
	MassScaled:           true,
	MinSourceMass:        1,
	MinDamage:            20,
	ProjectileMultiplier: 10,
	MinFallVelocity:      3,
	InstantKillOnFall:    true,
}

// blockImpactRule 方块的碰撞规则：撞击速度超过1时伤害 = 速度 × 5
var blockImpactRule = components.DamageRule{
	Multiplier:     5,
	MinImpactSpeed: 1,
}

// DefaultUnitCatalog 返回内置的单位目录
func DefaultUnitCatalog() *UnitCatalog {
	return &UnitCatalog{
		Robots: map[string]RobotStats{
			"basic": {
				Variant:      "basic",
				MaxHealth:    100,
				Mass:         1,
				Width:        0.8,
				Height:       1,
				DestroyDelay: 1.5,
				Impact:       robotImpactRule,
			},
			"flying": {
				Variant:       "flying",
				MaxHealth:     60,
				Mass:          0.8,
				Width:         0.8,
				Height:        0.8,
				DestroyDelay:  1.5,
				Impact:        robotImpactRule,
				FallThreshold: 0.25,
				FallGravity:   2,
			},
			"boss": {
				Variant:            "boss",
				MaxHealth:          300,
				Mass:               3,
				Width:              1.6,
				Height:             2,
				DestroyDelay:       1.5,
				Impact:             robotImpactRule,
				FlipInterval:       3,
				BackDetectionAngle: 120,
				BackHitDamage:      50,
				StunDuration:       1,
			},
		},
		Blocks: map[string]BlockStats{
			"wood": {
				MaxHealth:    100,
				Mass:         1,
				Width:        1,
				Height:       1,
				DestroyDelay: 0.5,
				Impact:       blockImpactRule,
			},
			"stone": {
				MaxHealth:    250,
				Mass:         3,
				Width:        1,
				Height:       1,
				DestroyDelay: 0.5,
				Impact:       blockImpactRule,
			},
			"tnt": {
				MaxHealth:    100,
				Mass:         1,
				Width:        1,
				Height:       1,
				DestroyDelay: 0.5,
				Impact:       blockImpactRule,
				Explosive: &ExplosiveStats{
					Explosion:         components.ExplosionTemplate{Radius: 2, MaxDamage: 100, MaxImpulse: 8},
					PreExplosionTime:  1.2,
					ExplosionDuration: 1,
				},
			},
		},
		Projectiles: map[string]ProjectileStats{
			"shell": {
				Mass:             1,
				Radius:           0.2,
				Explosion:        components.ExplosionTemplate{Radius: 2, MaxDamage: 100, MaxImpulse: 6},
				ResetTime:        5,
				DetonationDelay:  0.1,
				MinImpactSpeed:   0.5,
				ExplodeOnContact: true,
			},
			"heavy": {
				Mass:             3,
				Radius:           0.3,
				Explosion:        components.ExplosionTemplate{Radius: 3, MaxDamage: 150, MaxImpulse: 12},
				ResetTime:        5,
				DetonationDelay:  0.1,
				MinImpactSpeed:   0.5,
				ExplodeOnContact: true,
			},
			"bouncer": {
				Mass:            1,
				Radius:          0.2,
				Explosion:       components.ExplosionTemplate{Radius: 2, MaxDamage: 80, MaxImpulse: 6},
				ResetTime:       3,
				DetonationDelay: 0.1,
			},
		},
	}
}

// LoadUnitCatalog 从YAML文件加载单位目录
// 文件中的条目覆盖（或新增）内置目录中的同名条目
func LoadUnitCatalog(path string) (*UnitCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit catalog %s: %w", path, err)
	}
	return ParseUnitCatalog(data)
}

// ParseUnitCatalog 解析YAML单位目录并合并到内置目录
func ParseUnitCatalog(data []byte) (*UnitCatalog, error) {
	var override UnitCatalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse unit catalog YAML: %w", err)
	}

	catalog := DefaultUnitCatalog()
	for id, stats := range override.Robots {
		catalog.Robots[id] = stats
	}
	for id, stats := range override.Blocks {
		catalog.Blocks[id] = stats
	}
	for id, stats := range override.Projectiles {
		catalog.Projectiles[id] = stats
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate 检查目录中每个条目的属性是否合法
func (c *UnitCatalog) Validate() error {
	for id, r := range c.Robots {
		if r.MaxHealth <= 0 {
			return fmt.Errorf("robot %q: maxHealth must be > 0", id)
		}
		if _, err := ParseRobotVariant(r.Variant); err != nil {
			return fmt.Errorf("robot %q: %w", id, err)
		}
	}
	for id, b := range c.Blocks {
		if b.MaxHealth <= 0 {
			return fmt.Errorf("block %q: maxHealth must be > 0", id)
		}
		if b.Explosive != nil && b.Explosive.Explosion.Radius <= 0 {
			return fmt.Errorf("block %q: explosion radius must be > 0", id)
		}
	}
	for id, p := range c.Projectiles {
		if p.Explosion.Radius <= 0 {
			return fmt.Errorf("projectile %q: explosion radius must be > 0", id)
		}
		if p.Explosion.MaxDamage < 0 || p.Explosion.MaxImpulse < 0 {
			return fmt.Errorf("projectile %q: explosion damage and impulse must be >= 0", id)
		}
		if _, err := ParseLayers(p.Layers); err != nil {
			return fmt.Errorf("projectile %q: %w", id, err)
		}
	}
	return nil
}

// ParseRobotVariant 解析机器人变体名称（空字符串视为 basic）
func ParseRobotVariant(name string) (components.RobotVariant, error) {
	switch strings.ToLower(name) {
	case "", "basic":
		return components.RobotBasic, nil
	case "flying":
		return components.RobotFlying, nil
	case "boss":
		return components.RobotBoss, nil
	default:
		return components.RobotBasic, fmt.Errorf("unknown robot variant %q", name)
	}
}

// ParseLayers 将层名称列表转换为过滤掩码，空列表表示所有层
func ParseLayers(names []string) (components.LayerMask, error) {
	var mask components.LayerMask
	for _, name := range names {
		switch strings.ToLower(name) {
		case "generic":
			mask |= components.LayerGeneric
		case "ground":
			mask |= components.LayerGround
		case "tank":
			mask |= components.LayerTank
		case "projectile":
			mask |= components.LayerProjectile
		case "block":
			mask |= components.LayerBlock
		case "robot":
			mask |= components.LayerRobot
		default:
			return components.LayerAll, fmt.Errorf("unknown layer %q", name)
		}
	}
	return mask, nil
}
