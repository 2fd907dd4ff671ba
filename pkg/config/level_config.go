package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decker502/robotsiege/pkg/utils"
)

// 关卡配置校验错误
var (
	ErrMissingLevelID      = errors.New("level ID is required")
	ErrEmptyProjectileList = errors.New("projectile list is empty")
	ErrNoRobotSpawns       = errors.New("at least one robot spawn is required")
)

// LevelConfig 关卡配置数据结构
// 定义坦克、镜头起点、弹药和关卡中的机器人/方块
type LevelConfig struct {
	ID        string `yaml:"id"`        // 关卡ID，如 "1-1"
	Name      string `yaml:"name"`      // 关卡名称
	NextLevel string `yaml:"nextLevel"` // 下一关ID（可选）

	TankSpawn   utils.Vec2 `yaml:"tankSpawn"`   // 坦克生成位置
	CameraStart utils.Vec2 `yaml:"cameraStart"` // 镜头起始位置（表现层使用）

	ProjectileList       []string `yaml:"projectileList"`       // 炮弹类型ID列表，如 ["shell", "heavy"]
	ProjectileQuantities []int    `yaml:"projectileQuantities"` // 与 ProjectileList 一一对应的数量，缺省为1

	RobotSpawns []RobotSpawn `yaml:"robotSpawns"` // 机器人生成列表
	Blocks      []BlockSpawn `yaml:"blocks"`      // 方块生成列表（可选）
}

// RobotSpawn 单个机器人生成配置
type RobotSpawn struct {
	Type     string     `yaml:"type"`     // 机器人类型："basic", "flying", "boss"
	Position utils.Vec2 `yaml:"position"` // 生成位置
}

// BlockSpawn 单个方块生成配置
type BlockSpawn struct {
	Type     string     `yaml:"type"`     // 方块类型："wood", "stone", "tnt"
	Position utils.Vec2 `yaml:"position"` // 生成位置
}

// LoadLevelConfig 从YAML文件加载关卡配置
// 参数：
//
//	filepath - 关卡配置文件的路径（相对或绝对路径）
//
// 返回：
//
//	*LevelConfig - 解析后的关卡配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}
	return ParseLevelConfig(data, filepath)
}

// ParseLevelConfig 解析YAML格式的关卡配置
// source 仅用于错误信息（文件路径或嵌入资源名）
func ParseLevelConfig(data []byte, source string) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML from %s: %w", source, err)
	}

	// 应用默认值（向后兼容性）
	applyDefaults(&levelConfig)

	// 验证必填字段
	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, fmt.Errorf("invalid level config in %s: %w", source, err)
	}

	return &levelConfig, nil
}

// applyDefaults 为 LevelConfig 中缺失的可选字段设置默认值
func applyDefaults(config *LevelConfig) {
	// 名称缺省使用ID
	if config.Name == "" {
		config.Name = config.ID
	}

	// 数量列表短于炮弹列表时，缺失项按1发补齐
	for len(config.ProjectileQuantities) < len(config.ProjectileList) {
		config.ProjectileQuantities = append(config.ProjectileQuantities, 1)
	}
}

// validateLevelConfig 验证关卡配置的完整性和合法性
func validateLevelConfig(config *LevelConfig) error {
	if config.ID == "" {
		return ErrMissingLevelID
	}

	if len(config.ProjectileList) == 0 {
		return ErrEmptyProjectileList
	}
	for i, p := range config.ProjectileList {
		if p == "" {
			return fmt.Errorf("projectile %d: type is required", i)
		}
	}
	if len(config.ProjectileQuantities) > len(config.ProjectileList) {
		return fmt.Errorf("projectileQuantities has %d entries but projectileList only %d",
			len(config.ProjectileQuantities), len(config.ProjectileList))
	}
	for i, q := range config.ProjectileQuantities {
		if q < 0 {
			return fmt.Errorf("projectile %d: quantity must be >= 0, got %d", i, q)
		}
	}

	if len(config.RobotSpawns) == 0 {
		return ErrNoRobotSpawns
	}
	for i, r := range config.RobotSpawns {
		if r.Type == "" {
			return fmt.Errorf("robot %d: type is required", i)
		}
	}
	for i, b := range config.Blocks {
		if b.Type == "" {
			return fmt.Errorf("block %d: type is required", i)
		}
	}

	return nil
}

// Magazine 按发射顺序展开弹匣：projectileList[i] 重复 projectileQuantities[i] 次
func (c *LevelConfig) Magazine() []string {
	magazine := make([]string, 0, len(c.ProjectileList))
	for i, p := range c.ProjectileList {
		qty := 1
		if i < len(c.ProjectileQuantities) {
			qty = c.ProjectileQuantities[i]
		}
		for n := 0; n < qty; n++ {
			magazine = append(magazine, p)
		}
	}
	return magazine
}

// ValidateLevelConfig 校验关卡配置，并检查其引用的所有单位类型都存在于目录中
// 关卡在开始前必须通过此校验，否则发射器保持不可发射状态
func ValidateLevelConfig(c *LevelConfig, catalog *UnitCatalog) error {
	if c == nil {
		return errors.New("level config is nil")
	}
	if err := validateLevelConfig(c); err != nil {
		return fmt.Errorf("level %s: %w", c.ID, err)
	}
	if catalog == nil {
		return errors.New("unit catalog is nil")
	}
	for _, p := range c.ProjectileList {
		if _, ok := catalog.Projectiles[p]; !ok {
			return fmt.Errorf("level %s: %w: projectile %q", c.ID, ErrUnknownUnit, p)
		}
	}
	if len(c.Magazine()) == 0 {
		return fmt.Errorf("level %s: %w", c.ID, ErrEmptyProjectileList)
	}
	for _, r := range c.RobotSpawns {
		if _, ok := catalog.Robots[r.Type]; !ok {
			return fmt.Errorf("level %s: %w: robot %q", c.ID, ErrUnknownUnit, r.Type)
		}
	}
	for _, b := range c.Blocks {
		if _, ok := catalog.Blocks[b.Type]; !ok {
			return fmt.Errorf("level %s: %w: block %q", c.ID, ErrUnknownUnit, b.Type)
		}
	}
	return nil
}
