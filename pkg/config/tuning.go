package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix 环境变量前缀，如 ROBOTSIEGE_PHYSICS_GRAVITY
const envPrefix = "ROBOTSIEGE"

// ScoreTuning 计分参数
type ScoreTuning struct {
	PointsPerRobot           int   `mapstructure:"pointsPerRobot"`
	PointsPerBlockDamage     int   `mapstructure:"pointsPerBlockDamage"`
	BonusPerUnusedProjectile int   `mapstructure:"bonusPerUnusedProjectile"`
	StarThresholds           []int `mapstructure:"starThresholds"` // 1/2/3 星所需分数，升序
}

// Tuning 全局可调参数（重力、延迟、发射力度、计分、日志级别）
type Tuning struct {
	LogLevel string `mapstructure:"logLevel"`

	Gravity float64 `mapstructure:"gravity"` // 重力加速度（米/秒²，向下为正）
	GroundY float64 `mapstructure:"groundY"` // 地面高度

	OffscreenGrace          float64 `mapstructure:"offscreenGrace"`          // 炮弹飞出画面后的引爆延迟（秒）
	ExplosionVisualDuration float64 `mapstructure:"explosionVisualDuration"` // 爆炸标记保留时间（秒）
	VictoryDelay            float64 `mapstructure:"victoryDelay"`            // 最后一个机器人死亡到胜利的延迟（秒）
	DefeatDelay             float64 `mapstructure:"defeatDelay"`             // 最后一发炮弹结束到失败的延迟（秒）

	MaxLaunchForce float64 `mapstructure:"maxLaunchForce"`
	SpawnOffset    float64 `mapstructure:"spawnOffset"`

	Score ScoreTuning `mapstructure:"score"`
}

// setTuningDefaults 注册所有默认值
// 环境变量覆盖只对注册过默认值的键生效
func setTuningDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("gravity", 9.81)
	v.SetDefault("groundY", 0.0)

	v.SetDefault("offscreenGrace", 0.5)
	v.SetDefault("explosionVisualDuration", 3.0)
	v.SetDefault("victoryDelay", 2.0)
	v.SetDefault("defeatDelay", 1.0)

	v.SetDefault("maxLaunchForce", 20.0)
	v.SetDefault("spawnOffset", 0.5)

	v.SetDefault("score.pointsPerRobot", 5000)
	v.SetDefault("score.pointsPerBlockDamage", 100)
	v.SetDefault("score.bonusPerUnusedProjectile", 10000)
	v.SetDefault("score.starThresholds", []int{30000, 60000, 90000})
}

func newTuningViper() *viper.Viper {
	v := viper.New()
	setTuningDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultTuning 返回默认参数（仍会应用环境变量覆盖）
// 环境变量覆盖后的值不合法时返回错误
func DefaultTuning() (*Tuning, error) {
	return decodeTuning(newTuningViper())
}

// LoadTuning 从YAML文件加载参数，缺失的键使用默认值
func LoadTuning(path string) (*Tuning, error) {
	v := newTuningViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading tuning file %s: %w", path, err)
	}
	return decodeTuning(v)
}

// ParseTuning 从内存中的YAML数据加载参数（用于嵌入的默认配置）
func ParseTuning(data []byte) (*Tuning, error) {
	v := newTuningViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error parsing tuning data: %w", err)
	}
	return decodeTuning(v)
}

func decodeTuning(v *viper.Viper) (*Tuning, error) {
	var t Tuning
	if err := v.Unmarshal(&t); err != nil {
		return nil, fmt.Errorf("error decoding tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate 检查参数范围
func (t *Tuning) Validate() error {
	if t.Gravity < 0 {
		return fmt.Errorf("gravity must be >= 0, got %v", t.Gravity)
	}
	if t.MaxLaunchForce <= 0 {
		return fmt.Errorf("maxLaunchForce must be > 0, got %v", t.MaxLaunchForce)
	}
	if t.OffscreenGrace < 0 || t.ExplosionVisualDuration < 0 || t.VictoryDelay < 0 || t.DefeatDelay < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	for i := 1; i < len(t.Score.StarThresholds); i++ {
		if t.Score.StarThresholds[i] < t.Score.StarThresholds[i-1] {
			return fmt.Errorf("score.starThresholds must be ascending: %v", t.Score.StarThresholds)
		}
	}
	return nil
}
