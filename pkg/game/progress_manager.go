package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LevelRecord 单个关卡的最佳成绩
type LevelRecord struct {
	BestScore int  `yaml:"bestScore"`
	BestStars int  `yaml:"bestStars"`
	Cleared   bool `yaml:"cleared"`
	Attempts  int  `yaml:"attempts"`
}

// 存储路径常量
const (
	progressObject   = "progress"
	progressProperty = "levels"
)

// OpenStorage 打开 gdata 跨平台存储
// 失败时返回 nil 和错误，调用方可以降级为仅内存模式
func OpenStorage(appName string) (*gdata.Manager, error) {
	if err := prepareStorage(); err != nil {
		return nil, fmt.Errorf("failed to prepare storage for %s: %w", appName, err)
	}
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata storage %s: %w", appName, err)
	}
	return manager, nil
}

// ProgressManager 关卡进度管理器
// 负责最佳成绩的加载、保存和内存管理
type ProgressManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	records      map[string]*LevelRecord
}

// NewProgressManager 创建进度管理器并尝试加载已保存的进度
// gdataManager 为 nil 时只在内存中记录
func NewProgressManager(gdataManager *gdata.Manager) *ProgressManager {
	pm := &ProgressManager{
		gdataManager: gdataManager,
		records:      make(map[string]*LevelRecord),
	}
	if err := pm.Load(); err != nil {
		// 加载失败不是致命错误，使用空进度
		log.Warn().Str("system", "ProgressManager").Err(err).Msg("加载进度失败，使用空进度")
	}
	return pm
}

// Load 从 gdata 加载进度
func (pm *ProgressManager) Load() error {
	pm.records = make(map[string]*LevelRecord)

	// 降级模式：无法持久化
	if pm.gdataManager == nil {
		return nil
	}
	if !pm.gdataManager.ObjectPropExists(progressObject, progressProperty) {
		return nil
	}

	data, err := pm.gdataManager.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	var loaded map[string]*LevelRecord
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	for id, record := range loaded {
		if record != nil {
			pm.records[id] = record
		}
	}
	log.Debug().Str("system", "ProgressManager").Int("levels", len(pm.records)).Msg("进度已加载")
	return nil
}

// Save 保存进度到 gdata
// gdataManager 为 nil 时返回 nil（降级模式，不报错）
func (pm *ProgressManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(pm.records)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := pm.gdataManager.SaveObjectProp(progressObject, progressProperty, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Record 记录一次关卡结果，返回是否刷新了最佳分数
// 注意：仅修改内存中的进度，需调用 Save() 方法持久化
func (pm *ProgressManager) Record(levelID string, score, stars int, cleared bool) bool {
	record, ok := pm.records[levelID]
	if !ok {
		record = &LevelRecord{}
		pm.records[levelID] = record
	}
	record.Attempts++
	if cleared {
		record.Cleared = true
	}
	if stars > record.BestStars {
		record.BestStars = stars
	}
	if score > record.BestScore {
		record.BestScore = score
		return true
	}
	return false
}

// Get 返回关卡记录的副本
func (pm *ProgressManager) Get(levelID string) (LevelRecord, bool) {
	record, ok := pm.records[levelID]
	if !ok {
		return LevelRecord{}, false
	}
	return *record, true
}

// IsCleared 关卡是否已通过
func (pm *ProgressManager) IsCleared(levelID string) bool {
	record, ok := pm.records[levelID]
	return ok && record.Cleared
}
