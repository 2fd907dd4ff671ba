package config

import (
	"path/filepath"
	"testing"
)

// TestShippedLevels 测试随游戏发布的关卡文件均可加载并通过单位目录校验
func TestShippedLevels(t *testing.T) {
	files, err := filepath.Glob("../../data/levels/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no level files found")
	}

	catalog, err := LoadUnitCatalog("../../data/units.yaml")
	if err != nil {
		t.Fatalf("LoadUnitCatalog() failed: %v", err)
	}

	ids := make(map[string]bool)
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			config, err := LoadLevelConfig(file)
			if err != nil {
				t.Fatalf("LoadLevelConfig() failed: %v", err)
			}
			if err := ValidateLevelConfig(config, catalog); err != nil {
				t.Errorf("ValidateLevelConfig() failed: %v", err)
			}
			if ids[config.ID] {
				t.Errorf("Duplicate level ID %s", config.ID)
			}
			ids[config.ID] = true
		})
	}

	// 下一关引用必须存在
	for _, file := range files {
		config, err := LoadLevelConfig(file)
		if err != nil {
			continue
		}
		if config.NextLevel != "" && !ids[config.NextLevel] {
			t.Errorf("Level %s references missing next level %s", config.ID, config.NextLevel)
		}
	}
}

// TestShippedTuning 测试发布的调参文件
func TestShippedTuning(t *testing.T) {
	tuning, err := LoadTuning("../../data/tuning.yaml")
	if err != nil {
		t.Fatalf("LoadTuning() failed: %v", err)
	}
	if tuning.VictoryDelay != 2 || tuning.DefeatDelay != 1 {
		t.Errorf("Unexpected delays: victory %v, defeat %v", tuning.VictoryDelay, tuning.DefeatDelay)
	}
}
