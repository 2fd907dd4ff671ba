package game

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 创建用于测试的 gdata Manager
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	appName := fmt.Sprintf("robotsiege_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil
	}

	// 注册清理函数，测试结束后删除测试目录
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			testDir := filepath.Join(homeDir, ".local", "share", appName)
			os.RemoveAll(testDir)
		}
	})

	return manager
}

// TestProgressManagerNilSafe 测试降级模式
func TestProgressManagerNilSafe(t *testing.T) {
	pm := NewProgressManager(nil)

	if !pm.Record("1-1", 40000, 1, true) {
		t.Error("First record should be a new best")
	}
	if err := pm.Save(); err != nil {
		t.Errorf("Save in degraded mode should not fail, got %v", err)
	}
	if !pm.IsCleared("1-1") {
		t.Error("Level should be cleared in memory")
	}
}

// TestProgressManagerRecord 测试最佳成绩更新规则
func TestProgressManagerRecord(t *testing.T) {
	pm := NewProgressManager(nil)

	pm.Record("1-1", 40000, 1, true)
	if pm.Record("1-1", 20000, 0, false) {
		t.Error("Lower score should not be a new best")
	}
	if !pm.Record("1-1", 95000, 3, true) {
		t.Error("Higher score should be a new best")
	}

	record, ok := pm.Get("1-1")
	if !ok {
		t.Fatal("Expected record for 1-1")
	}
	if record.BestScore != 95000 || record.BestStars != 3 || !record.Cleared || record.Attempts != 3 {
		t.Errorf("Unexpected record %+v", record)
	}

	if _, ok := pm.Get("9-9"); ok {
		t.Error("Unknown level should have no record")
	}
}

// TestProgressManagerPersistence 测试保存后重新加载
func TestProgressManagerPersistence(t *testing.T) {
	manager := createTestGdataManager(t, "persist")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	pm := NewProgressManager(manager)
	pm.Record("1-2", 61000, 2, true)
	if err := pm.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewProgressManager(manager)
	record, ok := reloaded.Get("1-2")
	if !ok {
		t.Fatal("Expected record after reload")
	}
	if record.BestScore != 61000 || record.BestStars != 2 {
		t.Errorf("Unexpected reloaded record %+v", record)
	}
}
