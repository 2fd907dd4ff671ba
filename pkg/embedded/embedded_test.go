package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

const testLevel = `id: "1-1"
nextLevel: "1-2"
projectileList: [shell, heavy]
projectileQuantities: [2]
robotSpawns:
  - type: basic
    position: {x: 6, y: 0.5}
`

// newTestFS 构造一个最小的内存数据目录
func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"data/levels/level-1-1.yaml": {Data: []byte(testLevel)},
		"data/levels/level-1-2.yaml": {Data: []byte(`id: "1-2"
projectileList: [shell]
robotSpawns:
  - type: flying
    position: {x: 8, y: 4}
`)},
		"data/levels/notes.txt": {Data: []byte("ignored")},
		"data/tuning.yaml":      {Data: []byte("gravity: 5\nvictoryDelay: 1\n")},
		"data/units.yaml": {Data: []byte(`blocks:
  glass:
    maxHealth: 30
    mass: 0.5
    width: 1
    height: 1
    impact:
      multiplier: 8
      minImpactSpeed: 0.5
`)},
	}
}

// reset 清除包级状态
func reset(t *testing.T) {
	t.Helper()
	dataFS = nil
	initialized = false
	t.Cleanup(func() {
		dataFS = nil
		initialized = false
	})
}

// TestNotInitialized 测试未初始化时的所有访问函数
func TestNotInitialized(t *testing.T) {
	reset(t)

	if IsInitialized() {
		t.Fatal("Expected IsInitialized() to return false before Init()")
	}
	if _, err := ReadFile(TuningFile); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ReadFile: expected ErrNotInitialized, got %v", err)
	}
	if _, err := Open(TuningFile); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Open: expected ErrNotInitialized, got %v", err)
	}
	if _, err := Glob("data/*.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Glob: expected ErrNotInitialized, got %v", err)
	}
	if _, err := LoadTuning(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("LoadTuning: expected ErrNotInitialized, got %v", err)
	}
	if Exists(TuningFile) {
		t.Error("Exists should be false before Init()")
	}
}

// TestPathNormalization 测试路径前缀检查和分隔符标准化
func TestPathNormalization(t *testing.T) {
	reset(t)
	Init(newTestFS())

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain", "data/tuning.yaml", false},
		{"dot slash", "./data/tuning.yaml", false},
		{"unknown prefix", "assets/tuning.yaml", true},
		{"no prefix", "tuning.yaml", true},
		{"missing file", "data/missing.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// TestReadDir 测试目录读取
func TestReadDir(t *testing.T) {
	reset(t)
	Init(newTestFS())

	entries, err := ReadDir(LevelsDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}
}

// TestLevelIDs 测试关卡列表只包含关卡文件并按序排列
func TestLevelIDs(t *testing.T) {
	reset(t)
	Init(newTestFS())

	ids, err := LevelIDs()
	if err != nil {
		t.Fatalf("LevelIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "1-1" || ids[1] != "1-2" {
		t.Errorf("Expected [1-1 1-2], got %v", ids)
	}
}

// TestLoadLevel 测试加载关卡并应用默认值
func TestLoadLevel(t *testing.T) {
	reset(t)
	Init(newTestFS())

	level, err := LoadLevel("1-1")
	if err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	if level.ID != "1-1" || level.NextLevel != "1-2" {
		t.Errorf("Unexpected level header: %+v", level)
	}
	if len(level.ProjectileQuantities) != 2 || level.ProjectileQuantities[1] != 1 {
		t.Errorf("Expected missing quantity to default to 1, got %v", level.ProjectileQuantities)
	}

	if _, err := LoadLevel("9-9"); err == nil {
		t.Error("Expected error for missing level")
	}
}

// TestLoadTuning 测试调参文件覆盖默认值
func TestLoadTuning(t *testing.T) {
	reset(t)
	Init(newTestFS())

	tuning, err := LoadTuning()
	if err != nil {
		t.Fatalf("LoadTuning failed: %v", err)
	}
	if tuning.Gravity != 5 {
		t.Errorf("Expected gravity 5, got %v", tuning.Gravity)
	}
	if tuning.VictoryDelay != 1 {
		t.Errorf("Expected victory delay 1, got %v", tuning.VictoryDelay)
	}
	if tuning.MaxLaunchForce <= 0 {
		t.Errorf("Expected default max launch force, got %v", tuning.MaxLaunchForce)
	}
}

// TestLoadDefaultsWhenFilesMissing 测试缺少可选文件时使用内置默认值
func TestLoadDefaultsWhenFilesMissing(t *testing.T) {
	reset(t)
	Init(fstest.MapFS{})

	if _, err := LoadTuning(); err != nil {
		t.Errorf("LoadTuning should fall back to defaults, got %v", err)
	}
	catalog, err := LoadUnitCatalog()
	if err != nil {
		t.Fatalf("LoadUnitCatalog should fall back to defaults, got %v", err)
	}
	if _, ok := catalog.Blocks["wood"]; !ok {
		t.Error("Expected built-in wood block")
	}
}

// TestLoadUnitCatalogMergesOverrides 测试单位目录覆盖合并到内置目录
func TestLoadUnitCatalogMergesOverrides(t *testing.T) {
	reset(t)
	Init(newTestFS())

	catalog, err := LoadUnitCatalog()
	if err != nil {
		t.Fatalf("LoadUnitCatalog failed: %v", err)
	}
	glass, ok := catalog.Blocks["glass"]
	if !ok {
		t.Fatal("Expected glass block from override")
	}
	if glass.MaxHealth != 30 {
		t.Errorf("Expected glass health 30, got %v", glass.MaxHealth)
	}
	if _, ok := catalog.Blocks["wood"]; !ok {
		t.Error("Expected built-in wood block to survive merge")
	}
}
