// Package embedded 提供嵌入数据文件的统一访问接口
//
// //go:embed 只能嵌入当前包目录及其子目录的文件，
// 因此 embed.FS 声明在项目根目录（embed.go），由 main 调用 Init 注入。
// 包内所有路径都以 "data/" 开头。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/decker502/robotsiege/pkg/config"
)

const dataPrefix = "data/"

// 数据文件位置
const (
	LevelsDir  = "data/levels"
	levelFile  = "level-"
	TuningFile = "data/tuning.yaml"
	UnitsFile  = "data/units.yaml"
)

// ErrNotInitialized 在 Init 之前访问资源时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	dataFS      fs.FS
	initialized bool
)

// Init 注入数据文件系统
// 接受任意 fs.FS，测试中可以传入 fstest.MapFS
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized 返回是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 统一路径分隔符并检查前缀
func normalize(p string) (string, error) {
	if !initialized {
		return "", ErrNotInitialized
	}
	p = strings.TrimPrefix(filepath.ToSlash(p), "./")
	if !strings.HasPrefix(p, dataPrefix) && p != strings.TrimSuffix(dataPrefix, "/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", p)
	}
	return p, nil
}

// Open 打开嵌入文件
func Open(p string) (fs.File, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	return dataFS.Open(p)
}

// ReadFile 读取嵌入文件内容
func ReadFile(p string) ([]byte, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在
func Exists(p string) bool {
	p, err := normalize(p)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, p)
	return err == nil
}

// Glob 匹配嵌入文件
func Glob(pattern string) ([]string, error) {
	pattern, err := normalize(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, pattern)
}

// ReadDir 读取目录内容
func ReadDir(p string) ([]fs.DirEntry, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(dataFS, p)
}

// LevelIDs 返回所有内置关卡 ID，按字典序排列
func LevelIDs() ([]string, error) {
	matches, err := Glob(LevelsDir + "/" + levelFile + "*.yaml")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimPrefix(strings.TrimSuffix(path.Base(m), ".yaml"), levelFile))
	}
	sort.Strings(ids)
	return ids, nil
}

// LevelPath 返回关卡 ID 对应的文件路径，如 "1-1" -> data/levels/level-1-1.yaml
func LevelPath(id string) string {
	return LevelsDir + "/" + levelFile + id + ".yaml"
}

// LoadLevel 加载并解析内置关卡
func LoadLevel(id string) (*config.LevelConfig, error) {
	p := LevelPath(id)
	data, err := ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read level %s: %w", id, err)
	}
	return config.ParseLevelConfig(data, p)
}

// LoadTuning 加载调参文件，文件缺失时使用默认值
func LoadTuning() (*config.Tuning, error) {
	if !Exists(TuningFile) {
		if !initialized {
			return nil, ErrNotInitialized
		}
		return config.DefaultTuning()
	}
	data, err := ReadFile(TuningFile)
	if err != nil {
		return nil, err
	}
	return config.ParseTuning(data)
}

// LoadUnitCatalog 加载单位目录，文件缺失时使用内置目录
func LoadUnitCatalog() (*config.UnitCatalog, error) {
	if !Exists(UnitsFile) {
		if !initialized {
			return nil, ErrNotInitialized
		}
		return config.DefaultUnitCatalog(), nil
	}
	data, err := ReadFile(UnitsFile)
	if err != nil {
		return nil, err
	}
	return config.ParseUnitCatalog(data)
}
