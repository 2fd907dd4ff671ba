//go:build android

package game

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// prepareStorage 确保 /data/data/{package}/saves 存在且可写
// gdata 在 Android 上不会预先创建子目录，必须在 gdata.Open 之前调用
func prepareStorage() error {
	root := StoragePath()
	if root == "" {
		return fmt.Errorf("failed to detect Android package name")
	}

	saves := filepath.Join(root, "saves")
	if err := os.MkdirAll(saves, 0755); err != nil {
		return fmt.Errorf("failed to create saves directory %s: %w", saves, err)
	}

	probe := filepath.Join(saves, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("saves directory %s is not writable: %w", saves, err)
	}
	return os.Remove(probe)
}

// StoragePath 返回 Android 应用数据目录，包名从 /proc/self/cmdline 读取
func StoragePath() string {
	raw, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return ""
	}
	// cmdline 以 NUL 分隔，第一个字段是包名
	name, _, _ := bytes.Cut(raw, []byte{0})
	name = bytes.TrimSpace(name)
	if len(name) == 0 {
		return ""
	}
	return filepath.Join("/data/data", string(name))
}
