package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TestParseLevel 测试日志级别解析
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestSetupWritesBothOutputs 测试控制台和文件都收到日志，并按级别过滤
func TestSetupWritesBothOutputs(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	var console, file bytes.Buffer
	if _, err := Setup(Options{Level: "info", Console: &console, File: &file, NoColor: true}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	log.Debug().Str("system", "Test").Msg("hidden")
	log.Info().Str("system", "Test").Msg("visible")

	for name, buf := range map[string]*bytes.Buffer{"console": &console, "file": &file} {
		out := buf.String()
		if !strings.Contains(out, "visible") {
			t.Errorf("%s: expected info message, got %q", name, out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("%s: debug message should be filtered, got %q", name, out)
		}
		if !strings.Contains(out, "system=Test") {
			t.Errorf("%s: expected field in output, got %q", name, out)
		}
	}
}

// TestSetupRejectsBadLevel 测试非法级别不会替换全局日志器
func TestSetupRejectsBadLevel(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	var console bytes.Buffer
	if _, err := Setup(Options{Level: "loud", Console: &console}); err == nil {
		t.Fatal("Expected error for invalid level")
	}
	log.Info().Msg("after")
	if console.Len() != 0 {
		t.Errorf("Expected nothing written to rejected writer, got %q", console.String())
	}
}
