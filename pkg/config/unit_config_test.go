package config

import (
	"testing"

	"github.com/decker502/robotsiege/pkg/components"
)

// TestDefaultUnitCatalog 测试内置目录合法且包含基础单位
func TestDefaultUnitCatalog(t *testing.T) {
	catalog := DefaultUnitCatalog()
	if err := catalog.Validate(); err != nil {
		t.Fatalf("Default catalog invalid: %v", err)
	}

	for _, id := range []string{"basic", "flying", "boss"} {
		if _, ok := catalog.Robots[id]; !ok {
			t.Errorf("Missing robot %q", id)
		}
	}
	for _, id := range []string{"wood", "stone", "tnt"} {
		if _, ok := catalog.Blocks[id]; !ok {
			t.Errorf("Missing block %q", id)
		}
	}
	if _, ok := catalog.Projectiles["shell"]; !ok {
		t.Error("Missing projectile \"shell\"")
	}

	tnt := catalog.Blocks["tnt"]
	if tnt.Explosive == nil {
		t.Fatal("tnt should be explosive")
	}
	if tnt.Explosive.Explosion.Radius != 2 || tnt.Explosive.Explosion.MaxDamage != 100 {
		t.Errorf("Unexpected tnt explosion %+v", tnt.Explosive.Explosion)
	}
	if tnt.Explosive.PreExplosionTime != 1.2 {
		t.Errorf("Expected pre-explosion 1.2s, got %v", tnt.Explosive.PreExplosionTime)
	}
}

// TestParseUnitCatalog 测试YAML覆盖与新增条目
func TestParseUnitCatalog(t *testing.T) {
	data := []byte(`robots:
  basic:
    variant: basic
    maxHealth: 150
    mass: 1
    destroyDelay: 1.5
projectiles:
  cluster:
    mass: 2
    explosion: {radius: 1.5, maxDamage: 60, maxImpulse: 4}
    layers: [robot, block]
    resetTime: 4
    explodeOnContact: true
`)
	catalog, err := ParseUnitCatalog(data)
	if err != nil {
		t.Fatalf("ParseUnitCatalog() failed: %v", err)
	}
	if got := catalog.Robots["basic"].MaxHealth; got != 150 {
		t.Errorf("Expected overridden maxHealth 150, got %v", got)
	}
	if _, ok := catalog.Robots["boss"]; !ok {
		t.Error("Built-in boss should survive the merge")
	}
	cluster, ok := catalog.Projectiles["cluster"]
	if !ok {
		t.Fatal("Expected new projectile \"cluster\"")
	}
	if cluster.Explosion.Radius != 1.5 {
		t.Errorf("Expected radius 1.5, got %v", cluster.Explosion.Radius)
	}

	t.Run("invalid radius", func(t *testing.T) {
		_, err := ParseUnitCatalog([]byte("projectiles:\n  dud:\n    explosion: {radius: 0}\n"))
		if err == nil {
			t.Error("Expected error for zero radius, got nil")
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := ParseUnitCatalog([]byte("robots:\n  x:\n    variant: tank\n    maxHealth: 10\n"))
		if err == nil {
			t.Error("Expected error for unknown variant, got nil")
		}
	})
}

// TestParseLayers 测试层名称解析
func TestParseLayers(t *testing.T) {
	mask, err := ParseLayers([]string{"robot", "Block"})
	if err != nil {
		t.Fatalf("ParseLayers() failed: %v", err)
	}
	if mask != components.LayerRobot|components.LayerBlock {
		t.Errorf("Unexpected mask %b", mask)
	}

	mask, err = ParseLayers(nil)
	if err != nil || mask != components.LayerAll {
		t.Errorf("Expected LayerAll for empty list, got %b (%v)", mask, err)
	}

	if _, err := ParseLayers([]string{"water"}); err == nil {
		t.Error("Expected error for unknown layer, got nil")
	}
}
