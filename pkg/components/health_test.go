package components

import (
	"math"
	"testing"
)

func TestApplyDamageReducesHealth(t *testing.T) {
	h := NewHealthComponent(100)

	res := h.ApplyDamage(30)
	if !res.Applied || res.Died {
		t.Fatalf("Expected applied non-lethal damage, got %+v", res)
	}
	if res.NewHealthPercent != 0.7 {
		t.Errorf("Expected 0.7 health percent, got %f", res.NewHealthPercent)
	}
	if h.CurrentHealth != 70 {
		t.Errorf("Expected current health 70, got %f", h.CurrentHealth)
	}
}

// TestDeathTransitionHappensOnce 死亡只转换一次，之后伤害无效
func TestDeathTransitionHappensOnce(t *testing.T) {
	h := NewHealthComponent(100)

	res := h.ApplyDamage(150)
	if !res.Died {
		t.Fatal("Lethal damage should report Died=true")
	}
	if res.NewHealthPercent != 0 {
		t.Errorf("Dead entity should report 0 percent, got %f", res.NewHealthPercent)
	}

	before := h.CurrentHealth
	for i := 0; i < 3; i++ {
		res = h.ApplyDamage(10)
		if res.Died || res.Applied {
			t.Errorf("Damage after death must be a no-op, got %+v", res)
		}
	}
	if h.CurrentHealth != before {
		t.Errorf("Health changed after death: %f -> %f", before, h.CurrentHealth)
	}
}

// TestHealthPercentMonotonic 任意伤害序列下生命百分比单调不增，且最多一次归零
func TestHealthPercentMonotonic(t *testing.T) {
	sequences := [][]float64{
		{10, 0, 5, 100, 20},
		{0, 0, 0},
		{-5, 50, -20, 49.5, 0.5, 3},
		{99.999, 0.001},
	}

	for _, seq := range sequences {
		h := NewHealthComponent(100)
		last := h.HealthPercent()
		deaths := 0
		for _, dmg := range seq {
			res := h.ApplyDamage(dmg)
			if res.Died {
				deaths++
			}
			p := h.HealthPercent()
			if p > last {
				t.Errorf("seq %v: health percent increased %f -> %f", seq, last, p)
			}
			if p < 0 || p > 1 {
				t.Errorf("seq %v: health percent %f out of range", seq, p)
			}
			last = p
		}
		if deaths > 1 {
			t.Errorf("seq %v: died %d times", seq, deaths)
		}
	}
}

func TestNewHealthComponentGuardsMaxHealth(t *testing.T) {
	for _, maxHealth := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		h := NewHealthComponent(maxHealth)
		if !(h.MaxHealth > 0) || h.HealthPercent() != 1 {
			t.Errorf("maxHealth %v: expected positive max health and full percent, got %+v", maxHealth, h)
		}
	}
}

// TestApplyDamageIgnoresInvalidAmounts 非正数和 NaN 伤害不改变生命值
func TestApplyDamageIgnoresInvalidAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "zero", amount: 0},
		{name: "negative", amount: -20},
		{name: "negative infinity", amount: math.Inf(-1)},
		{name: "NaN", amount: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthComponent(100)
			h.ApplyDamage(40)

			res := h.ApplyDamage(tt.amount)
			if res.Applied || res.Died {
				t.Errorf("Expected no-op result, got %+v", res)
			}
			if h.CurrentHealth != 60 || h.Dead {
				t.Errorf("Expected health 60 and alive, got %+v", h)
			}
			if p := h.HealthPercent(); !(p >= 0 && p <= 1) {
				t.Errorf("Expected percent in [0,1], got %v", p)
			}

			// 之后的正常伤害仍能致死
			if res := h.ApplyDamage(60); !res.Died {
				t.Errorf("Expected lethal damage after invalid amount, got %+v", res)
			}
		})
	}
}

func TestTierForPercent(t *testing.T) {
	tests := []struct {
		percent float64
		want    DamageTier
	}{
		{1, TierIntact},
		{0.67, TierIntact},
		{0.66, TierCracked},
		{0.34, TierCracked},
		{0.33, TierBroken},
		{0, TierBroken},
	}
	for _, tt := range tests {
		if got := TierForPercent(tt.percent); got != tt.want {
			t.Errorf("TierForPercent(%f) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestLayerMaskMatches(t *testing.T) {
	if !LayerAll.Matches(LayerRobot) {
		t.Error("Empty filter should accept every layer")
	}
	filter := LayerRobot | LayerBlock
	if !filter.Matches(LayerBlock) || filter.Matches(LayerTank) {
		t.Error("Filter should accept only configured layers")
	}
}
