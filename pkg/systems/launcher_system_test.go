package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/utils"
)

// TestLaunchAppliesImpulse 测试发射速度 = 力度 / 质量，生成点沿方向偏移
func TestLaunchAppliesImpulse(t *testing.T) {
	rig := newTestRig()
	tank := rig.startLevel([]string{"heavy"}, 1)

	id, err := rig.launcher.Launch(tank, utils.Vec2{X: 3, Y: 4}, 15)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	vel, _ := ecs.GetComponent[*components.VelocityComponent](rig.em, id)
	if math.Abs(vel.VX-3) > 1e-9 || math.Abs(vel.VY-4) > 1e-9 {
		t.Errorf("velocity = (%v, %v), want (3, 4)", vel.VX, vel.VY)
	}
	pos, _ := ecs.GetComponent[*components.PositionComponent](rig.em, id)
	if math.Abs(pos.X-0.3) > 1e-9 || math.Abs(pos.Y-0.4) > 1e-9 {
		t.Errorf("spawn = (%v, %v), want (0.3, 0.4)", pos.X, pos.Y)
	}
	if rig.projectiles.Phase(id) != components.ProjectileFlying {
		t.Errorf("launched projectile should be flying")
	}
}

// TestLaunchClampsForce 测试力度限制在 [0, MaxLaunchForce]
func TestLaunchClampsForce(t *testing.T) {
	tests := []struct {
		name  string
		force float64
		speed float64
	}{
		{name: "超过上限", force: 100, speed: 20},
		{name: "负数", force: -5, speed: 0},
		{name: "正常", force: 7, speed: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig()
			tank := rig.startLevel([]string{"shell"}, 1)
			id, err := rig.launcher.Launch(tank, utils.Vec2{X: 1}, tt.force)
			if err != nil {
				t.Fatalf("Launch failed: %v", err)
			}
			vel, _ := ecs.GetComponent[*components.VelocityComponent](rig.em, id)
			if math.Abs(vel.Vec().Len()-tt.speed) > 1e-9 {
				t.Errorf("speed = %v, want %v", vel.Vec().Len(), tt.speed)
			}
		})
	}
}

// TestLaunchErrors 测试发射前置条件
func TestLaunchErrors(t *testing.T) {
	rig := newTestRig()
	tank := rig.startLevel([]string{"shell", "bouncer"}, 1)

	if _, err := rig.launcher.Launch(tank, utils.Vec2{}, 5); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("zero direction: err = %v, want ErrInvalidDirection", err)
	}

	first, err := rig.launcher.Launch(tank, utils.Vec2{X: 1}, 5)
	if err != nil {
		t.Fatalf("first launch failed: %v", err)
	}
	if _, err := rig.launcher.Launch(tank, utils.Vec2{X: 1}, 5); !errors.Is(err, ErrProjectileInFlight) {
		t.Errorf("launch while in flight: err = %v, want ErrProjectileInFlight", err)
	}

	rig.projectiles.Detonate(first, components.TriggerCollision)
	rig.flush()
	if rig.launcher.Remaining(tank) != 1 {
		t.Fatalf("remaining = %d, want 1", rig.launcher.Remaining(tank))
	}

	second, err := rig.launcher.Launch(tank, utils.Vec2{X: 1}, 5)
	if err != nil {
		t.Fatalf("second launch failed: %v", err)
	}
	if p := projectileOf(rig, second); p.Type != "bouncer" {
		t.Errorf("second projectile type = %s, want bouncer", p.Type)
	}
	rig.projectiles.Detonate(second, components.TriggerTimeout)
	rig.flush()

	if _, err := rig.launcher.Launch(tank, utils.Vec2{X: 1}, 5); !errors.Is(err, ErrOutOfAmmo) {
		t.Errorf("empty magazine: err = %v, want ErrOutOfAmmo", err)
	}
	if got := rig.count(events.EventProjectileLaunched); got != 2 {
		t.Errorf("launched events = %d, want 2", got)
	}
}

// TestLaunchWithoutProjectiles 测试空弹匣和锁定
func TestLaunchWithoutProjectiles(t *testing.T) {
	rig := newTestRig()
	empty := rig.startLevel(nil, 1)
	if _, err := rig.launcher.Launch(empty, utils.Vec2{X: 1}, 5); !errors.Is(err, ErrNoProjectiles) {
		t.Errorf("err = %v, want ErrNoProjectiles", err)
	}

	rig.launcher.Setup(empty, []string{"shell"})
	rig.launcher.Lock(empty)
	if _, err := rig.launcher.Launch(empty, utils.Vec2{X: 1}, 5); !errors.Is(err, ErrLauncherLocked) {
		t.Errorf("err = %v, want ErrLauncherLocked", err)
	}
}

// TestPredictTrajectory 测试弹道预测与重力
func TestPredictTrajectory(t *testing.T) {
	rig := newTestRig()
	tank := rig.startLevel([]string{"shell"}, 1)

	points := rig.launcher.PredictTrajectory(tank, utils.Vec2{X: 1}, 10, 3, 0.5)
	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}
	want := []utils.Vec2{
		{X: 0.5, Y: 0},
		{X: 5.5, Y: -0.5 * 9.81 * 0.25},
		{X: 10.5, Y: -0.5 * 9.81 * 1},
	}
	for i := range want {
		if points[i].Distance(want[i]) > 1e-9 {
			t.Errorf("point %d = %v, want %v", i, points[i], want[i])
		}
	}

	if got := rig.launcher.PredictTrajectory(tank, utils.Vec2{}, 10, 3, 0.5); got != nil {
		t.Errorf("zero direction should predict nothing, got %v", got)
	}
}
