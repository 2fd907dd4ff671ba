package systems

import (
	"testing"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/utils"
)

// TestReleaseCancelsPendingActions 测试释放首领时取消其转身和眩晕恢复计时
func TestReleaseCancelsPendingActions(t *testing.T) {
	tests := []struct {
		name    string
		stunned bool
		pending ActionKind
	}{
		{name: "flip pending", stunned: false, pending: ActionBossFlip},
		{name: "stun recover pending", stunned: true, pending: ActionStunRecover},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig()
			boss := rig.mustRobot("boss", utils.Vec2{X: 10})
			state, _ := ecs.GetComponent[*components.BossComponent](rig.em, boss)
			rig.robots.Start()

			if tt.stunned {
				// 面向左侧时背面在右
				shell := rig.mustProjectile("shell", utils.Vec2{X: 11})
				rig.robots.HandleImpact(components.ImpactEvent{Source: shell, Target: boss, Point: utils.Vec2{X: 11}})
				if !rig.robots.IsStunned(boss) {
					t.Fatal("back hit should stun the boss")
				}
			}
			if _, ok := rig.scheduler.PendingFor(boss, tt.pending); !ok {
				t.Fatalf("expected %v pending before release", tt.pending)
			}
			facing := state.FacingRight

			if !rig.destruction.Release(boss) {
				t.Fatal("Release should succeed for a live entity")
			}
			for _, kind := range []ActionKind{ActionBossFlip, ActionStunRecover, ActionDestroy} {
				if _, ok := rig.scheduler.PendingFor(boss, kind); ok {
					t.Errorf("%v still pending after release", kind)
				}
			}

			rig.advance(10)
			if state.FacingRight != facing {
				t.Error("released boss must not flip")
			}
			if rig.em.Exists(boss) {
				t.Error("released boss should be removed")
			}
		})
	}
}

// TestReleaseTwice 测试重复释放为无操作且只发出一次释放事件
func TestReleaseTwice(t *testing.T) {
	rig := newTestRig()
	id := rig.mustBlock("wood", utils.Vec2{X: 3})
	rig.destruction.ScheduleDestroy(id, 2)

	if !rig.destruction.Release(id) {
		t.Fatal("first Release should succeed")
	}
	rig.advance(0)
	if rig.destruction.Release(id) {
		t.Error("second Release should be a no-op")
	}

	rig.advance(3)
	if got := rig.count(events.EventEntityReleased); got != 1 {
		t.Errorf("released events = %d, want 1", got)
	}
	if rig.scheduler.PendingCount() != 0 {
		t.Errorf("pending = %d, want 0", rig.scheduler.PendingCount())
	}
}
