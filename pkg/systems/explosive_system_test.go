package systems

import (
	"math"
	"testing"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/utils"
)

// TestExplosiveBlockSequence 测试爆炸方块：死亡冻结 -> 1.2 秒后引爆 -> 1 秒后释放
func TestExplosiveBlockSequence(t *testing.T) {
	rig := newTestRig()
	tnt := rig.mustBlock("tnt", utils.Vec2{X: 0})
	wood := rig.mustBlock("wood", utils.Vec2{X: 1})

	vel, _ := ecs.GetComponent[*components.VelocityComponent](rig.em, tnt)
	vel.VX = 3
	killEntity(rig, tnt)

	body, _ := ecs.GetComponent[*components.PhysicsBodyComponent](rig.em, tnt)
	if !body.Kinematic || vel.VX != 0 {
		t.Fatal("ignited explosive should be frozen")
	}

	rig.advance(1.1)
	if rig.count(events.EventExplosion) != 0 {
		t.Fatal("explosive detonated before its fuse time")
	}
	rig.advance(0.2)
	if rig.count(events.EventExplosion) != 1 {
		t.Fatal("explosive should detonate after 1.2s")
	}
	// 半径 2、最大伤害 100，距离 1 受到 50
	if got := rig.health(wood); math.Abs(got-50) > 1e-9 {
		t.Errorf("wood health = %v, want 50", got)
	}

	rig.advance(0.8)
	if !rig.em.Exists(tnt) {
		t.Fatal("explosive released before its explosion duration")
	}
	rig.advance(0.3)
	if rig.em.Exists(tnt) {
		t.Error("explosive should be released after its explosion duration")
	}
}

// TestExplosiveChainReaction 测试连锁引爆为独立的延迟结算
func TestExplosiveChainReaction(t *testing.T) {
	rig := newTestRig()
	first := rig.mustBlock("tnt", utils.Vec2{X: 0})
	second := rig.mustBlock("tnt", utils.Vec2{X: 0.5})
	third := rig.mustBlock("tnt", utils.Vec2{X: 1.0})

	// 第一个引爆：距离 0.5 受到 75，距离 1 受到 50，都不致命
	killEntity(rig, first)
	rig.advance(1.2)
	if rig.count(events.EventExplosion) != 1 {
		t.Fatalf("explosions = %d, want 1", rig.count(events.EventExplosion))
	}
	if rig.health(second) != 25 || rig.health(third) != 50 {
		t.Fatalf("health after first blast = %v / %v, want 25 / 50", rig.health(second), rig.health(third))
	}

	// 第二个被摧毁后在自己的引信时间后才引爆
	killEntity(rig, second)
	if rig.count(events.EventExplosion) != 1 {
		t.Fatal("chained detonation must not resolve inline")
	}
	rig.advance(1.2)
	if rig.count(events.EventExplosion) != 2 {
		t.Fatalf("explosions = %d, want 2", rig.count(events.EventExplosion))
	}

	// 距离 0.5 受到 75，third 死亡并点燃
	h, _ := ecs.GetComponent[*components.HealthComponent](rig.em, third)
	if !h.Dead {
		t.Fatal("third explosive should be destroyed by the second blast")
	}
	rig.advance(1.2)
	if rig.count(events.EventExplosion) != 3 {
		t.Errorf("explosions = %d, want 3", rig.count(events.EventExplosion))
	}
}

// TestIgniteIsIdempotent 测试重复点燃为无操作
func TestIgniteIsIdempotent(t *testing.T) {
	rig := newTestRig()
	tnt := rig.mustBlock("tnt", utils.Vec2{})
	if !rig.explosive.Ignite(tnt) {
		t.Fatal("first ignite should succeed")
	}
	if rig.explosive.Ignite(tnt) {
		t.Error("second ignite should be a no-op")
	}
	rig.advance(5)
	if got := rig.count(events.EventExplosion); got != 1 {
		t.Errorf("explosions = %d, want 1", got)
	}
}
