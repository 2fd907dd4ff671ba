package battle

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/decker502/robotsiege/pkg/components"
	"github.com/decker502/robotsiege/pkg/utils"
)

// collect 读取一次指标快照
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

// sumOf 累加计数器所有数据点
func sumOf(t *testing.T, metrics map[string]metricdata.Metrics, name string) int64 {
	t.Helper()
	m, ok := metrics[name]
	if !ok {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: unexpected data type %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// gaugePoints 返回观测值数据点
func gaugePoints(t *testing.T, metrics map[string]metricdata.Metrics, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	m, ok := metrics[name]
	if !ok {
		return nil
	}
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("%s: unexpected data type %T", name, m.Data)
	}
	return gauge.DataPoints
}

func newMeteredWorld(t *testing.T) (*World, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	w, err := NewWorld(Options{MeterProvider: provider})
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	return w, reader
}

func TestMetricsCountDetonationsAndDestroyed(t *testing.T) {
	w, reader := newMeteredWorld(t)

	w.Create(50, utils.Vec2{X: 0})   // 受到 100，死亡
	w.Create(100, utils.Vec2{X: 1})  // 受到 50，存活
	w.Create(100, utils.Vec2{X: 10}) // 范围外
	w.Explode(components.ExplosionSpec{Radius: 2, MaxDamage: 100})

	metrics := collect(t, reader)
	if got := sumOf(t, metrics, "robotsiege.detonations"); got != 1 {
		t.Errorf("detonations = %d, want 1", got)
	}
	if got := sumOf(t, metrics, "robotsiege.entities.destroyed"); got != 1 {
		t.Errorf("destroyed = %d, want 1", got)
	}

	points := gaugePoints(t, metrics, "robotsiege.scheduler.pending")
	if len(points) != 1 || points[0].Value != int64(w.PendingActions()) {
		t.Errorf("pending gauge = %+v, want one point equal to %d", points, w.PendingActions())
	}
	if w.PendingActions() == 0 {
		t.Error("expected pending release / marker actions after the blast")
	}
}

func TestMetricsCountImpacts(t *testing.T) {
	w, reader := newMeteredWorld(t)

	a := w.Create(100, utils.Vec2{X: 0})
	b := w.Create(100, utils.Vec2{X: 1})
	w.ReportImpact(components.ImpactEvent{Source: a, Target: b, RelativeVelocity: utils.Vec2{X: 5}, SourceMass: 1})
	w.ReportImpact(components.ImpactEvent{Source: b, Target: a, RelativeVelocity: utils.Vec2{X: 0.1}, SourceMass: 1})

	if got := sumOf(t, collect(t, reader), "robotsiege.impacts"); got != 2 {
		t.Errorf("impacts = %d, want 2", got)
	}
}

func TestCloseUnregistersPendingGauge(t *testing.T) {
	w, reader := newMeteredWorld(t)
	w.Create(10, utils.Vec2{})
	w.Explode(components.ExplosionSpec{Radius: 2, MaxDamage: 100})

	if len(gaugePoints(t, collect(t, reader), "robotsiege.scheduler.pending")) == 0 {
		t.Fatal("expected pending gauge before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if points := gaugePoints(t, collect(t, reader), "robotsiege.scheduler.pending"); len(points) != 0 {
		t.Errorf("pending gauge still observed after Close: %+v", points)
	}
}
