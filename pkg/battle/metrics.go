package battle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/decker502/robotsiege/pkg/events"
	"github.com/decker502/robotsiege/pkg/systems"
)

const instrumentationName = "github.com/decker502/robotsiege/pkg/battle"

// meter 从 provider 取 Meter，provider 为 nil 时使用全局 provider
func meter(provider metric.MeterProvider) metric.Meter {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	return provider.Meter(instrumentationName)
}

// worldMetrics 模拟指标
// 未配置 OTel provider 时全局 Meter 为 no-op
type worldMetrics struct {
	impacts     metric.Int64Counter
	detonations metric.Int64Counter
	destroyed   metric.Int64Counter
	launches    metric.Int64Counter
	pending     metric.Int64ObservableGauge

	registration metric.Registration
}

func newWorldMetrics(provider metric.MeterProvider, scheduler *systems.Scheduler) (*worldMetrics, error) {
	m := meter(provider)
	wm := &worldMetrics{}

	var err error
	wm.impacts, err = m.Int64Counter(
		"robotsiege.impacts",
		metric.WithDescription("Impacts reported to the simulation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating impacts counter: %w", err)
	}

	wm.detonations, err = m.Int64Counter(
		"robotsiege.detonations",
		metric.WithDescription("Explosions resolved"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating detonations counter: %w", err)
	}

	wm.destroyed, err = m.Int64Counter(
		"robotsiege.entities.destroyed",
		metric.WithDescription("Entities whose health reached zero"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating destroyed counter: %w", err)
	}

	wm.launches, err = m.Int64Counter(
		"robotsiege.projectiles.launched",
		metric.WithDescription("Projectiles launched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating launches counter: %w", err)
	}

	wm.pending, err = m.Int64ObservableGauge(
		"robotsiege.scheduler.pending",
		metric.WithDescription("Delayed actions waiting in the scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pending gauge: %w", err)
	}
	wm.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(wm.pending, int64(scheduler.PendingCount()))
			return nil
		},
		wm.pending,
	)
	if err != nil {
		return nil, fmt.Errorf("registering pending callback: %w", err)
	}

	return wm, nil
}

// close 注销观测回调，之后 provider 不再持有调度器
func (wm *worldMetrics) close() error {
	if wm.registration == nil {
		return nil
	}
	err := wm.registration.Unregister()
	wm.registration = nil
	if err != nil {
		return fmt.Errorf("unregistering pending callback: %w", err)
	}
	return nil
}

func (wm *worldMetrics) recordImpact(rule systems.DamageKind, detonated bool) {
	wm.impacts.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("rule", rule.String()),
		attribute.Bool("detonated", detonated),
	))
}

// HandleEvent 实现 events.EventHandler
func (wm *worldMetrics) HandleEvent(event events.GameEvent) {
	ctx := context.Background()
	kindAttr := attribute.String("kind", event.Kind.String())
	switch event.Type {
	case events.EventExplosion:
		wm.detonations.Add(ctx, 1)
	case events.EventDestroyed:
		wm.destroyed.Add(ctx, 1, metric.WithAttributes(kindAttr))
	case events.EventProjectileLaunched:
		wm.launches.Add(ctx, 1)
	}
}

// EventTypes 实现 events.EventHandler
func (wm *worldMetrics) EventTypes() []events.EventType {
	return []events.EventType{events.EventExplosion, events.EventDestroyed, events.EventProjectileLaunched}
}
