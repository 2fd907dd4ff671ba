package battle

import (
	"github.com/decker502/robotsiege/pkg/ecs"
	"github.com/decker502/robotsiege/pkg/events"
)

// Listener 模拟通知的消费者（表现层、音效、镜头等）
// 所有回调在结算结束后、在调用 World 方法的线程上同步触发
type Listener interface {
	OnHealthChanged(entity ecs.EntityID, percent float64)
	OnDestroyed(entity ecs.EntityID)
	OnProjectileFinished(projectile ecs.EntityID)
	OnLevelCleared(score, stars int)
	OnLevelFailed()
}

// ListenerFuncs 将函数适配为 Listener，未设置的回调被忽略
type ListenerFuncs struct {
	HealthChanged      func(entity ecs.EntityID, percent float64)
	Destroyed          func(entity ecs.EntityID)
	ProjectileFinished func(projectile ecs.EntityID)
	LevelCleared       func(score, stars int)
	LevelFailed        func()
}

func (f ListenerFuncs) OnHealthChanged(entity ecs.EntityID, percent float64) {
	if f.HealthChanged != nil {
		f.HealthChanged(entity, percent)
	}
}

func (f ListenerFuncs) OnDestroyed(entity ecs.EntityID) {
	if f.Destroyed != nil {
		f.Destroyed(entity)
	}
}

func (f ListenerFuncs) OnProjectileFinished(projectile ecs.EntityID) {
	if f.ProjectileFinished != nil {
		f.ProjectileFinished(projectile)
	}
}

func (f ListenerFuncs) OnLevelCleared(score, stars int) {
	if f.LevelCleared != nil {
		f.LevelCleared(score, stars)
	}
}

func (f ListenerFuncs) OnLevelFailed() {
	if f.LevelFailed != nil {
		f.LevelFailed()
	}
}

// listenerBridge 把事件转发给 Listener
type listenerBridge struct {
	listener Listener
}

func (b listenerBridge) HandleEvent(event events.GameEvent) {
	switch event.Type {
	case events.EventHealthChanged:
		b.listener.OnHealthChanged(event.Entity, event.Value)
	case events.EventDestroyed:
		b.listener.OnDestroyed(event.Entity)
	case events.EventProjectileFinished:
		b.listener.OnProjectileFinished(event.Entity)
	case events.EventLevelCleared:
		b.listener.OnLevelCleared(int(event.Amount), int(event.Value))
	case events.EventLevelFailed:
		b.listener.OnLevelFailed()
	}
}

func (b listenerBridge) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventHealthChanged,
		events.EventDestroyed,
		events.EventProjectileFinished,
		events.EventLevelCleared,
		events.EventLevelFailed,
	}
}
