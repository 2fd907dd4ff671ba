package events

import "testing"

type recordingHandler struct {
	types []EventType
	seen  []GameEvent
}

func (h *recordingHandler) HandleEvent(ev GameEvent) { h.seen = append(h.seen, ev) }
func (h *recordingHandler) EventTypes() []EventType { return h.types }

func TestDispatchAllRoutesByType(t *testing.T) {
	q := NewEventQueue()
	r := NewEventRouter(q)

	destroyed := &recordingHandler{types: []EventType{EventDestroyed}}
	both := &recordingHandler{types: []EventType{EventDestroyed, EventHealthChanged}}
	r.Register(destroyed)
	r.Register(both)

	q.Push(GameEvent{Type: EventHealthChanged, Entity: 1, Value: 0.5})
	q.Push(GameEvent{Type: EventDestroyed, Entity: 2})

	if n := r.DispatchAll(); n != 2 {
		t.Fatalf("Expected 2 dispatched events, got %d", n)
	}
	if len(destroyed.seen) != 1 || destroyed.seen[0].Entity != 2 {
		t.Errorf("Destroyed handler got %+v", destroyed.seen)
	}
	if len(both.seen) != 2 || both.seen[0].Type != EventHealthChanged {
		t.Errorf("Events should be delivered in FIFO order, got %+v", both.seen)
	}
	if q.Len() != 0 {
		t.Error("Queue should be drained")
	}
}

// TestDispatchAllFollowsUpNewEvents 处理器产生的事件在同一次分发中处理
func TestDispatchAllFollowsUpNewEvents(t *testing.T) {
	q := NewEventQueue()
	r := NewEventRouter(q)

	var cleared int
	r.Register(HandlerFunc{
		Types: []EventType{EventDestroyed},
		Fn: func(GameEvent) {
			q.Push(GameEvent{Type: EventLevelCleared})
		},
	})
	r.Register(HandlerFunc{
		Types: []EventType{EventLevelCleared},
		Fn:    func(GameEvent) { cleared++ },
	})

	q.Push(GameEvent{Type: EventDestroyed, Entity: 3})
	r.DispatchAll()

	if cleared != 1 {
		t.Errorf("Expected follow-up event handled once, got %d", cleared)
	}
}

func TestDispatchAllStopsRunawayHandlers(t *testing.T) {
	q := NewEventQueue()
	r := NewEventRouter(q)
	r.Register(HandlerFunc{
		Types: []EventType{EventScoreChanged},
		Fn:    func(ev GameEvent) { q.Push(ev) },
	})

	q.Push(GameEvent{Type: EventScoreChanged})
	if n := r.DispatchAll(); n != maxDispatchRounds {
		t.Errorf("Expected %d dispatched events before bailing out, got %d", maxDispatchRounds, n)
	}
	if q.Len() != 1 {
		t.Errorf("Runaway event should stay queued, got %d", q.Len())
	}
}
