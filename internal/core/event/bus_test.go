package event

import "testing"

func TestEventsDeliverOnNextSwap(t *testing.T) {
	bus := NewBus()
	var got []ObstacleAdded
	Subscribe(bus, func(ev ObstacleAdded) {
		got = append(got, ev)
	})

	Emit(bus, ObstacleAdded{SessionID: 7, CenterX: 1, CenterZ: 2})
	bus.DispatchAll()
	if len(got) != 0 {
		t.Fatal("event delivered before buffer swap")
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 1 || got[0].SessionID != 7 {
		t.Fatalf("expected one event from session 7, got %v", got)
	}

	// Next swap clears the delivered batch.
	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice: %v", got)
	}
}

func TestDistinctEventTypesRouteSeparately(t *testing.T) {
	bus := NewBus()
	added, removed := 0, 0
	Subscribe(bus, func(ObstacleAdded) { added++ })
	Subscribe(bus, func(ObstacleRemoved) { removed++ })

	Emit(bus, ObstacleAdded{})
	Emit(bus, ObstacleRemoved{})
	Emit(bus, ObstacleRemoved{})
	bus.SwapBuffers()
	bus.DispatchAll()

	if added != 1 || removed != 2 {
		t.Fatalf("added=%d removed=%d, expected 1 and 2", added, removed)
	}
}
