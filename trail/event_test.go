package trail

import "testing"

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Emit(ev Event) {
	s.events = append(s.events, ev)
}

func TestMultiSinkFansOutInOrder(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	multi := MultiSink{a, b}

	multi.Emit(Event{Kind: KindAttempting, Target: "10.0.0.1:443"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both sinks to receive the event")
	}
	if a.events[0].Kind != KindAttempting {
		t.Fatalf("expected KindAttempting, got %v", a.events[0].Kind)
	}
}

func TestMultiSinkEmpty(t *testing.T) {
	var multi MultiSink
	multi.Emit(Event{Kind: KindAbort}) // must not panic
}
