package trail

import "testing"

func TestRecorderStampsTrailAndTimestamp(t *testing.T) {
	sink := &recordingSink{}
	r := NewRecorder(sink, "trail-123")

	r.Attempting("10.0.0.1:443")

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Trail != "trail-123" {
		t.Fatalf("expected trail id stamped, got %q", ev.Trail)
	}
	if ev.Timestamp.IsZero() {
		t.Fatalf("expected timestamp stamped")
	}
}

func TestRecorderNilSinkIsNoop(t *testing.T) {
	r := NewRecorder(nil, "trail-123")
	r.Attempting("10.0.0.1:443") // must not panic
	r.Abort(AbortPermanent)
}

func TestRecorderNewCorrelationReturnsAndReports(t *testing.T) {
	sink := &recordingSink{}
	r := NewRecorder(sink, "trail-123")

	id := r.NewCorrelation()
	if id == "" {
		t.Fatalf("expected a non-empty correlation id")
	}
	if len(sink.events) != 1 || sink.events[0].Kind != KindCorrelation {
		t.Fatalf("expected one KindCorrelation event")
	}
	if sink.events[0].Correlation != id {
		t.Fatalf("expected reported correlation to match returned id")
	}
}

func TestRecorderSequenceFieldsPropagate(t *testing.T) {
	sink := &recordingSink{}
	r := NewRecorder(sink, "trail-123")

	r.TXRequest("corr-1", "GET", "/v1/users", "10.0.0.1:443", []byte("body"))
	r.RXResponse("corr-1", "GET", "/v1/users", "10.0.0.1:443", 200, []byte("reply"))
	r.Timeout("corr-1", "10.0.0.1:443")
	r.CurlError("corr-1", "10.0.0.1:443", "GET", "/v1/users", "connect_timeout")
	r.Abort(AbortTemporary)

	if len(sink.events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(sink.events))
	}
	tx := sink.events[0]
	if tx.Kind != KindTXRequest || string(tx.RawRequest) != "body" {
		t.Fatalf("unexpected TXRequest event: %+v", tx)
	}
	rx := sink.events[1]
	if rx.Kind != KindRXResponse || rx.StatusCode != 200 {
		t.Fatalf("unexpected RXResponse event: %+v", rx)
	}
	abort := sink.events[4]
	if abort.Kind != KindAbort || abort.Reason != AbortTemporary {
		t.Fatalf("unexpected Abort event: %+v", abort)
	}
}
