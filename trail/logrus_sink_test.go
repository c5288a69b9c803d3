package trail

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestLogrusSinkEmitLevelsByKind(t *testing.T) {
	hook := logrustest.NewLocal(logrus.StandardLogger())
	defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

	sink := NewLogrusSink()

	sink.Emit(Event{Kind: KindTXRequest, Target: "10.0.0.1:443"})
	sink.Emit(Event{Kind: KindTimeout, Target: "10.0.0.1:443"})
	sink.Emit(Event{Kind: KindAbort, Reason: AbortPermanent})

	if len(hook.Entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(hook.Entries))
	}
	if hook.Entries[0].Level != logrus.InfoLevel {
		t.Fatalf("expected TXRequest at info level, got %v", hook.Entries[0].Level)
	}
	if hook.Entries[1].Level != logrus.WarnLevel {
		t.Fatalf("expected Timeout at warn level, got %v", hook.Entries[1].Level)
	}
	if hook.Entries[2].Level != logrus.ErrorLevel {
		t.Fatalf("expected Abort at error level, got %v", hook.Entries[2].Level)
	}
	if hook.Entries[2].Data["reason"] != AbortPermanent {
		t.Fatalf("expected reason field carried through, got %v", hook.Entries[2].Data["reason"])
	}
}
