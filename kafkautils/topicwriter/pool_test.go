package topicwriter

import (
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func newTrailWriteEvent(trail string, wg *sync.WaitGroup) *WriteEvent {
	msg := kafka.Message{Key: []byte(trail), Value: []byte(`{"trail":"` + trail + `"}`)}
	return &WriteEvent{
		Events:     []kafka.Message{msg},
		TotalBytes: len(msg.Value),
		Wg:         wg,
	}
}

func TestWriteEventsPoolReuse(t *testing.T) {
	pool := NewWriteEventsPool(4)

	var wg sync.WaitGroup
	batch := pool.Get()
	batch = append(batch, newTrailWriteEvent("t1", &wg))
	pool.Put(batch)

	reused := pool.Get()
	if len(reused) != 0 {
		t.Fatalf("expected a cleared slice back from the pool, got len %d", len(reused))
	}
}

func TestMessageSlicePoolReuse(t *testing.T) {
	pool := NewMessageSlicePool(4)

	msgs := pool.Get()
	msgs = append(msgs, kafka.Message{Key: []byte("t1")})
	pool.Put(msgs)

	reused := pool.Get()
	if len(reused) != 0 {
		t.Fatalf("expected a cleared slice back from the pool, got len %d", len(reused))
	}
}

func TestWaitForSucceedsBeforeDeadline(t *testing.T) {
	var count int
	ok := WaitFor(func() bool {
		count++
		return count >= 3
	}, time.Second, time.Millisecond)

	if !ok {
		t.Fatalf("expected WaitFor to observe the condition become true")
	}
}

func TestWaitForTimesOut(t *testing.T) {
	ok := WaitFor(func() bool { return false }, 10*time.Millisecond, time.Millisecond)
	if ok {
		t.Fatalf("expected WaitFor to time out")
	}
}
