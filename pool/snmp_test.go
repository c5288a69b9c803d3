package pool

import "testing"

func TestIPCountTableUpdateInvariant(t *testing.T) {
	table := NewIPCountTable()

	table.update("", "10.0.0.1")
	table.update("", "10.0.0.1")
	if table.Get("10.0.0.1") != 2 {
		t.Fatalf("expected 2, got %d", table.Get("10.0.0.1"))
	}

	table.update("10.0.0.1", "10.0.0.1")
	// same value swap: decrement then increment nets to unchanged
	if table.Get("10.0.0.1") != 2 {
		t.Fatalf("expected 2 after no-op swap, got %d", table.Get("10.0.0.1"))
	}

	table.update("10.0.0.1", "")
	table.update("10.0.0.1", "")
	if _, ok := table.Snapshot()["10.0.0.1"]; ok {
		t.Fatalf("expected row removed once counter reaches zero")
	}
}

func TestIPCountTableNeverNegative(t *testing.T) {
	table := NewIPCountTable()

	table.decrement("10.0.0.1") // no prior increment
	if v := table.Get("10.0.0.1"); v != 0 {
		t.Fatalf("expected row absent (not negative), got %d", v)
	}
}

func TestWorkerPoolEntryLazyAndExclusive(t *testing.T) {
	pool := NewWorkerPool(60000, NewIPCountTable())

	a := pool.Entry(1)
	b := pool.Entry(1)
	if a != b {
		t.Fatalf("expected the same CacheEntry for the same workerID")
	}

	c := pool.Entry(2)
	if a == c {
		t.Fatalf("expected distinct CacheEntry per workerID")
	}

	if pool.Len() != 2 {
		t.Fatalf("expected 2 live entries, got %d", pool.Len())
	}

	if err := pool.Teardown(1); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if pool.Len() != 1 {
		t.Fatalf("expected 1 live entry after teardown, got %d", pool.Len())
	}
}
