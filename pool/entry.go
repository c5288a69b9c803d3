package pool

import (
	"math/rand"
	"time"
)

// Handle is the live transport handle a CacheEntry owns. It is defined
// here as a minimal interface (rather than importing the transport
// package) so pool has no dependency on the concrete HTTP transport —
// the executor wires the two together.
type Handle interface {
	// Close releases the underlying connection(s) and any resources
	// tied to this handle. Called on worker teardown.
	Close() error
}

// CacheEntry is the per-worker connection cache entry. It is never
// shared across workers; the owning worker is the
// only goroutine that touches it, so none of its fields are
// mutex-protected except indirectly through IPCountTable.
//
// A per-attempt DNS override (the "dial this specific IP" directive) is
// carried via context instead of living here — see transport.Handle —
// since it never needs to outlive one attempt.
type CacheEntry struct {
	Handle Handle

	// Deadline is the monotonic instant after which the connection
	// should be recycled. Zero means "never used yet".
	Deadline time.Time

	// RemoteIP is the last-used peer IP, or "" when not connected or
	// the last call ended in hard failure.
	RemoteIP string

	sampler *rand.Rand
	meanMs  float64

	table *IPCountTable
}

// NewCacheEntry builds an empty entry. meanRecycleMs is the mean
// inter-arrival time for the Poisson recycle schedule. table may be nil, meaning this connection
// doesn't report to the SNMP-style counter table (matching the
// original's stat_table == NULL case).
func NewCacheEntry(meanRecycleMs float64, table *IPCountTable) *CacheEntry {
	return &CacheEntry{
		sampler: rand.New(rand.NewSource(time.Now().UnixNano())),
		meanMs:  meanRecycleMs,
		table:   table,
	}
}

// Expired reports whether the connection should be recycled:
// now > deadline.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.Deadline)
}

// UpdateDeadline advances the recycle deadline on a successful
// fresh-connection attempt. Sampling an exponential
// interval with mean e.meanMs and either bumping from now or from the
// previous deadline, whichever keeps the long-run mean inter-arrival
// correct.
func (e *CacheEntry) UpdateDeadline(now time.Time) {
	interval := time.Duration(e.sampler.ExpFloat64() * e.meanMs * float64(time.Millisecond))

	if e.Deadline.IsZero() || e.Deadline.Add(interval).Before(now) {
		e.Deadline = now.Add(interval)
		return
	}

	e.Deadline = e.Deadline.Add(interval)
}

// SetRemoteIP is the single mutator for RemoteIP: a
// no-op when unchanged, otherwise updates the shared SNMP-style
// counter table under its own mutex before storing the new value.
func (e *CacheEntry) SetRemoteIP(ip string) {
	if ip == e.RemoteIP {
		return
	}

	if e.table != nil {
		e.table.update(e.RemoteIP, ip)
	}

	e.RemoteIP = ip
}

// Close tears down the live handle, if any, and resets RemoteIP —
// called on worker teardown.
func (e *CacheEntry) Close() error {
	e.SetRemoteIP("")

	if e.Handle == nil {
		return nil
	}

	err := e.Handle.Close()
	e.Handle = nil

	return err
}
