// Package loadmonitor is the sideways load-monitor contract: a target
// response latency the executor derives its per-attempt timeout from,
// and a penalty counter the executor bumps when downstream capacity
// looks degraded.
package loadmonitor

import "github.com/hello-pionex/sentinel-httpclient/tinyutil"

// DefaultTargetLatencyUs is used when no LoadMonitor is attached.
const DefaultTargetLatencyUs = 500000

// LoadMonitor is the contract the executor consumes.
type LoadMonitor interface {
	// GetTargetLatencyUs returns the node's current target latency in
	// microseconds, used to size the per-attempt response timeout.
	GetTargetLatencyUs() int
	// IncrPenalties signals that downstream capacity is degraded.
	IncrPenalties()
}

// Simple is a minimal LoadMonitor: a fixed target latency and an
// atomic penalty counter, grounded on tinyutil.Int64 the way counters
// are built throughout kafkautils/topicwriter.
type Simple struct {
	targetLatencyUs int
	penalties       tinyutil.Int64
}

// New builds a Simple load monitor with a fixed target latency.
func New(targetLatencyUs int) *Simple {
	if targetLatencyUs <= 0 {
		targetLatencyUs = DefaultTargetLatencyUs
	}

	return &Simple{targetLatencyUs: targetLatencyUs}
}

func (m *Simple) GetTargetLatencyUs() int { return m.targetLatencyUs }

func (m *Simple) IncrPenalties() { m.penalties.Add(1) }

// Penalties returns the current penalty count, for diagnostics.
func (m *Simple) Penalties() int64 { return m.penalties.Load() }
