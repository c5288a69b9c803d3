package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/hello-pionex/sentinel-httpclient/commmonitor"
	"github.com/hello-pionex/sentinel-httpclient/loadmonitor"
	"github.com/hello-pionex/sentinel-httpclient/pool"
	"github.com/hello-pionex/sentinel-httpclient/request"
	"github.com/hello-pionex/sentinel-httpclient/resolver"
	"github.com/hello-pionex/sentinel-httpclient/trail"
	"github.com/hello-pionex/sentinel-httpclient/transport"
)

// Executor is the single entry point: one operation, Execute, that
// never fails with an error of its own — every outcome, including
// total failure, comes back as a request.Response whose StatusCode
// encodes what happened.
type Executor struct {
	cfg Config

	resolver resolver.Resolver
	pool     *pool.WorkerPool
	ipTable  *pool.IPCountTable

	loadMonitor loadmonitor.LoadMonitor
	commMonitor commmonitor.CommunicationMonitor
	sink        trail.Sink
}

// New builds an Executor. loadMonitor, commMonitor and sink may all be
// nil.
func New(cfg Config, res resolver.Resolver, lm loadmonitor.LoadMonitor, cm commmonitor.CommunicationMonitor, sink trail.Sink) *Executor {
	cfg = cfg.withDefaults()
	ipTable := pool.NewIPCountTable()

	return &Executor{
		cfg:         cfg,
		resolver:    res,
		pool:        pool.NewWorkerPool(cfg.RecycleMeanMs, ipTable),
		ipTable:     ipTable,
		loadMonitor: lm,
		commMonitor: cm,
		sink:        sink,
	}
}

// IPCountTable exposes the process-wide SNMP-style counter table for
// the diagnostics surface.
func (ex *Executor) IPCountTable() *pool.IPCountTable { return ex.ipTable }

// Pool exposes the worker pool for the diagnostics surface.
func (ex *Executor) Pool() *pool.WorkerPool { return ex.pool }

// Teardown releases workerID's cache entry.
func (ex *Executor) Teardown(workerID int) error {
	return ex.pool.Teardown(workerID)
}

// Execute drives one call to completion on behalf of workerID. Each
// workerID owns its own connection-cache entry exclusively — callers
// must never invoke Execute for the same workerID from two goroutines
// concurrently.
func (ex *Executor) Execute(ctx context.Context, workerID int, req request.Request) request.Response {
	if !req.Valid() {
		return request.Response{StatusCode: 400}
	}

	rec := trail.NewRecorder(ex.sink, req.Trail)

	host, port := ex.cfg.Host, ex.cfg.Port
	if req.HostOverride != "" {
		if h, p, err := resolver.SplitHostPort(req.HostOverride); err == nil {
			host, port = h, p
		}
	}

	entry := ex.pool.Entry(workerID)
	now := time.Now()

	targets, err := ex.resolver.Resolve(ctx, host, port, ex.cfg.MaxTargets, req.AllowedHostState, req.Trail)
	if err != nil || len(targets) == 0 {
		entry.SetRemoteIP("")
		ex.signalFailure(now)
		return request.Response{StatusCode: 404}
	}

	targets = assembleTargets(targets, entry, now)

	if entry.Handle == nil {
		entry.Handle = transport.NewHandle(ex.cfg.ConnectTimeout)
	}
	handle, ok := entry.Handle.(*transport.Handle)
	if !ok {
		// Defensive only: a CacheEntry is only ever populated by this
		// package, so Handle is always a *transport.Handle.
		handle = transport.NewHandle(ex.cfg.ConnectTimeout)
		entry.Handle = handle
	}

	run := &attemptRun{
		ex:     ex,
		rec:    rec,
		entry:  entry,
		handle: handle,
		host:   host,
		req:    req,
	}

	for _, target := range targets {
		fresh := entry.Expired(now)

		outcome := run.attempt(ctx, target, fresh)

		if run.classify(outcome, fresh, target, now) {
			break
		}
	}

	if !run.success && run.abortReason == "" {
		run.abortReason = trail.AbortTemporary
	}

	// Mirrors the original's unconditional set_remote_ip("") on any
	// non-CURLE_OK exit: a hard failure never leaves a stale sticky IP
	// behind for the next call's assembleTargets to trust.
	if !run.success {
		entry.SetRemoteIP("")
	}

	ex.applyBackpressure(run)
	ex.signalCommMonitor(run, now)

	if run.abortReason != "" {
		rec.Abort(run.abortReason)
	}

	return run.response()
}

// signalFailure tells the communication monitor about a call that
// never got to attempt a single target (resolver returned nothing).
func (ex *Executor) signalFailure(now time.Time) {
	if ex.commMonitor != nil {
		ex.commMonitor.InformFailure(now)
	}
}

func (ex *Executor) applyBackpressure(run *attemptRun) {
	if ex.loadMonitor == nil {
		return
	}

	if run.count503 >= 2 || run.count504 >= 1 {
		ex.loadMonitor.IncrPenalties()
	}
}

func (ex *Executor) signalCommMonitor(run *attemptRun, now time.Time) {
	if ex.commMonitor == nil {
		return
	}

	if run.success && run.count503 < 2 {
		ex.commMonitor.InformSuccess(now)
		return
	}

	ex.commMonitor.InformFailure(now)
}

// assembleTargets applies the sticky-first and minimum-retry rules on
// top of the resolver's own ordering.
func assembleTargets(targets []request.Target, entry *pool.CacheEntry, now time.Time) []request.Target {
	out := make([]request.Target, len(targets))
	copy(out, targets)

	if !entry.Expired(now) && entry.RemoteIP != "" {
		for i, t := range out {
			if t.Address == entry.RemoteIP {
				sticky := out[i]
				out = append(out[:i], out[i+1:]...)
				out = append([]request.Target{sticky}, out...)
				break
			}
		}
	}

	if len(out) == 1 {
		out = append(out, out[0])
	}

	return out
}

func targetString(t request.Target) string {
	return fmt.Sprintf("%s:%d", t.Address, t.Port)
}

// responseTimeout implements per-attempt timeout:
// max(1ms, target_latency_us * 5 / 1000), where target_latency_us
// comes from the attached load monitor or loadmonitor.DefaultTargetLatencyUs.
func (ex *Executor) responseTimeout() time.Duration {
	targetLatencyUs := loadmonitor.DefaultTargetLatencyUs
	if ex.loadMonitor != nil {
		targetLatencyUs = ex.loadMonitor.GetTargetLatencyUs()
	}

	ms := targetLatencyUs * 5 / 1000
	if ms < 1 {
		ms = 1
	}

	return time.Duration(ms) * time.Millisecond
}
