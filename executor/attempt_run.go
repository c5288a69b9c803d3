package executor

import (
	"context"
	"time"

	"github.com/hello-pionex/sentinel-httpclient/pool"
	"github.com/hello-pionex/sentinel-httpclient/request"
	"github.com/hello-pionex/sentinel-httpclient/trail"
	"github.com/hello-pionex/sentinel-httpclient/transport"
)

// attemptRun carries the per-call mutable state the loop in
// Execute accumulates across targets: the running outcome counters
// that feed the stopping rule, whether a wire success was ever seen,
// and the final decision of why the loop stopped.
type attemptRun struct {
	ex     *Executor
	rec    *trail.Recorder
	entry  *pool.CacheEntry
	handle *transport.Handle
	host   string
	req    request.Request

	count503    int
	count504    int
	timeoutOrIO int
	success     bool
	attempts    int

	lastOutcome transport.Outcome
	abortReason trail.AbortReason
}

// attempt performs one transport call against target and records the
// TX/RX/timeout/curl-error trail events around it.
func (run *attemptRun) attempt(ctx context.Context, target request.Target, fresh bool) transport.Outcome {
	targetLabel := targetString(target)
	run.rec.Attempting(targetLabel)

	correlation := run.rec.NewCorrelation()
	headers := buildHeaders(run.ex.cfg, run.req, correlation)

	timeout := run.ex.responseTimeout()
	run.handle.SetConnectTimeout(run.ex.cfg.ConnectTimeout)
	run.handle.SetResponseTimeout(timeout)

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcome := transport.Do(attemptCtx, run.handle, transport.Attempt{
		Scheme:          run.ex.cfg.Scheme,
		Host:            run.host,
		Target:          target,
		Path:            run.req.Path,
		Method:          run.req.Method,
		Body:            run.req.Body,
		Headers:         headers,
		FreshConnection: fresh,
	})

	if len(outcome.RawRequest) > 0 {
		run.rec.TXRequest(correlation, string(run.req.Method), run.req.Path, targetLabel, outcome.RawRequest)
	}

	switch outcome.Kind {
	case transport.KindOK, transport.KindHTTP503, transport.KindHTTP504, transport.KindFatalHTTP:
		run.rec.RXResponse(correlation, string(run.req.Method), run.req.Path, targetLabel, outcome.Response.StatusCode, outcome.RawResponse)
	case transport.KindTimeoutOrIO:
		run.rec.Timeout(correlation, targetLabel)
	default:
		run.rec.CurlError(correlation, targetLabel, string(run.req.Method), run.req.Path, errorKindLabel(outcome.Kind))
	}

	return outcome
}

// classify folds outcome into the running counters and applies the
// stopping rule. It returns true when the loop should stop trying
// further targets.
func (run *attemptRun) classify(outcome transport.Outcome, fresh bool, target request.Target, now time.Time) bool {
	run.attempts++
	run.lastOutcome = outcome

	switch outcome.Kind {
	case transport.KindOK:
		run.success = true
		if fresh {
			run.entry.UpdateDeadline(now)
		}
		run.entry.SetRemoteIP(target.Address)
		return true

	case transport.KindHTTP503:
		run.count503++

	case transport.KindHTTP504:
		run.count504++

	case transport.KindFatalHTTP, transport.KindNotFoundOrDenied:
		run.abortReason = trail.AbortPermanent
		return true

	case transport.KindTimeoutOrIO:
		run.timeoutOrIO++

	case transport.KindConnectFailure:
		if fresh {
			run.ex.resolver.Blacklist(target)
		}
	}

	if run.count503+run.timeoutOrIO >= 2 {
		run.abortReason = trail.AbortTemporary
		return true
	}
	if run.count504 >= 1 {
		run.abortReason = trail.AbortTemporary
		return true
	}

	return false
}

// response builds the final Response per the outcome-mapping table
// from the last attempt only: when that attempt completed an HTTP
// exchange, its wire status wins, even if it ended the loop by failure
// (503/504/fatal); otherwise its transport failure is mapped. A wire
// response from an earlier attempt does not affect the result.
func (run *attemptRun) response() request.Response {
	if run.attempts == 0 {
		return request.Response{StatusCode: 404}
	}

	if run.lastOutcome.Response.StatusCode != 0 {
		return run.lastOutcome.Response
	}

	return request.Response{StatusCode: mapTransportFailure(run.lastOutcome.Kind)}
}

func mapTransportFailure(kind transport.Kind) int {
	switch kind {
	case transport.KindURLMalformed:
		return 400
	case transport.KindConnectFailure, transport.KindNotFoundOrDenied:
		return 404
	default: // KindTimeoutOrIO and anything else: "any other transport failure"
		return 500
	}
}

func errorKindLabel(kind transport.Kind) string {
	switch kind {
	case transport.KindConnectFailure:
		return "connect_failure"
	case transport.KindNotFoundOrDenied:
		return "not_found_or_denied"
	case transport.KindURLMalformed:
		return "url_malformed"
	default:
		return "timeout_or_io"
	}
}
