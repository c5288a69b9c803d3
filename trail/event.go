// Package trail implements the observability contract: a correlation
// marker per attempt, TX/RX/timeout events, a curl-error event on
// transport failure, and an abort event tagged Permanent/Temporary on
// retry exhaustion. Two verbosity levels are supported — protocol
// (headers only) and detail (headers + bodies, compressed) — matching
// the original's SAS log-level distinction.
package trail

import "time"

// Verbosity selects how much of an event's payload is retained.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityProtocol
	VerbosityDetail
)

// Kind identifies which point in the executor's flow an event marks.
type Kind string

const (
	KindCorrelation Kind = "correlation"
	KindAttempting  Kind = "attempting"
	KindTXRequest   Kind = "tx_request"
	KindRXResponse  Kind = "rx_response"
	KindTimeout     Kind = "timeout"
	KindCurlError   Kind = "curl_error"
	KindAbort       Kind = "abort"
)

// AbortReason tags why the retry loop gave up.
type AbortReason string

const (
	AbortPermanent AbortReason = "Permanent"
	AbortTemporary AbortReason = "Temporary"
)

// Event is one observability record. The Recorder fills
// RawRequest/RawResponse whenever bytes were captured; only a
// KafkaSink at VerbosityDetail publishes them, and LogrusSink never
// logs them.
type Event struct {
	Kind        Kind        `json:"kind"`
	Trail       string      `json:"trail"`
	Correlation string      `json:"correlation,omitempty"`
	Target      string      `json:"target,omitempty"`
	Method      string      `json:"method,omitempty"`
	Path        string      `json:"path,omitempty"`
	StatusCode  int         `json:"status_code,omitempty"`
	ErrorKind   string      `json:"error_kind,omitempty"`
	Reason      AbortReason `json:"reason,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`

	RawRequest  []byte `json:"raw_request,omitempty"`
	RawResponse []byte `json:"raw_response,omitempty"`
}

// Sink is anywhere an Event can be delivered.
type Sink interface {
	Emit(ev Event)
}

// MultiSink fans an event out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}
