package trail

import (
	"time"

	"github.com/google/uuid"
)

// Recorder is the executor's handle onto the observability contract:
// one Recorder per call, bound to a trail id and a sink.
type Recorder struct {
	sink  Sink
	trail string
}

// NewRecorder builds a Recorder for one call. sink may be nil, in
// which case every method is a no-op.
func NewRecorder(sink Sink, trail string) *Recorder {
	return &Recorder{sink: sink, trail: trail}
}

func (r *Recorder) emit(ev Event) {
	if r.sink == nil {
		return
	}

	ev.Trail = r.trail
	ev.Timestamp = time.Now()
	r.sink.Emit(ev)
}

// NewCorrelation mints a v4 UUID for one attempt and reports it
// before the transport call so it is searchable even if the call
// never returns.
func (r *Recorder) NewCorrelation() string {
	id := uuid.New().String()
	r.emit(Event{Kind: KindCorrelation, Correlation: id})
	return id
}

// Attempting records "attempting target ip:port".
func (r *Recorder) Attempting(target string) {
	r.emit(Event{Kind: KindAttempting, Target: target})
}

// TXRequest records the outgoing request.
func (r *Recorder) TXRequest(correlation, method, path, target string, raw []byte) {
	r.emit(Event{
		Kind:        KindTXRequest,
		Correlation: correlation,
		Method:      method,
		Path:        path,
		Target:      target,
		RawRequest:  raw,
	})
}

// RXResponse records a received response.
func (r *Recorder) RXResponse(correlation, method, path, target string, status int, raw []byte) {
	r.emit(Event{
		Kind:        KindRXResponse,
		Correlation: correlation,
		Method:      method,
		Path:        path,
		Target:      target,
		StatusCode:  status,
		RawResponse: raw,
	})
}

// Timeout records a response timeout on target.
func (r *Recorder) Timeout(correlation, target string) {
	r.emit(Event{Kind: KindTimeout, Correlation: correlation, Target: target})
}

// CurlError records a transport-level failure, named for the
// original's sas_log_curl_error.
func (r *Recorder) CurlError(correlation, target, method, path, errorKind string) {
	r.emit(Event{
		Kind:        KindCurlError,
		Correlation: correlation,
		Target:      target,
		Method:      method,
		Path:        path,
		ErrorKind:   errorKind,
	})
}

// Abort records that the retry loop gave up.
func (r *Recorder) Abort(reason AbortReason) {
	r.emit(Event{Kind: KindAbort, Reason: reason})
}
