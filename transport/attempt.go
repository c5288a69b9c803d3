package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/hello-pionex/sentinel-httpclient/request"
)

// Kind classifies the outcome of one attempt.
type Kind int

const (
	KindOK Kind = iota
	KindHTTP503
	KindHTTP504
	KindFatalHTTP
	// KindNotFoundOrDenied is preserved for fidelity with the original's
	// CURLE_COULDNT_RESOLVE_HOST/CURLE_SSL_CACERT permission/not-found
	// bucket — unreachable in practice here since DNS resolution and TLS
	// verification happen outside this package (resolver, net/http's own
	// cert validation) and never surface through classifyTransportError.
	KindNotFoundOrDenied
	KindTimeoutOrIO
	KindConnectFailure
	// KindURLMalformed is preserved for fidelity with the original's
	// CURLE_URL_MALFORMAT/CURLE_NOT_BUILT_IN mapping — unreachable in
	// practice since this package builds its own URLs from
	// already-resolved targets.
	KindURLMalformed
)

// Attempt describes one try against one target.
type Attempt struct {
	Scheme  string
	Host    string // hostname used for the Host header / SNI
	Target  request.Target
	Path    string
	Method  request.Method
	Body    []byte
	Headers []request.Header

	FreshConnection bool
}

// Outcome is the classified result of one Attempt.
type Outcome struct {
	Kind Kind

	Response request.Response // populated whenever an HTTP response was actually received

	RemoteIP string

	RawRequest  []byte
	RawResponse []byte

	Err error
}

// Do drives one attempt to completion against handle. It never
// panics and always returns a classified Outcome — the executor is
// the only layer that decides whether to retry.
func Do(ctx context.Context, handle *Handle, attempt Attempt) Outcome {
	url := fmt.Sprintf("%s://%s:%d%s", attempt.Scheme, attempt.Host, attempt.Target.Port, attempt.Path)

	var bodyReader io.Reader
	if len(attempt.Body) > 0 {
		bodyReader = bytes.NewReader(attempt.Body)
	}

	req, err := http.NewRequestWithContext(ctx, string(attempt.Method), url, bodyReader)
	if err != nil {
		return Outcome{Kind: KindURLMalformed, Err: err}
	}

	req.Host = attempt.Host
	for _, h := range attempt.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	req = req.WithContext(withOverride(ctx, attempt.Target.Address))

	if attempt.FreshConnection {
		handle.ForceFresh()
	}

	rawReq := dumpRequest(req, attempt.Body)

	resp, err := handle.client.Do(req)
	if err != nil {
		return Outcome{
			Kind:       classifyTransportError(err),
			RemoteIP:   attempt.Target.Address,
			RawRequest: rawReq,
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return Outcome{
			Kind:       KindTimeoutOrIO,
			RemoteIP:   attempt.Target.Address,
			RawRequest: rawReq,
			Err:        readErr,
		}
	}

	out := Outcome{
		Kind:        classifyStatus(resp.StatusCode),
		RemoteIP:    attempt.Target.Address,
		RawRequest:  rawReq,
		RawResponse: dumpResponse(resp, body),
	}

	out.Response.StatusCode = resp.StatusCode
	out.Response.Body = body
	for name, values := range resp.Header {
		for _, v := range values {
			out.Response.AddHeader(name + ": " + v)
		}
	}

	return out
}

func classifyStatus(status int) Kind {
	switch {
	case status < 400:
		return KindOK
	case status == 503:
		return KindHTTP503
	case status == 504:
		return KindHTTP504
	default:
		return KindFatalHTTP
	}
}

// classifyTransportError buckets a failed http.Client.Do: a
// connect-level failure (DNS failed or the TCP handshake never
// completed), a timeout or mid-flight I/O error, or (unreachably in
// this port, see KindURLMalformed) an outright malformed request.
func classifyTransportError(err error) Kind {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return KindConnectFailure
		}
		// A read/write failure on an already-established connection —
		// matches CURLE_SEND_ERROR/CURLE_RECV_ERROR.
		return KindTimeoutOrIO
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeoutOrIO
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeoutOrIO
	}

	return KindConnectFailure
}
