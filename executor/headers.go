package executor

import "github.com/hello-pionex/sentinel-httpclient/request"

// buildHeaders appends the executor's own headers after the caller's
// extras, in a fixed order: an empty Expect (suppressing
// 100-continue), the correlation id, the asserted-identity header
// when enabled, and Content-Type when the body is non-empty.
func buildHeaders(cfg Config, req request.Request, correlation string) []request.Header {
	headers := make([]request.Header, 0, len(req.Headers)+4)
	headers = append(headers, req.Headers...)

	headers = append(headers, request.Header{Name: "Expect", Value: ""})
	headers = append(headers, request.Header{Name: cfg.CorrelationHeader, Value: correlation})

	if cfg.AssertUser && req.AssertedUser != "" {
		headers = append(headers, request.Header{Name: cfg.AssertedIdentityHeader, Value: req.AssertedUser})
	}

	if len(req.Body) > 0 {
		headers = append(headers, request.Header{Name: "Content-Type", Value: "application/json"})
	}

	return headers
}
