// Package executor implements the request executor:
// the per-call state machine that turns a request.Request into a
// request.Response by resolving targets, driving the transport through
// them in order, classifying each outcome, and feeding the result back
// to the connection cache, the resolver and the load/communication
// monitors. Grounded directly on HttpConnection::send_request in the
// original source, with the zero-value-defaulting idiom (see
// Config.withDefaults) borrowed from invoke/invoke.go's Invoker.
package executor

import "time"

// DefaultConnectTimeoutMs bounds DNS + TCP establishment for a single
// address.
const DefaultConnectTimeoutMs = 500

// DefaultMaxTargets is the resolver candidate cap.
const DefaultMaxTargets = 5

// DefaultRecycleMeanMs is the mean inter-arrival time of the Poisson
// recycle schedule.
const DefaultRecycleMeanMs = 60000

// DefaultCorrelationHeader names the header the executor uses to
// carry the per-attempt v4 UUID.
const DefaultCorrelationHeader = "X-Correlation-Id"

// DefaultAssertedIdentityHeader is the header added when a call's
// AssertedUser is set and the executor is configured to assert it.
const DefaultAssertedIdentityHeader = "X-XCAP-Asserted-Identity"

// Config is the fixed, per-executor configuration: the backend's
// default host:port, the headers the executor itself injects, and the
// timing knobs it leaves as constants.
type Config struct {
	// Host and Port address the backend fleet by name; a per-call
	// request.Request.HostOverride replaces both for that call only.
	Host string
	Port int
	// Scheme is "http" or "https"; defaults to "http".
	Scheme string

	// AssertUser enables the asserted-identity header for calls that
	// set Request.AssertedUser.
	AssertUser bool

	CorrelationHeader      string
	AssertedIdentityHeader string

	ConnectTimeout time.Duration
	MaxTargets     int
	RecycleMeanMs  float64
}

// withDefaults returns a copy of cfg with zero-valued fields replaced
// by their documented defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if cfg.CorrelationHeader == "" {
		cfg.CorrelationHeader = DefaultCorrelationHeader
	}
	if cfg.AssertedIdentityHeader == "" {
		cfg.AssertedIdentityHeader = DefaultAssertedIdentityHeader
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeoutMs * time.Millisecond
	}
	if cfg.MaxTargets <= 0 {
		cfg.MaxTargets = DefaultMaxTargets
	}
	if cfg.RecycleMeanMs <= 0 {
		cfg.RecycleMeanMs = DefaultRecycleMeanMs
	}

	return cfg
}
