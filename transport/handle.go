// Package transport is the downward transport contract, implemented
// over net/http. It generalizes the *http.Transport + custom
// DialContext construction built inline in invoke/httpclient.go into
// a per-worker handle the executor drives explicitly, one attempt at
// a time.
package transport

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Handle is one worker's live transport connection and its dial
// configuration. It implements pool.Handle so a *Handle can live
// inside a pool.CacheEntry without pool importing this package.
//
// Only one HTTP connection per host is ever kept open (MaxConnsPerHost
// = 1), matching CURLOPT_MAXCONNECTS(1) in the original — a worker
// talks to one peer at a time and recycles deliberately rather than
// pooling many.
type Handle struct {
	transport *http.Transport
	client    *http.Client
	dialer    *net.Dialer
}

// NewHandle builds a Handle. connectTimeout bounds DNS+TCP
// establishment for a single address; SetConnectTimeout replaces it
// before each attempt (the executor passes its configured
// ConnectTimeout).
func NewHandle(connectTimeout time.Duration) *Handle {
	dialer := &net.Dialer{
		Timeout: connectTimeout,
		// Nagle is not required, matching CURLOPT_TCP_NODELAY(1) —
		// net.Dialer disables Nagle by default via TCPKeepAlive-less
		// dialing is not directly exposed, so this is enforced at
		// connection level in dialContextWithOverride.
	}

	t := &http.Transport{
		DialContext:           dialContextWithOverride(dialer),
		MaxConnsPerHost:       1,
		DisableKeepAlives:     false,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 0,
		// We pin the exact peer IP ourselves per attempt (see
		// dialContextWithOverride); no benefit to net/http's own DNS
		// caching layer here, so nothing further to disable — Go's
		// http.Transport does not cache DNS itself.
	}

	return &Handle{
		transport: t,
		client:    &http.Client{Transport: t},
		dialer:    dialer,
	}
}

// SetConnectTimeout updates the per-connect timeout used by the next
// dial. Safe to call because a Handle is exclusively owned by one
// worker.
func (h *Handle) SetConnectTimeout(d time.Duration) {
	h.dialer.Timeout = d
	h.transport.TLSHandshakeTimeout = d
}

// SetResponseTimeout updates the response-header timeout (time from
// the request being written to the response headers arriving) used for
// the next attempt.
func (h *Handle) SetResponseTimeout(d time.Duration) {
	h.transport.ResponseHeaderTimeout = d
}

// ForceFresh closes any idle pooled connection so the next request
// dials a brand new TCP connection, standing in for
// CURLOPT_FRESH_CONNECT(1) — net/http has no per-request "fresh
// connection" flag, so we approximate it at the transport level given
// MaxConnsPerHost is already 1.
func (h *Handle) ForceFresh() {
	h.transport.CloseIdleConnections()
}

// Close implements pool.Handle.
func (h *Handle) Close() error {
	h.transport.CloseIdleConnections()
	return nil
}

type overrideKeyType struct{}

var overrideKey overrideKeyType

// withOverride attaches the specific IP that this attempt must dial,
// standing in for CURLOPT_RESOLVE's transient host:port -> ip entry
//. Scoped to a single context/request, so — unlike
// curl's global per-handle resolve list — nothing needs explicit
// removal afterwards.
func withOverride(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, overrideKey, ip)
}

func dialContextWithOverride(dialer *net.Dialer) func(ctx context.Context, network, address string) (net.Conn, error) {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		ip, _ := ctx.Value(overrideKey).(string)
		if ip == "" {
			return dialer.DialContext(ctx, network, address)
		}

		_, port, err := net.SplitHostPort(address)
		if err != nil {
			return nil, err
		}

		conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
		if err != nil {
			return nil, err
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}

		return conn, nil
	}
}
