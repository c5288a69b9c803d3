// Package resolver is the contract boundary between the request
// executor and the DNS/health-aware resolver. It also
// ships a concrete implementation backed by github.com/rs/dnscache,
// generalizing the dial-time resolution done inline in
// invoke/httpclient.go into a standalone, health-tracking component.
package resolver

import (
	"context"

	"github.com/hello-pionex/sentinel-httpclient/request"
)

// Resolver is the contract the executor consumes. Implementations must
// surface their own ordering decision unchanged — the executor layers
// sticky-first and minimum-retry reordering on top.
type Resolver interface {
	// Resolve returns up to max candidates for host:port, ordered by
	// the resolver's own preference (healthy/whitelisted first),
	// filtered by mask. May return fewer, including zero.
	Resolve(ctx context.Context, host string, port int, max int, mask request.HostStateMask, trail string) ([]request.Target, error)

	// Blacklist marks a target as known-bad. Subsequent Resolve calls
	// should avoid it for a resolver-defined cooldown.
	Blacklist(target request.Target)

	// ParseIPTarget parses a dotted-quad or bracketed IPv6 literal
	// into a Target with the given port. Used by the executor/pool to
	// recognize the cache entry's sticky remote IP as a resolver
	// target.
	ParseIPTarget(literal string, port int) (request.Target, error)
}
