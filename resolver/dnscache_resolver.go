package resolver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hello-pionex/sentinel-httpclient/request"
	"github.com/rs/dnscache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var log = logrus.WithField("pkg", "resolver")

// DefaultBlacklistCooldown is how long a target stays blacklisted
// after Blacklist is called, absent a configured override. While
// blacklisted it is left out of Resolve results under a mask without
// Blacklisted, and ordered after healthy targets otherwise. The original leaves the cooldown to the resolver's
// discretion; five minutes matches a typical
// DNS TTL for a recovering backend.
const DefaultBlacklistCooldown = 5 * time.Minute

// DNSCacheResolver is a Resolver backed by github.com/rs/dnscache,
// generalizing the ad-hoc cached dialer built inline in
// invoke/httpclient.go into a standalone component with blacklist
// bookkeeping and host-state filtering.
type DNSCacheResolver struct {
	dns       *dnscache.Resolver
	group     singleflight.Group
	transport string

	cooldown time.Duration

	mu        sync.Mutex
	blacklist map[string]time.Time
}

// New builds a DNSCacheResolver. lookupTimeout bounds each underlying
// DNS lookup; cooldown is how long a blacklisted target is excluded
// from Resolve results (zero selects DefaultBlacklistCooldown).
func New(lookupTimeout time.Duration, cooldown time.Duration) *DNSCacheResolver {
	if cooldown <= 0 {
		cooldown = DefaultBlacklistCooldown
	}

	return &DNSCacheResolver{
		dns:       &dnscache.Resolver{Timeout: lookupTimeout},
		transport: "tcp",
		cooldown:  cooldown,
		blacklist: make(map[string]time.Time),
	}
}

// Refresh starts the dnscache background refresh loop, matching the
// usual dnscache.Resolver usage pattern of periodically re-resolving
// cached hosts so long-lived processes pick up DNS changes even
// between explicit Resolve calls. Call once at startup; it blocks
// until ctx is done.
func (r *DNSCacheResolver) Refresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.dns.Refresh(true)
		}
	}
}

func targetKey(t request.Target) string {
	return fmt.Sprintf("%s|%s|%d|%s", t.AddressFamily, t.Address, t.Port, t.Transport)
}

// Resolve implements Resolver.
func (r *DNSCacheResolver) Resolve(ctx context.Context, host string, port int, max int, mask request.HostStateMask, trail string) ([]request.Target, error) {
	v, err, _ := r.group.Do(host, func() (interface{}, error) {
		return r.dns.LookupHost(ctx, host)
	})
	if err != nil {
		log.WithFields(logrus.Fields{
			"host":  host,
			"trail": trail,
		}).WithError(err).Warnln("ResolveFailed")
		return nil, err
	}

	ips := v.([]string)

	// Healthy targets first, blacklisted ones after, each group in DNS
	// order.
	var healthy, recovering []request.Target
	for _, ip := range ips {
		target, err := r.ParseIPTarget(ip, port)
		if err != nil {
			continue
		}

		blacklisted := r.isBlacklisted(target)
		if !allows(mask, blacklisted) {
			continue
		}

		if blacklisted {
			recovering = append(recovering, target)
		} else {
			healthy = append(healthy, target)
		}
	}

	targets := append(healthy, recovering...)
	if len(targets) > max {
		targets = targets[:max]
	}

	return targets, nil
}

// Blacklist implements Resolver.
func (r *DNSCacheResolver) Blacklist(target request.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blacklist[targetKey(target)] = time.Now().Add(r.cooldown)
}

func (r *DNSCacheResolver) isBlacklisted(target request.Target) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := targetKey(target)
	expiry, found := r.blacklist[key]
	if !found {
		return false
	}

	if time.Now().After(expiry) {
		delete(r.blacklist, key)
		return false
	}

	return true
}

// ParseIPTarget implements Resolver.
func (r *DNSCacheResolver) ParseIPTarget(literal string, port int) (request.Target, error) {
	literal = strings.Trim(literal, "[]")

	ip := net.ParseIP(literal)
	if ip == nil {
		return request.Target{}, fmt.Errorf("resolver: %q is not an IP literal", literal)
	}

	family := "tcp6"
	if ip.To4() != nil {
		family = "tcp4"
	}

	return request.Target{
		AddressFamily: family,
		Address:       ip.String(),
		Port:          port,
		Transport:     r.transport,
	}, nil
}

// SplitHostPort splits a "host:port" or "[ipv6]:port" server string
// into its host and port parts. A bare host with no port returns
// port 0, matching HttpConnection::host_port_from_server in the
// original source, which lets the caller supply a default.
func SplitHostPort(server string) (host string, port int, err error) {
	server = strings.TrimSpace(server)

	if strings.HasPrefix(server, "[") {
		h, p, err := net.SplitHostPort(server)
		if err != nil {
			return "", 0, err
		}

		portNum, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, err
		}

		return h, portNum, nil
	}

	idx := strings.LastIndexByte(server, ':')
	if idx < 0 {
		return server, 0, nil
	}

	portNum, err := strconv.Atoi(server[idx+1:])
	if err != nil {
		return server, 0, nil
	}

	return server[:idx], portNum, nil
}

func allows(mask request.HostStateMask, blacklisted bool) bool {
	if mask == request.AllLists {
		return true
	}

	if blacklisted {
		return mask&request.Blacklisted != 0
	}

	return mask&request.Whitelisted != 0
}
