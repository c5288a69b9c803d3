package resolver

import (
	"testing"
	"time"

	"github.com/hello-pionex/sentinel-httpclient/request"
)

func TestSplitHostPort(t *testing.T) {
	cases := []struct {
		in       string
		wantHost string
		wantPort int
	}{
		{"hss.example.com:8080", "hss.example.com", 8080},
		{"hss.example.com", "hss.example.com", 0},
		{"[::1]:8080", "::1", 8080},
	}

	for _, c := range cases {
		host, port, err := SplitHostPort(c.in)
		if err != nil {
			t.Errorf("SplitHostPort(%q): %v", c.in, err)
			continue
		}
		if host != c.wantHost || port != c.wantPort {
			t.Errorf("SplitHostPort(%q) = (%q, %d), want (%q, %d)", c.in, host, port, c.wantHost, c.wantPort)
		}
	}
}

func TestParseIPTarget(t *testing.T) {
	r := New(time.Second, 0)

	target, err := r.ParseIPTarget("10.0.0.1", 8080)
	if err != nil {
		t.Fatalf("ParseIPTarget: %v", err)
	}
	if target.AddressFamily != "tcp4" || target.Address != "10.0.0.1" || target.Port != 8080 {
		t.Errorf("unexpected target: %+v", target)
	}

	v6, err := r.ParseIPTarget("[::1]", 8080)
	if err != nil {
		t.Fatalf("ParseIPTarget: %v", err)
	}
	if v6.AddressFamily != "tcp6" {
		t.Errorf("expected tcp6, got %s", v6.AddressFamily)
	}

	if _, err := r.ParseIPTarget("not-an-ip", 8080); err == nil {
		t.Errorf("expected error for non-IP literal")
	}
}

func TestBlacklistCooldownExpires(t *testing.T) {
	r := New(time.Second, 10*time.Millisecond)
	target := request.Target{AddressFamily: "tcp4", Address: "10.0.0.1", Port: 8080, Transport: "tcp"}

	r.Blacklist(target)
	if !r.isBlacklisted(target) {
		t.Fatalf("expected target blacklisted immediately after Blacklist")
	}

	time.Sleep(20 * time.Millisecond)

	if r.isBlacklisted(target) {
		t.Fatalf("expected blacklist entry to expire after cooldown")
	}
}

func TestAllows(t *testing.T) {
	cases := []struct {
		mask        request.HostStateMask
		blacklisted bool
		want        bool
	}{
		{request.AllLists, false, true},
		{request.AllLists, true, true},
		{request.Whitelisted, false, true},
		{request.Whitelisted, true, false},
		{request.Blacklisted, true, true},
		{request.Blacklisted, false, false},
	}

	for _, c := range cases {
		if got := allows(c.mask, c.blacklisted); got != c.want {
			t.Errorf("allows(%v, %v) = %v, want %v", c.mask, c.blacklisted, got, c.want)
		}
	}
}
