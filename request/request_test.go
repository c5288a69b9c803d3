package request

import "testing"

func TestRequestValid(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/subscriber/1234", true},
		{"", false},
		{"subscriber/1234", false},
	}

	for _, c := range cases {
		got := Request{Path: c.path}.Valid()
		if got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestResponseAddHeader(t *testing.T) {
	var r Response

	r.AddHeader("Content-Type: application/json")
	r.AddHeader("  X-Trace-Id  :  abc123  ")
	r.AddHeader("no-colon-line")
	r.AddHeader("Content-Type: text/plain") // last wins

	want := map[string]string{
		"content-type": "text/plain",
		"x-trace-id":   "abc123",
		"no-colon-line": "",
	}

	for k, v := range want {
		if got := r.Headers[k]; got != v {
			t.Errorf("Headers[%q] = %q, want %q", k, got, v)
		}
	}

	if len(r.Headers) != len(want) {
		t.Errorf("len(Headers) = %d, want %d (got %v)", len(r.Headers), len(want), r.Headers)
	}
}

func TestTargetEqual(t *testing.T) {
	a := Target{AddressFamily: "tcp4", Address: "10.0.0.1", Port: 8080, Transport: "tcp"}
	b := Target{AddressFamily: "tcp4", Address: "10.0.0.1", Port: 8080, Transport: "tcp"}
	c := Target{AddressFamily: "tcp4", Address: "10.0.0.2", Port: 8080, Transport: "tcp"}

	if !a.Equal(b) {
		t.Errorf("expected %+v to equal %+v", a, b)
	}
	if a.Equal(c) {
		t.Errorf("expected %+v to not equal %+v", a, c)
	}
}
