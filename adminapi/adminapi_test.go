package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hello-pionex/sentinel-httpclient/executor"
	"github.com/hello-pionex/sentinel-httpclient/request"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, host string, port int, max int, mask request.HostStateMask, trail string) ([]request.Target, error) {
	return nil, nil
}
func (fakeResolver) Blacklist(request.Target) {}
func (fakeResolver) ParseIPTarget(literal string, port int) (request.Target, error) {
	return request.Target{Address: literal, Port: port}, nil
}

func newTestServer() *Server {
	ex := executor.New(executor.Config{Host: "backend.example.com", Port: 443}, fakeResolver{}, nil, nil, nil)
	return New(ex, "")
}

type envelope struct {
	Result bool            `json:"result"`
	Mcode  string          `json:"mcode"`
	Data   json.RawMessage `json:"data"`
}

func TestGetPoolReportsWorkerCount(t *testing.T) {
	s := newTestServer()
	s.ex.Pool().Entry(1)
	s.ex.Pool().Entry(2)

	req := httptest.NewRequest(http.MethodGet, "/diag/pool", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var diag poolDiag
	if err := json.Unmarshal(env.Data, &diag); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
	if diag.WorkerCount != 2 {
		t.Fatalf("expected 2 workers, got %d", diag.WorkerCount)
	}
}

func TestGetSNMPReportsCounts(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/diag/snmp", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var counts map[string]int64
	if err := json.Unmarshal(env.Data, &counts); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
}

func TestTeardownWorkerSucceeds(t *testing.T) {
	s := newTestServer()
	s.ex.Pool().Entry(7)

	req := httptest.NewRequest(http.MethodPost, "/diag/worker/7/teardown", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var result teardownResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
	if result.WorkerID != 7 {
		t.Fatalf("expected worker_id 7, got %d", result.WorkerID)
	}
}

func TestTeardownWorkerBadIDReturnsMcode(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/diag/worker/not-a-number/teardown", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if got := w.Header().Get("X-Api-Code"); got != "BAD_WORKER_ID" {
		t.Fatalf("expected X-Api-Code BAD_WORKER_ID, got %q", got)
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if env.Mcode != "BAD_WORKER_ID" {
		t.Fatalf("expected mcode BAD_WORKER_ID in body, got %q", env.Mcode)
	}
}
