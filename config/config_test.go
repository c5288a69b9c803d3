package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hello-pionex/sentinel-httpclient/code"
)

func TestLoadDecodesKnownTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	doc := `
[base]
mode = "release"

[backend]
host = "backend.example.com"
port = 8443
scheme = "https"

[trail]
verbosity = "detail"
topic = "trail-events"
partitions = 8
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Host != "backend.example.com" || cfg.Backend.Port != 8443 {
		t.Fatalf("unexpected backend: %+v", cfg.Backend)
	}
	if cfg.Trail.Topic != "trail-events" || cfg.Trail.Partitions != 8 {
		t.Fatalf("unexpected trail config: %+v", cfg.Trail)
	}
}

func TestLoadMissingFileReturnsMcode(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}

	var codeErr code.Error
	if !isCodeError(err, &codeErr) {
		t.Fatalf("expected a code.Error, got %T", err)
	}
	if codeErr.Mcode() != "CONFIG_LOAD_FAILED" {
		t.Fatalf("expected CONFIG_LOAD_FAILED, got %s", codeErr.Mcode())
	}
}

func isCodeError(err error, out *code.Error) bool {
	ce, ok := err.(code.Error)
	if ok {
		*out = ce
	}
	return ok
}

func TestResolverTimeoutDefaults(t *testing.T) {
	var r Resolver
	if got := r.LookupTimeout(); got != 2*time.Second {
		t.Fatalf("expected 2s default, got %v", got)
	}
	if got := r.BlacklistCooldown(); got != 0 {
		t.Fatalf("expected 0 (resolver-package default) when unset, got %v", got)
	}
	if got := r.RefreshInterval(); got != 30*time.Second {
		t.Fatalf("expected 30s default, got %v", got)
	}
}

func TestResolverTimeoutOverrides(t *testing.T) {
	r := Resolver{LookupTimeoutMs: 500, BlacklistCooldownMs: 60000, RefreshIntervalMs: 5000}

	if got := r.LookupTimeout(); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", got)
	}
	if got := r.BlacklistCooldown(); got != 60*time.Second {
		t.Fatalf("expected 60s, got %v", got)
	}
	if got := r.RefreshInterval(); got != 5*time.Second {
		t.Fatalf("expected 5s, got %v", got)
	}
}
