package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "BACKEND_TIMEOUT", "DEFAULT_PASS_PERCENT", "DEFAULT_RESUBMIT_PERCENT", "CORS_ORIGINS_OFFLINE"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Mode != ModeOffline || cfg.HTTPAddr != ":8080" {
		t.Fatalf("mode/addr = %s %s", cfg.Mode, cfg.HTTPAddr)
	}
	if cfg.DefaultThresholds.Pass != 70 || cfg.DefaultThresholds.Excellent != 90 || cfg.DefaultThresholds.Resubmit != 30 {
		t.Fatalf("thresholds = %+v", cfg.DefaultThresholds)
	}
	if cfg.BackendTimeout != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.BackendTimeout)
	}
	if got := cfg.CORSOrigins(); len(got) != 2 || got[0] != "http://localhost:3000" {
		t.Fatalf("origins = %v", got)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("DEFAULT_RESUBMIT_PERCENT", "25")
	t.Setenv("DEFAULT_PASS_PERCENT", "not-a-number")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("ENABLE_LOCAL_AUTH", "no")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")

	cfg := FromEnv()
	if cfg.DefaultThresholds.Resubmit != 25 || cfg.DefaultThresholds.Pass != 70 {
		t.Fatalf("thresholds = %+v", cfg.DefaultThresholds)
	}
	if cfg.BackendTimeout != 3*time.Second || cfg.EnableLocalAuth {
		t.Fatalf("timeout/local auth = %v %v", cfg.BackendTimeout, cfg.EnableLocalAuth)
	}
	if got := cfg.CORSOrigins(); len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("origins = %v", got)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.env")
	if err := os.WriteFile(path, []byte("BACKEND_BASE_URL=https://api.test/api/v1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILES", path)
	t.Setenv("BACKEND_BASE_URL", "")
	os.Unsetenv("BACKEND_BASE_URL")

	if got := Load().BackendBaseURL; got != "https://api.test/api/v1" {
		t.Fatalf("base url = %q", got)
	}
}
