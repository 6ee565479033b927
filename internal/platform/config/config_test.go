package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hrdesk/internal/kv"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hrdesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `namespace: acme
fixture_path: ./seed.json
storage:
  driver: sqlite
  sqlite:
    path: /tmp/acme.db
broadcast:
  driver: redis
  redis:
    addr: localhost:6379
  ping_interval: "3s"
log:
  format: json
  level: debug
metrics:
  driver: prometheus
auth:
  jwt_secret: top
  token_ttl: "30m"
backfill:
  schedule: "0 1 * * *"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Namespace != "acme" || cfg.Storage.Driver != kv.DriverSQLite || cfg.Storage.SQLite.Path != "/tmp/acme.db" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Broadcast.Topic != "acme_sync" || cfg.Broadcast.PingInterval != 3*time.Second {
		t.Errorf("unexpected broadcast config: %+v", cfg.Broadcast)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Format != "json" || cfg.Metrics.Name != "acme" || cfg.Backfill.Schedule != "0 1 * * *" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Namespace != "hrdesk" || cfg.Storage.Driver != kv.DriverFilesystem || cfg.Broadcast.Driver != BroadcastHub {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Broadcast.PingInterval != 10*time.Second {
		t.Errorf("expected default ping interval, got %v", cfg.Broadcast.PingInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HRDESK_NAMESPACE", "envns")
	t.Setenv("HRDESK_KV_DRIVER", "memory")
	t.Setenv("HRDESK_JWT_SECRET", "from-env")
	cfg, err := Load(writeConfig(t, "namespace: filens\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Namespace != "envns" || cfg.Storage.Driver != kv.DriverMemory || cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown storage":    "storage:\n  driver: floppy\n",
		"postgres dsn":       "storage:\n  driver: postgres\n",
		"s3 bucket":          "storage:\n  driver: s3\n",
		"redis broadcast":    "broadcast:\n  driver: redis\n",
		"bad duration":       "auth:\n  token_ttl: soon\n",
		"unknown metrics":    "metrics:\n  driver: statsd\n",
		"blank namespace":    "namespace: \"  \"\n",
		"unknown broadcast":  "broadcast:\n  driver: carrier-pigeon\n",
		"bad ping interval":  "broadcast:\n  ping_interval: often\n",
		"malformed document": "storage: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
