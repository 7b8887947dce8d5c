package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FOODSHARE_STORE", "FOODSHARE_DB_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"FOODSHARE_KEY_PREFIX", "FOODSHARE_CREDITS_PER_DELIVERY", "FOODSHARE_RUPEES_PER_CREDIT",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodshare.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Lifecycle.CreditsPerDelivery != 10 || cfg.Lifecycle.RupeesPerCredit != 5 || cfg.Lifecycle.SponsorSlots != 4 {
		t.Errorf("lifecycle = %+v", cfg.Lifecycle)
	}
	if cfg.Lifecycle.DefaultVolunteerName != "John Doe" {
		t.Errorf("default volunteer name = %q", cfg.Lifecycle.DefaultVolunteerName)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
store:
  driver: redis
  redis_addr: cache:6379
  key_prefix: "fs:"
lifecycle:
  rupees_per_credit: 8
log:
  level: debug
  format: json
`)
	t.Setenv("REDIS_ADDR", "10.0.0.5:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != DriverRedis {
		t.Errorf("driver = %q, want redis", cfg.Store.Driver)
	}
	if cfg.Store.RedisAddr != "10.0.0.5:6379" {
		t.Errorf("redis addr = %q, env should win", cfg.Store.RedisAddr)
	}
	if cfg.Store.KeyPrefix != "fs:" {
		t.Errorf("key prefix = %q", cfg.Store.KeyPrefix)
	}
	if cfg.Lifecycle.RupeesPerCredit != 8 {
		t.Errorf("rupees per credit = %d, want 8", cfg.Lifecycle.RupeesPerCredit)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Lifecycle.CreditsPerDelivery != 10 {
		t.Errorf("credits per delivery = %d, want 10", cfg.Lifecycle.CreditsPerDelivery)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "store: [not, a, map]")); err == nil {
		t.Error("expected error for bad yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults ok", func(*Config) {}, ""},
		{"memory ok", func(c *Config) { c.Store.Driver = DriverMemory }, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "unknown store.driver"},
		{"redis without addr", func(c *Config) { c.Store.Driver = DriverRedis; c.Store.RedisAddr = "" }, "redis_addr"},
		{"sqlite without path", func(c *Config) { c.Store.SQLitePath = "" }, "sqlite_path"},
		{"zero credits", func(c *Config) { c.Lifecycle.CreditsPerDelivery = 0 }, "credits_per_delivery"},
		{"negative rate", func(c *Config) { c.Lifecycle.RupeesPerCredit = -1 }, "rupees_per_credit"},
		{"no slots", func(c *Config) { c.Lifecycle.SponsorSlots = 0 }, "sponsor_slots"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("got %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
