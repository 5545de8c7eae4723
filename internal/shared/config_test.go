package shared_test

import (
	"os"
	"testing"
	"time"

	"propsite/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_DRIVER", "DATA_DIR", "CACHE_TTL_SECONDS", "DEFAULT_LANG"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	c, err := shared.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.StorageDriver != shared.DriverFile || c.DataDir != "./data" {
		t.Fatalf("unexpected storage defaults: %+v", c)
	}
	if c.CacheTTL() != 900*time.Second {
		t.Fatalf("cache ttl: %v", c.CacheTTL())
	}
	if c.DefaultLang != "en" {
		t.Fatalf("default lang: %s", c.DefaultLang)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mysql")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("DEFAULT_LANG", "fr")
	t.Setenv("GUEST_RPS", "0.5")
	c, err := shared.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.StorageDriver != shared.DriverMySQL || c.CacheTTL() != time.Minute || c.DefaultLang != "fr" || c.GuestRPS != 0.5 {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestLoad_RejectsBadDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	if _, err := shared.Load(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoad_RejectsUnsupportedLanguage(t *testing.T) {
	t.Setenv("DEFAULT_LANG", "xx")
	if _, err := shared.Load(); err == nil {
		t.Fatalf("expected error for unsupported DEFAULT_LANG")
	}
}
