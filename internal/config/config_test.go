package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BUCKET", "test-bucket")
	t.Setenv("CLOUD_PROVIDER", "gke")
	t.Setenv("AGE_THRESHOLD", "")
	t.Setenv("INTERVAL", "")
	t.Setenv("PREFIXES", "")
	t.Setenv("WORKERS", "")
	t.Setenv("MAX_RETRIES", "")
	t.Setenv("RETRY_BASE_MS", "")
	t.Setenv("REDIS_HOST", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.AgeThreshold != 259200*time.Second {
		t.Fatalf("unexpected AgeThreshold default: %s", cfg.AgeThreshold)
	}
	if cfg.Interval != 21600*time.Second {
		t.Fatalf("unexpected Interval default: %s", cfg.Interval)
	}
	if len(cfg.Prefixes) != 2 || cfg.Prefixes[0] != "uploads/" || cfg.Prefixes[1] != "output/" {
		t.Fatalf("unexpected default prefixes: %v", cfg.Prefixes)
	}
	if cfg.CloudProvider != "gke" {
		t.Fatalf("unexpected provider: %s", cfg.CloudProvider)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("redis should be disabled without REDIS_HOST, got %q", cfg.RedisURL)
	}
}

func TestValidateRequiresBucket(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BUCKET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "BUCKET") {
		t.Fatalf("expected BUCKET validation error, got %v", err)
	}
}

func TestLoadRejectsNonNumericInterval(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("INTERVAL", "six hours")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "INTERVAL") {
		t.Fatalf("expected INTERVAL parse error, got %v", err)
	}
}

func TestValidateRejectsEmptyPrefixList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PREFIXES", " , ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "PREFIXES") {
		t.Fatalf("expected PREFIXES validation error, got %v", err)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLOUD_PROVIDER", "azure")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "CLOUD_PROVIDER") {
		t.Fatalf("expected provider validation error, got %v", err)
	}
}

func TestPrefixNormalization(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PREFIXES", "/uploads, output/ ,archive")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	want := []string{"uploads/", "output/", "archive/"}
	if len(cfg.Prefixes) != len(want) {
		t.Fatalf("unexpected prefixes: %v", cfg.Prefixes)
	}
	for i, p := range want {
		if cfg.Prefixes[i] != p {
			t.Fatalf("prefix %d: got %q want %q", i, cfg.Prefixes[i], p)
		}
	}
}

func TestRedisURLFromHostAndPort(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_HOST", "redis-master-0")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.RedisURL != "redis://redis-master-0:6380" {
		t.Fatalf("unexpected redis url: %q", cfg.RedisURL)
	}
}

func TestRetryPolicyFromEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("RETRY_BASE_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Retry.MaxAttempts != 7 {
		t.Fatalf("unexpected MaxAttempts: %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Fatalf("unexpected BaseDelay: %s", cfg.Retry.BaseDelay)
	}
}
