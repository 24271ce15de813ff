package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dev-tams/bucketsweep/internal/retry"
)

// Config is parsed from the environment once at startup and never
// mutated afterwards.
type Config struct {
	Bucket        string
	CloudProvider string
	Prefixes      []string
	AgeThreshold  time.Duration
	Interval      time.Duration
	Workers       int
	Retry         retry.Policy

	// aws backend
	Region    string
	AccessKey string
	SecretKey string

	// local backend
	LocalPath string

	// upload announcer; disabled when RedisURL is empty
	RedisURL string
	Hostname string

	MetricsAddr string
	LogLevel    string
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("CLOUD_PROVIDER", "gke")
	v.SetDefault("AGE_THRESHOLD", "259200")
	v.SetDefault("INTERVAL", "21600")
	v.SetDefault("PREFIXES", "uploads/,output/")
	v.SetDefault("WORKERS", "4")
	v.SetDefault("MAX_RETRIES", "4")
	v.SetDefault("RETRY_BASE_MS", "500")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("LOG_LEVEL", "info")

	age, err := intVar(v, "AGE_THRESHOLD")
	if err != nil {
		return nil, err
	}
	interval, err := intVar(v, "INTERVAL")
	if err != nil {
		return nil, err
	}
	workers, err := intVar(v, "WORKERS")
	if err != nil {
		return nil, err
	}
	maxRetries, err := intVar(v, "MAX_RETRIES")
	if err != nil {
		return nil, err
	}
	baseMS, err := intVar(v, "RETRY_BASE_MS")
	if err != nil {
		return nil, err
	}

	pol := retry.Default()
	pol.MaxAttempts = maxRetries
	pol.BaseDelay = time.Duration(baseMS) * time.Millisecond

	hostname := v.GetString("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	redisURL := ""
	if host := v.GetString("REDIS_HOST"); host != "" {
		redisURL = fmt.Sprintf("redis://%s:%d", host, v.GetInt("REDIS_PORT"))
	}

	return &Config{
		Bucket:        v.GetString("BUCKET"),
		CloudProvider: v.GetString("CLOUD_PROVIDER"),
		Prefixes:      splitPrefixes(v.GetString("PREFIXES")),
		AgeThreshold:  time.Duration(age) * time.Second,
		Interval:      time.Duration(interval) * time.Second,
		Workers:       workers,
		Retry:         pol,
		Region:        v.GetString("AWS_REGION"),
		AccessKey:     v.GetString("AWS_ACCESS_KEY"),
		SecretKey:     v.GetString("AWS_SECRET_KEY"),
		LocalPath:     v.GetString("LOCAL_PATH"),
		RedisURL:      redisURL,
		Hostname:      hostname,
		MetricsAddr:   v.GetString("METRICS_ADDR"),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}, nil
}

// intVar parses an integer env var itself so a bad value fails startup
// instead of silently becoming zero.
func intVar(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: expected an integer, got %q", key, raw)
	}
	return n, nil
}

// splitPrefixes normalizes the comma-separated PREFIXES value: entries
// are trimmed, a leading slash removed and a trailing slash enforced.
func splitPrefixes(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		out = append(out, p+"/")
	}
	return out
}
