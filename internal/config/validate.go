package config

import "fmt"

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("BUCKET is required")
	}
	if c.AgeThreshold < 0 {
		return fmt.Errorf("AGE_THRESHOLD must be >= 0")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("INTERVAL must be > 0")
	}
	if len(c.Prefixes) == 0 {
		return fmt.Errorf("PREFIXES must name at least one prefix")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("MAX_RETRIES must be >= 1")
	}
	if c.Retry.BaseDelay < 0 {
		return fmt.Errorf("RETRY_BASE_MS must be >= 0")
	}

	switch c.CloudProvider {
	case "gke":
	case "aws":
		if c.Region == "" {
			return fmt.Errorf("AWS_REGION is required when CLOUD_PROVIDER=aws")
		}
	case "local":
		if c.LocalPath == "" {
			return fmt.Errorf("LOCAL_PATH is required when CLOUD_PROVIDER=local")
		}
	default:
		return fmt.Errorf("unknown CLOUD_PROVIDER %q (want gke, aws or local)", c.CloudProvider)
	}

	return nil
}
