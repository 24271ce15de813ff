// Package notify announces fresh bucket uploads to Redis so downstream
// prediction workers pick them up.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dev-tams/bucketsweep/internal/retry"
	"github.com/dev-tams/bucketsweep/internal/storage"
	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

// Announcer scans one upload prefix for objects newer than the previous
// cycle's baseline and writes a work entry per direct upload.
type Announcer struct {
	rdb      *redis.Client
	bucket   storage.Bucket
	prefix   string
	hostname string
	pol      retry.Policy

	// owned by the loop goroutine, advanced once per successful scan
	baseline time.Time
}

func New(redisURL string, bucket storage.Bucket, prefix, hostname string, pol retry.Policy) (*Announcer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return &Announcer{
		rdb:      redis.NewClient(opts),
		bucket:   bucket,
		prefix:   prefix,
		hostname: hostname,
		pol:      pol,
		baseline: time.Now().UTC(),
	}, nil
}

func (a *Announcer) Close() error { return a.rdb.Close() }

// Announce lists the upload prefix and writes one Redis hash per new
// direct upload. The baseline only advances when the scan succeeds, so a
// failed scan re-examines the same window next cycle.
func (a *Announcer) Announce(ctx context.Context) error {
	next := time.Now().UTC()

	var objects []object.Info
	err := a.pol.Do(ctx, func() error {
		var err error
		objects, err = a.bucket.List(ctx, a.prefix)
		return err
	})
	if err != nil {
		return fmt.Errorf("list uploads: %w", err)
	}

	// one snapshot of existing keys to guard against double announcements
	var existing []string
	err = a.pol.Do(ctx, func() error {
		var err error
		existing, err = a.rdb.Keys(ctx, "*").Result()
		return err
	})
	if err != nil {
		return fmt.Errorf("redis keys: %w", err)
	}
	combined := strings.Join(existing, "\t")

	announced := 0
	for _, obj := range objects {
		if obj.Key == a.prefix || !obj.ModTime.After(a.baseline) {
			continue
		}

		filename, ok := directUploadName(obj.Key, a.prefix)
		if !ok {
			log.Debug().Str("key", obj.Key).Msg("not a direct upload, skipping")
			continue
		}
		if strings.Contains(combined, filename) {
			log.Warn().Str("filename", filename).Msg("upload announced before, skipping")
			continue
		}

		fields, err := parsePredictFields(filename)
		if err != nil {
			log.Warn().Err(err).Str("filename", filename).Msg("unparseable upload filename")
			continue
		}

		for _, name := range expandBenchmarking(filename) {
			if err := a.writeEntry(ctx, obj, name, filename, fields); err != nil {
				return err
			}
			announced++
		}
	}

	if announced > 0 {
		log.Info().Int("announced", announced).Msg("new uploads announced")
	}

	a.baseline = next
	return nil
}

func (a *Announcer) writeEntry(ctx context.Context, obj object.Info, name, original string, fields predictFields) error {
	key := fmt.Sprintf("predict_%s_%s", strings.ReplaceAll(uuid.NewString(), "-", ""), name)

	entry := map[string]any{
		"url":                  a.bucket.Location(obj.Key),
		"input_file_name":      a.prefix + original,
		"status":               "new",
		"model_name":           fields.ModelName,
		"model_version":        fields.ModelVersion,
		"postprocess_function": fields.Postprocess,
		"cuts":                 fields.Cuts,
		"identity_upload":      a.hostname,
		"timestamp_upload":     time.Now().UnixMilli(),
	}

	err := a.pol.Do(ctx, func() error {
		return a.rdb.HSet(ctx, key, entry).Err()
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}

	log.Debug().Str("key", key).Msg("wrote redis entry")
	return nil
}
