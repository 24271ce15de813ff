package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dev-tams/bucketsweep/internal/config"
	"github.com/dev-tams/bucketsweep/internal/retry"
	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

var errTransient = errors.New("transient backend error")

// fakeBucket is a scripted in-memory bucket for failure injection.
type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string][]object.Info
	listFails map[string]int // remaining List failures per prefix
	deleteErr map[string]error
	panicNext bool

	deleted   []string
	listCalls int
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{
		objects:   make(map[string][]object.Info),
		listFails: make(map[string]int),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeBucket) Name() string { return "fake" }

func (f *fakeBucket) Location(key string) string { return "fake://" + key }

func (f *fakeBucket) List(_ context.Context, prefix string) ([]object.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.panicNext {
		f.panicNext = false
		panic("scripted panic")
	}
	if f.listFails[prefix] > 0 {
		f.listFails[prefix]--
		return nil, errTransient
	}
	return f.objects[prefix], nil
}

func (f *fakeBucket) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.deleteErr[key]; ok {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBucket) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeBucket) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func testConfig(prefixes ...string) *config.Config {
	return &config.Config{
		Bucket:        "fake",
		CloudProvider: "local",
		Prefixes:      prefixes,
		AgeThreshold:  259200 * time.Second,
		Interval:      10 * time.Millisecond,
		Workers:       2,
		Retry: retry.Policy{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			Multiplier:  2,
			MaxDelay:    5 * time.Millisecond,
		},
	}
}
