package sweep

import (
	"time"

	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

// IsStale reports whether obj is old enough to delete. The comparison is
// strict: an object exactly at the threshold is retained, so clock skew
// at the boundary cannot flap the decision. An object with a future
// ModTime is never stale.
func IsStale(obj object.Info, now time.Time, threshold time.Duration) bool {
	age := now.Sub(obj.ModTime)
	if age < 0 {
		return false
	}
	return age > threshold
}
