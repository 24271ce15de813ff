package object

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Delete when the object is already gone.
// Callers treat it as a successful deletion.
var ErrNotFound = errors.New("object not found")

// Info is the listing snapshot for one object. It is only valid for the
// cycle that listed it.
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}
