// Package thunks contains pointers to functions that might be replaced in
// tests.
package thunks

import (
	"time"
)

// TimeNow is an alias for time.Now
var TimeNow func() time.Time = time.Now

// SetUpTest replaces thunks with stable test versions. Every call to TimeNow
// advances the clock by one millisecond.
func SetUpTest() {
	t := time.Date(1992, 12, 31, 1, 2, 3, 4, time.UTC)
	TimeNow = func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}
