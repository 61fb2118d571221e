package endpoint

import "sync/atomic"

// CancelFlag is the shared cancellation flag observed by the capture
// loop. It is set at most once per cycle by the controller and read by
// the Endpointer at every frame boundary. Setting is idempotent.
type CancelFlag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *CancelFlag) Set() { f.v.Store(true) }

// Reset lowers the flag. Called by the controller before each start.
func (f *CancelFlag) Reset() { f.v.Store(false) }

// IsSet reports whether the flag is raised.
func (f *CancelFlag) IsSet() bool { return f.v.Load() }
