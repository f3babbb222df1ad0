package latch

import "sync"

// SyncFlag is the write manager's "flush buffer is idle" signal: a flag
// guarded by a condition variable, the Go shape of the original's sync_t
// (std::condition_variable + std::atomic_bool). The flush lock's critical
// section waits on it before swapping buffers; the background flusher
// sets it once it has finished draining the flush buffer.
type SyncFlag struct {
	mu   sync.Mutex
	cond *sync.Cond
	set  bool
}

// NewSyncFlag returns a SyncFlag initialized to the set (idle) state.
func NewSyncFlag() *SyncFlag {
	f := &SyncFlag{set: true}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// WaitAndClear blocks until the flag is set, then clears it. Used by the
// flush lock's critical section before a buffer swap.
func (f *SyncFlag) WaitAndClear() {
	f.mu.Lock()
	for !f.set {
		f.cond.Wait()
	}
	f.set = false
	f.mu.Unlock()
}

// SetAndNotify sets the flag and wakes one waiter. Used by the background
// flusher once it has drained the flush buffer.
func (f *SyncFlag) SetAndNotify() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
	f.cond.Signal()
}
