package model

import (
	"sync"
	"time"
)

// Flash is the one-line transient notice in the status bar: refresh
// failures, price window changes, meetup direction links.
type Flash struct {
	mu      sync.RWMutex
	message string
	expires time.Time
}

// Set replaces the notice; it disappears after d.
func (f *Flash) Set(msg string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.expires = time.Now().Add(d)
}

// Get returns the current notice, or empty once it has expired.
func (f *Flash) Get() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return ""
	}
	return f.message
}

// Clear drops the notice immediately.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = ""
	f.expires = time.Time{}
}
