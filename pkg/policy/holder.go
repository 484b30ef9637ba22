package policy

import (
	"sync/atomic"
	"time"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

// Snapshot is one loaded policy and the service built from it.
type Snapshot struct {
	Service  *permission.Service
	Source   string
	SHA256   string
	Version  int
	LoadedAt time.Time
}

// Holder publishes the current policy snapshot. Readers never block; a
// reload replaces the whole snapshot and never mutates a published one.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns a Holder publishing snap.
func NewHolder(snap *Snapshot) *Holder {
	h := &Holder{}
	h.Store(snap)
	return h
}

// Load returns the current service, or nil when nothing has been stored.
func (h *Holder) Load() *permission.Service {
	if snap := h.current.Load(); snap != nil {
		return snap.Service
	}
	return nil
}

// Current returns the current snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Store publishes snap.
func (h *Holder) Store(snap *Snapshot) {
	h.current.Store(snap)
}
