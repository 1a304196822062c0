package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry keeps the open drafts, one per mounted form.
type Registry struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*Draft
	log    *zap.Logger
	now    func() time.Time
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		drafts: make(map[uuid.UUID]*Draft),
		log:    log.With(zap.String("component", "drafts")),
		now:    time.Now,
	}
}

func (r *Registry) Add(d *Draft) {
	r.mu.Lock()
	r.drafts[d.ID()] = d
	r.mu.Unlock()
}

// Get returns the draft only to the session that opened it.
func (r *Registry) Get(id uuid.UUID, owner string) (*Draft, error) {
	r.mu.RLock()
	d, ok := r.drafts[id]
	r.mu.RUnlock()

	if !ok || d.Owner() != owner {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Discard removes and closes a draft. Unknown ids are ignored.
func (r *Registry) Discard(id uuid.UUID) {
	r.mu.Lock()
	d, ok := r.drafts[id]
	delete(r.drafts, id)
	r.mu.Unlock()

	if ok {
		d.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drafts)
}

// Sweep discards drafts idle for longer than maxIdle and returns how many.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.now()

	r.mu.Lock()
	var stale []*Draft
	for id, d := range r.drafts {
		if d.IdleSince(now) > maxIdle {
			stale = append(stale, d)
			delete(r.drafts, id)
		}
	}
	r.mu.Unlock()

	for _, d := range stale {
		d.Close()
	}
	return len(stale)
}

// Run sweeps on every tick until ctx is done, then closes every draft.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.log.Info("Idle drafts discarded", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	drafts := r.drafts
	r.drafts = make(map[uuid.UUID]*Draft)
	r.mu.Unlock()

	for _, d := range drafts {
		d.Close()
	}
}
