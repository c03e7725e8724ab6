package favorites

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
)

const snapshotTimeout = 2 * time.Second

// SessionObserver receives every change of every session store.
type SessionObserver func(sessionID string, ch Change)

type RegistryOptions struct {
	// IdleTTL is how long an untouched session store is kept. Zero keeps
	// stores forever.
	IdleTTL   time.Duration
	Snapshots SnapshotStore
	Log       *zap.Logger
}

type entry struct {
	store    *Store
	lastSeen time.Time

	// persist serializes snapshot writes so the last write wins.
	persist sync.Mutex
}

// Registry owns one Store per browser session.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]*entry
	observers []SessionObserver

	idleTTL   time.Duration
	snapshots SnapshotStore
	log       *zap.Logger
	now       func() time.Time

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewRegistry(opts RegistryOptions) *Registry {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		entries:   make(map[string]*entry),
		idleTTL:   opts.IdleTTL,
		snapshots: opts.Snapshots,
		log:       log,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Subscribe adds a registry-wide observer. Observers registered later only
// see changes made after the call.
func (r *Registry) Subscribe(fn SessionObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Get returns the store of sessionID, creating it on first use. A new store
// is filled from the snapshot store when one is configured; a failing
// snapshot load yields an empty store.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.store
	}
	r.mu.Unlock()

	store := NewStore(r.restore(ctx, sessionID)...)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request may have created the store while we were loading.
	if e, ok := r.entries[sessionID]; ok {
		e.lastSeen = r.now()
		return e.store
	}

	e := &entry{store: store, lastSeen: r.now()}
	r.entries[sessionID] = e
	store.Subscribe(func(ch Change) { r.changed(sessionID, e, ch) })
	return store
}

// Len reports how many session stores are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Evict drops stores idle for longer than IdleTTL and returns how many
// were dropped. Their snapshots, if any, stay in the snapshot store.
func (r *Registry) Evict() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Start runs Evict every interval until Close.
func (r *Registry) Start(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-t.C:
				if n := r.Evict(); n > 0 {
					r.log.Debug("evicted idle favorites",
						zap.Int("evicted", n),
						zap.Int("remaining", r.Len()),
					)
				}
			}
		}
	}()
}

func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.wg.Wait()
}

func (r *Registry) restore(ctx context.Context, sessionID string) []catalog.ProductView {
	if r.snapshots == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	items, err := r.snapshots.Load(ctx, sessionID)
	if err != nil {
		r.log.Warn("favorites restore failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	return items
}

// changed persists and fans out a change of e's store. A store evicted
// between Get and the write is reattached; if a newer store already took
// its place, the change is replayed onto that one instead.
func (r *Registry) changed(sessionID string, e *entry, ch Change) {
	r.mu.Lock()
	cur, ok := r.entries[sessionID]
	if !ok {
		r.entries[sessionID] = e
		cur = e
	}
	cur.lastSeen = r.now()
	r.mu.Unlock()

	if cur != e {
		replay(cur.store, ch)
		return
	}

	if r.snapshots != nil {
		e.persist.Lock()
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		if err := r.snapshots.Save(ctx, sessionID, e.store.List()); err != nil {
			r.log.Warn("favorites snapshot failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		cancel()
		e.persist.Unlock()
	}

	r.mu.Lock()
	obs := make([]SessionObserver, len(r.observers))
	copy(obs, r.observers)
	r.mu.Unlock()

	for _, fn := range obs {
		fn(sessionID, ch)
	}
}

func replay(s *Store, ch Change) {
	switch ch.Kind {
	case KindAdd:
		s.Add(ch.Product)
	case KindRemove:
		s.Remove(ch.ID)
	case KindClear:
		s.Clear()
	}
}
