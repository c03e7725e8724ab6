// Package favorites keeps per-session favorite products and notifies
// observers when they change.
package favorites

import (
	"sync"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
)

type Kind string

const (
	KindAdd    Kind = "add"
	KindRemove Kind = "remove"
	KindClear  Kind = "clear"
)

// Change describes one committed mutation. Product is the stored snapshot
// for adds and the removed snapshot for removes; it is empty for clears.
type Change struct {
	Kind    Kind
	ID      string
	Product catalog.ProductView
}

// Observer is called once per committed change. Operations that leave the
// store as it was send nothing: re-adding an identical snapshot, removing
// an absent id and clearing an empty store.
type Observer func(Change)

type subscriber struct {
	id int
	fn Observer
}

// Store is an insertion-ordered set of product snapshots keyed by id.
// Observers run on the mutating goroutine after the lock is released, in
// subscription order, and only when state actually changed.
type Store struct {
	mu     sync.Mutex
	items  map[string]catalog.ProductView
	order  []string
	subs   []subscriber
	nextID int
}

// NewStore returns a store pre-filled with initial, without notifying.
func NewStore(initial ...catalog.ProductView) *Store {
	s := &Store{items: make(map[string]catalog.ProductView, len(initial))}
	for _, p := range initial {
		s.put(p)
	}
	return s
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Add inserts p or replaces the snapshot stored under p.ID. A replaced
// entry keeps its original position.
func (s *Store) Add(p catalog.ProductView) {
	s.mu.Lock()
	if old, ok := s.items[p.ID]; ok && old == p {
		s.mu.Unlock()
		return
	}
	s.put(p)
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, Change{Kind: KindAdd, ID: p.ID, Product: p})
}

// Remove deletes id. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	old, ok := s.del(id)
	if !ok {
		s.mu.Unlock()
		return
	}
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, Change{Kind: KindRemove, ID: id, Product: old})
}

// Toggle removes p if present, otherwise adds it, and reports whether p is
// a favorite afterwards.
func (s *Store) Toggle(p catalog.ProductView) bool {
	s.mu.Lock()
	var ch Change
	if old, ok := s.del(p.ID); ok {
		ch = Change{Kind: KindRemove, ID: p.ID, Product: old}
	} else {
		s.put(p)
		ch = Change{Kind: KindAdd, ID: p.ID, Product: p}
	}
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, ch)
	return ch.Kind == KindAdd
}

func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.order) == 0 {
		s.mu.Unlock()
		return
	}
	s.items = make(map[string]catalog.ProductView)
	s.order = nil
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, Change{Kind: KindClear})
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok
}

func (s *Store) Get(id string) (catalog.ProductView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	return p, ok
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// List returns the snapshots in insertion order.
func (s *Store) List() []catalog.ProductView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalog.ProductView, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *Store) put(p catalog.ProductView) {
	if _, ok := s.items[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.items[p.ID] = p
}

func (s *Store) del(id string) (catalog.ProductView, bool) {
	old, ok := s.items[id]
	if !ok {
		return catalog.ProductView{}, false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return old, true
}

// subscribers copies the observer list; callers hold mu.
func (s *Store) subscribers() []Observer {
	out := make([]Observer, len(s.subs))
	for i, sub := range s.subs {
		out[i] = sub.fn
	}
	return out
}

func notify(subs []Observer, ch Change) {
	for _, fn := range subs {
		fn(ch)
	}
}
