package kitchen

import (
	"sync"
	"time"

	"github.com/dukerupert/reciperescue/internal/model"
)

// Watchers tracks live connections per kitchen. Kitchens with a live
// connection are never idle, and connections are told when their kitchen
// goes away.
type Watchers interface {
	KitchenClientCount(kitchenID string) int
	CloseKitchen(kitchenID, reason string)
}

// Registry maps session ids to kitchens, creating them on first use.
type Registry struct {
	mu       sync.Mutex
	kitchens map[string]*Kitchen
	deps     Deps
	watchers Watchers
}

// NewRegistry creates an empty registry whose kitchens share deps.
func NewRegistry(deps Deps) *Registry {
	deps.setDefaults()
	return &Registry{
		kitchens: make(map[string]*Kitchen),
		deps:     deps,
	}
}

// Get returns the kitchen for id, creating it if needed, and marks it as
// recently used.
func (r *Registry) Get(id string) *Kitchen {
	r.mu.Lock()
	k, ok := r.kitchens[id]
	if !ok {
		k = New(id, r.deps)
		r.kitchens[id] = k
		r.deps.Logger.Debug("kitchen created", "kitchen", id)
	}
	r.mu.Unlock()
	k.touch()
	return k
}

// SetWatchers attaches the live connection tracker. Call before serving.
func (r *Registry) SetWatchers(w Watchers) {
	r.mu.Lock()
	r.watchers = w
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.kitchens)
}

// EachInventory calls fn with the id and current ingredients of every kitchen.
func (r *Registry) EachInventory(fn func(kitchenID string, items []model.Ingredient)) {
	for _, k := range r.snapshot() {
		fn(k.id, k.inv.List())
	}
}

func (r *Registry) snapshot() []*Kitchen {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Kitchen, 0, len(r.kitchens))
	for _, k := range r.kitchens {
		out = append(out, k)
	}
	return out
}

// Cleanup closes and forgets kitchens idle for longer than ttl. A kitchen
// with a live connection is not idle. It returns the number removed.
func (r *Registry) Cleanup(ttl time.Duration) int {
	cutoff := r.deps.Now().Add(-ttl)

	r.mu.Lock()
	w := r.watchers
	var idle []*Kitchen
	for id, k := range r.kitchens {
		if !k.LastSeen().Before(cutoff) {
			continue
		}
		if w != nil && w.KitchenClientCount(id) > 0 {
			continue
		}
		idle = append(idle, k)
		delete(r.kitchens, id)
	}
	r.mu.Unlock()

	for _, k := range idle {
		r.close(w, k, "session expired")
	}
	if len(idle) > 0 {
		r.deps.Logger.Info("idle kitchens removed", "count", len(idle))
	}
	return len(idle)
}

// Close closes every kitchen.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.kitchens
	w := r.watchers
	r.kitchens = make(map[string]*Kitchen)
	r.mu.Unlock()

	for _, k := range all {
		r.close(w, k, "server shutting down")
	}
}

func (r *Registry) close(w Watchers, k *Kitchen, reason string) {
	k.Close()
	if w != nil {
		w.CloseKitchen(k.id, reason)
	}
}
