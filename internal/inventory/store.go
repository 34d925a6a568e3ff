// Package inventory holds a kitchen's ingredient list in memory.
package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/reciperescue/internal/expiry"
	"github.com/dukerupert/reciperescue/internal/model"
)

// ManualDefaultDays is how far out a manually added item without a date expires.
const ManualDefaultDays = 3

// Store is an insertion-ordered ingredient collection. Safe for concurrent access.
type Store struct {
	mu        sync.RWMutex
	items     []model.Ingredient
	now       func() time.Time
	lastStamp int64
}

// NewStore creates an empty store using the wall clock.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates an empty store that reads the time from now.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// stamp returns a millisecond timestamp strictly greater than any it has
// returned before, so ids derived from it are never reused. Caller holds mu.
func (s *Store) stamp() int64 {
	ms := s.now().UnixMilli()
	if ms <= s.lastStamp {
		ms = s.lastStamp + 1
	}
	s.lastStamp = ms
	return ms
}

// AddBatch appends recognized items in order, assigning each a fresh id.
// Existing items are untouched.
func (s *Store) AddBatch(items []model.RecognizedItem) []model.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	ms := s.stamp()
	added := make([]model.Ingredient, 0, len(items))
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		ing := model.Ingredient{
			ID:         fmt.Sprintf("ing-%d-%d", ms, i),
			Name:       name,
			Category:   NormalizeCategory(it.Category, name),
			Quantity:   strings.TrimSpace(it.Quantity),
			ExpiryDate: strings.TrimSpace(it.ExpiryDate),
		}
		added = append(added, ing)
	}
	s.items = append(s.items, added...)
	return added
}

// AddManual adds a single item typed in by the user. An empty name is
// rejected and leaves the store unchanged. An empty expiry date defaults to
// ManualDefaultDays from today so the item surfaces as urgent.
func (s *Store) AddManual(name, expiryDate string) (model.Ingredient, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Ingredient{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiryDate = strings.TrimSpace(expiryDate)
	if expiryDate == "" {
		expiryDate = expiry.AddDays(s.now(), ManualDefaultDays)
	}

	ing := model.Ingredient{
		ID:         strconv.FormatInt(s.stamp(), 10),
		Name:       name,
		Category:   model.CategoryOther,
		ExpiryDate: expiryDate,
	}
	s.items = append(s.items, ing)
	return ing, true
}

// Remove deletes the item with the given id. It reports false, without
// error, when no such item exists.
func (s *Store) Remove(id string) (model.Ingredient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return it, true
		}
	}
	return model.Ingredient{}, false
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (model.Ingredient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Ingredient{}, false
}

// List returns a copy of all items in insertion order.
func (s *Store) List() []model.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Ingredient, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
