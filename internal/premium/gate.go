package premium

import (
	"sync"

	"github.com/dukerupert/reciperescue/internal/model"
)

// Gate tracks whether a kitchen has unlocked premium features.
// Once unlocked it stays unlocked for the life of the kitchen.
type Gate struct {
	mu      sync.RWMutex
	premium bool
}

// NewGate returns a gate in the free tier.
func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) IsPremium() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.premium
}

// Unlock grants premium. It reports whether the call changed anything.
func (g *Gate) Unlock() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.premium {
		return false
	}
	g.premium = true
	return true
}

// Allows reports whether v can be shown under the current tier.
func (g *Gate) Allows(v model.View) bool {
	return !RequiresPremium(v) || g.IsPremium()
}

// RequiresPremium reports whether v is a paid view.
func RequiresPremium(v model.View) bool {
	switch v {
	case model.ViewStores, model.ViewStylist:
		return true
	}
	return false
}
