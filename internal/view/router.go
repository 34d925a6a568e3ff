package view

import (
	"sync"

	"github.com/dukerupert/reciperescue/internal/model"
)

// Gate reports whether a view may be shown.
type Gate interface {
	Allows(v model.View) bool
}

// State is the router's observable state.
type State struct {
	View    model.View `json:"view"`
	Paywall bool       `json:"paywall"`
}

// Transition is the outcome of a navigation request. Changed is false when
// the view stayed put, either because it was already active or because
// the target was gated and the paywall was raised instead.
type Transition struct {
	View    model.View `json:"view"`
	Changed bool       `json:"changed"`
	Paywall bool       `json:"paywall"`
}

// Router holds the active view and the paywall signal. The paywall is
// orthogonal to the view: raising it never changes what is shown underneath.
type Router struct {
	mu      sync.Mutex
	gate    Gate
	current model.View
	paywall bool
}

// NewRouter starts on the inventory view with the paywall closed.
func NewRouter(gate Gate) *Router {
	return &Router{gate: gate, current: model.ViewInventory}
}

// Navigate switches to v if the gate allows it. A gated target leaves the
// current view untouched and raises the paywall.
func (r *Router) Navigate(v model.View) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gate.Allows(v) {
		r.paywall = true
		return Transition{View: r.current, Paywall: true}
	}

	changed := r.current != v
	r.current = v
	return Transition{View: v, Changed: changed, Paywall: r.paywall}
}

// Force switches to v without consulting the gate. Only ungated views are
// ever forced.
func (r *Router) Force(v model.View) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := r.current != v
	r.current = v
	return Transition{View: v, Changed: changed, Paywall: r.paywall}
}

func (r *Router) OpenPaywall() {
	r.mu.Lock()
	r.paywall = true
	r.mu.Unlock()
}

func (r *Router) ClosePaywall() {
	r.mu.Lock()
	r.paywall = false
	r.mu.Unlock()
}

func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{View: r.current, Paywall: r.paywall}
}
