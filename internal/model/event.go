package model

// Event types pushed to a kitchen's live clients.
const (
	EventInventoryChanged = "inventory_changed"
	EventViewChanged      = "view_changed"
	EventPaywallChanged   = "paywall_changed"
	EventRecipesUpdated   = "recipes_updated"
	EventStoresUpdated    = "stores_updated"
	EventImageStyled      = "image_styled"
	EventBusyChanged      = "busy_changed"
	EventUpgraded         = "upgraded"
	EventUpgradeFailed    = "upgrade_failed"
)

// Event is a state change in one kitchen.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
