package model

// View is the active screen. Exactly one is active; Inventory is initial.
type View string

const (
	ViewInventory View = "inventory"
	ViewRecipes   View = "recipes"
	ViewStores    View = "stores"
	ViewStylist   View = "stylist"
)

func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewInventory, ViewRecipes, ViewStores, ViewStylist:
		return View(s), true
	}
	return "", false
}
