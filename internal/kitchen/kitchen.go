// Package kitchen holds the state of one browser session and runs every
// user operation against it.
package kitchen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/expiry"
	"github.com/dukerupert/reciperescue/internal/imageprep"
	"github.com/dukerupert/reciperescue/internal/inventory"
	"github.com/dukerupert/reciperescue/internal/model"
	"github.com/dukerupert/reciperescue/internal/premium"
	"github.com/dukerupert/reciperescue/internal/recipes"
	"github.com/dukerupert/reciperescue/internal/view"
)

// Op names a long-running operation. At most one of each kind runs at a time.
type Op string

const (
	OpScan     Op = "scan"
	OpGenerate Op = "generate"
	OpStores   Op = "stores"
	OpStylize  Op = "stylize"
	OpUpgrade  Op = "upgrade"
)

// Publisher receives every state change of a kitchen.
type Publisher interface {
	Publish(kitchenID string, ev model.Event)
}

// ActivityRecorder persists activity for impact stats.
type ActivityRecorder interface {
	Record(ev model.ActivityEvent) error
}

// ImagePublisher stores a styled image and returns a shareable link.
type ImagePublisher interface {
	Publish(ctx context.Context, kitchenID string, img model.StyledImage) (string, error)
}

// Deps are shared by every kitchen.
type Deps struct {
	Gateway  ai.Gateway
	Upgrader premium.Upgrader
	Events   Publisher
	Activity ActivityRecorder
	Gallery  ImagePublisher
	Logger   *slog.Logger
	// MaxImageDim bounds uploads before they are sent to the model.
	MaxImageDim int
	Now         func() time.Time
}

func (d *Deps) setDefaults() {
	if d.Gateway == nil {
		d.Gateway = ai.Unconfigured{}
	}
	if d.Upgrader == nil {
		d.Upgrader = premium.Simulated{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Item is an ingredient with its expiry status as of the time it was read.
type Item struct {
	model.Ingredient
	Expiry expiry.Result `json:"expiry"`
}

// State is the full UI state of a kitchen.
type State struct {
	ID        string             `json:"id"`
	View      model.View         `json:"view"`
	Paywall   bool               `json:"paywall"`
	Premium   bool               `json:"premium"`
	Inventory []Item             `json:"inventory"`
	Urgent    int                `json:"urgent"`
	Recipes   recipes.Batch      `json:"recipes"`
	Stores    *model.StoreSearch `json:"stores,omitempty"`
	Styled    *model.StyledImage `json:"styled_image,omitempty"`
	Busy      []Op               `json:"busy"`
}

// Kitchen is one session's state. It is safe for concurrent use.
type Kitchen struct {
	id     string
	deps   Deps
	logger *slog.Logger

	inv     *inventory.Store
	gate    *premium.Gate
	router  *view.Router
	recipes *recipes.Session

	// ctx lives as long as the kitchen. Operation contexts derive from it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	busy     map[Op]bool
	stores   *model.StoreSearch
	styled   *model.StyledImage
	lastSeen time.Time
}

// New creates an empty kitchen on the inventory view in the free tier.
func New(id string, deps Deps) *Kitchen {
	deps.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	gate := premium.NewGate()
	return &Kitchen{
		id:       id,
		deps:     deps,
		logger:   deps.Logger.With("kitchen", id),
		inv:      inventory.NewStoreWithClock(deps.Now),
		gate:     gate,
		router:   view.NewRouter(gate),
		recipes:  recipes.NewSession(),
		ctx:      ctx,
		cancel:   cancel,
		busy:     make(map[Op]bool),
		lastSeen: deps.Now(),
	}
}

func (k *Kitchen) ID() string { return k.id }

// Close cancels outstanding operations and waits for background work.
// Results that arrive afterwards are discarded.
func (k *Kitchen) Close() {
	k.cancel()
	k.wg.Wait()
}

func (k *Kitchen) touch() {
	k.mu.Lock()
	k.lastSeen = k.deps.Now()
	k.mu.Unlock()
}

// LastSeen is the time of the last lookup through the registry.
func (k *Kitchen) LastSeen() time.Time {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lastSeen
}

func (k *Kitchen) publish(typ string, data any) {
	if k.deps.Events == nil {
		return
	}
	k.deps.Events.Publish(k.id, model.Event{Type: typ, Data: data})
}

func (k *Kitchen) record(kind, subject string, ok bool, d time.Duration) {
	if k.deps.Activity == nil {
		return
	}
	err := k.deps.Activity.Record(model.ActivityEvent{
		KitchenID:  k.id,
		Kind:       kind,
		Subject:    subject,
		OK:         ok,
		DurationMS: d.Milliseconds(),
	})
	if err != nil {
		k.logger.Error("record activity", "kind", kind, "error", err)
	}
}

// begin marks op as in flight, failing with ErrBusy if it already is.
func (k *Kitchen) begin(op Op) error {
	k.mu.Lock()
	if k.busy[op] {
		k.mu.Unlock()
		return ErrBusy
	}
	k.busy[op] = true
	k.mu.Unlock()
	k.publish(model.EventBusyChanged, map[string]any{"op": op, "busy": true})
	return nil
}

func (k *Kitchen) end(op Op) {
	k.mu.Lock()
	delete(k.busy, op)
	k.mu.Unlock()
	k.publish(model.EventBusyChanged, map[string]any{"op": op, "busy": false})
}

// IsBusy reports whether op is in flight.
func (k *Kitchen) IsBusy(op Op) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.busy[op]
}

// opContext ties a request context to the kitchen lifetime.
func (k *Kitchen) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(k.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (k *Kitchen) closed() bool {
	return k.ctx.Err() != nil
}

func (k *Kitchen) prepareImage(data []byte) ([]byte, error) {
	jpeg, err := imageprep.Normalize(data, k.deps.MaxImageDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return jpeg, nil
}

// Scan recognizes the ingredients in a photo and adds them to the
// inventory. Existing items are kept.
func (k *Kitchen) Scan(ctx context.Context, image []byte) ([]model.Ingredient, error) {
	if err := k.begin(OpScan); err != nil {
		return nil, err
	}
	defer k.end(OpScan)

	jpeg, err := k.prepareImage(image)
	if err != nil {
		return nil, err
	}

	ctx, cancel := k.opContext(ctx)
	defer cancel()

	start := time.Now()
	items, err := k.deps.Gateway.RecognizeIngredients(ctx, jpeg)
	k.record(model.ActivityAICall, string(OpScan), err == nil, time.Since(start))
	if err != nil {
		k.logger.Warn("scan failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	if k.closed() {
		return nil, ErrClosed
	}

	added := k.inv.AddBatch(items)
	k.logger.Info("scan added ingredients", "count", len(added))
	k.publish(model.EventInventoryChanged, map[string]any{"added": len(added)})
	return added, nil
}

// AddManual adds one typed-in ingredient. An empty expiry date defaults to
// three days from today.
func (k *Kitchen) AddManual(name, expiryDate string) (model.Ingredient, error) {
	if k.closed() {
		return model.Ingredient{}, ErrClosed
	}
	expiryDate = strings.TrimSpace(expiryDate)
	if expiryDate != "" {
		if _, err := time.Parse(expiry.DateLayout, expiryDate); err != nil {
			return model.Ingredient{}, ErrInvalidDate
		}
	}

	ing, ok := k.inv.AddManual(name, expiryDate)
	if !ok {
		return model.Ingredient{}, ErrEmptyName
	}
	if k.closed() {
		// Closed while adding; the item went into a discarded kitchen.
		return model.Ingredient{}, ErrClosed
	}
	k.publish(model.EventInventoryChanged, map[string]any{"added": 1})
	return ing, nil
}

// Remove deletes an ingredient and reports whether it existed. Unknown ids
// are ignored. Removal counts as the item being used, or as waste when it
// had already expired.
func (k *Kitchen) Remove(id string) (bool, error) {
	if k.closed() {
		return false, ErrClosed
	}
	ing, ok := k.inv.Remove(id)
	if !ok {
		return false, nil
	}

	kind := model.ActivityIngredientUsed
	if expiry.Classify(ing.ExpiryDate, k.deps.Now()).Status == expiry.StatusExpired {
		kind = model.ActivityIngredientExpired
	}
	k.record(kind, ing.Name, true, 0)
	k.publish(model.EventInventoryChanged, map[string]any{"removed": id})
	return true, nil
}

// Inventory lists every ingredient with its current expiry status.
func (k *Kitchen) Inventory() []Item {
	now := k.deps.Now()
	list := k.inv.List()
	items := make([]Item, len(list))
	for i, ing := range list {
		items[i] = Item{Ingredient: ing, Expiry: expiry.Classify(ing.ExpiryDate, now)}
	}
	return items
}

// Generate replaces the recipe batch with suggestions for the current
// inventory and switches to the recipes view. On failure both the batch
// and the view are left as they were.
func (k *Kitchen) Generate(ctx context.Context, prefs string) (recipes.Batch, error) {
	items := k.inv.List()
	if len(items) == 0 {
		return recipes.Batch{}, recipes.ErrNoIngredients
	}

	if err := k.begin(OpGenerate); err != nil {
		return recipes.Batch{}, err
	}
	defer k.end(OpGenerate)

	ctx, cancel := k.opContext(ctx)
	defer cancel()

	start := time.Now()
	batch, err := k.recipes.Generate(ctx, k.deps.Gateway, items, prefs)
	k.record(model.ActivityAICall, string(OpGenerate), err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, recipes.ErrSuperseded) {
			return recipes.Batch{}, err
		}
		k.logger.Warn("generate failed", "error", err)
		return recipes.Batch{}, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}

	k.record(model.ActivityRecipesGenerated, fmt.Sprintf("%d recipes", len(batch.Recipes)), true, 0)
	k.publish(model.EventRecipesUpdated, map[string]any{"count": len(batch.Recipes)})
	if tr := k.router.Force(model.ViewRecipes); tr.Changed {
		k.publish(model.EventViewChanged, tr)
	}
	return batch, nil
}

// Recipes returns the current recipe batch.
func (k *Kitchen) Recipes() recipes.Batch {
	return k.recipes.Current()
}

func validLocation(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// FindStores looks up grocery stores near the given location.
func (k *Kitchen) FindStores(ctx context.Context, lat, lng float64) (model.StoreSearch, error) {
	if !k.gate.IsPremium() {
		return model.StoreSearch{}, ErrPremiumRequired
	}
	if !validLocation(lat, lng) {
		return model.StoreSearch{}, ErrInvalidLocation
	}

	if err := k.begin(OpStores); err != nil {
		return model.StoreSearch{}, err
	}
	defer k.end(OpStores)

	ctx, cancel := k.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := k.deps.Gateway.FindNearbyStores(ctx, lat, lng)
	k.record(model.ActivityAICall, string(OpStores), err == nil, time.Since(start))
	if err != nil {
		k.logger.Warn("store lookup failed", "error", err)
		return model.StoreSearch{}, fmt.Errorf("%w: %w", ErrStoresFailed, err)
	}
	if k.closed() {
		return model.StoreSearch{}, ErrClosed
	}
	if res.Citations == nil {
		res.Citations = []model.GroundingChunk{}
	}

	k.mu.Lock()
	k.stores = &res
	k.mu.Unlock()
	k.publish(model.EventStoresUpdated, map[string]any{"count": len(res.Citations)})
	return res, nil
}

// Stylize edits a food photo according to prompt. When a gallery is
// configured the result is also published and its link returned.
func (k *Kitchen) Stylize(ctx context.Context, image []byte, prompt string) (model.StyledImage, error) {
	if !k.gate.IsPremium() {
		return model.StyledImage{}, ErrPremiumRequired
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return model.StyledImage{}, ErrEmptyPrompt
	}

	if err := k.begin(OpStylize); err != nil {
		return model.StyledImage{}, err
	}
	defer k.end(OpStylize)

	jpeg, err := k.prepareImage(image)
	if err != nil {
		return model.StyledImage{}, err
	}

	ctx, cancel := k.opContext(ctx)
	defer cancel()

	start := time.Now()
	img, err := k.deps.Gateway.EditImage(ctx, jpeg, prompt)
	k.record(model.ActivityAICall, string(OpStylize), err == nil, time.Since(start))
	if err != nil {
		k.logger.Warn("stylize failed", "error", err)
		return model.StyledImage{}, fmt.Errorf("%w: %w", ErrStylizeFailed, err)
	}

	if k.deps.Gallery != nil {
		url, err := k.deps.Gallery.Publish(ctx, k.id, img)
		if err != nil {
			k.logger.Warn("publish styled image", "error", err)
		} else {
			img.URL = url
		}
	}
	if k.closed() {
		return model.StyledImage{}, ErrClosed
	}

	k.mu.Lock()
	k.styled = &img
	k.mu.Unlock()
	k.publish(model.EventImageStyled, map[string]any{"mime_type": img.MIMEType, "url": img.URL})
	return img, nil
}

// StyledImage returns the last stylist result.
func (k *Kitchen) StyledImage() (model.StyledImage, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.styled == nil {
		return model.StyledImage{}, false
	}
	return *k.styled, true
}

// Navigate switches views through the premium gate. A gated target raises
// the paywall instead.
func (k *Kitchen) Navigate(v model.View) view.Transition {
	before := k.router.State()
	tr := k.router.Navigate(v)
	if tr.Changed {
		k.publish(model.EventViewChanged, tr)
	}
	if tr.Paywall != before.Paywall {
		k.publish(model.EventPaywallChanged, map[string]bool{"open": tr.Paywall})
	}
	return tr
}

func (k *Kitchen) OpenPaywall() {
	k.router.OpenPaywall()
	k.publish(model.EventPaywallChanged, map[string]bool{"open": true})
}

func (k *Kitchen) ClosePaywall() {
	k.router.ClosePaywall()
	k.publish(model.EventPaywallChanged, map[string]bool{"open": false})
}

func (k *Kitchen) IsPremium() bool {
	return k.gate.IsPremium()
}

// Upgrade starts a purchase in the background and returns immediately.
// On success premium is unlocked and the paywall closed; on failure both
// are left as they were and an upgrade_failed event is published. It is a
// no-op when already premium.
func (k *Kitchen) Upgrade() error {
	if k.gate.IsPremium() {
		return nil
	}
	if k.closed() {
		return ErrClosed
	}
	if err := k.begin(OpUpgrade); err != nil {
		return err
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		defer k.end(OpUpgrade)

		err := k.deps.Upgrader.AttemptUpgrade(k.ctx)
		if k.closed() {
			return
		}
		if err != nil {
			k.logger.Warn("upgrade failed", "error", err)
			k.publish(model.EventUpgradeFailed, map[string]string{"error": upgradeMessage(err)})
			return
		}

		k.gate.Unlock()
		k.router.ClosePaywall()
		k.logger.Info("kitchen upgraded")
		k.publish(model.EventUpgraded, nil)
	}()
	return nil
}

func upgradeMessage(err error) string {
	switch {
	case errors.Is(err, premium.ErrDeclined):
		return "Payment was declined."
	case errors.Is(err, premium.ErrCancelled):
		return "Upgrade was cancelled."
	default:
		return "Payment is unavailable right now. Please try again."
	}
}

// Snapshot returns the full UI state.
func (k *Kitchen) Snapshot() State {
	rs := k.router.State()
	st := State{
		ID:        k.id,
		View:      rs.View,
		Paywall:   rs.Paywall,
		Premium:   k.gate.IsPremium(),
		Inventory: k.Inventory(),
		Recipes:   k.recipes.Current(),
		Busy:      []Op{},
	}
	for _, it := range st.Inventory {
		if expiry.IsUrgent(it.Expiry.Status) {
			st.Urgent++
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stores != nil {
		s := *k.stores
		st.Stores = &s
	}
	if k.styled != nil {
		// The image itself is served separately.
		img := model.StyledImage{MIMEType: k.styled.MIMEType, URL: k.styled.URL}
		st.Styled = &img
	}
	for _, op := range []Op{OpScan, OpGenerate, OpStores, OpStylize, OpUpgrade} {
		if k.busy[op] {
			st.Busy = append(st.Busy, op)
		}
	}
	return st
}
