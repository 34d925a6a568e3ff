package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/kitchen"
	"github.com/dukerupert/reciperescue/internal/model"
	"github.com/dukerupert/reciperescue/internal/recipes"
	"github.com/dukerupert/reciperescue/internal/session"
)

var errNoImage = errors.New("image is required")

type KitchenHandler struct {
	kitchens  *kitchen.Registry
	maxUpload int64
	logger    *slog.Logger
}

func NewKitchenHandler(kitchens *kitchen.Registry, maxUpload int64, logger *slog.Logger) *KitchenHandler {
	return &KitchenHandler{kitchens: kitchens, maxUpload: maxUpload, logger: logger}
}

// kitchen resolves the caller's kitchen, writing 401 when the request is
// not bound to a session.
func (h *KitchenHandler) kitchen(w http.ResponseWriter, r *http.Request) (*kitchen.Kitchen, bool) {
	id := session.KitchenID(r.Context())
	if id == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return nil, false
	}
	return h.kitchens.Get(id), true
}

// errorStatus maps operation errors to a status and a message that is safe
// to show to the user. Order matters: ErrNotConfigured is wrapped inside
// the generic AI failures.
var errorStatus = []struct {
	err    error
	status int
	msg    string
}{
	{ai.ErrNotConfigured, http.StatusServiceUnavailable, "AI features are not configured"},
	{kitchen.ErrBusy, http.StatusConflict, "That is already in progress"},
	{recipes.ErrSuperseded, http.StatusConflict, "A newer request replaced this one"},
	{kitchen.ErrPremiumRequired, http.StatusPaymentRequired, "Upgrade to Premium to use this feature"},
	{recipes.ErrNoIngredients, http.StatusBadRequest, "Add some ingredients first"},
	{kitchen.ErrInvalidImage, http.StatusBadRequest, "Could not read that image"},
	{kitchen.ErrInvalidLocation, http.StatusBadRequest, "Invalid location"},
	{kitchen.ErrEmptyName, http.StatusBadRequest, "name is required"},
	{kitchen.ErrInvalidDate, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD"},
	{kitchen.ErrEmptyPrompt, http.StatusBadRequest, "prompt is required"},
	{kitchen.ErrScanFailed, http.StatusBadGateway, kitchen.ErrScanFailed.Error()},
	{kitchen.ErrGenerateFailed, http.StatusBadGateway, kitchen.ErrGenerateFailed.Error()},
	{kitchen.ErrStoresFailed, http.StatusBadGateway, kitchen.ErrStoresFailed.Error()},
	{kitchen.ErrStylizeFailed, http.StatusBadGateway, kitchen.ErrStylizeFailed.Error()},
	{kitchen.ErrClosed, http.StatusGone, "Session expired, please reload"},
}

func (h *KitchenHandler) writeOpError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.msg)
			return
		}
	}
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// Client went away; nobody is listening for the response.
		return
	}
	h.logger.Error(op, "kitchen", session.KitchenID(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, "something went wrong")
}

// readImage accepts either a multipart form with an "image" file or the
// raw image as the request body.
func (h *KitchenHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, errNoImage
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		return nil, errNoImage
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *KitchenHandler) writeImageError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("image must be at most %d MB", h.maxUpload>>20))
	case errors.Is(err, errNoImage):
		writeError(w, http.StatusBadRequest, errNoImage.Error())
	default:
		writeError(w, http.StatusBadRequest, "invalid upload")
	}
}

// State handles GET /api/state
func (h *KitchenHandler) State(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k.Snapshot())
}

type navigateRequest struct {
	View string `json:"view"`
}

// Navigate handles POST /api/view
func (h *KitchenHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}

	var req navigateRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	v, valid := model.ParseView(strings.TrimSpace(req.View))
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown view")
		return
	}

	writeJSON(w, http.StatusOK, k.Navigate(v))
}

// OpenPaywall handles POST /api/paywall/open
func (h *KitchenHandler) OpenPaywall(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	k.OpenPaywall()
	w.WriteHeader(http.StatusNoContent)
}

// ClosePaywall handles POST /api/paywall/close
func (h *KitchenHandler) ClosePaywall(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	k.ClosePaywall()
	w.WriteHeader(http.StatusNoContent)
}

// Upgrade handles POST /api/upgrade. The outcome arrives as an upgraded or
// upgrade_failed event.
func (h *KitchenHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	if k.IsPremium() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "premium"})
		return
	}
	if err := k.Upgrade(); err != nil {
		h.writeOpError(w, r, "upgrade", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

// ListInventory handles GET /api/inventory
func (h *KitchenHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k.Inventory())
}

type addIngredientRequest struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
}

// AddIngredient handles POST /api/inventory
func (h *KitchenHandler) AddIngredient(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}

	var req addIngredientRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ing, err := k.AddManual(req.Name, req.ExpiryDate)
	if err != nil {
		h.writeOpError(w, r, "add ingredient", err)
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}

// RemoveIngredient handles DELETE /api/inventory/{id}. Unknown ids succeed.
func (h *KitchenHandler) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	if _, err := k.Remove(r.PathValue("id")); err != nil {
		h.writeOpError(w, r, "remove ingredient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Scan handles POST /api/inventory/scan
func (h *KitchenHandler) Scan(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}

	data, err := h.readImage(w, r)
	if err != nil {
		h.writeImageError(w, err)
		return
	}

	added, err := k.Scan(r.Context(), data)
	if err != nil {
		h.writeOpError(w, r, "scan", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added":     added,
		"inventory": k.Inventory(),
	})
}

type generateRequest struct {
	Preferences string `json:"preferences"`
}

// GenerateRecipes handles POST /api/recipes
func (h *KitchenHandler) GenerateRecipes(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	batch, err := k.Generate(r.Context(), strings.TrimSpace(req.Preferences))
	if err != nil {
		h.writeOpError(w, r, "generate recipes", err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// Recipes handles GET /api/recipes
func (h *KitchenHandler) Recipes(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k.Recipes())
}

type storesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// FindStores handles POST /api/stores
func (h *KitchenHandler) FindStores(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}

	var req storesRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	res, err := k.FindStores(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		h.writeOpError(w, r, "find stores", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stylize handles POST /api/stylist. The prompt comes from the "prompt"
// form field, or the query string when the image is the raw body.
func (h *KitchenHandler) Stylize(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}
	if !k.IsPremium() {
		writeError(w, http.StatusPaymentRequired, "Upgrade to Premium to use this feature")
		return
	}

	data, err := h.readImage(w, r)
	if err != nil {
		h.writeImageError(w, err)
		return
	}
	prompt := r.FormValue("prompt")

	img, err := k.Stylize(r.Context(), data, prompt)
	if err != nil {
		h.writeOpError(w, r, "stylize", err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// StyledImage handles GET /api/stylist/image
func (h *KitchenHandler) StyledImage(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kitchen(w, r)
	if !ok {
		return
	}

	img, found := k.StyledImage()
	if !found || len(img.Data) == 0 {
		writeError(w, http.StatusNotFound, "no styled image yet")
		return
	}

	ext := ".png"
	switch img.MIMEType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="styled-food%s"`, ext))
	w.Write(img.Data)
}
