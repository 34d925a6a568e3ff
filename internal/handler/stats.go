package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/reciperescue/internal/model"
	"github.com/dukerupert/reciperescue/internal/session"
)

// ActivitySource reports rescued food and recent activity for a kitchen.
type ActivitySource interface {
	Impact(kitchenID string, since time.Time) (model.Impact, error)
	ListRecent(kitchenID string, limit int) ([]model.ActivityEvent, error)
}

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type StatsHandler struct {
	impact ActivitySource
	now    func() time.Time
	logger *slog.Logger
}

func NewStatsHandler(impact ActivitySource, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{impact: impact, now: time.Now, logger: logger}
}

// Impact handles GET /api/stats. Counts start at the first of the current
// month.
func (h *StatsHandler) Impact(w http.ResponseWriter, r *http.Request) {
	kitchenID := session.KitchenID(r.Context())
	if kitchenID == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	now := h.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	impact, err := h.impact.Impact(kitchenID, since)
	if err != nil {
		h.logger.Error("load impact stats", "kitchen", kitchenID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, impact)
}

// Activity handles GET /api/stats/activity?limit=N.
func (h *StatsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	kitchenID := session.KitchenID(r.Context())
	if kitchenID == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	events, err := h.impact.ListRecent(kitchenID, limit)
	if err != nil {
		h.logger.Error("list activity", "kitchen", kitchenID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}
	if events == nil {
		events = []model.ActivityEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
