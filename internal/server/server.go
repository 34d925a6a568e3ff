package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/cors"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/handler"
	"github.com/dukerupert/reciperescue/internal/kitchen"
	"github.com/dukerupert/reciperescue/internal/middleware"
	"github.com/dukerupert/reciperescue/internal/premium"
	"github.com/dukerupert/reciperescue/internal/push"
	"github.com/dukerupert/reciperescue/internal/session"
	"github.com/dukerupert/reciperescue/internal/store"
	ws "github.com/dukerupert/reciperescue/internal/websocket"
)

// Config carries everything the server wires together. Gateway, Upgrader
// and Gallery may be nil.
type Config struct {
	Gateway  ai.Gateway
	Upgrader premium.Upgrader
	Gallery  kitchen.ImagePublisher
	Push     push.Config

	ReminderInterval time.Duration
	ReminderHour     int

	MaxUploadBytes      int64
	MaxImageDim         int
	AIRequestsPerMinute int
	CORSOrigins         []string
	SecureCookies       bool
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	kitchens      *kitchen.Registry
	kitchenH      *handler.KitchenHandler
	statsH        *handler.StatsHandler
	pushH         *handler.PushHandler
	activityStore *store.ActivityStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	pushService   *push.Service
	pushScheduler *push.Scheduler
	cfg           Config
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	if cfg.AIRequestsPerMinute <= 0 {
		cfg.AIRequestsPerMinute = 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	activityStore := store.NewActivityStore(db)
	pushSt := store.NewPushStore(db)

	kitchens := kitchen.NewRegistry(kitchen.Deps{
		Gateway:     cfg.Gateway,
		Upgrader:    cfg.Upgrader,
		Events:      hub,
		Activity:    activityStore,
		Gallery:     cfg.Gallery,
		Logger:      logger.With("component", "kitchen"),
		MaxImageDim: cfg.MaxImageDim,
	})

	kitchens.SetWatchers(hub)

	// Push notification service + scheduler
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if svc := push.NewService(cfg.Push); svc.Enabled() {
		pushSvc = svc
		pushSched = push.NewScheduler(pushSvc, pushSt, kitchens, cfg.ReminderInterval, cfg.ReminderHour, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushSt, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		kitchens:      kitchens,
		kitchenH:      handler.NewKitchenHandler(kitchens, cfg.MaxUploadBytes, logger.With("component", "kitchen_handler")),
		statsH:        handler.NewStatsHandler(activityStore, logger.With("component", "stats")),
		pushH:         pushH,
		activityStore: activityStore,
		pushStore:     pushSt,
		rateLimiter:   middleware.NewRateLimiter(cfg.AIRequestsPerMinute, time.Minute, cfg.AIRequestsPerMinute),
		pushService:   pushSvc,
		pushScheduler: pushSched,
		cfg:           cfg,
		logger:        logger,
	}
}

// Kitchens returns the kitchen registry for cleanup tasks.
func (s *Server) Kitchens() *kitchen.Registry {
	return s.kitchens
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// ActivityStore returns the activity store for cleanup tasks.
func (s *Server) ActivityStore() *store.ActivityStore {
	return s.activityStore
}

// PushScheduler returns the push notification scheduler, nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Close shuts down every kitchen, cancelling in-flight work.
func (s *Server) Close() {
	s.kitchens.Close()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	s.registerRoutes(mux)

	var h http.Handler = middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	h = middleware.Session(s.cfg.SecureCookies)(h)

	if len(s.cfg.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", middleware.SessionHeader},
			AllowCredentials: true,
			MaxAge:           600,
		}).Handler(h)
	}
	return h
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	k := s.kitchenH

	// Session state and navigation
	mux.HandleFunc("GET /api/state", k.State)
	mux.HandleFunc("POST /api/view", k.Navigate)
	mux.HandleFunc("POST /api/paywall/open", k.OpenPaywall)
	mux.HandleFunc("POST /api/paywall/close", k.ClosePaywall)
	mux.HandleFunc("POST /api/upgrade", k.Upgrade)

	// Inventory
	mux.HandleFunc("GET /api/inventory", k.ListInventory)
	mux.HandleFunc("POST /api/inventory", k.AddIngredient)
	mux.HandleFunc("DELETE /api/inventory/{id}", k.RemoveIngredient)
	mux.HandleFunc("POST /api/inventory/scan", s.rateLimitedHandler(k.Scan))

	// Recipes
	mux.HandleFunc("GET /api/recipes", k.Recipes)
	mux.HandleFunc("POST /api/recipes", s.rateLimitedHandler(k.GenerateRecipes))

	// Premium tools
	mux.HandleFunc("POST /api/stores", s.rateLimitedHandler(k.FindStores))
	mux.HandleFunc("POST /api/stylist", s.rateLimitedHandler(k.Stylize))
	mux.HandleFunc("GET /api/stylist/image", k.StyledImage)

	// Impact stats
	mux.HandleFunc("GET /api/stats", s.statsH.Impact)
	mux.HandleFunc("GET /api/stats/activity", s.statsH.Activity)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("POST /api/push/test", s.rateLimitedHandler(s.pushH.TestNotification))
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, func(r *http.Request) string {
		return session.KitchenID(r.Context())
	}, originHosts(s.cfg.CORSOrigins)))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"kitchens": s.kitchens.Len(),
		"clients":  s.hub.ClientCount(),
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	return rl(h).ServeHTTP
}

// originHosts turns CORS origins into the host patterns the websocket
// upgrader matches against.
func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
