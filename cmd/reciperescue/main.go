package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/config"
	"github.com/dukerupert/reciperescue/internal/database"
	"github.com/dukerupert/reciperescue/internal/gallery"
	"github.com/dukerupert/reciperescue/internal/gemini"
	"github.com/dukerupert/reciperescue/internal/logging"
	"github.com/dukerupert/reciperescue/internal/premium"
	"github.com/dukerupert/reciperescue/internal/push"
	"github.com/dukerupert/reciperescue/internal/server"
)

func main() {
	genVAPID := flag.Bool("gen-vapid-keys", false, "print a new VAPID key pair for RR_VAPID_PUBLIC_KEY/RR_VAPID_PRIVATE_KEY and exit")
	flag.Parse()

	if *genVAPID {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate vapid keys:", err)
			os.Exit(1)
		}
		fmt.Printf("RR_VAPID_PUBLIC_KEY=%s\nRR_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gateway ai.Gateway = ai.Unconfigured{}
	client, err := gemini.New(ctx, cfg.Gemini, logger)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		slog.Warn("RR_GEMINI_API_KEY not set, AI features disabled")
	case err != nil:
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	default:
		gateway = client
	}

	srvCfg := server.Config{
		Gateway:             gateway,
		Upgrader:            premium.Simulated{Delay: cfg.UpgradeDelay},
		Push:                cfg.Push,
		ReminderInterval:    cfg.ReminderInterval,
		ReminderHour:        cfg.ReminderHour,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		MaxImageDim:         cfg.MaxImageDim,
		AIRequestsPerMinute: cfg.AIRequestsPerMinute,
		CORSOrigins:         cfg.CORSOrigins,
		SecureCookies:       cfg.SecureCookies,
	}
	if g := gallery.New(cfg.Gallery); g != nil {
		srvCfg.Gallery = g
		slog.Info("styled image gallery enabled", "bucket", cfg.Gallery.Bucket)
	}

	srv := server.New(db, srvCfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// AI calls can take over a minute.
		WriteTimeout: cfg.Gemini.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
		slog.Info("expiry reminders enabled", "interval", cfg.ReminderInterval)
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.Kitchens().Cleanup(cfg.SessionTTL)
				srv.RateLimiter().Cleanup(10 * time.Minute)
				if n, err := srv.ActivityStore().Prune(time.Now().Add(-cfg.ActivityRetention)); err != nil {
					slog.Error("prune activity", "error", err)
				} else if n > 0 {
					slog.Info("pruned old activity", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("recipe rescue starting", "addr", ":"+cfg.Port, "url", cfg.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	srv.Close()
}
