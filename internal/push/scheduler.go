package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/reciperescue/internal/expiry"
	"github.com/dukerupert/reciperescue/internal/model"
)

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload Payload) error
}

// Subscriptions is the persistence the scheduler needs.
type Subscriptions interface {
	ListByKitchen(kitchenID string) ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
	WasSent(kitchenID, notifType, refID string) (bool, error)
	RecordSent(kitchenID, notifType, refID string) error
	CleanupSent(before time.Time) error
}

// Kitchens enumerates live kitchens and their current inventory.
type Kitchens interface {
	EachInventory(fn func(kitchenID string, items []model.Ingredient))
}

// Scheduler periodically sends each kitchen a daily digest of food that
// expires today or soon.
type Scheduler struct {
	mu       sync.RWMutex
	sender   Sender
	subs     Subscriptions
	kitchens Kitchens
	logger   *slog.Logger
	interval time.Duration
	// notBefore is the local hour before which no digest is sent.
	notBefore int
	now       func() time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a notification scheduler.
func NewScheduler(sender Sender, subs Subscriptions, kitchens Kitchens, interval time.Duration, notBefore int, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sender:    sender,
		subs:      subs,
		kitchens:  kitchens,
		logger:    logger.With("component", "push_scheduler"),
		interval:  interval,
		notBefore: notBefore,
		now:       time.Now,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	if now.Hour() < s.notBefore {
		return
	}

	s.kitchens.EachInventory(func(kitchenID string, items []model.Ingredient) {
		s.notifyKitchen(ctx, kitchenID, items, now)
	})

	if err := s.subs.CleanupSent(now.Add(-7 * 24 * time.Hour)); err != nil {
		s.logger.Error("cleanup sent notifications", "error", err)
	}
}

func (s *Scheduler) notifyKitchen(ctx context.Context, kitchenID string, items []model.Ingredient, now time.Time) {
	payload, ok := Digest(items, now)
	if !ok {
		return
	}

	refID := expiry.Today(now)
	sent, err := s.subs.WasSent(kitchenID, model.NotifTypeExpiryDigest, refID)
	if err != nil {
		s.logger.Error("check sent", "kitchen", kitchenID, "error", err)
		return
	}
	if sent {
		return
	}

	subs, err := s.subs.ListByKitchen(kitchenID)
	if err != nil {
		s.logger.Error("list subscriptions", "kitchen", kitchenID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	for _, sub := range subs {
		if err := s.sender.Send(ctx, &sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.subs.DeleteByEndpoint(sub.Endpoint)
			} else {
				s.logger.Warn("send expiry digest", "kitchen", kitchenID, "error", err)
			}
		}
	}

	if err := s.subs.RecordSent(kitchenID, model.NotifTypeExpiryDigest, refID); err != nil {
		s.logger.Error("record sent", "kitchen", kitchenID, "error", err)
	}
}

// Digest builds the reminder for items expiring today or within the soon
// window. It reports false when nothing is urgent. Already expired items
// are left out.
func Digest(items []model.Ingredient, now time.Time) (Payload, bool) {
	var today, soon []string
	for _, it := range items {
		days, ok := expiry.DaysUntil(it.ExpiryDate, now)
		if !ok || days < 0 || days > expiry.SoonDays {
			continue
		}
		if days == 0 {
			today = append(today, it.Name)
		} else {
			soon = append(soon, it.Name)
		}
	}

	var body string
	switch {
	case len(today) == 1 && len(soon) == 0:
		body = fmt.Sprintf("%s expires today. Time to cook!", today[0])
	case len(today) > 0:
		body = fmt.Sprintf("%d items expire today: %s", len(today), strings.Join(today, ", "))
		if len(soon) > 0 {
			body += fmt.Sprintf(" (%d more soon)", len(soon))
		}
	case len(soon) == 1:
		body = fmt.Sprintf("%s is expiring soon.", soon[0])
	case len(soon) > 1:
		body = fmt.Sprintf("%d items expiring soon: %s", len(soon), strings.Join(soon, ", "))
	default:
		return Payload{}, false
	}

	return Payload{
		Title: "Use it before you lose it",
		Body:  body,
		URL:   "/?view=recipes",
		Tag:   "expiry-digest",
	}, true
}
