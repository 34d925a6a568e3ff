package premium

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultDelay is how long the simulated checkout takes.
const DefaultDelay = time.Second

var (
	ErrDeclined    = errors.New("payment declined")
	ErrCancelled   = errors.New("upgrade cancelled")
	ErrUnavailable = errors.New("payment processor unavailable")
)

// Upgrader attempts to purchase premium. A nil error means the purchase
// went through and the caller may unlock the gate.
type Upgrader interface {
	AttemptUpgrade(ctx context.Context) error
}

// Simulated stands in for a payment processor. It waits Delay and then
// returns Outcome.
type Simulated struct {
	Delay   time.Duration
	Outcome error
}

func (s Simulated) AttemptUpgrade(ctx context.Context) error {
	delay := s.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case <-t.C:
		return s.Outcome
	}
}
