package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollAttempts = 40
)

var (
	ErrPollExhausted = errors.New("payment still pending after max attempts")
	errStillPending  = errors.New("payment pending")
)

// Fetcher reads the current status of one payment.
type Fetcher interface {
	FetchStatus(ctx context.Context, paymentID string) (StatusResponse, error)
}

type FetcherFunc func(ctx context.Context, paymentID string) (StatusResponse, error)

func (f FetcherFunc) FetchStatus(ctx context.Context, paymentID string) (StatusResponse, error) {
	return f(ctx, paymentID)
}

// PollPolicy bounds a poll. MaxElapsed of zero leaves only the attempt cap.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts uint
	MaxElapsed  time.Duration
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:    DefaultPollInterval,
		MaxAttempts: DefaultPollAttempts,
	}
}

type Poller struct {
	fetcher Fetcher
	policy  PollPolicy
}

func NewPoller(fetcher Fetcher, policy PollPolicy) *Poller {
	if policy.Interval <= 0 {
		policy.Interval = DefaultPollInterval
	}
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = DefaultPollAttempts
	}
	return &Poller{fetcher: fetcher, policy: policy}
}

// Poll fetches the status every interval while it is pending and returns the
// first settled response. Transport errors are retried within the same
// attempt budget unless the fetcher marks them permanent. The wait stops as
// soon as ctx is done.
func (p *Poller) Poll(ctx context.Context, paymentID string) (StatusResponse, error) {
	logger := log.Ctx(ctx).With().Str("payment_id", paymentID).Logger()

	var attempts uint
	operation := func() (StatusResponse, error) {
		attempts++
		resp, err := p.fetcher.FetchStatus(ctx, paymentID)
		if err != nil {
			return StatusResponse{}, err
		}
		if resp.Status.Pending() {
			return resp, errStillPending
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.policy.Interval)),
		backoff.WithMaxTries(p.policy.MaxAttempts),
		backoff.WithMaxElapsedTime(p.policy.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug().Err(err).Uint("attempt", attempts).Dur("next", next).Msg("Payment not settled, polling again")
		}),
	)
	switch {
	case err == nil:
		logger.Info().Str("status", string(resp.Status)).Uint("attempts", attempts).Msg("Payment settled")
		return resp, nil
	case errors.Is(err, errStillPending):
		return resp, fmt.Errorf("%w (%d attempts)", ErrPollExhausted, attempts)
	default:
		return resp, fmt.Errorf("poll payment %s: %w", paymentID, err)
	}
}
