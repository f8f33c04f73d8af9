package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/db"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/seasons"
)

const (
	draftSweepJob   = "wizard_draft_sweep"
	paymentSweepJob = "stale_payment_sweep"
)

// RegisterDraftSweep drops abandoned wizard drafts on cronExpr.
func RegisterDraftSweep(drafts *seasons.Store, cronExpr string) error {
	if drafts == nil {
		return fmt.Errorf("draft sweep requires a draft store")
	}
	_, err := AddJob(draftSweepJob, cronExpr, defaultJobTimeout, func(ctx context.Context) error {
		if removed := drafts.Expire(); removed > 0 {
			log.Ctx(ctx).Info().Int("removed", removed).Int("remaining", drafts.Len()).Msg("Expired wizard drafts")
		}
		return nil
	})
	return err
}

// RegisterPaymentSweep expires payments the gateway never settled.
func RegisterPaymentSweep(database *db.DB, cronExpr string, staleAfter time.Duration) error {
	if database == nil {
		return fmt.Errorf("payment sweep requires database")
	}
	_, err := AddJob(paymentSweepJob, cronExpr, defaultJobTimeout, func(ctx context.Context) error {
		_, err := ExpireStalePayments(ctx, database, time.Now().UTC(), staleAfter)
		return err
	})
	return err
}

// ExpireStalePayments moves payments still unsettled staleAfter past their
// last update to expired and returns how many rows changed.
func ExpireStalePayments(ctx context.Context, database *db.DB, now time.Time, staleAfter time.Duration) (int64, error) {
	if database == nil {
		return 0, fmt.Errorf("payment expiry requires database")
	}
	if staleAfter <= 0 {
		return 0, fmt.Errorf("stale payment age must be positive, got %s", staleAfter)
	}

	expired, err := database.Queries.ExpireStalePayments(ctx, dbgen.ExpireStalePaymentsParams{
		Now:    now,
		Cutoff: now.Add(-staleAfter),
	})
	if err != nil {
		return 0, fmt.Errorf("expire stale payments: %w", err)
	}
	if expired > 0 {
		log.Ctx(ctx).Info().Int64("expired", expired).Dur("stale_after", staleAfter).Msg("Expired stale payments")
	}
	return expired, nil
}
