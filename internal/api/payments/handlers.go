// internal/api/payments/handlers.go
package payments

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api/apiutil"
	appdb "github.com/codr1/Runway/internal/db"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/email"
	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/payments"
	"github.com/codr1/Runway/internal/ratelimit"
	"github.com/codr1/Runway/internal/seasons"
)

const (
	paymentsQueryTimeout = 10 * time.Second
	callbackTokenHeader  = "X-Callback-Token"
)

var errPaymentSettled = errors.New("payment already settled")

type Config struct {
	Currency      string
	CallbackToken string
	TrustProxy    bool
	AgencyName    string
}

var (
	store       *appdb.DB
	limiter     *ratelimit.Limiter
	mailer      email.EmailSender
	settings    Config
	queriesOnce sync.Once
)

type voteRequest struct {
	ContestantID int64  `json:"contestantId" validate:"required,gt=0"`
	Votes        int64  `json:"votes" validate:"required,gt=0"`
	VoterEmail   string `json:"voterEmail" validate:"omitempty,email,max=254"`
}

type callbackRequest struct {
	Status    string `json:"status" validate:"required"`
	Reference string `json:"reference" validate:"max=128"`
}

// InitHandlers must be called during server startup before handling requests.
// A nil sender disables receipts.
func InitHandlers(database *appdb.DB, votes *ratelimit.Limiter, sender email.EmailSender, cfg Config) {
	if database == nil || votes == nil {
		return
	}
	queriesOnce.Do(func() {
		store = database
		limiter = votes
		mailer = sender
		settings = cfg
	})
}

// POST /api/v1/votes
//
// Creates a payment in the created state for the gateway to pick up. The
// contestant's season must be ongoing, charge for votes and still be inside
// its voting window.
func HandleCreateVote(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req voteRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	req.VoterEmail = strings.TrimSpace(req.VoterEmail)
	if fields := apiutil.ValidateStruct(req); fields != nil {
		_ = apiutil.WriteValidationErrors(w, fields)
		return
	}

	ip := ratelimit.GetClientIP(r, settings.TrustProxy)
	if result := limiter.CheckVote(req.VoterEmail, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded(req.VoterEmail, ip, result.Reason)
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Round(time.Second).Seconds())))
		_ = apiutil.WriteError(w, http.StatusTooManyRequests, "Too many vote requests, please try again later", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentsQueryTimeout)
	defer cancel()

	contestant, err := database.Queries.GetContestant(ctx, req.ContestantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteValidationErrors(w, map[string]string{"contestantId": "Contestant not found"})
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load contestant")
		return
	}
	season, err := database.Queries.GetSeason(ctx, contestant.SeasonID)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load season")
		return
	}

	now := time.Now().UTC()
	if !votingOpen(season, now) {
		_ = apiutil.WriteError(w, http.StatusConflict, domain.ErrVotingClosed.Error(), nil)
		return
	}
	amount, err := domain.Quote(season.PricePerVote, req.Votes)
	if err != nil {
		if errors.Is(err, domain.ErrVotingClosed) {
			_ = apiutil.WriteError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		_ = apiutil.WriteValidationErrors(w, map[string]string{"votes": err.Error()})
		return
	}

	row, err := database.Queries.CreatePayment(ctx, dbgen.CreatePaymentParams{
		ID:           uuid.NewString(),
		SeasonID:     sql.NullInt64{Int64: season.ID, Valid: true},
		ContestantID: sql.NullInt64{Int64: contestant.ID, Valid: true},
		Votes:        req.Votes,
		Amount:       amount,
		Currency:     settings.Currency,
		VoterEmail:   req.VoterEmail,
		Status:       string(domain.StatusCreated),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		logger.Error().Err(err).Int64("contestant_id", contestant.ID).Msg("Failed to create payment")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to create payment")
		return
	}
	limiter.RecordVote(req.VoterEmail, ip)

	logger.Info().
		Str("payment_id", row.ID).
		Int64("season_id", season.ID).
		Int64("contestant_id", contestant.ID).
		Int64("votes", row.Votes).
		Int64("amount", row.Amount).
		Msg("Vote payment created")
	if err := apiutil.WriteData(w, http.StatusCreated, models.PaymentFromDB(row, contestant.Name)); err != nil {
		logger.Error().Err(err).Msg("Failed to write payment response")
	}
}

// GET /api/v1/payments/{id}/status
func HandlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	paymentID, ok := paymentIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentsQueryTimeout)
	defer cancel()

	row, err := database.Queries.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Payment not found", nil)
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load payment")
		return
	}

	resp := models.PaymentStatusResponse(row, contestantName(ctx, database.Queries, row))
	if err := apiutil.WriteData(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to write payment status")
	}
}

// POST /api/v1/payments/{id}/callback
//
// The gateway reports a status change. Settled payments never move again;
// repeating the current status is accepted so gateway retries are harmless.
// A success credits the contestant's votes in the same transaction.
func HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !validCallbackToken(r.Header.Get(callbackTokenHeader)) {
		logger.Warn().Str("ip", ratelimit.GetClientIP(r, settings.TrustProxy)).Msg("Rejected payment callback with bad token")
		_ = apiutil.WriteError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	paymentID, ok := paymentIDFromPath(w, r)
	if !ok {
		return
	}

	var req callbackRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if fields := apiutil.ValidateStruct(req); fields != nil {
		_ = apiutil.WriteValidationErrors(w, fields)
		return
	}
	next, err := domain.ParseStatus(req.Status)
	if err != nil || next == domain.StatusCreated {
		_ = apiutil.WriteValidationErrors(w, map[string]string{"status": "Unknown payment status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentsQueryTimeout)
	defer cancel()

	var (
		updated dbgen.Payment
		changed bool
	)
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := txdb.Queries.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		from := domain.Status(current.Status)
		if from == next {
			updated = current
			return nil
		}
		if !domain.CanTransition(from, next) {
			return errPaymentSettled
		}

		updated, err = txdb.Queries.TransitionPayment(ctx, dbgen.TransitionPaymentParams{
			Status:    string(next),
			Reference: apiutil.FirstNonEmpty(req.Reference, current.Reference),
			UpdatedAt: time.Now().UTC(),
			ID:        paymentID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errPaymentSettled
			}
			return fmt.Errorf("transition payment: %w", err)
		}
		changed = true

		if next == domain.StatusSuccess && updated.ContestantID.Valid {
			if _, err := txdb.Queries.AddContestantVotes(ctx, dbgen.AddContestantVotesParams{
				Votes:     updated.Votes,
				UpdatedAt: updated.UpdatedAt,
				ID:        updated.ContestantID.Int64,
			}); err != nil {
				return fmt.Errorf("credit votes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_ = apiutil.WriteError(w, http.StatusNotFound, "Payment not found", nil)
		case errors.Is(err, errPaymentSettled):
			_ = apiutil.WriteError(w, http.StatusConflict, domain.ErrInvalidTransition.Error(), nil)
		default:
			logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to apply payment callback")
			apiutil.WriteHandlerError(r.Context(), w, err, "Failed to apply payment callback")
		}
		return
	}

	name := contestantName(ctx, database.Queries, updated)
	if changed {
		logger.Info().Str("payment_id", paymentID).Str("status", string(next)).Msg("Payment status updated")
		if next == domain.StatusSuccess {
			sendReceipt(ctx, database.Queries, updated, name)
		}
	}

	if err := apiutil.WriteData(w, http.StatusOK, models.PaymentStatusResponse(updated, name)); err != nil {
		logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to write callback response")
	}
}

// votingOpen reports whether season takes paid votes at now. The voting end
// date is inclusive.
func votingOpen(season dbgen.Season, now time.Time) bool {
	if seasons.Status(season.Status) != seasons.StatusOngoing || season.PricePerVote <= 0 {
		return false
	}
	if season.VotingEndDate.Valid && now.After(season.VotingEndDate.Time.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func validCallbackToken(got string) bool {
	want := settings.CallbackToken
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func paymentIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	paymentID := strings.TrimSpace(r.PathValue("id"))
	if err := uuid.Validate(paymentID); err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, "invalid payment ID", nil)
		return "", false
	}
	return paymentID, true
}

func contestantName(ctx context.Context, q *dbgen.Queries, row dbgen.Payment) string {
	if !row.ContestantID.Valid {
		return ""
	}
	contestant, err := q.GetContestant(ctx, row.ContestantID.Int64)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Ctx(ctx).Warn().Err(err).Str("payment_id", row.ID).Msg("Failed to load contestant for payment")
		}
		return ""
	}
	return contestant.Name
}

func sendReceipt(ctx context.Context, q *dbgen.Queries, row dbgen.Payment, name string) {
	if mailer == nil || row.VoterEmail == "" {
		return
	}
	label := ""
	if row.SeasonID.Valid {
		if season, err := q.GetSeason(ctx, row.SeasonID.Int64); err == nil {
			if event, err := q.GetEvent(ctx, season.EventID); err == nil {
				label = fmt.Sprintf("%s %d", event.Name, season.Year)
			}
		}
	}
	receipt := email.BuildReceipt(email.ReceiptDetails{
		AgencyName:  settings.AgencyName,
		SeasonLabel: label,
		Payment:     models.PaymentFromDB(row, name),
	})
	email.SendReceiptEmail(ctx, mailer, row.VoterEmail, receipt, log.Ctx(ctx))
}

func loadDB() *appdb.DB {
	return store
}
