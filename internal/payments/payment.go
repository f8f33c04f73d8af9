// Package payments models paid votes and polls the gateway-facing status
// endpoint until a payment settles.
package payments

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusCreated Status = "created"
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusExpired Status = "expired"
)

const MaxVotesPerPayment = 1000

var (
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidTransition = errors.New("payment already settled")
	ErrVotingClosed      = errors.New("season is not accepting votes")
)

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPending, StatusSent, StatusSuccess, StatusFailed, StatusError, StatusExpired:
		return true
	}
	return false
}

// Pending reports whether the payment has not settled yet and should be
// polled again.
func (s Status) Pending() bool {
	switch s {
	case StatusCreated, StatusPending, StatusSent:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// CanTransition allows moves out of unsettled states. A payment the stale
// sweep expired can still be confirmed by a late gateway success; every
// other settled payment is final.
func CanTransition(from, to Status) bool {
	if from == StatusExpired {
		return to == StatusSuccess
	}
	return from.Pending() && to.Valid() && to != StatusCreated
}

// Payment is the receipt data returned once the vote purchase settles.
type Payment struct {
	ID             string    `json:"id"`
	SeasonID       int64     `json:"seasonId,omitempty"`
	ContestantID   int64     `json:"contestantId,omitempty"`
	ContestantName string    `json:"contestantName,omitempty"`
	Votes          int64     `json:"votes"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	VoterEmail     string    `json:"voterEmail,omitempty"`
	Status         Status    `json:"status"`
	Reference      string    `json:"reference,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StatusResponse is the body of the status endpoint. Payment is only set
// once the status has settled.
type StatusResponse struct {
	Status  Status   `json:"status"`
	Payment *Payment `json:"payment,omitempty"`
}

// Quote prices a vote purchase. Votes must be between 1 and
// MaxVotesPerPayment and the season must charge for votes.
func Quote(pricePerVote, votes int64) (int64, error) {
	if pricePerVote <= 0 {
		return 0, ErrVotingClosed
	}
	if votes < 1 || votes > MaxVotesPerPayment {
		return 0, fmt.Errorf("votes must be between 1 and %d", MaxVotesPerPayment)
	}
	if pricePerVote > math.MaxInt64/votes {
		return 0, fmt.Errorf("amount overflows")
	}
	return pricePerVote * votes, nil
}

// FormatAmount renders minor currency units, e.g. 12550 NPR -> "NPR 125.50".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, amount/100, amount%100)
}
