package models

import (
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/payments"
)

func PaymentFromDB(row dbgen.Payment, contestantName string) payments.Payment {
	return payments.Payment{
		ID:             row.ID,
		SeasonID:       row.SeasonID.Int64,
		ContestantID:   row.ContestantID.Int64,
		ContestantName: contestantName,
		Votes:          row.Votes,
		Amount:         row.Amount,
		Currency:       row.Currency,
		VoterEmail:     row.VoterEmail,
		Status:         payments.Status(row.Status),
		Reference:      row.Reference,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// PaymentStatusResponse only attaches the receipt once the payment settled.
func PaymentStatusResponse(row dbgen.Payment, contestantName string) payments.StatusResponse {
	status := payments.Status(row.Status)
	resp := payments.StatusResponse{Status: status}
	if !status.Pending() {
		payment := PaymentFromDB(row, contestantName)
		resp.Payment = &payment
	}
	return resp
}
