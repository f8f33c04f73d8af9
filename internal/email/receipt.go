package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/codr1/Runway/internal/payments"
)

const receiptEmailTimeout = 10 * time.Second

// Message is a plain-text email.
type Message struct {
	Subject string
	Body    string
}

// EmailSender delivers one message. SESClient is the production sender.
type EmailSender interface {
	Send(ctx context.Context, recipient string, msg Message) error
}

type ReceiptDetails struct {
	AgencyName  string
	SeasonLabel string
	Payment     payments.Payment
}

// BuildReceipt renders the vote receipt sent after a successful payment.
func BuildReceipt(details ReceiptDetails) Message {
	agency := strings.TrimSpace(details.AgencyName)
	if agency == "" {
		agency = "Runway"
	}
	payment := details.Payment
	contestant := strings.TrimSpace(payment.ContestantName)
	if contestant == "" {
		contestant = "your contestant"
	}
	voteWord := "votes"
	if payment.Votes == 1 {
		voteWord = "vote"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Thank you for voting with %s.\n\n", agency)
	fmt.Fprintf(&body, "Contestant: %s\n", contestant)
	if label := strings.TrimSpace(details.SeasonLabel); label != "" {
		fmt.Fprintf(&body, "Season: %s\n", label)
	}
	fmt.Fprintf(&body, "Votes: %d %s\n", payment.Votes, voteWord)
	fmt.Fprintf(&body, "Amount: %s\n", payments.FormatAmount(payment.Amount, payment.Currency))
	fmt.Fprintf(&body, "Payment ID: %s\n", payment.ID)
	if payment.Reference != "" {
		fmt.Fprintf(&body, "Reference: %s\n", payment.Reference)
	}
	fmt.Fprintf(&body, "Date: %s\n", payment.UpdatedAt.UTC().Format("Jan 2, 2006 15:04 MST"))

	return Message{
		Subject: fmt.Sprintf("Your %d %s for %s", payment.Votes, voteWord, contestant),
		Body:    body.String(),
	}
}

// SendReceiptEmail mails receipt to recipient in the background. The send
// outlives ctx's cancellation but not receiptEmailTimeout.
func SendReceiptEmail(ctx context.Context, sender EmailSender, recipient string, receipt Message, logger *zerolog.Logger) {
	recipient = strings.TrimSpace(recipient)
	if sender == nil || recipient == "" {
		return
	}
	if receipt.Subject == "" || receipt.Body == "" {
		return
	}

	go func() {
		if ctx == nil {
			ctx = context.Background()
		}
		// The callback response is already written by the time this runs.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptEmailTimeout)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, receipt); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send receipt email")
		}
	}()
}
