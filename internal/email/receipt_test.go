package email

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/codr1/Runway/internal/payments"
)

type fakeEmailSender struct {
	sendCalls   int32
	sendStarted chan struct{}
	ctxErrCh    chan error
	recipient   atomic.Value
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{
		sendStarted: make(chan struct{}, 1),
		ctxErrCh:    make(chan error, 1),
	}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient string, msg Message) error {
	atomic.AddInt32(&f.sendCalls, 1)
	f.recipient.Store(recipient)
	select {
	case f.sendStarted <- struct{}{}:
	default:
	}
	select {
	case <-ctx.Done():
		f.ctxErrCh <- ctx.Err()
		return ctx.Err()
	case <-time.After(50 * time.Millisecond):
		f.ctxErrCh <- nil
		return nil
	}
}

func waitForSignal(t *testing.T, ch <-chan struct{}, message string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(500 * time.Millisecond):
		t.Fatal(message)
	}
}

func waitForError(t *testing.T, ch <-chan error, message string) error {
	t.Helper()

	select {
	case err := <-ch:
		return err
	case <-time.After(500 * time.Millisecond):
		t.Fatal(message)
		return nil
	}
}

func TestBuildReceipt(t *testing.T) {
	receipt := BuildReceipt(ReceiptDetails{
		AgencyName:  "Glamour Nepal",
		SeasonLabel: "Miss Nepal 2025",
		Payment: payments.Payment{
			ID:             "pay-1",
			ContestantName: "Asha Rai",
			Votes:          5,
			Amount:         12550,
			Currency:       "NPR",
			Reference:      "GW-88",
			UpdatedAt:      time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC),
		},
	})

	if receipt.Subject != "Your 5 votes for Asha Rai" {
		t.Fatalf("subject = %q", receipt.Subject)
	}
	for _, want := range []string{
		"Thank you for voting with Glamour Nepal.",
		"Season: Miss Nepal 2025",
		"Amount: NPR 125.50",
		"Reference: GW-88",
		"Date: Mar 4, 2025 10:30 UTC",
	} {
		if !strings.Contains(receipt.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, receipt.Body)
		}
	}
}

func TestBuildReceipt_Defaults(t *testing.T) {
	receipt := BuildReceipt(ReceiptDetails{Payment: payments.Payment{ID: "pay-2", Votes: 1, Currency: "NPR"}})

	if receipt.Subject != "Your 1 vote for your contestant" {
		t.Fatalf("subject = %q", receipt.Subject)
	}
	if strings.Contains(receipt.Body, "Season:") || strings.Contains(receipt.Body, "Reference:") {
		t.Fatalf("empty fields rendered:\n%s", receipt.Body)
	}
}

func TestSendReceiptEmail_OutlivesCanceledRequest(t *testing.T) {
	sender := newFakeEmailSender()

	ctx, cancel := context.WithCancel(context.Background())
	SendReceiptEmail(ctx, sender, " voter@test.com ", Message{Subject: "Subject", Body: "Body"}, nil)

	waitForSignal(t, sender.sendStarted, "expected receipt send to start")
	cancel()

	if err := waitForError(t, sender.ctxErrCh, "expected receipt send to finish"); err != nil {
		t.Fatalf("send aborted by request cancellation: %v", err)
	}
	if got := sender.recipient.Load(); got != "voter@test.com" {
		t.Fatalf("recipient = %v", got)
	}
}

func TestSendReceiptEmail_SkipsWithoutRecipient(t *testing.T) {
	sender := newFakeEmailSender()

	SendReceiptEmail(context.Background(), sender, "", Message{Subject: "Subject", Body: "Body"}, nil)
	SendReceiptEmail(context.Background(), sender, "voter@test.com", Message{}, nil)
	time.Sleep(20 * time.Millisecond)

	if calls := atomic.LoadInt32(&sender.sendCalls); calls != 0 {
		t.Fatalf("expected no sends, got %d", calls)
	}
}

type fakeSESAPI struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSESAPI) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESClientSend(t *testing.T) {
	api := &fakeSESAPI{}
	client := NewSESClientWithAPI(api, "votes@runway.test")

	msg := Message{Subject: "Hello", Body: "Body"}
	if err := client.Send(context.Background(), "voter@test.com", msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := *api.input.FromEmailAddress; got != "votes@runway.test" {
		t.Fatalf("from = %q", got)
	}
	if got := api.input.Destination.ToAddresses; len(got) != 1 || got[0] != "voter@test.com" {
		t.Fatalf("to = %v", got)
	}
	if tags := api.input.EmailTags; len(tags) != 1 || *tags[0].Value != "vote_receipt" {
		t.Fatalf("tags = %+v", tags)
	}
	if got := *api.input.Content.Simple.Subject.Data; got != "Hello" {
		t.Fatalf("subject = %q", got)
	}

	if err := client.Send(context.Background(), "  ", msg); err == nil {
		t.Fatalf("expected error for empty recipient")
	}

	api.err = errors.New("throttled")
	if err := client.Send(context.Background(), "voter@test.com", msg); err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected wrapped SES error, got %v", err)
	}
}
