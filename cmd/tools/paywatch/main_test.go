package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codr1/Runway/internal/payments"
)

func statusServer(t *testing.T, statuses ...string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/payments/pay-1/status" {
			http.NotFound(w, r)
			return
		}
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		status := statuses[n]
		body := map[string]any{"success": true, "data": map[string]any{"status": status}}
		if status == "success" || status == "failed" {
			body["data"] = map[string]any{
				"status":  status,
				"payment": map[string]any{"id": "pay-1", "votes": 3, "amount": 300, "currency": "NPR", "status": status},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestWatch_PrintsReceipt(t *testing.T) {
	server, calls := statusServer(t, "created", "pending", "success")

	var out bytes.Buffer
	policy := payments.PollPolicy{Interval: time.Millisecond, MaxAttempts: 10}
	if err := watch(context.Background(), payments.NewHTTPFetcher(server.URL, nil), policy, "pay-1", &out); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Fatalf("calls = %d", got)
	}

	var resp payments.StatusResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if resp.Status != payments.StatusSuccess || resp.Payment == nil || resp.Payment.Votes != 3 {
		t.Fatalf("unexpected receipt: %+v", resp)
	}
}

func TestWatch_FailedPaymentIsAnError(t *testing.T) {
	server, _ := statusServer(t, "sent", "failed")

	var out bytes.Buffer
	policy := payments.PollPolicy{Interval: time.Millisecond, MaxAttempts: 10}
	err := watch(context.Background(), payments.NewHTTPFetcher(server.URL, nil), policy, "pay-1", &out)
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Fatalf("expected failure, got %v", err)
	}
	if !strings.Contains(out.String(), `"status": "failed"`) {
		t.Fatalf("receipt not printed: %s", out.String())
	}
}

func TestWatch_GivesUpWhilePending(t *testing.T) {
	server, calls := statusServer(t, "pending")

	policy := payments.PollPolicy{Interval: time.Millisecond, MaxAttempts: 4}
	err := watch(context.Background(), payments.NewHTTPFetcher(server.URL, nil), policy, "pay-1", &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected poll exhaustion")
	}
	if got := atomic.LoadInt32(calls); got != 4 {
		t.Fatalf("calls = %d, want 4", got)
	}
}

func TestWatch_UnknownPaymentStopsImmediately(t *testing.T) {
	server, calls := statusServer(t, "pending")

	policy := payments.PollPolicy{Interval: time.Millisecond, MaxAttempts: 5}
	if err := watch(context.Background(), payments.NewHTTPFetcher(server.URL, nil), policy, "missing", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown payment")
	}
	if got := atomic.LoadInt32(calls); got != 0 {
		t.Fatalf("status handler should not have counted, calls = %d", got)
	}
}
