package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// StatusCodeError is a non-2xx answer from the status endpoint.
type StatusCodeError struct {
	Code    int
	Message string
}

func (e *StatusCodeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("status endpoint returned %d: %s", e.Code, e.Message)
}

// HTTPFetcher reads `GET {base}/api/v1/payments/{id}/status`.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type statusEnvelope struct {
	Success bool           `json:"success"`
	Data    StatusResponse `json:"data"`
	Message string         `json:"message"`
}

// FetchStatus treats 4xx answers as permanent so the poller stops; network
// failures and 5xx answers stay retryable.
func (f *HTTPFetcher) FetchStatus(ctx context.Context, paymentID string) (StatusResponse, error) {
	endpoint := f.baseURL + "/api/v1/payments/" + url.PathEscape(paymentID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusResponse{}, backoff.Permanent(fmt.Errorf("build status request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("fetch payment status: %w", err)
	}
	defer resp.Body.Close()

	var envelope statusEnvelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode >= 400 {
		statusErr := &StatusCodeError{Code: resp.StatusCode, Message: envelope.Message}
		if resp.StatusCode < 500 {
			return StatusResponse{}, backoff.Permanent(statusErr)
		}
		return StatusResponse{}, statusErr
	}
	if decodeErr != nil {
		return StatusResponse{}, fmt.Errorf("decode payment status: %w", decodeErr)
	}
	if !envelope.Data.Status.Valid() {
		return StatusResponse{}, backoff.Permanent(fmt.Errorf("%w: %q", ErrInvalidStatus, envelope.Data.Status))
	}
	return envelope.Data, nil
}
