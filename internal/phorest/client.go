// Package phorest is the HTTP client for the Phorest bridge functions: the
// serverless endpoints that own booking creation, client creation, recurring
// expansion, and break requests. Everything behind them (conflict detection,
// recurrence generation, permissions) is a black box to this service; error
// messages from the bridge are surfaced verbatim.
package phorest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salonsuite/platform/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// BackendError carries the backend-provided message for a rejected call.
// The wizard shows it to the user unmodified.
type BackendError struct {
	Function string
	Message  string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Client calls the bridge functions.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a bridge client.
func NewClient(baseURL, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// CreateBooking issues one booking-creation call.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	var out CreateBookingResponse
	if err := c.post(ctx, "create-booking", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &BackendError{Function: "create-booking", Message: out.Error}
	}
	return &out, nil
}

// CreateClient creates a client record in the backend.
func (c *Client) CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error) {
	var out CreateClientResponse
	if err := c.post(ctx, "create-client", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &BackendError{Function: "create-client", Message: out.Error}
	}
	return &out, nil
}

// ExpandRecurrence asks the backend to generate the recurring series for an
// already-created appointment. A response with skipped instances is still
// success.
func (c *Client) ExpandRecurrence(ctx context.Context, req RecurringRequest) (*RecurringResponse, error) {
	var out RecurringResponse
	if err := c.post(ctx, "recurring-appointments", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &BackendError{Function: "recurring-appointments", Message: out.Error}
	}
	return &out, nil
}

// RequestBreak submits a break/time-off request.
func (c *Client) RequestBreak(ctx context.Context, req BreakRequest) (*BreakResponse, error) {
	var out BreakResponse
	if err := c.post(ctx, "break-request", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &BackendError{Function: "break-request", Message: out.Error}
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, function string, payload any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("phorest: missing bridge base URL")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("phorest: marshal %s request: %w", function, err)
	}

	url := c.baseURL + "/" + function
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("phorest: create %s request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("phorest: %s request: %w", function, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("phorest: read %s response: %w", function, err)
	}

	if resp.StatusCode != http.StatusOK {
		// The bridge reports business-rule rejections inside a 200 envelope;
		// non-200 means the function itself failed. Try the envelope anyway
		// so the backend's message survives.
		var env struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &env) == nil && env.Error != "" {
			return &BackendError{Function: function, Message: env.Error}
		}
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return fmt.Errorf("phorest: %s status %d: %s", function, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("phorest: unmarshal %s response: %w", function, err)
	}
	return nil
}
