package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrConnection indicates the validation endpoint could not be reached or
// returned something unintelligible. Callers show a generic retry message and
// must not treat it as a failed attempt.
var ErrConnection = errors.New("connection error")

// Result is the decoded outcome of a validation call
type Result struct {
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
	AttemptsRemaining *int   `json:"attemptsRemaining,omitempty"`
	Locked            bool   `json:"locked,omitempty"`
}

// Client calls the PIN validation endpoint on behalf of this device
type Client struct {
	baseURL    string
	httpClient *http.Client
	identity   *IdentityProvider
}

// NewClient creates a gate client against the given server base URL
func NewClient(baseURL string, identity *IdentityProvider) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		identity:   identity,
	}
}

type validateRequest struct {
	Pin      string `json:"pin"`
	ClientID string `json:"clientId"`
}

// ValidatePin submits the PIN together with this device's client key and
// returns the server's verdict. All HTTP statuses the endpoint emits carry a
// JSON body, so the status code itself is not inspected; Success and Locked
// tell the caller everything.
func (c *Client) ValidatePin(ctx context.Context, pin string) (*Result, error) {
	clientID, err := c.identity.GetOrCreate()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(validateRequest{Pin: pin, ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate-pin", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: unexpected response: %v", ErrConnection, err)
	}

	return &result, nil
}
