package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"campaign-caller-go/internal/logger"
	"campaign-caller-go/internal/types"
)

// fetchTimeout is the fixed bound on the call-details lookup.
const fetchTimeout = 10 * time.Second

// Client talks to the voice gateway. Every operation is a single
// attempt; retry policy belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartCallResponse is the gateway's call-creation reply. Raw keeps the
// full payload for display; only the id matters to this system.
type StartCallResponse struct {
	ID  string
	Raw map[string]any
}

type startCallRequest struct {
	AssistantID   string `json:"assistantId"`
	PhoneNumberID string `json:"phoneNumberId"`
	Customer      struct {
		Number string `json:"number"`
	} `json:"customer"`
}

// StartCall issues the outbound call-creation request.
func (c *Client) StartCall(ctx context.Context, number, assistantID, phoneNumberID string) (StartCallResponse, error) {
	log := logger.New().WithComponent("gateway")

	payload := startCallRequest{AssistantID: assistantID, PhoneNumberID: phoneNumberID}
	payload.Customer.Number = number
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/phone", bytes.NewReader(body))
	if err != nil {
		return StartCallResponse{}, &Error{Kind: StartFailed, cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("start call request failed")
		return StartCallResponse{}, &Error{Kind: StartFailed, cause: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("http_status", resp.StatusCode).Warn("start call rejected")
		return StartCallResponse{}, &Error{Kind: StartFailed, Status: resp.StatusCode, Body: snippet(raw)}
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return StartCallResponse{}, &Error{Kind: StartFailed, Status: resp.StatusCode, cause: err}
	}
	id, _ := parsed["id"].(string)
	log.WithField("call_id", id).Info("call initiated")
	return StartCallResponse{ID: id, Raw: parsed}, nil
}

// FetchCall looks up call details (transcript, structured data) with a
// fixed 10s bound.
func (c *Client) FetchCall(ctx context.Context, callID string) (types.CallDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/call/"+callID, nil)
	if err != nil {
		return types.CallDetails{}, &Error{Kind: FetchFailed, cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.CallDetails{}, &Error{Kind: FetchFailed, cause: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.CallDetails{}, &Error{Kind: FetchFailed, Status: resp.StatusCode, Body: snippet(raw)}
	}

	var details types.CallDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return types.CallDetails{}, &Error{Kind: DecodeFailed, Status: resp.StatusCode, cause: err}
	}
	return details, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
