package lotoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"loto/internal/models"
)

// maxBodySize caps how much of a response is read into memory.
const maxBodySize = 4 << 20

// TicketImage is the binary confirmation returned for a created ticket.
type TicketImage struct {
	Data        []byte
	ContentType string
}

// Client talks to the loto backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the backend at baseURL. A nil httpClient gets a client with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// TicketStatus fetches the public status of the current round. No credentials are sent.
func (c *Client) TicketStatus(ctx context.Context) (*models.TicketStatusPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ticket-status", nil)
	if err != nil {
		return nil, fmt.Errorf("loto api: building status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, body); err != nil {
		return nil, err
	}

	var payload models.TicketStatusPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("loto api: decoding ticket status: %w: %v", ErrMalformedResponse, err)
	}
	return &payload, nil
}

// CreateTicket submits a ticket with the given bearer token and returns the confirmation image.
func (c *Client) CreateTicket(ctx context.Context, token string, ticket models.TicketRequest) (*TicketImage, error) {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return nil, fmt.Errorf("loto api: encoding ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tickets", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("loto api: building ticket request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Authorization", "Bearer "+token)

	body, resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, body); err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if len(body) == 0 || !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("loto api: ticket response %q with %d bytes: %w", contentType, len(body), ErrMalformedResponse)
	}
	return &TicketImage{Data: body, ContentType: mediaType}, nil
}

func (c *Client) do(req *http.Request) ([]byte, *http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("loto api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("loto api: reading %s response: %w", req.URL.Path, err)
	}
	if len(body) > maxBodySize {
		return nil, nil, fmt.Errorf("loto api: %s response larger than %d bytes: %w", req.URL.Path, maxBodySize, ErrMalformedResponse)
	}
	return body, resp, nil
}

// checkStatus turns a non-2xx response into an *APIError, keeping a string `detail` if the body has one.
func checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil {
			apiErr.Detail = detail
		}
	}
	return apiErr
}
