package posvendor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrNotConfigured = errors.New("vendor API access token is not configured")
	ErrRequestFailed = errors.New("vendor API request failed")
)

// receiptPageSize is the page size requested from the receipt listing.
const receiptPageSize = 250

// Config holds the configuration for the vendor POS API client.
type Config struct {
	BaseURL string
	Token   string
}

// PaymentType describes a payment type registered with the vendor.
type PaymentType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ReceiptPage is one page of the vendor's receipt listing. Receipts are kept
// as raw JSON objects because the vendor schema carries many optional field
// aliases; the reconciliation engine resolves them with the candidate-list
// helpers in this package.
type ReceiptPage struct {
	Receipts []map[string]interface{}
	Cursor   string
}

// Client is an HTTP client for the vendor POS API. The underlying
// *http.Client is injected so tests can substitute a transport and so the
// network timeout is configured in one place by the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new vendor POS API client
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
	}
}

// IsConfigured checks if the client has the credentials it needs
func (c *Client) IsConfigured() bool {
	return c.token != "" && c.baseURL != ""
}

// ListReceipts fetches one page of receipts created inside [since, until).
// An empty cursor requests the first page; the returned cursor is empty when
// the vendor reports no further pages.
func (c *Client) ListReceipts(ctx context.Context, since, until time.Time, cursor string) (*ReceiptPage, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("created_at_min", since.UTC().Format(time.RFC3339))
	query.Set("created_at_max", until.UTC().Format(time.RFC3339))
	query.Set("limit", fmt.Sprintf("%d", receiptPageSize))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var payload struct {
		Receipts []map[string]interface{} `json:"receipts"`
		Cursor   string                   `json:"cursor"`
	}
	if err := c.get(ctx, "/receipts", query, &payload); err != nil {
		return nil, err
	}

	return &ReceiptPage{Receipts: payload.Receipts, Cursor: payload.Cursor}, nil
}

// ListPaymentTypes fetches the vendor's payment type registry keyed by ID.
func (c *Client) ListPaymentTypes(ctx context.Context) (map[string]PaymentType, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	var payload struct {
		PaymentTypes []PaymentType `json:"payment_types"`
	}
	if err := c.get(ctx, "/payment_types", nil, &payload); err != nil {
		return nil, err
	}

	types := make(map[string]PaymentType, len(payload.PaymentTypes))
	for _, pt := range payload.PaymentTypes {
		types[pt.ID] = pt
	}
	return types, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: %s returned status %d: %s", ErrRequestFailed, path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrRequestFailed, path, err)
	}
	return nil
}
