package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/accswap/accswap-backend/pkg/config"
	"github.com/accswap/accswap-backend/pkg/logger"
)

var (
	errKeyIDRequired         = errors.New("razorpay key id is required")
	errKeySecretRequired     = errors.New("razorpay key secret is required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")
)

// httpDoer lets tests swap the transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the Razorpay Orders API plus webhook signature helpers.
type Client struct {
	http          httpDoer
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
}

// OrderRequest captures the fields we send when opening a gateway order.
// Amount is in the currency's smallest unit (paise for INR).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the subset of the gateway order we care about.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// NewClient validates the configured credentials and builds the client.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.KeyID) == "" {
		return nil, errKeyIDRequired
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, errKeySecretRequired
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
	}, nil
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder opens a gateway order the client-side checkout can pay against.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}
	if req.Currency == "" {
		req.Currency = c.currency
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building order request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling razorpay: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay order create failed: status %d: %s", resp.StatusCode, truncate(payload, 512))
	}

	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("decoding razorpay order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}

	return &order, nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw body. HMAC-SHA256 hex, constant-time compare.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
