package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accswap/accswap-backend/pkg/config"
)

func testConfig(baseURL string) config.RazorpayConfig {
	return config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "rzp_test_secret",
		WebhookSecret: "whsec_test",
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		Currency:      "INR",
	}
}

func TestCreateOrder(t *testing.T) {
	var gotAuthUser, gotAuthPass string
	var gotBody OrderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_abc123",
			Amount:   gotBody.Amount,
			Currency: gotBody.Currency,
			Receipt:  gotBody.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		Amount:  180000,
		Receipt: "txn-1",
		Notes:   map[string]string{"listing_id": "lst-1"},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.ID != "order_abc123" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if gotAuthUser != "rzp_test_key" || gotAuthPass != "rzp_test_secret" {
		t.Fatalf("basic auth not forwarded: %s/%s", gotAuthUser, gotAuthPass)
	}
	if gotBody.Currency != "INR" {
		t.Fatalf("expected configured currency to be applied, got %q", gotBody.Currency)
	}
	if gotBody.Notes["listing_id"] != "lst-1" {
		t.Fatalf("notes not forwarded: %v", gotBody.Notes)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"description":"upstream down"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 100}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("https://gateway.invalid"), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 0}); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("https://gateway.invalid"), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	body := []byte(`{"event":"payment.captured"}`)
	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifyWebhookSignature(body, valid) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifyWebhookSignature(body, "deadbeef") {
		t.Fatal("expected bogus signature to fail")
	}
	if client.VerifyWebhookSignature(body, "") {
		t.Fatal("expected empty signature to fail")
	}
	if client.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid) {
		t.Fatal("expected signature over different body to fail")
	}
}

func TestNewClientValidation(t *testing.T) {
	cfg := testConfig("https://gateway.invalid")
	cfg.KeyID = ""
	if _, err := NewClient(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for missing key id")
	}

	cfg = testConfig("https://gateway.invalid")
	cfg.WebhookSecret = ""
	if _, err := NewClient(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for missing webhook secret")
	}
}
