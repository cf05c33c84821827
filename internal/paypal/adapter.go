package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/paybridge/paybridge/internal/provider"
)

const (
	sandboxBase    = "https://api-m.sandbox.paypal.com"
	productionBase = "https://api-m.paypal.com"

	// tokenSafetyMargin is how much remaining lifetime a cached bearer token
	// must have before it is reused instead of refreshed.
	tokenSafetyMargin = 10 * time.Second

	defaultTimeout = 10 * time.Second

	verificationSuccess = "SUCCESS"
)

// Transmission header names PayPal attaches to webhook deliveries.
const (
	HeaderTransmissionID   = "paypal-transmission-id"
	HeaderTransmissionTime = "paypal-transmission-time"
	HeaderCertURL          = "paypal-cert-url"
	HeaderAuthAlgo         = "paypal-auth-algo"
	HeaderTransmissionSig  = "paypal-transmission-sig"
)

// Config carries the PayPal REST credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	WebhookID    string
	Timeout      time.Duration
	// BaseURL overrides the sandbox/production base, for tests.
	BaseURL string
}

// Adapter talks to the PayPal REST APIs. Charges are orders captured
// immediately; webhook verification is delegated to PayPal's
// verify-webhook-signature endpoint.
type Adapter struct {
	clientID     string
	clientSecret string
	webhookID    string
	base         string
	httpClient   *http.Client

	// token cache, per adapter instance
	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ provider.PaymentAdapter = (*Adapter)(nil)

// New builds a PayPal adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, provider.Validationf("paypal client id and secret required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = productionBase
		if cfg.Sandbox {
			base = sandboxBase
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Adapter{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		webhookID:    cfg.WebhookID,
		base:         base,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// auth returns a cached bearer token, fetching a fresh one when fewer than
// tokenSafetyMargin remain before expiry. The lock is held across the
// round-trip so concurrent callers never race duplicate fetches.
func (a *Adapter) auth(ctx context.Context) (string, error) {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-tokenSafetyMargin)) {
		return a.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", provider.Adapterf("paypal token request: %v", err)
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", provider.Adapterf("paypal token error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", provider.Adapterf("paypal token error: %d %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", provider.Adapterf("paypal token decode: %v", err)
	}
	if token.ExpiresIn <= 0 {
		token.ExpiresIn = 300
	}

	a.token = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return a.token, nil
}

// request performs an authenticated JSON call and decodes the response into
// out when out is non-nil.
func (a *Adapter) request(ctx context.Context, method, path string, payload, out any) error {
	token, err := a.auth(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return provider.Adapterf("paypal encode: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return provider.Adapterf("paypal request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return provider.Adapterf("paypal api error: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Adapterf("paypal api error: %d %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return provider.Adapterf("paypal decode: %v", err)
	}
	return nil
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      orderAmount `json:"amount"`
	Description string      `json:"description,omitempty"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Charge creates an order with CAPTURE intent and captures it immediately.
// The payment source is chosen client-side in PayPal's flow, so Source is
// not sent.
func (a *Adapter) Charge(ctx context.Context, in provider.ChargeInput) (provider.Charge, error) {
	order := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount: orderAmount{
				CurrencyCode: strings.ToUpper(in.Currency),
				Value:        centsToValue(in.AmountCents),
			},
			Description: in.Description,
		}},
	}

	var created orderResponse
	if err := a.request(ctx, http.MethodPost, "/v2/checkout/orders", order, &created); err != nil {
		return provider.Charge{}, err
	}
	if created.ID == "" {
		return provider.Charge{}, provider.Adapterf("paypal: no order id returned")
	}

	var captured orderResponse
	if err := a.request(ctx, http.MethodPost, "/v2/checkout/orders/"+created.ID+"/capture", struct{}{}, &captured); err != nil {
		return provider.Charge{}, err
	}

	status := provider.ChargeStatusSucceeded
	if captured.Status != "" && captured.Status != "COMPLETED" {
		status = strings.ToLower(captured.Status)
	}

	return provider.Charge{
		ID:          created.ID,
		AmountCents: in.AmountCents,
		Currency:    strings.ToUpper(in.Currency),
		Source:      in.Source,
		Description: in.Description,
		Status:      status,
	}, nil
}

type refundAmount struct {
	Value string `json:"value"`
}

type refundRequest struct {
	Amount *refundAmount `json:"amount,omitempty"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Refund refunds a capture, fully when no amount is given.
func (a *Adapter) Refund(ctx context.Context, in provider.RefundInput) (provider.Refund, error) {
	var req refundRequest
	if in.AmountCents > 0 {
		req.Amount = &refundAmount{Value: centsToValue(in.AmountCents)}
	}

	var resp refundResponse
	if err := a.request(ctx, http.MethodPost, "/v2/payments/captures/"+in.ChargeID+"/refund", req, &resp); err != nil {
		return provider.Refund{}, err
	}

	return provider.Refund{ID: resp.ID, RefundedCents: in.AmountCents, Status: strings.ToLower(resp.Status)}, nil
}

type verifyRequest struct {
	TransmissionID   string `json:"transmission_id"`
	TransmissionTime string `json:"transmission_time"`
	CertURL          string `json:"cert_url"`
	AuthAlgo         string `json:"auth_algo"`
	TransmissionSig  string `json:"transmission_sig"`
	WebhookID        string `json:"webhook_id"`
	WebhookEvent     string `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// VerifyWebhook asks PayPal's verify-webhook-signature endpoint whether the
// transmission is authentic. A non-success HTTP status from that endpoint
// is a false result; only transport failures surface as errors.
func (a *Adapter) VerifyWebhook(ctx context.Context, sig provider.WebhookSignature) (bool, error) {
	token, err := a.auth(ctx)
	if err != nil {
		return false, err
	}

	body := verifyRequest{
		TransmissionID:   sig.Headers[HeaderTransmissionID],
		TransmissionTime: sig.Headers[HeaderTransmissionTime],
		CertURL:          sig.Headers[HeaderCertURL],
		AuthAlgo:         sig.Headers[HeaderAuthAlgo],
		TransmissionSig:  sig.Headers[HeaderTransmissionSig],
		WebhookID:        a.webhookID,
		WebhookEvent:     string(sig.Payload),
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return false, provider.Adapterf("paypal encode: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/v1/notifications/verify-webhook-signature", bytes.NewReader(encoded))
	if err != nil {
		return false, provider.Adapterf("paypal request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false, provider.Adapterf("paypal api error: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, nil
	}

	var verdict verifyResponse
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return false, provider.Adapterf("paypal decode: %v", err)
	}
	return verdict.VerificationStatus == verificationSuccess, nil
}

// centsToValue renders an integer cent amount as the decimal string PayPal
// expects, e.g. 1250 -> "12.50".
func centsToValue(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
