package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fulfillment-be/internal/logger"

	"go.uber.org/zap"
)

const (
	monnifyTimeLayout = "2006-01-02 15:04:05"
	invoiceTTL        = 24 * time.Hour
)

type GatewayConfig struct {
	BaseURL      string
	APIKey       string
	SecretKey    string
	ContractCode string
}

type monnifyGateway struct {
	cfg        GatewayConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewMonnifyGateway(cfg GatewayConfig) Gateway {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		logger.L().Warn("payment gateway credentials are empty")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &monnifyGateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope[T any] struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseCode      string `json:"responseCode"`
	ResponseBody      T      `json:"responseBody"`
}

// ----------------- Auth -----------------

func (g *monnifyGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry) {
		return g.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/api/v1/auth/login", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.cfg.APIKey, g.cfg.SecretKey)

	var body envelope[struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}]
	if err := g.do(req, &body); err != nil {
		return "", fmt.Errorf("gateway login: %w", err)
	}

	g.accessToken = body.ResponseBody.AccessToken
	// refresh a minute early
	g.tokenExpiry = time.Now().Add(time.Duration(body.ResponseBody.ExpiresIn)*time.Second - time.Minute)
	return g.accessToken, nil
}

func (g *monnifyGateway) authorized(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	tok, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (g *monnifyGateway) do(req *http.Request, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

// ----------------- CreateInvoice -----------------

func (g *monnifyGateway) CreateInvoice(ctx context.Context, amount int64, reference string, customer Customer) (*Invoice, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("reference", reference),
		zap.Int64("amount", amount),
	)

	expiry := time.Now().Add(invoiceTTL)
	req, err := g.authorized(ctx, http.MethodPost, "/api/v1/invoice/create", map[string]any{
		"amount":           toMajor(amount),
		"invoiceReference": reference,
		"description":      "Order " + reference,
		"currencyCode":     "NGN",
		"contractCode":     g.cfg.ContractCode,
		"customerEmail":    customer.Email,
		"customerName":     customer.Name,
		"expiryDate":       expiry.Format(monnifyTimeLayout),
		"paymentMethods":   []string{"ACCOUNT_TRANSFER", "CARD"},
	})
	if err != nil {
		log.Error("failed building invoice request", zap.Error(err))
		return nil, err
	}

	var body envelope[struct {
		InvoiceReference     string  `json:"invoiceReference"`
		TransactionReference string  `json:"transactionReference"`
		CheckoutURL          string  `json:"checkoutUrl"`
		AccountNumber        string  `json:"accountNumber"`
		AccountName          string  `json:"accountName"`
		BankName             string  `json:"bankName"`
		Amount               float64 `json:"amount"`
		ExpiryDate           string  `json:"expiryDate"`
	}]
	if err := g.do(req, &body); err != nil {
		log.Error("invoice creation failed", zap.Error(err))
		return nil, err
	}
	if !body.RequestSuccessful {
		return nil, fmt.Errorf("gateway rejected invoice: %s", body.ResponseMessage)
	}

	rb := body.ResponseBody
	expiresAt := expiry
	if t, err := time.Parse(monnifyTimeLayout, rb.ExpiryDate); err == nil {
		expiresAt = t
	}

	log.Info("invoice created", zap.String("transaction_id", rb.TransactionReference))

	return &Invoice{
		Reference:     rb.InvoiceReference,
		TransactionID: rb.TransactionReference,
		CheckoutURL:   rb.CheckoutURL,
		AccountNumber: rb.AccountNumber,
		AccountName:   rb.AccountName,
		BankName:      rb.BankName,
		Amount:        ToMinor(rb.Amount),
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// ----------------- GetInvoiceStatus -----------------

func (g *monnifyGateway) GetInvoiceStatus(ctx context.Context, reference string) (*InvoiceStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("reference", reference))

	req, err := g.authorized(ctx, http.MethodGet, "/api/v1/invoice/"+url.PathEscape(reference)+"/details", nil)
	if err != nil {
		return nil, err
	}

	var details envelope[struct {
		InvoiceStatus        string `json:"invoiceStatus"`
		TransactionReference string `json:"transactionReference"`
	}]
	if err := g.do(req, &details); err != nil {
		log.Error("invoice lookup failed", zap.Error(err))
		return nil, err
	}

	status := &InvoiceStatus{
		Reference:     reference,
		PaymentStatus: PaymentStatus(details.ResponseBody.InvoiceStatus),
		TransactionID: details.ResponseBody.TransactionReference,
	}
	if status.PaymentStatus != PaymentStatusPaid || status.TransactionID == "" {
		return status, nil
	}

	req, err = g.authorized(ctx, http.MethodGet, "/api/v2/transactions/"+url.PathEscape(status.TransactionID), nil)
	if err != nil {
		return nil, err
	}

	var txn envelope[struct {
		PaymentStatus string  `json:"paymentStatus"`
		AmountPaid    float64 `json:"amountPaid"`
		PaidOn        string  `json:"paidOn"`
		PaymentMethod string  `json:"paymentMethod"`
	}]
	if err := g.do(req, &txn); err != nil {
		log.Error("transaction lookup failed", zap.Error(err))
		return nil, err
	}

	status.AmountPaid = ToMinor(txn.ResponseBody.AmountPaid)
	status.Method = txn.ResponseBody.PaymentMethod
	if t, err := ParseGatewayTime(txn.ResponseBody.PaidOn); err == nil {
		status.PaidAt = &t
	}
	return status, nil
}

// ----------------- Verify Signature -----------------

// VerifySignature checks the hex HMAC-SHA512 of body keyed with the secret.
func (g *monnifyGateway) VerifySignature(body []byte, signature string) error {
	if g.cfg.SecretKey == "" {
		return errors.New("webhook secret not configured")
	}
	mac := hmac.New(sha512.New, []byte(g.cfg.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseGatewayTime accepts the timestamp layouts the gateway emits.
func ParseGatewayTime(s string) (time.Time, error) {
	for _, layout := range []string{monnifyTimeLayout, "2006-01-02 15:04:05.000", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ToMinor converts a gateway amount in naira to kobo.
func ToMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}

func toMajor(minor int64) float64 {
	return float64(minor) / 100
}
