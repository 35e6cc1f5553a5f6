package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client defines the Anti-Corruption Layer interface for the payment
// provider. This abstraction decouples the booking lifecycle from the
// external Chapa API.
type Client interface {
	// Initiate starts a hosted-checkout transaction and returns the checkout
	// URL plus the provider's opaque reference.
	Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error)

	// Verify reports the provider's status for a previously initiated
	// transaction reference.
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// InitiateParams carries everything the provider needs to open a checkout
// session. TxRef is the caller-generated idempotency token.
type InitiateParams struct {
	AmountCents int64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	Title       string
	Description string
}

// InitiateResult is the successful outcome of Initiate.
type InitiateResult struct {
	CheckoutURL string
	Reference   string
}

// Provider-reported transaction statuses.
const (
	VerifySuccess = "success"
	VerifyFailed  = "failed"
	VerifyPending = "pending"
)

// VerifyResult is the successful outcome of Verify.
type VerifyResult struct {
	Status        string
	TransactionID string
}

// Reason is the closed set of gateway failure classes.
type Reason string

const (
	ReasonTransport Reason = "transport"
	ReasonAPIStatus Reason = "api_status"
	ReasonMalformed Reason = "malformed_response"
)

// Error is the structured failure returned by the gateway client. Every
// failure path maps onto exactly one Reason; callers never see a raw
// transport or decoding error.
type Error struct {
	Reason     Reason
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Reason {
	case ReasonAPIStatus:
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	case ReasonMalformed:
		return "gateway returned a malformed response"
	default:
		return fmt.Sprintf("gateway request failed: %v", e.Err)
	}
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Config is the explicit configuration for the Chapa client. Nothing is read
// from the process environment here.
type Config struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Timeout     time.Duration
}

// ChapaClient talks to the Chapa transaction API over HTTPS.
type ChapaClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewChapaClient creates a Chapa client with an explicit request timeout.
func NewChapaClient(cfg Config, logger *zap.Logger) *ChapaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.chapa.co/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &ChapaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type initiateRequest struct {
	Amount      string        `json:"amount"`
	Currency    string        `json:"currency"`
	Email       string        `json:"email"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	TxRef       string        `json:"tx_ref"`
	CallbackURL string        `json:"callback_url"`
	ReturnURL   string        `json:"return_url"`
	Custom      customization `json:"customization"`
}

type customization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type initiateResponse struct {
	Data struct {
		CheckoutURL string `json:"checkout_url"`
		Reference   string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Data struct {
		Status string `json:"status"`
		TxRef  string `json:"tx_ref"`
	} `json:"data"`
}

// Initiate starts a transaction via POST /transaction/initialize.
func (c *ChapaClient) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	payload := initiateRequest{
		Amount:      formatAmount(params.AmountCents),
		Currency:    params.Currency,
		Email:       params.Email,
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		TxRef:       params.TxRef,
		CallbackURL: c.cfg.CallbackURL,
		ReturnURL:   c.cfg.ReturnURL,
		Custom: customization{
			Title:       params.Title,
			Description: params.Description,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Reason: ReasonMalformed, Err: err}
	}

	var resp initiateResponse
	if gwErr := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &resp); gwErr != nil {
		c.logger.Error("payment initiation failed",
			zap.String("tx_ref", params.TxRef),
			zap.Error(gwErr),
		)
		return nil, gwErr
	}

	if resp.Data.CheckoutURL == "" || resp.Data.Reference == "" {
		return nil, &Error{Reason: ReasonMalformed, Err: fmt.Errorf("initiate response missing checkout_url or reference")}
	}

	c.logger.Info("payment initiated",
		zap.String("tx_ref", params.TxRef),
		zap.String("reference", resp.Data.Reference),
	)

	return &InitiateResult{
		CheckoutURL: resp.Data.CheckoutURL,
		Reference:   resp.Data.Reference,
	}, nil
}

// Verify checks a transaction via GET /transaction/verify/{reference}.
func (c *ChapaClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var resp verifyResponse
	if gwErr := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp); gwErr != nil {
		c.logger.Error("payment verification failed",
			zap.String("reference", reference),
			zap.Error(gwErr),
		)
		return nil, gwErr
	}

	if resp.Data.Status == "" {
		return nil, &Error{Reason: ReasonMalformed, Err: fmt.Errorf("verify response missing status")}
	}

	return &VerifyResult{
		Status:        resp.Data.Status,
		TransactionID: resp.Data.TxRef,
	}, nil
}

// do performs an authenticated request and decodes a 2xx JSON body into out.
func (c *ChapaClient) do(ctx context.Context, method, path string, body []byte, out interface{}) *Error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return &Error{Reason: ReasonTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Reason: ReasonTransport, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Reason:     ReasonAPIStatus,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Reason: ReasonMalformed, StatusCode: resp.StatusCode, Body: string(raw), Err: err}
	}
	return nil
}

// formatAmount renders integer cents as the two-decimal string the provider
// expects, e.g. 30000 -> "300.00".
func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
