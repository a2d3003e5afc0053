package sslcommerz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"backend/internal/config"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	sessionPath   = "/gwprocess/v4/api.php"
	validatorPath = "/validator/api/validationserverAPI.php"
)

// Client talks to the SSLCommerz hosted-checkout API. All calls are bounded
// by the injected http.Client timeout plus the caller's context; a timed-out
// validation must be treated by callers as "not yet confirmed", never as a
// failed payment.
type Client struct {
	storeID       string
	storePassword string
	baseURL       string
	httpClient    *http.Client
	logger        zerolog.Logger
}

func New(cfg config.SSLCommerzConfig, logger zerolog.Logger) *Client {
	baseURL := liveBaseURL
	if cfg.Sandbox {
		baseURL = sandboxBaseURL
	}
	return &Client{
		storeID:       cfg.StoreID,
		storePassword: cfg.StorePassword,
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        logger.With().Str("component", "sslcommerz").Logger(),
	}
}

// InitRequest carries everything the gateway needs to open a checkout
// session: the amount, the transaction id and the three redirect URLs plus
// the IPN endpoint.
type InitRequest struct {
	Amount        float64
	Currency      string
	TranID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
	ProductName   string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	IPNURL        string
}

// InitResponse is the session-create reply. GatewayPageURL is where the payer
// is redirected; SessionKey identifies the session for later reconciliation.
type InitResponse struct {
	Status         string `json:"status"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
	FailedReason   string `json:"failedreason"`
}

// ValidationResponse is the validator API reply. Amount is the originally
// requested amount; CurrencyAmount is the amount in the store currency after
// any conversion.
type ValidationResponse struct {
	Status         string `json:"status"`
	TranID         string `json:"tran_id"`
	ValID          string `json:"val_id"`
	Amount         string `json:"amount"`
	CurrencyAmount string `json:"currency_amount"`
	CurrencyType   string `json:"currency_type"`
	CardType       string `json:"card_type"`
	BankTranID     string `json:"bank_tran_id"`
	TranDate       string `json:"tran_date"`
	RiskLevel      string `json:"risk_level"`
	RiskTitle      string `json:"risk_title"`
}

// Settled reports whether the gateway confirms the money movement. VALIDATED
// is returned on revalidation of an already-verified transaction.
func (r ValidationResponse) Settled() bool {
	return r.Status == "VALID" || r.Status == "VALIDATED"
}

// InitiateSession opens a hosted-checkout session and returns the redirect
// URL for the payer. A non-SUCCESS gateway status is returned as an error.
func (c *Client) InitiateSession(ctx context.Context, req InitRequest) (InitResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePassword)
	form.Set("total_amount", fmt.Sprintf("%.2f", req.Amount))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.Address)
	form.Set("cus_city", req.City)
	form.Set("cus_country", "Bangladesh")
	form.Set("shipping_method", "Courier")
	form.Set("ship_name", req.CustomerName)
	form.Set("ship_add1", req.Address)
	form.Set("ship_city", req.City)
	form.Set("ship_country", "Bangladesh")
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "general")
	form.Set("product_profile", "general")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return InitResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return InitResponse{}, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return InitResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return InitResponse{}, fmt.Errorf("gateway session error (%d): %s", resp.StatusCode, string(body))
	}

	var initResp InitResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		return InitResponse{}, fmt.Errorf("unexpected gateway response: %w", err)
	}

	if initResp.Status != "SUCCESS" {
		c.logger.Warn().Str("tran_id", req.TranID).Str("reason", initResp.FailedReason).Msg("session rejected")
		return InitResponse{}, fmt.Errorf("gateway rejected session: %s", initResp.FailedReason)
	}
	if initResp.GatewayPageURL == "" {
		return InitResponse{}, fmt.Errorf("gateway returned empty payment URL")
	}

	c.logger.Info().Str("tran_id", req.TranID).Str("sessionkey", initResp.SessionKey).Msg("session created")
	return initResp, nil
}

// ValidateTransaction re-verifies a transaction against the gateway's own
// validator API. Callback bodies can be spoofed by anything that can reach
// the public callback URLs, so this is the only trusted signal.
func (c *Client) ValidateTransaction(ctx context.Context, valID string) (ValidationResponse, error) {
	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", c.storeID)
	query.Set("store_passwd", c.storePassword)
	query.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+validatorPath+"?"+query.Encode(), nil)
	if err != nil {
		return ValidationResponse{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ValidationResponse{}, fmt.Errorf("validator unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ValidationResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return ValidationResponse{}, fmt.Errorf("validator error (%d): %s", resp.StatusCode, string(body))
	}

	var valResp ValidationResponse
	if err := json.Unmarshal(body, &valResp); err != nil {
		return ValidationResponse{}, fmt.Errorf("unexpected validator response: %w", err)
	}

	c.logger.Info().Str("val_id", valID).Str("status", valResp.Status).Msg("transaction validated")
	return valResp, nil
}
