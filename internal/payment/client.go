// Package payment wraps the external payment provider. The provider confirms
// or declines a charge; it never touches marketplace state, and the caller
// must only grant an entitlement after a confirmed charge.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"craftmarket/internal/config"
	"craftmarket/internal/market"
)

// Charger is what the facade depends on; tests substitute a stub.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	ReferenceID string  `json:"referenceId"`
	Amount      float64 `json:"amount"`
	Email       string  `json:"email"`
	Comments    string  `json:"comments"`
}

type ChargeResult struct {
	TransactionID string `json:"transactionId"`
}

type chargeResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TransactionID string `json:"transactionId"`
	} `json:"data"`
}

type Client struct {
	cfg        config.PaymentConfig
	httpClient *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Charge posts a signed charge request. A declined charge comes back as
// market.ErrPaymentDeclined; transport failures stay plain errors for the
// facade to log and surface generically.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/v2/payment/direct", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("merchant", c.cfg.MerchantID)
	httpReq.Header.Set("signature", c.sign(body, http.MethodPost))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, market.ErrPaymentDeclined
	}

	var parsed chargeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("payment response: %w", err)
	}
	if parsed.Status != 200 {
		return nil, market.ErrPaymentDeclined
	}
	return &ChargeResult{TransactionID: parsed.Data.TransactionID}, nil
}

// sign builds the provider's HMAC-SHA256 request signature:
// hmac(apiKey, METHOD:merchant:sha256(body):apiKey), all hex lowercase.
func (c *Client) sign(body []byte, method string) string {
	bodyHash := sha256.Sum256(body)
	stringToSign := fmt.Sprintf("%s:%s:%s:%s",
		method, c.cfg.MerchantID,
		strings.ToLower(hex.EncodeToString(bodyHash[:])),
		c.cfg.APIKey)
	mac := hmac.New(sha256.New, []byte(c.cfg.APIKey))
	mac.Write([]byte(stringToSign))
	return strings.ToLower(hex.EncodeToString(mac.Sum(nil)))
}
