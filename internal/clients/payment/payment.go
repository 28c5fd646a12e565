package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/platform/envutil"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
)

// Charge describes one payment request for a priced basket.
type Charge struct {
	BuyerID uuid.UUID `json:"buyer_id"`
	StoreID uuid.UUID `json:"store_id"`
	Amount  float64   `json:"amount"`
}

// Gateway charges the buyer through the external payment provider. Pay
// returns a provider transaction reference used for refunds.
type Gateway interface {
	Pay(ctx context.Context, charge Charge) (string, error)
	Refund(ctx context.Context, transactionRef string) error
}

type httpGateway struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewHTTPGateway(log *logger.Logger) Gateway {
	return &httpGateway{
		log:     log.With("client", "PaymentGateway"),
		client:  &http.Client{Timeout: envutil.Duration("PAYMENT_TIMEOUT", 15*time.Second)},
		baseURL: envutil.String("PAYMENT_GATEWAY_URL", "http://localhost:9601"),
	}
}

type payResponse struct {
	TransactionRef string `json:"transaction_ref"`
}

func (g *httpGateway) Pay(ctx context.Context, charge Charge) (string, error) {
	body, err := json.Marshal(charge)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/pay", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment gateway rejected charge: status %d", resp.StatusCode)
	}
	var out payResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("payment gateway bad response: %w", err)
	}
	if out.TransactionRef == "" {
		return "", fmt.Errorf("payment gateway returned empty transaction ref")
	}
	return out.TransactionRef, nil
}

func (g *httpGateway) Refund(ctx context.Context, transactionRef string) error {
	body, err := json.Marshal(map[string]string{"transaction_ref": transactionRef})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/refund", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment gateway refused refund: status %d", resp.StatusCode)
	}
	return nil
}
