package supply

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

// Shipment describes one delivery request for a completed purchase.
type Shipment struct {
	BuyerID uuid.UUID      `json:"buyer_id"`
	StoreID uuid.UUID      `json:"store_id"`
	Lines   []ShipmentLine `json:"lines"`
	Address string         `json:"address"`
}

type ShipmentLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Gateway books a delivery with the external supply provider. Ship returns a
// provider shipment reference used for cancellation.
type Gateway interface {
	Ship(ctx context.Context, shipment Shipment) (string, error)
	Cancel(ctx context.Context, shipmentRef string) error
}

type httpGateway struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewHTTPGateway(log *logger.Logger) Gateway {
	return &httpGateway{
		log:     log.With("client", "SupplyGateway"),
		client:  &http.Client{Timeout: envutil.Duration("SUPPLY_TIMEOUT", 15*time.Second)},
		baseURL: envutil.String("SUPPLY_GATEWAY_URL", "http://localhost:9602"),
	}
}

type shipResponse struct {
	ShipmentRef string `json:"shipment_ref"`
}

func (g *httpGateway) Ship(ctx context.Context, shipment Shipment) (string, error) {
	body, err := json.Marshal(shipment)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/ship", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supply gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("supply gateway rejected shipment: status %d", resp.StatusCode)
	}
	var out shipResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("supply gateway bad response: %w", err)
	}
	if out.ShipmentRef == "" {
		return "", fmt.Errorf("supply gateway returned empty shipment ref")
	}
	return out.ShipmentRef, nil
}

func (g *httpGateway) Cancel(ctx context.Context, shipmentRef string) error {
	body, err := json.Marshal(map[string]string{"shipment_ref": shipmentRef})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/cancel", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("supply gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("supply gateway refused cancellation: status %d", resp.StatusCode)
	}
	return nil
}
