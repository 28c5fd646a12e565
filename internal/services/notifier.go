package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime"
	"github.com/storemesh/marketplace-backend/internal/realtime/bus"
)

// Notifier publishes marketplace events onto the cross-instance bus. Every
// method is fire-and-forget: a dropped notification never fails the
// operation that produced it.
type Notifier interface {
	OfferChanged(storeID uuid.UUID, event string, offer store.OfferView)
	ContractChanged(storeID uuid.UUID, event string, contract store.ContractView)
	RoleChanged(storeID, userID uuid.UUID, event string)
	OrderPlaced(buyerID, storeID, orderID uuid.UUID, finalPrice float64)
}

type notifier struct {
	log *logger.Logger
	bus bus.Bus
}

func NewNotifier(log *logger.Logger, eventBus bus.Bus) Notifier {
	return &notifier{log: log.With("service", "Notifier"), bus: eventBus}
}

func (n *notifier) publish(ev realtime.Event) {
	if n == nil || n.bus == nil {
		return
	}
	if err := n.bus.Publish(context.Background(), ev); err != nil {
		n.log.Warn("failed to publish event", "event", ev.Name, "error", err)
	}
}

func (n *notifier) OfferChanged(storeID uuid.UUID, event string, offer store.OfferView) {
	n.publish(realtime.Event{
		Channel: storeID.String(),
		Name:    event,
		Data:    map[string]any{"offer": offer},
	})
	// the buyer follows their own channel, not the store's
	n.publish(realtime.Event{
		Channel: offer.BuyerID.String(),
		Name:    event,
		Data:    map[string]any{"offer": offer},
	})
}

func (n *notifier) ContractChanged(storeID uuid.UUID, event string, contract store.ContractView) {
	n.publish(realtime.Event{
		Channel: storeID.String(),
		Name:    event,
		Data:    map[string]any{"contract": contract},
	})
	n.publish(realtime.Event{
		Channel: contract.CandidateID.String(),
		Name:    event,
		Data:    map[string]any{"contract": contract},
	})
}

func (n *notifier) RoleChanged(storeID, userID uuid.UUID, event string) {
	n.publish(realtime.Event{
		Channel: storeID.String(),
		Name:    event,
		Data:    map[string]any{"user_id": userID},
	})
	n.publish(realtime.Event{
		Channel: userID.String(),
		Name:    event,
		Data:    map[string]any{"store_id": storeID},
	})
}

func (n *notifier) OrderPlaced(buyerID, storeID, orderID uuid.UUID, finalPrice float64) {
	data := map[string]any{"order_id": orderID, "final_price": finalPrice}
	n.publish(realtime.Event{Channel: buyerID.String(), Name: realtime.EventOrderPlaced, Data: data})
	n.publish(realtime.Event{Channel: storeID.String(), Name: realtime.EventOrderPlaced, Data: data})
}
