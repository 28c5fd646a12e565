package realtime

// Event is one marketplace event fanned out to subscribed SSE clients.
// Channel is the recipient user id, or a store id for store-wide events.
type Event struct {
	Channel string         `json:"channel"`
	Name    string         `json:"name"`
	Data    map[string]any `json:"data,omitempty"`
}

const (
	EventOfferCreated      = "offer.created"
	EventOfferCountered    = "offer.countered"
	EventOfferApproved     = "offer.approved"
	EventOfferRejected     = "offer.rejected"
	EventContractCreated   = "contract.created"
	EventContractUpdated   = "contract.updated"
	EventContractFinalized = "contract.finalized"
	EventContractRejected  = "contract.rejected"
	EventRoleGranted       = "role.granted"
	EventRoleRevoked       = "role.revoked"
	EventOrderPlaced       = "order.placed"
)
