package bus

import (
	"context"

	"github.com/storemesh/marketplace-backend/internal/realtime"
)

// Bus moves realtime events between backend instances so an approval handled
// on one node reaches SSE clients connected to another.
type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error
	Close() error
}
