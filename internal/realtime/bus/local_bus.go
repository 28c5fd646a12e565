package bus

import (
	"context"

	"github.com/storemesh/marketplace-backend/internal/realtime"
)

// localBus delivers events straight to the in-process hub. It backs
// single-instance deployments where Redis is not configured; the forwarder
// is a no-op because Publish already reaches every local subscriber.
type localBus struct {
	hub *realtime.Hub
}

func NewLocalBus(hub *realtime.Hub) Bus {
	return &localBus{hub: hub}
}

func (b *localBus) Publish(_ context.Context, ev realtime.Event) error {
	b.hub.Publish(ev)
	return nil
}

func (b *localBus) StartForwarder(context.Context, func(ev realtime.Event)) error {
	return nil
}

func (b *localBus) Close() error { return nil }
