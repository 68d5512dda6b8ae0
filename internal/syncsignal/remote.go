package syncsignal

import (
	"context"
	"fmt"

	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/repository"
)

// RemoteNotifier relays the remote backing's own change feed. Publish is a no-op: the
// database reports every committed row change itself.
type RemoteNotifier struct {
	src repository.Subscriber
	sub *repository.Subscription
	hub *hub
}

var _ ChangeNotifier = (*RemoteNotifier)(nil)

func NewRemoteNotifier(ctx context.Context, src repository.Subscriber) (*RemoteNotifier, error) {
	n := &RemoteNotifier{src: src, hub: newHub()}
	sub, err := src.Subscribe(ctx, func() {
		n.hub.broadcast(Signal{Kind: KindRemoteChanged})
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to remote changes: %w", err)
	}
	n.sub = sub
	return n, nil
}

func (n *RemoteNotifier) Subscribe(buffer int) (<-chan Signal, func()) {
	return n.hub.subscribe(buffer)
}

func (n *RemoteNotifier) Publish(ctx context.Context, products []domain.Product) error {
	return nil
}

// Close tears the database subscription down. Safe to call twice.
func (n *RemoteNotifier) Close() error {
	n.src.Unsubscribe(n.sub)
	n.hub.close()
	logger.Info("Remote change subscription closed")
	return nil
}
