package registry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UpdateChannel is the pub/sub channel registry changes are announced on.
const UpdateChannel = "contract_registry_update"

// Notifier announces registry changes to every running watcher.
type Notifier struct {
	client  redis.UniversalClient
	channel string
}

// NewNotifier creates a notifier publishing on UpdateChannel.
func NewNotifier(client redis.UniversalClient) *Notifier {
	return &Notifier{client: client, channel: UpdateChannel}
}

// Payload formats the advisory notification body.
func Payload(chainID int64, name string) string {
	return fmt.Sprintf("%d:%s", chainID, name)
}

// Publish announces a change of (chainID, name).
func (n *Notifier) Publish(ctx context.Context, chainID int64, name string) error {
	if err := n.client.Publish(ctx, n.channel, Payload(chainID, name)).Err(); err != nil {
		return fmt.Errorf("failed to publish registry update on %s: %w", n.channel, err)
	}
	return nil
}
