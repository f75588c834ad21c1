package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BumpChannel carries invalidation signals for downstream report caches.
// Subscribers bump their cache version whenever a journal commits.
const BumpChannel = "gl.bump"

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// Bumper publishes ledger change notifications.
type Bumper struct {
	client *redis.Client
}

// NewBumper wraps a redis client for publishing to BumpChannel.
func NewBumper(client *redis.Client) *Bumper {
	return &Bumper{client: client}
}

// Bump notifies subscribers that the ledger changed for a business.
func (b *Bumper) Bump(ctx context.Context, businessID int64) error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Publish(ctx, BumpChannel, businessID).Err()
}
