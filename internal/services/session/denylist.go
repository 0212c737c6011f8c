// Package session keeps revoked access tokens on a redis denylist so that
// logout takes effect before the token expires.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

// Denylist stores revoked tokens until their natural expiry.
type Denylist struct {
	client *redis.Client
}

// NewDenylist creates a denylist backed by the given redis client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Add puts a token on the denylist for the given duration.
func (d *Denylist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+token, 1, ttl).Err()
}

// Contains reports whether a token has been revoked.
func (d *Denylist) Contains(ctx context.Context, token string) (bool, error) {
	err := d.client.Get(ctx, denylistPrefix+token).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
