package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	return r.WithTimeout(2 * time.Second)
}

// Sessions resolves opaque admin session tokens to actor names.
type Sessions struct{ R *redis.Client }

// Actor returns the actor bound to token, or "" when the token is unknown
// or expired.
func (s Sessions) Actor(ctx context.Context, token string) (string, error) {
	v, err := s.R.Get(ctx, fmt.Sprintf(KeySession, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
