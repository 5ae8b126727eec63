package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList is a subject deny-list backed by Redis.
// Key format: revoked:<subject> holding the revocation time in unix nanoseconds.
// Entries outlive every token they can affect, so they expire after the
// token lifetime.
type RevocationList struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRevocationList wraps client. ttl should equal the session token lifetime.
func NewRevocationList(client *redis.Client, ttl time.Duration) *RevocationList {
	return &RevocationList{client: client, ttl: ttl}
}

// Revoke marks every token issued to subjects at or before at as revoked.
func (l *RevocationList) Revoke(ctx context.Context, subjects []string, at time.Time) error {
	if len(subjects) == 0 {
		return nil
	}
	value := strconv.FormatInt(at.UnixNano(), 10)
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range subjects {
			pipe.Set(ctx, l.key(s), value, l.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// RevokedAt returns the revocation time recorded for subject, if any.
func (l *RevocationList) RevokedAt(ctx context.Context, subject string) (time.Time, bool, error) {
	raw, err := l.client.Get(ctx, l.key(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("revocation lookup: %w", err)
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("revocation lookup: bad value %q: %w", raw, err)
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

func (l *RevocationList) key(subject string) string {
	return "revoked:" + subject
}
