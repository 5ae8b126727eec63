package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRevocationList_RevokeNothingSkipsRedis(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	l := NewRevocationList(client, time.Hour)
	if err := l.Revoke(context.Background(), nil, time.Now()); err != nil {
		t.Fatalf("empty revoke touched redis: %v", err)
	}
}

func TestRevocationList_SurfacesConnectionErrors(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	l := NewRevocationList(client, time.Hour)
	ctx := context.Background()

	if err := l.Revoke(ctx, []string{"u1"}, time.Now()); err == nil {
		t.Fatal("expected revoke to fail without redis")
	}
	if _, found, err := l.RevokedAt(ctx, "u1"); err == nil || found {
		t.Fatalf("expected lookup error, got found=%v err=%v", found, err)
	}
}

func TestRevocationList_Key(t *testing.T) {
	l := NewRevocationList(nil, time.Hour)
	if got := l.key("abc"); got != "revoked:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRevocationList_RoundTrip(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRevocationList(client, 8*time.Hour)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 123_456_789, time.UTC)
	if err := l.Revoke(ctx, []string{"u1", "u2"}, at); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	for _, subject := range []string{"u1", "u2"} {
		got, found, err := l.RevokedAt(ctx, subject)
		if err != nil || !found {
			t.Fatalf("RevokedAt(%s): found=%v err=%v", subject, found, err)
		}
		if !got.Equal(at) {
			t.Fatalf("RevokedAt(%s) = %v, want %v", subject, got, at)
		}

		raw, err := mr.Get("revoked:" + subject)
		if err != nil {
			t.Fatalf("stored value: %v", err)
		}
		if raw != strconv.FormatInt(at.UnixNano(), 10) {
			t.Fatalf("stored %q", raw)
		}
		if ttl := mr.TTL("revoked:" + subject); ttl != 8*time.Hour {
			t.Fatalf("ttl = %v, want 8h", ttl)
		}
	}

	if _, found, err := l.RevokedAt(ctx, "u3"); err != nil || found {
		t.Fatalf("unknown subject: found=%v err=%v", found, err)
	}
}

func TestRevocationList_EntriesExpire(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRevocationList(client, time.Hour)
	ctx := context.Background()

	if err := l.Revoke(ctx, []string{"u1"}, time.Now()); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	mr.FastForward(time.Hour + time.Second)

	if _, found, err := l.RevokedAt(ctx, "u1"); err != nil || found {
		t.Fatalf("expired entry: found=%v err=%v", found, err)
	}
}

func TestRevocationList_RejectsCorruptValue(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRevocationList(client, time.Hour)

	if err := mr.Set("revoked:u1", "yesterday"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, found, err := l.RevokedAt(context.Background(), "u1"); err == nil || found {
		t.Fatalf("expected parse error, got found=%v err=%v", found, err)
	}
}
