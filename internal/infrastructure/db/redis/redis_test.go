package redis

import (
	"context"
	"testing"
	"time"
)

func TestConnect(t *testing.T) {
	mr, _ := newMiniredis(t)
	ctx := context.Background()

	client, err := Connect(ctx, Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	check := Healthy(client)
	if err := check(ctx); err != nil {
		t.Fatalf("healthy server reported %v", err)
	}

	mr.Close()
	if err := check(ctx); err == nil {
		t.Fatal("expected stopped server to fail the check")
	}
}

func TestConnect_RequiresPassword(t *testing.T) {
	mr, _ := newMiniredis(t)
	mr.RequireAuth("s3cret")
	ctx := context.Background()

	if _, err := Connect(ctx, Config{Addr: mr.Addr(), DialTimeout: time.Second}); err == nil {
		t.Fatal("expected unauthenticated connect to fail")
	}
	client, err := Connect(ctx, Config{Addr: mr.Addr(), Password: "s3cret"})
	if err != nil {
		t.Fatalf("Connect with password: %v", err)
	}
	_ = client.Close()
}
