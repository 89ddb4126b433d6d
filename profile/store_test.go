package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	accounts "github.com/wasiakbar8/smartstudy-accounts"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestPutAndGetRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := New(rdb, "doc")

	want := accounts.Profile{
		AccountID:          "acct-1",
		Email:              "student@u.edu",
		RegistrationNumber: "2021-CS-042",
		CreatedAt:          time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	if err := store.Put(ctx, "users", want.AccountID, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "users", want.AccountID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
	if got.EmailVerified {
		t.Fatal("stored profile must keep emailVerified false")
	}
}

func TestPutIsWriteOnce(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := New(rdb, "doc")

	p := accounts.Profile{AccountID: "acct-1", Email: "a@u.edu"}
	if err := store.Put(ctx, "users", p.AccountID, p); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	err := store.Put(ctx, "users", p.AccountID, p)
	var storeErr *accounts.StoreError
	if !errors.As(err, &storeErr) || storeErr.Reason != accounts.StorePermission {
		t.Fatalf("expected permission failure on second Put, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	if _, err := New(rdb, "doc").Get(context.Background(), "users", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutConnectivityFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	err := New(rdb, "doc").Put(context.Background(), "users", "k", accounts.Profile{AccountID: "k"})
	var storeErr *accounts.StoreError
	if !errors.As(err, &storeErr) || storeErr.Reason != accounts.StoreConnectivity {
		t.Fatalf("expected connectivity failure, got %v", err)
	}
}
