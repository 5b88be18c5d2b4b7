package auth

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetHasDel(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ok, err := store.Has(ctx, "k1")
	if err != nil || !ok {
		t.Errorf("Has(k1) = %v, %v, want true, nil", ok, err)
	}

	ok, _ = store.Has(ctx, "missing")
	if ok {
		t.Error("Has(missing) = true, want false")
	}

	if err := store.Del(ctx, "k1"); err != nil {
		t.Fatalf("Del() error = %v", err)
	}
	ok, _ = store.Has(ctx, "k1")
	if ok {
		t.Error("Has(k1) after Del = true, want false")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "short", 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	ok, err := store.Has(ctx, "short")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if ok {
		t.Error("Has(short) after expiry = true, want false")
	}
}
