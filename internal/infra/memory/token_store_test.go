package memory

import (
	"context"
	"testing"
	"time"
)

func TestTokenStoreRevocationLifecycle(t *testing.T) {
	store := NewTokenStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }
	ctx := context.Background()

	if revoked, _ := store.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected unknown token not revoked")
	}
	if err := store.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected token revoked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := store.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected revocation to lapse with the token")
	}
}
