package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kidpal/internal/domain"
)

func testKid() domain.Kid {
	verified := time.Now().UTC()
	return domain.Kid{
		ID:               "kid-1",
		Name:             "Mila",
		ParentEmail:      "parent@example.com",
		ParentVerifiedAt: &verified,
	}
}

func TestJWTServiceGenerateAndParse(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour)

	pair, err := svc.GeneratePair(context.Background(), testKid())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if pair.ExpiresIn != 60 {
		t.Fatalf("expected expires_in 60, got %d", pair.ExpiresIn)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access failed: %v", err)
	}
	if claims.KidID != "kid-1" || claims.KidName != "Mila" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.ParentVerified {
		t.Fatalf("expected parent_verified claim")
	}

	// El refresh no pasa como access.
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh-as-access, got %v", err)
	}
}

func TestJWTServiceRefreshRotation(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour)
	ctx := context.Background()

	pair, err := svc.GeneratePair(ctx, testKid())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	next, err := svc.RefreshPair(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.AccessToken == "" || next.RefreshToken == "" {
		t.Fatalf("expected rotated pair")
	}

	// El refresh usado quedo revocado.
	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected reuse to fail, got %v", err)
	}

	// El nuevo sigue vivo.
	if _, err := svc.RefreshPair(ctx, next.RefreshToken); err != nil {
		t.Fatalf("expected new refresh to work, got %v", err)
	}
}

func TestJWTServiceRevokeRefresh(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour)
	ctx := context.Background()

	pair, err := svc.GeneratePair(ctx, testKid())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := svc.RevokeRefresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected revoked refresh to fail, got %v", err)
	}
}

func TestJWTServiceRejectsForeignSignature(t *testing.T) {
	a := NewJWTService("secret-a", time.Minute, time.Hour)
	b := NewJWTService("secret-b", time.Minute, time.Hour)

	pair, err := a.GeneratePair(context.Background(), testKid())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := b.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected foreign token rejection, got %v", err)
	}
}

func TestJWTServiceWithoutSecret(t *testing.T) {
	svc := NewJWTService("", time.Minute, time.Hour)
	if _, err := svc.GeneratePair(context.Background(), testKid()); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid without secret, got %v", err)
	}
}

func TestMemoryRefreshTokenStore(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	ctx := context.Background()

	if err := store.Store(ctx, "jti-1", "kid-1", time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	ok, err := store.Exists(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected jti to exist")
	}

	if err := store.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	ok, _ = store.Exists(ctx, "jti-1")
	if ok {
		t.Fatalf("expected jti revoked")
	}

	// TTL vencido cuenta como inexistente.
	if err := store.Store(ctx, "jti-2", "kid-1", -time.Second); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	ok, _ = store.Exists(ctx, "jti-2")
	if ok {
		t.Fatalf("expected expired jti to be gone")
	}
}

func TestMemoryDescriptionCache(t *testing.T) {
	cache := NewMemoryDescriptionCache()
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "kid-1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	cache.Set(ctx, "kid-1", "a playful bot")
	desc, ok := cache.Get(ctx, "kid-1")
	if !ok || desc != "a playful bot" {
		t.Fatalf("expected cached description, got %q ok=%v", desc, ok)
	}

	cache.Invalidate(ctx, "kid-1")
	if _, ok := cache.Get(ctx, "kid-1"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}
