package services

import (
	"context"
	"fmt"
	"log/slog"

	"deliverynav/internal/core"
	"deliverynav/internal/storage"
)

// IdentityService resolves client-supplied device tokens to stable identities.
type IdentityService struct {
	storage *storage.SQLiteRepository
}

func NewIdentityService(storage *storage.SQLiteRepository) *IdentityService {
	return &IdentityService{storage: storage}
}

// Resolve normalizes a raw token and returns its identity, creating it on
// first contact. Equal raw tokens always resolve to the same identity.
func (s *IdentityService) Resolve(ctx context.Context, rawToken string) (core.Identity, error) {
	token := core.NormalizeToken(rawToken)

	ident, err := s.storage.GetOrCreateIdentity(ctx, token)
	if err != nil {
		return core.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	return ident, nil
}

// SetNickname updates the guest display name after bounds validation.
func (s *IdentityService) SetNickname(ctx context.Context, identityID int64, nickname string) error {
	if err := core.ValidateDisplayName(nickname); err != nil {
		return err
	}
	if err := s.storage.UpdateDisplayName(ctx, identityID, nickname); err != nil {
		return fmt.Errorf("set nickname: %w", err)
	}
	slog.InfoContext(ctx, "Nickname updated", "identity_id", identityID)
	return nil
}

// Get fetches an identity by its internal id.
func (s *IdentityService) Get(ctx context.Context, identityID int64) (core.Identity, error) {
	return s.storage.GetIdentityByID(ctx, identityID)
}
