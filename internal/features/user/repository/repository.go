package repository

import (
	"context"

	"reels-miniapp-backend/internal/features/user/models"
)

// UserRepository owns the persisted ordered collection of canonical records.
// Lookup is deliberately not a repository concern: callers load the whole
// collection, scan it, and write the whole collection back.
type UserRepository interface {
	ReadAll(ctx context.Context) ([]*models.UserProfile, error)
	WriteAll(ctx context.Context, records []*models.UserProfile) error
}
