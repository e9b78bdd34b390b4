package service

import (
	"context"

	"reels-miniapp-backend/internal/features/user/models"
)

// UserService is the merge-upsert surface over the persisted collection.
// Every mutating call performs a full read-modify-write of the collection;
// last writer wins, which is the accepted model at this scale.
type UserService interface {
	// List returns the whole collection in storage order.
	List(ctx context.Context) ([]*models.UserProfile, error)

	// Find returns the first record matching the given filters, or nil when
	// nothing matches. The telegram_id filter wins when both are set.
	Find(ctx context.Context, userID, telegramID string) (*models.UserProfile, error)

	// Upsert looks up a record by the payload's user_id or telegram_id and
	// merges the payload into it, creating the record when absent.
	Upsert(ctx context.Context, payload map[string]any) (*models.UserProfile, error)

	// SaveByTelegramID is the legacy upsert, keyed strictly by telegram_id.
	SaveByTelegramID(ctx context.Context, payload map[string]any) (*models.UserProfile, error)

	// UpdateStatus merges a bare reels_status change into the record that
	// answers to id (user_id or telegram_id).
	UpdateStatus(ctx context.Context, id, status string) (*models.UserProfile, error)

	// GlobalStats recomputes the aggregate view over the collection.
	GlobalStats(ctx context.Context) (models.GlobalStats, error)
}
