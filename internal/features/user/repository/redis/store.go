package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"reels-miniapp-backend/internal/common/logger"
	"reels-miniapp-backend/internal/features/user/models"
	"reels-miniapp-backend/internal/features/user/repository"
)

const collectionKey = "users:collection"

// Store keeps the whole collection as one JSON array value, preserving the
// read-everything/write-everything semantics of the file store. SET is the
// commit point, so readers see either the old or the new array.
type Store struct {
	client *redis.Client
}

var _ repository.UserRepository = (*Store)(nil)

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) ReadAll(ctx context.Context) ([]*models.UserProfile, error) {
	data, err := s.client.Get(ctx, collectionKey).Bytes()
	if err == redis.Nil {
		return []*models.UserProfile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user collection: %w", err)
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn().Err(err).Str("key", collectionKey).Msg("user collection unreadable, resetting to empty")
		if delErr := s.client.Del(ctx, collectionKey).Err(); delErr != nil {
			return nil, fmt.Errorf("reset user collection: %w", delErr)
		}
		return []*models.UserProfile{}, nil
	}

	records := make([]*models.UserProfile, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if rec := models.Normalize(obj); rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *Store) WriteAll(ctx context.Context, records []*models.UserProfile) error {
	if records == nil {
		records = []*models.UserProfile{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user collection: %w", err)
	}
	if err := s.client.Set(ctx, collectionKey, data, 0).Err(); err != nil {
		return fmt.Errorf("write user collection: %w", err)
	}
	return nil
}
