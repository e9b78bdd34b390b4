package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reels-miniapp-backend/internal/features/user/models"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestReadAllEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rec := models.Merge(nil, map[string]any{"telegram_id": float64(42), "region": "USA"})
	require.NoError(t, s.WriteAll(ctx, []*models.UserProfile{rec}))

	records, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.UserID, records[0].UserID)
	assert.Equal(t, "42", records[0].TelegramID.String())
	assert.Equal(t, "USA", records[0].Region)
}

func TestCorruptValueSelfHeals(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set(collectionKey, "{not json"))

	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.False(t, mr.Exists(collectionKey), "corrupt value is dropped")
}
