package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramIDRoundTrip(t *testing.T) {
	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"telegram_id": 123456789}`), &p))
	assert.Equal(t, "123456789", p.TelegramID.String())

	data, err := json.Marshal(p.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, "123456789", string(data), "numeric identity stays a JSON number")

	require.NoError(t, json.Unmarshal([]byte(`{"telegram_id": "handle"}`), &p))
	data, err = json.Marshal(p.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, `"handle"`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`{"telegram_id": null}`), &p))
	data, err = json.Marshal(p.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestTelegramIDInt64(t *testing.T) {
	id, ok := TelegramIDFrom(float64(42)).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = TelegramIDFrom("handle").Int64()
	assert.False(t, ok)

	_, ok = TelegramIDFrom(nil).Int64()
	assert.False(t, ok)
}

func TestMatchesKey(t *testing.T) {
	p := &UserProfile{UserID: "abc", TelegramID: TelegramIDFrom(float64(42))}

	assert.True(t, p.MatchesKey("abc"))
	assert.True(t, p.MatchesKey("42"))
	assert.False(t, p.MatchesKey("other"))
	assert.False(t, p.MatchesKey(""))
}

func TestComputeGlobalStats(t *testing.T) {
	link := "https://www.instagram.com/reel/OK"
	badLink := "https://example.com/watch"
	records := []*UserProfile{
		{ReelsLink: &link, ReelsStatus: "approved"},
		{ReelsLink: &link, ReelsStatus: "REJECTED"},
		{ReelsLink: &badLink, ReelsStatus: "approved"},
		{ReelsStatus: "approved"},
		{ReelsLink: &link, ReelsStatus: "pending"},
	}

	stats := ComputeGlobalStats(records, 500)
	assert.Equal(t, 5, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalValidReels)
	assert.Equal(t, 500, stats.ReelsLimit)
	assert.NotEmpty(t, stats.UpdatedAt)
}
