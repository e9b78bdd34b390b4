package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyCodeDeterministicWithinDay(t *testing.T) {
	svc := New("test-secret")

	morning := time.Date(2026, 8, 28, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC)

	a := svc.For(morning)
	b := svc.For(evening)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Date, b.Date)
	assert.Equal(t, "2026-08-28", a.Date)
}

func TestDailyCodeRotatesAcrossDays(t *testing.T) {
	svc := New("test-secret")

	today := svc.For(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	tomorrow := svc.For(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))

	assert.NotEqual(t, today.Code, tomorrow.Code)
	assert.NotEqual(t, today.ExpiresAt, tomorrow.ExpiresAt)
}

func TestDailyCodeShape(t *testing.T) {
	svc := New("test-secret")
	code := svc.For(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	require.Len(t, code.Code, 9)
	for _, r := range code.Code {
		assert.True(t, r >= '0' && r <= '9', "code must be digits only, got %q", code.Code)
	}
	assert.Equal(t, "2026-08-29T00:00:00Z", code.ExpiresAt, "expires at next UTC midnight")
}

func TestDailyCodeDependsOnSecret(t *testing.T) {
	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	a := New("secret-a").For(at)
	b := New("secret-b").For(at)
	assert.NotEqual(t, a.Code, b.Code)
}

func TestCurrentUsesClock(t *testing.T) {
	svc := New("test-secret")
	fixed := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	assert.Equal(t, svc.For(fixed), svc.Current())
}
