package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeNow is swapped out in tests that need deterministic timestamps.
var timeNow = time.Now

// UserProfile is the canonical persisted record. Every recognized field is
// always present after normalization; unknown fields from foreign payloads
// are dropped at the boundary.
type UserProfile struct {
	UserID     string     `json:"user_id"`
	TelegramID TelegramID `json:"telegram_id"`

	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url"`

	Region    string  `json:"region"`
	Language  string  `json:"language"`
	UTCOffset *string `json:"utc_offset"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	CityLabel string  `json:"city_label"`
	Timezone  string  `json:"timezone"`

	Referrals  []int64 `json:"referrals"`
	ReferrerID *string `json:"referrer_id"`

	PointsTotal   float64 `json:"points_total"`
	PointsCurrent float64 `json:"points_current"`
	DailyPoints   float64 `json:"daily_points"`
	LastReset     *string `json:"last_reset"`

	ReelsLink   *string `json:"reels_link"`
	ReelsStatus string  `json:"reels_status"`
	ModeratedAt *string `json:"moderated_at"`

	NineDigitCode          bool    `json:"nine_digit_code"`
	ReelsLaunchedTotal     int64   `json:"reels_launched_total"`
	MissionProgress        int64   `json:"mission_progress"`
	LastMissionCompletedAt *string `json:"last_mission_completed_at"`

	StoriesModalHidden bool `json:"stories_modal_hidden"`

	UpdatedAt  string `json:"updated_at"`
	LastOnline string `json:"last_online"`
}

// Clone returns a deep copy, so merges never mutate the stored record.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.UTCOffset = cloneStringPtr(p.UTCOffset)
	out.ReferrerID = cloneStringPtr(p.ReferrerID)
	out.LastReset = cloneStringPtr(p.LastReset)
	out.ReelsLink = cloneStringPtr(p.ReelsLink)
	out.ModeratedAt = cloneStringPtr(p.ModeratedAt)
	out.LastMissionCompletedAt = cloneStringPtr(p.LastMissionCompletedAt)
	out.Referrals = append([]int64(nil), p.Referrals...)
	return &out
}

// MatchesKey reports whether the record answers to the given identifier,
// by public user_id first, then by the stringified telegram_id.
func (p *UserProfile) MatchesKey(key string) bool {
	if key == "" {
		return false
	}
	if p.UserID == key {
		return true
	}
	return !p.TelegramID.IsZero() && p.TelegramID.String() == key
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type telegramIDKind uint8

const (
	telegramIDNone telegramIDKind = iota
	telegramIDNumber
	telegramIDString
)

// TelegramID is the external Telegram identity: a number when the raw value
// is numeric-looking, a trimmed string otherwise, or null. JSON round-trips
// preserve the representation.
type TelegramID struct {
	kind telegramIDKind
	num  float64
	str  string
}

// TelegramIDFrom coerces an arbitrary decoded JSON value into a TelegramID.
func TelegramIDFrom(v any) TelegramID {
	if f, ok := rawNumber(v); ok {
		return numberTelegramID(f)
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return TelegramID{}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return numberTelegramID(f)
		}
		return TelegramID{kind: telegramIDString, str: s}
	}
	return TelegramID{}
}

func numberTelegramID(f float64) TelegramID {
	return TelegramID{kind: telegramIDNumber, num: f}
}

// IsZero reports the null identity.
func (t TelegramID) IsZero() bool { return t.kind == telegramIDNone }

// String renders the identity for lookups; the empty string for null.
func (t TelegramID) String() string {
	switch t.kind {
	case telegramIDNumber:
		return formatNumber(t.num)
	case telegramIDString:
		return t.str
	default:
		return ""
	}
}

// Int64 returns the numeric identity when it is an integral number.
func (t TelegramID) Int64() (int64, bool) {
	if t.kind != telegramIDNumber || t.num != math.Trunc(t.num) {
		return 0, false
	}
	return int64(t.num), true
}

func (t TelegramID) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case telegramIDNumber:
		return []byte(formatNumber(t.num)), nil
	case telegramIDString:
		return json.Marshal(t.str)
	default:
		return []byte("null"), nil
	}
}

func (t *TelegramID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = TelegramIDFrom(v)
	return nil
}

// rawNumber unwraps the numeric types encoding/json (and callers passing Go
// ints directly) can produce, rejecting NaN and infinities.
func rawNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
