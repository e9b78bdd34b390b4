package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const reelLinkPrefix = "https://www.instagram.com/reel/"

var utcOffsetPattern = regexp.MustCompile(`^UTC[+-]\d{2}:\d{2}$`)

// Normalize coerces an arbitrary decoded JSON object into a canonical
// UserProfile. It is the only path from raw or historical data into the
// canonical type: every recognized field comes out present and defaulted,
// malformed values degrade to their defaults instead of failing the record.
// Returns nil for nil input.
func Normalize(raw map[string]any) *UserProfile {
	if raw == nil {
		return nil
	}

	p := &UserProfile{
		ReelsStatus: "pending",
		Referrals:   []int64{},
	}

	if s, ok := nonEmptyString(raw["user_id"]); ok {
		p.UserID = strings.TrimSpace(s)
	} else {
		p.UserID = uuid.NewString()
	}

	p.TelegramID = TelegramIDFrom(raw["telegram_id"])
	if p.TelegramID.IsZero() {
		// Legacy records carried only a numeric user_id; recover the
		// Telegram identity from it, but never from an opaque token.
		// ParseFloat also accepts "NaN"/"Inf" spellings, which must not
		// become an identity: they are unrepresentable in JSON.
		if f, err := strconv.ParseFloat(p.UserID, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			p.TelegramID = numberTelegramID(f)
		}
	}

	p.Username = stringOr(raw["username"], "")
	p.FirstName = stringOr(raw["first_name"], "")
	p.LastName = stringOr(raw["last_name"], "")
	p.PhotoURL = stringOr(raw["photo_url"], "")

	p.Region = stringOr(raw["region"], "")
	p.Language = stringOr(raw["language"], "")
	p.City = stringOr(raw["city"], "")
	p.Country = stringOr(raw["country"], "")
	p.CityLabel = stringOr(raw["city_label"], "")
	p.Timezone = stringOr(raw["timezone"], "")

	if off, ok := validUTCOffset(raw["utc_offset"]); ok {
		p.UTCOffset = &off
	}

	if refs, ok := coerceReferrals(raw["referrals"]); ok {
		p.Referrals = refs
	}
	if v, present := raw["referrer_id"]; present && v != nil {
		if s := stringifyID(v); s != "" {
			p.ReferrerID = &s
		}
	}

	legacyPoints, hasLegacy := finiteNumber(raw["points"])
	if n, ok := finiteNumber(raw["points_total"]); ok {
		p.PointsTotal = n
	} else if hasLegacy {
		p.PointsTotal = legacyPoints
	}
	if n, ok := finiteNumber(raw["points_current"]); ok {
		p.PointsCurrent = n
	} else if hasLegacy {
		p.PointsCurrent = legacyPoints
	}
	if n, ok := finiteNumber(raw["daily_points"]); ok {
		p.DailyPoints = n
	}
	if s, ok := nonEmptyString(raw["last_reset"]); ok {
		p.LastReset = &s
	}

	if link, ok := validReelLink(raw["reels_link"]); ok {
		p.ReelsLink = &link
	}
	if s, ok := nonEmptyString(raw["reels_status"]); ok {
		p.ReelsStatus = s
	}
	if s, ok := nonEmptyString(raw["moderated_at"]); ok {
		p.ModeratedAt = &s
	}

	p.NineDigitCode = coerceBool(raw["nine_digit_code"], false)
	p.StoriesModalHidden = coerceBool(raw["stories_modal_hidden"], false)

	if n, ok := finiteNumber(raw["reels_launched_total"]); ok {
		p.ReelsLaunchedTotal = int64(n)
	}
	if n, ok := finiteNumber(raw["mission_progress"]); ok {
		p.MissionProgress = int64(n)
	}
	if s, ok := nonEmptyString(raw["last_mission_completed_at"]); ok {
		p.LastMissionCompletedAt = &s
	}

	// Timestamps survive a re-normalize; only a record that never had them
	// gets stamped here. Merge refreshes them unconditionally.
	now := timeNow()
	if s, ok := nonEmptyString(raw["updated_at"]); ok {
		p.UpdatedAt = s
	} else {
		p.UpdatedAt = isoTimestamp(now)
	}
	if s, ok := nonEmptyString(raw["last_online"]); ok {
		p.LastOnline = s
	} else {
		p.LastOnline = localeDate(now)
	}

	return p
}

// nonEmptyString accepts a string whose trimmed form is non-empty and
// returns it untrimmed, matching the original acceptance predicate.
func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func stringOr(v any, fallback string) string {
	if s, ok := nonEmptyString(v); ok {
		return s
	}
	return fallback
}

// finiteNumber accepts actual JSON numbers only; numeric-looking strings are
// rejected here (identifier coercion is deliberately more lenient).
func finiteNumber(v any) (float64, bool) {
	return rawNumber(v)
}

func validUTCOffset(v any) (string, bool) {
	s, ok := nonEmptyString(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !utcOffsetPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

func validReelLink(v any) (string, bool) {
	s, ok := nonEmptyString(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, reelLinkPrefix) {
		return "", false
	}
	return s, true
}

// coerceReferrals maps an array through numeric coercion, dropping entries
// that do not survive and de-duplicating the rest. A non-array reports
// ok=false: absence of information, not an empty set.
func coerceReferrals(v any) ([]int64, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int64, 0, len(arr))
	seen := make(map[int64]struct{}, len(arr))
	for _, item := range arr {
		id, ok := coerceReferralID(item)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, true
}

func coerceReferralID(v any) (int64, bool) {
	f, ok := rawNumber(v)
	if !ok {
		s, isString := v.(string)
		if !isString {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
			return 0, false
		}
		f = parsed
	}
	// int64(f) is undefined outside the int64 range; treat such entries as
	// non-numeric garbage and drop them.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// stringifyID renders an identifier-ish value (referrer codes arrive as
// numbers or strings) as a trimmed string.
func stringifyID(v any) string {
	if f, ok := rawNumber(v); ok {
		return formatNumber(f)
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// coerceBool understands the boolean spellings that showed up across record
// generations: literals, zero/non-zero numbers, and the usual string forms.
// Anything unrecognized keeps the fallback.
func coerceBool(v any, fallback bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off", "":
			return false
		}
		return fallback
	}
	if f, ok := rawNumber(v); ok {
		return f != 0
	}
	return fallback
}
