package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Merge reconciles a partial incoming payload against an existing canonical
// record. Each candidate value is written only if it passes the field's
// acceptance predicate; otherwise the previous value is kept, so a partially
// malformed payload can never null-out good data. A key that is absent means
// "leave unchanged"; for reels_link and last_mission_completed_at an explicit
// null means "clear".
//
// Merge never returns nil and the result always carries a non-empty user_id.
func Merge(existing *UserProfile, incoming map[string]any) *UserProfile {
	out := normalizedBase(existing)

	// identity
	if v, present := incoming["telegram_id"]; present && v != nil {
		if tid := TelegramIDFrom(v); !tid.IsZero() {
			out.TelegramID = tid
		}
	}
	if s, ok := nonEmptyString(incoming["user_id"]); ok {
		out.UserID = strings.TrimSpace(s)
	}
	if out.UserID == "" {
		out.UserID = uuid.NewString()
	}

	// profile
	acceptString(incoming, "username", &out.Username)
	acceptString(incoming, "first_name", &out.FirstName)
	acceptString(incoming, "last_name", &out.LastName)
	acceptString(incoming, "photo_url", &out.PhotoURL)

	// locale / geo
	acceptString(incoming, "region", &out.Region)
	acceptString(incoming, "language", &out.Language)
	acceptString(incoming, "city", &out.City)
	acceptString(incoming, "country", &out.Country)
	acceptString(incoming, "city_label", &out.CityLabel)
	acceptString(incoming, "timezone", &out.Timezone)
	if off, ok := validUTCOffset(incoming["utc_offset"]); ok {
		out.UTCOffset = &off
	}

	// referral graph
	if v, present := incoming["referrals"]; present {
		if refs, ok := coerceReferrals(v); ok {
			out.Referrals = refs
		}
	}
	if v, present := incoming["referrer_id"]; present && v != nil {
		if s := stringifyID(v); s != "" {
			out.ReferrerID = &s
		}
	}

	// points, new fields first, then the legacy spelling
	if n, ok := finiteNumber(incoming["points_total"]); ok {
		out.PointsTotal = n
	}
	currentSupplied := false
	if n, ok := finiteNumber(incoming["points_current"]); ok {
		out.PointsCurrent = n
		currentSupplied = true
	}
	if n, ok := finiteNumber(incoming["daily_points"]); ok {
		out.DailyPoints = n
	}
	if legacy, ok := finiteNumber(incoming["points"]); ok {
		out.PointsTotal = legacy
		if !currentSupplied && out.PointsCurrent == 0 {
			out.PointsCurrent = legacy
		}
	}
	if s, ok := nonEmptyString(incoming["last_reset"]); ok {
		out.LastReset = &s
	}

	// reels submission
	if v, present := incoming["reels_link"]; present {
		if v == nil {
			out.ReelsLink = nil
		} else if link, ok := validReelLink(v); ok {
			out.ReelsLink = &link
		}
	}
	if s, ok := nonEmptyString(incoming["reels_status"]); ok {
		prev := out.ReelsStatus
		out.ReelsStatus = s
		if prev != "" && prev != s {
			stamp := isoTimestamp(timeNow())
			out.ModeratedAt = &stamp
		}
	}
	// an explicitly supplied moderation timestamp wins over the stamp above
	if s, ok := nonEmptyString(incoming["moderated_at"]); ok {
		out.ModeratedAt = &s
	}

	if v, present := incoming["nine_digit_code"]; present {
		out.NineDigitCode = coerceBool(v, out.NineDigitCode)
	}
	if v, present := incoming["stories_modal_hidden"]; present {
		out.StoriesModalHidden = coerceBool(v, out.StoriesModalHidden)
	}

	if n, ok := finiteNumber(incoming["reels_launched_total"]); ok {
		out.ReelsLaunchedTotal = int64(n)
	}
	if n, ok := finiteNumber(incoming["mission_progress"]); ok {
		out.MissionProgress = int64(n)
	}
	if v, present := incoming["last_mission_completed_at"]; present {
		if v == nil {
			out.LastMissionCompletedAt = nil
		} else if s, ok := nonEmptyString(v); ok {
			out.LastMissionCompletedAt = &s
		}
	}

	if out.Referrals == nil {
		out.Referrals = []int64{}
	}

	// Every merge is an activity touch, changed fields or not.
	now := timeNow()
	out.UpdatedAt = isoTimestamp(now)
	out.LastOnline = localeDate(now)

	return out
}

// normalizedBase guarantees merge starts from a fully-defaulted record even
// when the stored one predates later schema fields.
func normalizedBase(existing *UserProfile) *UserProfile {
	if existing == nil {
		return Normalize(map[string]any{})
	}
	out := existing.Clone()
	if out.Referrals == nil {
		out.Referrals = []int64{}
	}
	if strings.TrimSpace(out.ReelsStatus) == "" {
		out.ReelsStatus = "pending"
	}
	return out
}

func acceptString(incoming map[string]any, key string, dst *string) {
	if s, ok := nonEmptyString(incoming[key]); ok {
		*dst = s
	}
}

// isoTimestamp matches the stored ISO-8601 UTC instant shape, millisecond
// precision included.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// localeDate is the historical last_online shape ("Mon Jan 02 2006").
func localeDate(t time.Time) string {
	return t.Format("Mon Jan 02 2006")
}
