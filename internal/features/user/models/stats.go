package models

import "strings"

// GlobalStats is the aggregate view over the whole collection.
type GlobalStats struct {
	TotalUsers      int    `json:"total_users"`
	TotalValidReels int    `json:"total_valid_reels"`
	ReelsLimit      int    `json:"reels_limit"`
	UpdatedAt       string `json:"updated_at"`
}

// ComputeGlobalStats derives the aggregate from the records. A reel counts
// as valid when its link passes the URL pattern and the record has not been
// rejected (case-insensitive). Recomputed on every request, no caching.
func ComputeGlobalStats(records []*UserProfile, reelsLimit int) GlobalStats {
	valid := 0
	for _, r := range records {
		if r == nil || r.ReelsLink == nil {
			continue
		}
		if _, ok := validReelLink(*r.ReelsLink); !ok {
			continue
		}
		if strings.EqualFold(r.ReelsStatus, "rejected") {
			continue
		}
		valid++
	}
	return GlobalStats{
		TotalUsers:      len(records),
		TotalValidReels: valid,
		ReelsLimit:      reelsLimit,
		UpdatedAt:       isoTimestamp(timeNow()),
	}
}
