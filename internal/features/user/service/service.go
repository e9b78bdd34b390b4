package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reels-miniapp-backend/internal/common/logger"
	"reels-miniapp-backend/internal/features/user/models"
	"reels-miniapp-backend/internal/features/user/repository"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrMissingIdentifier = errors.New("user_id or telegram_id required")
)

// referralRewardPoints is awarded to the referrer when an invited user is
// created for the first time.
const referralRewardPoints = 10

type userService struct {
	repo       repository.UserRepository
	reelsLimit int
}

func NewUserService(repo repository.UserRepository, reelsLimit int) UserService {
	return &userService{
		repo:       repo,
		reelsLimit: reelsLimit,
	}
}

func (s *userService) List(ctx context.Context) ([]*models.UserProfile, error) {
	return s.repo.ReadAll(ctx)
}

func (s *userService) Find(ctx context.Context, userID, telegramID string) (*models.UserProfile, error) {
	records, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if telegramID != "" {
			if !r.TelegramID.IsZero() && r.TelegramID.String() == telegramID {
				return r, nil
			}
			continue
		}
		if r.UserID == userID {
			return r, nil
		}
	}
	return nil, nil
}

func (s *userService) Upsert(ctx context.Context, payload map[string]any) (*models.UserProfile, error) {
	key := identifierFromPayload(payload)
	if key == "" {
		return nil, ErrMissingIdentifier
	}
	return s.upsert(ctx, payload, func(r *models.UserProfile) bool {
		return r.MatchesKey(key)
	})
}

func (s *userService) SaveByTelegramID(ctx context.Context, payload map[string]any) (*models.UserProfile, error) {
	tid := models.TelegramIDFrom(payload["telegram_id"])
	if tid.IsZero() {
		return nil, ErrMissingIdentifier
	}
	key := tid.String()
	return s.upsert(ctx, payload, func(r *models.UserProfile) bool {
		return !r.TelegramID.IsZero() && r.TelegramID.String() == key
	})
}

func (s *userService) upsert(ctx context.Context, payload map[string]any, match func(*models.UserProfile) bool) (*models.UserProfile, error) {
	records, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, r := range records {
		if match(r) {
			idx = i
			break
		}
	}

	var existing *models.UserProfile
	if idx >= 0 {
		existing = records[idx]
	}
	merged := models.Merge(existing, payload)

	if idx >= 0 {
		records[idx] = merged
	} else {
		records = append(records, merged)
		bootstrapReferral(records, merged)
	}

	if err := s.repo.WriteAll(ctx, records); err != nil {
		return nil, fmt.Errorf("persist user collection: %w", err)
	}
	return merged, nil
}

func (s *userService) UpdateStatus(ctx context.Context, id, status string) (*models.UserProfile, error) {
	records, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, r := range records {
		if r.MatchesKey(id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUserNotFound
	}

	records[idx] = models.Merge(records[idx], map[string]any{"reels_status": status})
	if err := s.repo.WriteAll(ctx, records); err != nil {
		return nil, fmt.Errorf("persist user collection: %w", err)
	}
	return records[idx], nil
}

func (s *userService) GlobalStats(ctx context.Context) (models.GlobalStats, error) {
	records, err := s.repo.ReadAll(ctx)
	if err != nil {
		return models.GlobalStats{}, err
	}
	return models.ComputeGlobalStats(records, s.reelsLimit), nil
}

// bootstrapReferral completes the referral link for a freshly created
// record: the invited user's numeric identity joins the referrer's set and
// the referrer earns the reward. Unknown or self referrers are ignored; the
// relation is a weak reference and is never validated beyond first match.
func bootstrapReferral(records []*models.UserProfile, created *models.UserProfile) {
	if created.ReferrerID == nil {
		return
	}
	refKey := *created.ReferrerID
	invitedID, ok := created.TelegramID.Int64()
	if !ok {
		return
	}

	for _, r := range records {
		if r == created || !r.MatchesKey(refKey) {
			continue
		}
		for _, id := range r.Referrals {
			if id == invitedID {
				return
			}
		}
		r.Referrals = append(r.Referrals, invitedID)
		r.PointsTotal += referralRewardPoints
		r.PointsCurrent += referralRewardPoints
		logger.Debug().
			Str("referrer", r.UserID).
			Int64("invited", invitedID).
			Msg("referral recorded")
		return
	}
}

// identifierFromPayload extracts the upsert key: a non-empty user_id wins,
// then a coercible telegram_id.
func identifierFromPayload(payload map[string]any) string {
	if s, ok := payload["user_id"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if tid := models.TelegramIDFrom(payload["telegram_id"]); !tid.IsZero() {
		return tid.String()
	}
	return ""
}
