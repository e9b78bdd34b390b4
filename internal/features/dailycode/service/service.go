package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"
)

const codeDigits = 9

// DailyCode is the verification code for one UTC calendar day.
type DailyCode struct {
	Date      string `json:"date"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}

// Service derives the rotating 9-digit verification code from the UTC
// date-key and a server secret. Same day, same code.
type Service struct {
	secret []byte
	now    func() time.Time
}

func New(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Current returns the code for today (UTC).
func (s *Service) Current() DailyCode {
	return s.For(s.now())
}

// For returns the code for the UTC day containing t. The code is an
// HMAC-SHA256 of the date-key truncated to digits: each hash byte
// contributes one decimal digit until nine are collected, zero-padded if
// the hash were ever exhausted.
func (s *Service) For(t time.Time) DailyCode {
	day := t.UTC().Truncate(24 * time.Hour)
	dateKey := day.Format("2006-01-02")

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(dateKey))
	sum := mac.Sum(nil)

	code := make([]byte, 0, codeDigits)
	for _, b := range sum {
		if len(code) == codeDigits {
			break
		}
		code = append(code, '0'+b%10)
	}
	for len(code) < codeDigits {
		code = append(code, '0')
	}

	return DailyCode{
		Date:      dateKey,
		Code:      string(code),
		ExpiresAt: day.Add(24 * time.Hour).Format(time.RFC3339),
	}
}
