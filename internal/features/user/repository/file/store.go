package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"reels-miniapp-backend/internal/common/logger"
	"reels-miniapp-backend/internal/features/user/models"
	"reels-miniapp-backend/internal/features/user/repository"
)

// Store persists the collection as a pretty-printed JSON array in a single
// file. Writes go to a sibling temp path first and are committed by rename,
// so a reader never observes a partially-written file.
type Store struct {
	dir  string
	path string

	// rename is the commit point of a write; tests fail it to prove a
	// crashed write leaves the previous file intact.
	rename func(oldpath, newpath string) error
}

var _ repository.UserRepository = (*Store)(nil)

func New(dir, filename string) *Store {
	return &Store{
		dir:    dir,
		path:   filepath.Join(dir, filename),
		rename: os.Rename,
	}
}

// Path returns the canonical file location.
func (s *Store) Path() string { return s.path }

// ReadAll loads the collection, upgrading every record through the
// normalizer so historical shapes come out canonical. A missing file
// bootstraps to an empty array; an unreadable one is reset to an empty
// array rather than failing the caller.
func (s *Store) ReadAll(ctx context.Context) ([]*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ensureStorage(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read user collection: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []*models.UserProfile{}, nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn().Err(err).Str("path", s.path).Msg("user collection unreadable, resetting to empty")
		if resetErr := s.writeAtomic([]byte("[]")); resetErr != nil {
			return nil, resetErr
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

// WriteAll replaces the whole collection atomically.
func (s *Store) WriteAll(ctx context.Context, records []*models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ensureStorage(); err != nil {
		return err
	}

	if records == nil {
		records = []*models.UserProfile{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user collection: %w", err)
	}
	return s.writeAtomic(data)
}

func (s *Store) ensureStorage() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return s.writeAtomic([]byte("[]"))
	} else if err != nil {
		return fmt.Errorf("stat user collection: %w", err)
	}
	return nil
}

func (s *Store) writeAtomic(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp collection: %w", err)
	}
	if err := s.rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit collection: %w", err)
	}
	return nil
}
