// Package prefs keeps the small per-chat state that outlives one decision
// cycle: recently suggested names, cumulative stats, the preference blob and
// the cached auth profile.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/xaenox/vfied-bot/internal/models"
	"github.com/xaenox/vfied-bot/internal/storage"
	"go.uber.org/zap"
)

const DefaultRecencyLimit = 8

const (
	keyRecent      = "recent_suggestions"
	keyStats       = "stats"
	keyPreferences = "preferences"
	keyAuthUser    = "auth_user"
)

// Manager hands out per-chat stores over one Storage backend. Mutations from
// every store go through the same lock, so each read-modify-write is applied
// whole even when updates are handled on separate goroutines.
type Manager struct {
	kv           storage.Storage
	recencyLimit int
	logger       *zap.Logger
	mu           sync.Mutex
}

func NewManager(kv storage.Storage, recencyLimit int, logger *zap.Logger) *Manager {
	if recencyLimit <= 0 {
		recencyLimit = DefaultRecencyLimit
	}
	return &Manager{
		kv:           kv,
		recencyLimit: recencyLimit,
		logger:       logger,
	}
}

// For returns the store of one chat
func (m *Manager) For(chatID int64) *Store {
	return &Store{m: m, scope: strconv.FormatInt(chatID, 10)}
}

type Store struct {
	m     *Manager
	scope string
}

func (s *Store) key(name string) string {
	return s.scope + ":" + name
}

// load decodes the value under name into dst. A missing key leaves dst
// untouched; so does an undecodable value, which is only logged.
func (s *Store) load(ctx context.Context, name string, dst any) error {
	raw, found, err := s.m.kv.Get(ctx, s.key(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !found || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.m.logger.Warn("Discarding unreadable stored value",
			zap.String("key", s.key(name)),
			zap.Error(err))
	}
	return nil
}

func (s *Store) save(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.m.kv.Set(ctx, s.key(name), string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *Store) Recency(ctx context.Context) (models.RecencyList, error) {
	list := models.RecencyList{}
	if err := s.load(ctx, keyRecent, &list); err != nil {
		return models.RecencyList{}, err
	}
	if list == nil {
		list = models.RecencyList{}
	}
	return list, nil
}

// RecordPick moves name to the front of the recency list and persists it
func (s *Store) RecordPick(ctx context.Context, name string) (models.RecencyList, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	list, err := s.Recency(ctx)
	if err != nil {
		return nil, err
	}
	list = list.Record(name, s.m.recencyLimit)
	if err := s.save(ctx, keyRecent, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := s.load(ctx, keyStats, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// BumpStats counts one finished decision cycle
func (s *Store) BumpStats(ctx context.Context, timeSavedMinutes int) (models.Stats, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	stats, err := s.Stats(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	stats = stats.Bump(timeSavedMinutes)
	if err := s.save(ctx, keyStats, stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

func (s *Store) Preferences(ctx context.Context) (models.Preferences, error) {
	var p models.Preferences
	if err := s.load(ctx, keyPreferences, &p); err != nil {
		return models.Preferences{}, err
	}
	if p.Dietary == nil {
		p.Dietary = []string{}
	}
	return p, nil
}

// UpdatePreferences applies fn to the stored blob and writes the result back
func (s *Store) UpdatePreferences(ctx context.Context, fn func(models.Preferences) models.Preferences) (models.Preferences, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	p, err := s.Preferences(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	p = fn(p)
	if err := s.save(ctx, keyPreferences, p); err != nil {
		return models.Preferences{}, err
	}
	return p, nil
}

// User returns the cached auth profile, or nil when nobody is logged in
func (s *Store) User(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.load(ctx, keyAuthUser, &u); err != nil {
		return nil, err
	}
	if u.ID == "" && u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.save(ctx, keyAuthUser, u)
}

func (s *Store) ClearUser(ctx context.Context) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.kv.Delete(ctx, s.key(keyAuthUser)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", keyAuthUser, err)
	}
	return nil
}
