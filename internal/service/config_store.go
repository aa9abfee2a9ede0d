package service

import (
	"sync"

	"bursary/internal/models"
	"bursary/internal/repository"
)

// ConfigStore serves per-community rule tables from a read-through cache.
// Reads are lock-cheap and may be stale by at most one write; every write
// goes through the durable store and refreshes the cache before returning,
// so a caller's next read is fresh relative to its own write. The store is
// always the source of truth, the cache never is.
type ConfigStore struct {
	repo *repository.ConfigRepository

	mu      sync.RWMutex
	configs map[uint]*models.CommunityConfig
	tiers   map[uint][]models.CreditTier
}

func NewConfigStore(repo *repository.ConfigRepository) *ConfigStore {
	return &ConfigStore{
		repo:    repo,
		configs: make(map[uint]*models.CommunityConfig),
		tiers:   make(map[uint][]models.CreditTier),
	}
}

// Get returns the community's config, falling back to the built-in defaults
// when the community has never stored one. Callers receive a copy.
func (s *ConfigStore) Get(communityID uint) (*models.CommunityConfig, error) {
	s.mu.RLock()
	cached, ok := s.configs[communityID]
	s.mu.RUnlock()
	if ok {
		out := *cached
		return &out, nil
	}

	cfg, err := s.repo.Get(communityID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = models.DefaultCommunityConfig(communityID)
	}
	s.mu.Lock()
	s.configs[communityID] = cfg
	s.mu.Unlock()
	out := *cfg
	return &out, nil
}

// Update persists the config and refreshes the cache (write-through).
func (s *ConfigStore) Update(cfg *models.CommunityConfig) error {
	if err := s.repo.Upsert(cfg); err != nil {
		return err
	}
	stored := *cfg
	s.mu.Lock()
	s.configs[cfg.CommunityID] = &stored
	s.mu.Unlock()
	return nil
}

// Tiers returns the community's loan tier table; empty means the caller
// should use the built-in default table.
func (s *ConfigStore) Tiers(communityID uint) ([]models.CreditTier, error) {
	s.mu.RLock()
	cached, ok := s.tiers[communityID]
	s.mu.RUnlock()
	if ok {
		out := make([]models.CreditTier, len(cached))
		copy(out, cached)
		return out, nil
	}

	tiers, err := s.repo.GetTiers(communityID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tiers[communityID] = tiers
	s.mu.Unlock()
	out := make([]models.CreditTier, len(tiers))
	copy(out, tiers)
	return out, nil
}

// ReplaceTiers swaps the community's tier table and refreshes the cache.
func (s *ConfigStore) ReplaceTiers(communityID uint, tiers []models.CreditTier) error {
	if err := s.repo.ReplaceTiers(communityID, tiers); err != nil {
		return err
	}
	stored := make([]models.CreditTier, len(tiers))
	copy(stored, tiers)
	s.mu.Lock()
	s.tiers[communityID] = stored
	s.mu.Unlock()
	return nil
}

// Invalidate drops the community from the cache; the next read goes to the
// store.
func (s *ConfigStore) Invalidate(communityID uint) {
	s.mu.Lock()
	delete(s.configs, communityID)
	delete(s.tiers, communityID)
	s.mu.Unlock()
}
