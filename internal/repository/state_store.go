package repository

import (
	"sync"
	"time"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
)

type slot struct {
	result    *models.AnalysisResult
	lastRun   *time.Time
	nextGen   uint64
	committed uint64
}

// StateStore holds the two single-slot analysis caches in memory. It is never
// persisted; a restart resets it. Commit uses per-slot generations so a slow
// run that started before the committed one cannot overwrite it.
type StateStore struct {
	mu    sync.RWMutex
	slots map[models.Tier]*slot
}

var _ drepo.StateStore = (*StateStore)(nil)

func NewStateStore() *StateStore {
	return &StateStore{
		slots: map[models.Tier]*slot{
			models.TierMini: {},
			models.TierDeep: {},
		},
	}
}

// Begin reserves a generation for a run that is about to start.
func (s *StateStore) Begin(tier models.Tier) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[tier]
	if !ok {
		return 0
	}
	sl.nextGen++
	return sl.nextGen
}

// Commit installs res into the tier's slot unless a younger run already
// committed. Returns false when the write was rejected as stale.
func (s *StateStore) Commit(tier models.Tier, res *models.AnalysisResult, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[tier]
	if !ok || gen <= sl.committed {
		return false
	}

	now := time.Now().UTC()
	sl.result = res
	sl.lastRun = &now
	sl.committed = gen
	return true
}

// Read returns the whole per-tier view.
func (s *StateStore) Read() models.IntelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.IntelState{
		Mini:        s.slots[models.TierMini].result,
		Deep:        s.slots[models.TierDeep].result,
		LastMiniRun: s.slots[models.TierMini].lastRun,
		LastDeepRun: s.slots[models.TierDeep].lastRun,
	}
}

// Latest returns the committed result for one tier, nil if none.
func (s *StateStore) Latest(tier models.Tier) *models.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.slots[tier]
	if !ok {
		return nil
	}
	return sl.result
}
