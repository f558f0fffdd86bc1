package memory

import (
	"context"
	"slices"
	"sync"

	"Strongholds/internal/match/entity"
)

// ReplayRepository 把回放保存在进程内，用于本地调试和测试。
type ReplayRepository struct {
	mu      sync.RWMutex
	matches map[string]entity.MatchRecord
	entries map[string]map[uint64]entity.ReplayEntry
}

func NewReplayRepository() *ReplayRepository {
	return &ReplayRepository{
		matches: make(map[string]entity.MatchRecord),
		entries: make(map[string]map[uint64]entity.ReplayEntry),
	}
}

func (r *ReplayRepository) SaveMatch(ctx context.Context, rec *entity.MatchRecord) error {
	_ = ctx
	if rec == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[rec.MatchID] = *rec
	return nil
}

func (r *ReplayRepository) AppendEntries(ctx context.Context, batch *entity.ReplayBatch) error {
	_ = ctx
	if batch == nil || len(batch.Entries) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.entries[batch.MatchID]
	if !ok {
		m = make(map[uint64]entity.ReplayEntry)
		r.entries[batch.MatchID] = m
	}
	for _, e := range batch.Entries {
		if _, dup := m[e.Seq]; dup {
			continue
		}
		m[e.Seq] = e
	}
	return nil
}

func (r *ReplayRepository) LoadMatch(ctx context.Context, matchID string) (*entity.MatchRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.matches[matchID]
	if !ok {
		return nil, entity.ErrMatchNotFound.WithData("match_id", matchID)
	}
	return &rec, nil
}

func (r *ReplayRepository) LoadEntries(ctx context.Context, matchID string) ([]entity.ReplayEntry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.entries[matchID]
	out := make([]entity.ReplayEntry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b entity.ReplayEntry) int {
		if a.Seq < b.Seq {
			return -1
		}
		if a.Seq > b.Seq {
			return 1
		}
		return 0
	})
	return out, nil
}
