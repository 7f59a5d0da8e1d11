package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/crewlinkhq/crewlink/internal/cache"
)

const defaultSkillIndexTTL = 5 * time.Minute

// SkillIndex caches skill-name lookups of candidate workers. It is an
// explicit object constructed once at startup and injected where needed,
// with a TTL-based invalidation policy owned by the cache store.
type SkillIndex struct {
	store cache.Store
	ttl   time.Duration
}

// SkillIndexOption customises a SkillIndex.
type SkillIndexOption func(*SkillIndex)

// WithSkillIndexTTL overrides how long a cached lookup stays fresh.
func WithSkillIndexTTL(ttl time.Duration) SkillIndexOption {
	return func(idx *SkillIndex) {
		if ttl > 0 {
			idx.ttl = ttl
		}
	}
}

// NewSkillIndex constructs a SkillIndex backed by the given store.
func NewSkillIndex(store cache.Store, opts ...SkillIndexOption) *SkillIndex {
	idx := &SkillIndex{
		store: store,
		ttl:   defaultSkillIndexTTL,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func skillKey(skill string) string {
	return "skills:" + strings.ToLower(strings.TrimSpace(skill))
}

// Lookup returns the cached worker IDs for a skill, if fresh.
func (idx *SkillIndex) Lookup(ctx context.Context, skill string) ([]string, bool, error) {
	data, ok, err := idx.store.Get(ctx, skillKey(skill))
	if err != nil || !ok {
		return nil, false, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, fmt.Errorf("skill index: decode entry: %w", err)
	}
	return ids, true, nil
}

// Store caches the worker IDs for a skill until the TTL elapses.
func (idx *SkillIndex) Store(ctx context.Context, skill string, workerIDs []string) error {
	data, err := json.Marshal(workerIDs)
	if err != nil {
		return fmt.Errorf("skill index: encode entry: %w", err)
	}
	return idx.store.Set(ctx, skillKey(skill), data, idx.ttl)
}

// Invalidate drops the cached entry for a skill, forcing the next lookup to
// hit storage. Called when a worker's skill set changes.
func (idx *SkillIndex) Invalidate(ctx context.Context, skills ...string) error {
	keys := make([]string, 0, len(skills))
	for _, skill := range skills {
		keys = append(keys, skillKey(skill))
	}
	return idx.store.Delete(ctx, keys...)
}
