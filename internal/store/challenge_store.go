package store

import (
	"context"
	"encoding/json"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// challengeKeySuffix distinguishes the pending-challenge entry from the
// session entry for the same account.
const challengeKeySuffix = "_preLogin"

// CacheChallengeStore persists the suspended pin challenge through a
// CacheStore, keyed by Identity.CacheKey plus a fixed suffix.
type CacheChallengeStore struct {
	cache domain.CacheStore
}

// NewChallengeStore returns a CacheChallengeStore backed by cache.
func NewChallengeStore(cache domain.CacheStore) *CacheChallengeStore {
	return &CacheChallengeStore{cache: cache}
}

// Load returns the pending challenge for id. A missing or malformed entry
// reports ok=false without an error.
func (s *CacheChallengeStore) Load(ctx context.Context, id domain.Identity) (domain.PendingChallenge, bool, error) {
	blob, ok, err := s.cache.Get(ctx, id.CacheKey()+challengeKeySuffix)
	if err != nil {
		return domain.PendingChallenge{}, false, domain.WrapError(domain.CodeIOFailure, "reading pending challenge", err)
	}
	if !ok {
		return domain.PendingChallenge{}, false, nil
	}

	var ch domain.PendingChallenge
	if err := json.Unmarshal(blob, &ch); err != nil || !ch.Complete() {
		return domain.PendingChallenge{}, false, nil
	}
	return ch, true, nil
}

// Save persists the pending challenge for id.
func (s *CacheChallengeStore) Save(ctx context.Context, id domain.Identity, ch domain.PendingChallenge) error {
	blob, err := json.Marshal(ch)
	if err != nil {
		return domain.WrapError(domain.CodeIOFailure, "encoding pending challenge", err)
	}
	if err := s.cache.Set(ctx, id.CacheKey()+challengeKeySuffix, blob); err != nil {
		return domain.WrapError(domain.CodeIOFailure, "persisting pending challenge", err)
	}
	return nil
}

// Delete removes the pending challenge for id. Challenges are single-use:
// this runs on every solution attempt, successful or not.
func (s *CacheChallengeStore) Delete(ctx context.Context, id domain.Identity) error {
	if err := s.cache.Delete(ctx, id.CacheKey()+challengeKeySuffix); err != nil {
		return domain.WrapError(domain.CodeIOFailure, "deleting pending challenge", err)
	}
	return nil
}

// Compile-time assertion that CacheChallengeStore implements domain.ChallengeStore.
var _ domain.ChallengeStore = (*CacheChallengeStore)(nil)
