package store

import (
	"context"
	"encoding/json"

	"github.com/consatan/weibo-image-uploader/internal/crypto"
	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// CacheSessionStore persists sessions through a CacheStore, keyed by
// Identity.CacheKey. The serialized session is sealed with a key derived from
// the account credential, so the cache backend only ever sees opaque blobs.
type CacheSessionStore struct {
	cache domain.CacheStore
}

// NewSessionStore returns a CacheSessionStore backed by cache.
func NewSessionStore(cache domain.CacheStore) *CacheSessionStore {
	return &CacheSessionStore{cache: cache}
}

// Load returns the cached session for id. A missing entry, an undecryptable
// blob (credential changed, blob corrupted) or a malformed session all report
// ok=false without an error; only the cache backend itself failing is an
// error.
func (s *CacheSessionStore) Load(ctx context.Context, id domain.Identity) (domain.Session, bool, error) {
	blob, ok, err := s.cache.Get(ctx, id.CacheKey())
	if err != nil {
		return domain.Session{}, false, domain.WrapError(domain.CodeIOFailure, "reading cached session", err)
	}
	if !ok {
		return domain.Session{}, false, nil
	}

	raw, err := crypto.Open(id.Password, blob)
	if err != nil {
		return domain.Session{}, false, nil
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.IsZero() {
		return domain.Session{}, false, nil
	}
	return sess, true, nil
}

// Save overwrites the cached session for id (delete then write).
func (s *CacheSessionStore) Save(ctx context.Context, id domain.Identity, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return domain.WrapError(domain.CodeIOFailure, "encoding session", err)
	}
	blob, err := crypto.Seal(id.Password, raw)
	if err != nil {
		return domain.WrapError(domain.CodeIOFailure, "sealing session", err)
	}

	key := id.CacheKey()
	if err := s.cache.Delete(ctx, key); err != nil {
		return domain.WrapError(domain.CodeIOFailure, "clearing cached session", err)
	}
	if err := s.cache.Set(ctx, key, blob); err != nil {
		return domain.WrapError(domain.CodeIOFailure, "persisting session", err)
	}
	return nil
}

// Drop removes the cached session for id.
func (s *CacheSessionStore) Drop(ctx context.Context, id domain.Identity) error {
	if err := s.cache.Delete(ctx, id.CacheKey()); err != nil {
		return domain.WrapError(domain.CodeIOFailure, "deleting cached session", err)
	}
	return nil
}

// Compile-time assertion that CacheSessionStore implements domain.SessionStore.
var _ domain.SessionStore = (*CacheSessionStore)(nil)
