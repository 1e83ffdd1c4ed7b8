package app

import (
	"io"

	"github.com/go-logr/logr"

	"github.com/consatan/weibo-image-uploader/internal/domain"
	loginsvc "github.com/consatan/weibo-image-uploader/internal/services/login"
	uploadsvc "github.com/consatan/weibo-image-uploader/internal/services/upload"
	"github.com/consatan/weibo-image-uploader/internal/store"
	"github.com/consatan/weibo-image-uploader/internal/transport"
)

// Wire bundles the cache, stores, transport and services for the CLI.
type Wire struct {
	Cache      domain.CacheStore
	Sessions   domain.SessionStore
	Challenges domain.ChallengeStore
	Transport  domain.Transport
	Auth       domain.Authenticator
	Uploads    domain.Uploader

	closer io.Closer
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	// Cache backend: redis when an address is configured, the file cache
	// under the state directory otherwise.
	var (
		cache  domain.CacheStore
		closer io.Closer
	)
	if cfg.RedisAddr != "" {
		rc, err := store.NewRedisCache(store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisAuth,
			Database: cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		cache = rc
		closer = rc
	} else {
		fc, err := store.NewFileCache(cfg.Home)
		if err != nil {
			return nil, err
		}
		cache = fc
	}

	sessions := store.NewSessionStore(cache)
	challenges := store.NewChallengeStore(cache)

	topts := []transport.Option{transport.WithLogger(log)}
	if cfg.UserAgent != "" {
		topts = append(topts, transport.WithUserAgent(cfg.UserAgent))
	}
	if cfg.HTTP != nil {
		topts = append(topts, transport.WithHTTPClient(cfg.HTTP))
	}
	tc, err := transport.New(topts...)
	if err != nil {
		return nil, err
	}

	auth := loginsvc.New(tc, sessions, challenges, log)
	uploads := uploadsvc.New(tc, auth,
		uploadsvc.WithHTTPS(cfg.Secure),
		uploadsvc.WithLogger(log),
	)

	return &Wire{
		Cache:      cache,
		Sessions:   sessions,
		Challenges: challenges,
		Transport:  tc,
		Auth:       auth,
		Uploads:    uploads,
		closer:     closer,
	}, nil
}

// Close releases the cache backend if it holds external connections.
func (w *Wire) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
