package domain

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// CacheStore is key -> blob persistence. Values are opaque to the store; the
// layers above decide the serialization.
type CacheStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionStore persists one Session per Identity.
type SessionStore interface {
	// Load returns the cached session, or ok=false when none exists or the
	// stored blob is not a well-formed session for this identity.
	Load(ctx context.Context, id Identity) (Session, bool, error)
	// Save overwrites any previous session for this identity.
	Save(ctx context.Context, id Identity, sess Session) error
	Drop(ctx context.Context, id Identity) error
}

// ChallengeStore persists the suspended pin challenge per Identity.
type ChallengeStore interface {
	Load(ctx context.Context, id Identity) (PendingChallenge, bool, error)
	Save(ctx context.Context, id Identity, ch PendingChallenge) error
	Delete(ctx context.Context, id Identity) error
}

// MultipartPart is one part of a multipart request body. Content is held in
// memory so a failed submission can be retried verbatim.
type MultipartPart struct {
	FieldName string
	FileName  string
	Content   []byte
}

// RequestOptions shapes a single Transport round-trip.
type RequestOptions struct {
	Headers         map[string]string
	Form            url.Values
	Query           url.Values
	Multipart       []MultipartPart
	FollowRedirects bool
}

// Response is a fully buffered HTTP response. When redirects are disabled a
// 300-303 answer is returned as-is with its Location header intact.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Location returns the redirect target, if any.
func (r Response) Location() string { return r.Header.Get("Location") }

// Transport executes HTTP round-trips while tracking session cookies.
type Transport interface {
	Do(ctx context.Context, method, rawURL string, opts RequestOptions) (Response, error)
	// Snapshot copies the current cookie state into a Session value.
	Snapshot() Session
	// Restore replaces the cookie state with the given session's tokens.
	Restore(sess Session)
}

// Authenticator runs the login state machine.
type Authenticator interface {
	Login(ctx context.Context, id Identity, opts LoginOptions) (LoginResult, error)
	// Nickname resolves the account's display name, best effort: it returns
	// "" when the name cannot be determined.
	Nickname(ctx context.Context, id Identity) string
}

// Uploader submits content and resolves the resulting delivery URLs.
type Uploader interface {
	Upload(ctx context.Context, content io.Reader, id Identity, cfg UploadConfig, opts RequestOptions) (UploadResult, error)
	UploadFile(ctx context.Context, path string, id Identity, cfg UploadConfig, opts RequestOptions) (UploadResult, error)
}
