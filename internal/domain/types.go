package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Identity is a Weibo account name plus its plaintext credential.
type Identity struct {
	Username string
	Password string
}

// CacheKey returns the stable cache key for this account. Only this hash is
// ever persisted, never the username or password themselves.
func (i Identity) CacheKey() string {
	sum := md5.Sum([]byte(strings.TrimSpace(i.Username)))
	return hex.EncodeToString(sum[:])
}

// IsZero reports whether no account was supplied.
func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.Username) == "" || i.Password == ""
}

// SessionCookie is one persisted session token.
type SessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// Session is the opaque authenticated cookie set for one Identity. It is
// created empty, populated by a successful login, and replaced wholesale on
// the next login (last-write-wins in the cache).
type Session struct {
	Username string          `json:"username"`
	Cookies  []SessionCookie `json:"cookies"`
	SavedUTC int64           `json:"saved_utc"`
}

// IsZero reports whether the session carries no tokens at all.
func (s Session) IsZero() bool { return len(s.Cookies) == 0 }

// PendingChallenge is the suspended state of a pin challenge: everything the
// handshake returned plus where the pin image was written. It is persisted so
// a later process invocation can resume the login without a second handshake,
// and it is single-use: the entry is deleted on the next solution attempt
// whether or not the solution is correct.
type PendingChallenge struct {
	ChallengeID  string `json:"pcid"`
	ServerTime   int64  `json:"servertime"`
	Nonce        string `json:"nonce"`
	PubKey       string `json:"pubkey"`     // RSA modulus, hex
	PubKeyExp    string `json:"pubkey_exp"` // RSA public exponent, hex
	RSAKV        string `json:"rsakv"`
	ArtifactPath string `json:"pin_path"`
	CreatedAtMS  int64  `json:"created_at_ms"`
	// Cookies snapshots the jar state at handshake time. The pin solution is
	// only valid together with these, so the resumed process must present
	// them. They are not a Session: while a challenge is pending no valid
	// session exists.
	Cookies []SessionCookie `json:"cookies,omitempty"`
}

// Complete reports whether the entry carries everything needed to resume.
func (c PendingChallenge) Complete() bool {
	return c.ChallengeID != "" && c.ServerTime != 0 && c.Nonce != "" &&
		c.PubKey != "" && c.RSAKV != "" && c.ArtifactPath != ""
}

// MarkPosition places the optional watermark.
type MarkPosition int

const (
	MarkBottomRight MarkPosition = iota + 1
	MarkBottomCenter
	MarkCenter
)

// UploadConfig carries the per-upload options. The zero value means no
// watermark and a single "large" URL.
type UploadConfig struct {
	Watermark bool
	MarkPos   MarkPosition
	Nickname  string
	Sizes     []string
}

// LoginOptions controls a single Login call.
type LoginOptions struct {
	// UseCachedSession adopts a previously persisted session when one
	// exists, skipping the network entirely.
	UseCachedSession bool
	// ChallengeSolution is the human-supplied pin code resuming a suspended
	// challenge. When set the cached session is never used.
	ChallengeSolution string
}

// LoginStatus tags the outcome of a Login call.
type LoginStatus int

const (
	// LoginAuthenticated means a valid session is now in place.
	LoginAuthenticated LoginStatus = iota + 1
	// LoginRejected means the remote service refused the credentials.
	LoginRejected
	// LoginChallengeRequired means the login is suspended until the caller
	// re-invokes it with the pin solution.
	LoginChallengeRequired
)

// LoginResult is the tagged outcome of a Login call. ChallengeArtifact is the
// local path of the pin image and is set only for LoginChallengeRequired.
type LoginResult struct {
	Status            LoginStatus
	ChallengeArtifact string
}

// UploadResult maps each requested size to its delivery URL. An empty PID
// means the upload failed on both attempts.
type UploadResult struct {
	PID   string
	Sizes []string
	URLs  map[string]string
}

// Empty reports whether the upload produced no content identifier.
func (r UploadResult) Empty() bool { return r.PID == "" }

// URL returns the delivery URL for the first requested size.
func (r UploadResult) URL() string {
	if len(r.Sizes) == 0 {
		return ""
	}
	return r.URLs[r.Sizes[0]]
}
