package login

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/consatan/weibo-image-uploader/internal/crypto"
	"github.com/consatan/weibo-image-uploader/internal/domain"
)

const (
	ssoClient      = "ssologin.js(v1.4.18)"
	preloginURL    = "http://login.sina.com.cn/sso/prelogin.php"
	ssoLoginURL    = "http://login.sina.com.cn/sso/login.php"
	pinURL         = "http://login.sina.com.cn/cgi/pin.php"
	minipublishURL = "http://weibo.com/minipublish"

	loginReferer = "http://weibo.com/login.php"
	pinReferer   = "http://www.weibo.com/login.php"

	// The sso endpoint redirects here after a successful submission; the pid
	// callback machinery on this page is what finally sets the session.
	feedbackURL = "http://weibo.com/ajaxlogin.php?framelogin=1&callback=parent.sinaSSOController.feedBackUrlCallBack"

	// The endpoint serves a fixed public exponent; only the modulus rotates
	// per handshake.
	defaultRSAExponent = "010001"
)

var (
	locationReplacePattern = regexp.MustCompile(`location\.replace\s*\(\s*['"](.*?)['"]\s*\)\s*;`)
	resultTruePattern      = regexp.MustCompile(`(?i)"\s*result\s*["']\s*:\s*true\s*`)
	nickPattern            = regexp.MustCompile(`(?m)\$CONFIG\['nick'\]\s*=\s*'(.*)'\s*;`)
)

// Service is the login state machine. It is not safe for concurrent use; the
// caller serializes per identity.
type Service struct {
	transport  domain.Transport
	sessions   domain.SessionStore
	challenges domain.ChallengeStore
	log        logr.Logger

	// Display names may change upstream, so they are cached per process
	// only, never persisted.
	nicknames map[string]string
}

// New constructs a login Service with the given collaborators.
func New(transport domain.Transport, sessions domain.SessionStore, challenges domain.ChallengeStore, log logr.Logger) *Service {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Service{
		transport:  transport,
		sessions:   sessions,
		challenges: challenges,
		log:        log,
		nicknames:  map[string]string{},
	}
}

// Login establishes a session for id and reports the outcome as data.
//
// With UseCachedSession set and no challenge solution, a previously persisted
// session is adopted without any network traffic. Otherwise the challenge
// flow runs first: it either produces handshake material, or suspends the
// login with a ChallengeRequired result. With handshake material in hand the
// credential is encrypted and submitted; a Rejected result (wrong password)
// is not an error.
func (s *Service) Login(ctx context.Context, id domain.Identity, opts domain.LoginOptions) (domain.LoginResult, error) {
	if id.IsZero() {
		return domain.LoginResult{}, domain.NewError(domain.CodeInvalidInput, "username and password are required")
	}
	solution := strings.TrimSpace(opts.ChallengeSolution)

	if opts.UseCachedSession && solution == "" {
		sess, ok, err := s.sessions.Load(ctx, id)
		if err != nil {
			return domain.LoginResult{}, err
		}
		if ok {
			s.transport.Restore(sess)
			s.log.V(1).Info("adopted cached session", "account", id.CacheKey())
			return domain.LoginResult{Status: domain.LoginAuthenticated}, nil
		}
	}

	hs, suspended, err := s.beginOrResume(ctx, id, solution)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if suspended != nil {
		return *suspended, nil
	}

	return s.submit(ctx, id, hs)
}

// submit encrypts the credential with the handshake key material, posts the
// login form, and follows the result redirect.
func (s *Service) submit(ctx context.Context, id domain.Identity, hs handshake) (domain.LoginResult, error) {
	if hs.pin != "" {
		// Present the same cookies the handshake issued the pin against.
		s.transport.Restore(domain.Session{Cookies: hs.cookies})
	}

	msg := fmt.Sprintf("%d\t%s\n%s", hs.ServerTime, hs.Nonce, id.Password)
	encrypted, err := crypto.EncryptCredential([]byte(msg), hs.PubKeyExp, hs.PubKey)
	if err != nil {
		return domain.LoginResult{}, err
	}

	form := url.Values{
		"entry":      {"weibo"},
		"gateway":    {"1"},
		"from":       {""},
		"savestate":  {"7"},
		"useticket":  {"1"},
		"pagerefer":  {""},
		"vsnf":       {"1"},
		"su":         {encodeUsername(id.Username)},
		"service":    {"miniblog"},
		"servertime": {strconv.FormatInt(hs.ServerTime, 10)},
		"nonce":      {hs.Nonce},
		"pwencode":   {"rsa2"},
		"rsakv":      {hs.RSAKV},
		"sp":         {hex.EncodeToString(encrypted)},
		"sr":         {"1440*900"},
		"encoding":   {"UTF-8"},
		// Milliseconds between the handshake and this submission; the
		// endpoint sanity-checks human-plausible timing.
		"prelt":      {strconv.FormatInt(time.Now().UnixMilli()-hs.IssuedAtMS, 10)},
		"url":        {feedbackURL},
		"returntype": {"META"},
	}
	if hs.pin != "" {
		form.Set("pcid", hs.ChallengeID)
		form.Set("door", hs.pin)
	}

	resp, err := s.transport.Do(ctx, http.MethodPost, ssoLoginURL, domain.RequestOptions{
		Headers:         map[string]string{"Referer": loginReferer},
		Query:           url.Values{"client": {ssoClient}},
		Form:            form,
		FollowRedirects: true,
	})
	if err != nil {
		return domain.LoginResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.LoginResult{}, domain.NewError(domain.CodeBadResponse,
			"login submission failed with HTTP "+strconv.Itoa(resp.StatusCode))
	}

	m := locationReplacePattern.FindSubmatch(resp.Body)
	if m == nil {
		return domain.LoginResult{}, domain.NewError(domain.CodeBadResponse, "login response did not match the redirect shape")
	}
	target := strings.TrimSpace(string(m[1]))
	if strings.Contains(strings.ToLower(target), "retcode=4049") {
		// The endpoint demanded a pin mid-submission. Not retried inline;
		// the caller restarts with a fresh handshake.
		return domain.LoginResult{}, domain.NewError(domain.CodeBadResponse, "login rejected pending a pin challenge")
	}

	resp, err = s.transport.Do(ctx, http.MethodGet, target, domain.RequestOptions{
		Headers:         map[string]string{"Referer": ssoLoginURL + "?client=" + ssoClient},
		FollowRedirects: true,
	})
	if err != nil {
		return domain.LoginResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.LoginResult{}, domain.NewError(domain.CodeBadResponse,
			"login redirect failed with HTTP "+strconv.Itoa(resp.StatusCode))
	}

	if !resultTruePattern.Match(resp.Body) {
		return domain.LoginResult{Status: domain.LoginRejected}, nil
	}

	sess := s.transport.Snapshot()
	sess.Username = strings.TrimSpace(id.Username)
	if err := s.sessions.Save(ctx, id, sess); err != nil {
		return domain.LoginResult{}, err
	}
	s.log.V(1).Info("session established", "account", id.CacheKey())
	_ = s.Nickname(ctx, id)
	return domain.LoginResult{Status: domain.LoginAuthenticated}, nil
}

// Nickname resolves the account's display name by scraping the publish page
// config blob. Best effort by design: the blob's shape is not a stable
// contract, so any failure yields "" rather than an error. Results are
// cached per process.
func (s *Service) Nickname(ctx context.Context, id domain.Identity) string {
	key := id.CacheKey()
	if nick, ok := s.nicknames[key]; ok {
		return nick
	}

	resp, err := s.transport.Do(ctx, http.MethodGet, minipublishURL, domain.RequestOptions{
		FollowRedirects: true,
	})
	if err != nil || resp.StatusCode != http.StatusOK {
		return ""
	}
	m := nickPattern.FindSubmatch(resp.Body)
	if m == nil {
		return ""
	}
	nick := strings.TrimSpace(string(m[1]))
	if nick != "" {
		s.nicknames[key] = nick
	}
	return nick
}

// encodeUsername applies the su form encoding: base64 over the URL-escaped
// account name.
func encodeUsername(username string) string {
	return base64.StdEncoding.EncodeToString([]byte(url.QueryEscape(strings.TrimSpace(username))))
}

// Compile-time assertion that Service implements domain.Authenticator.
var _ domain.Authenticator = (*Service)(nil)
