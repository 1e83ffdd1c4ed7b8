package login

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

var preloginCallbackPattern = regexp.MustCompile(`^sinaSSOController.preloginCallBack\s*\((.*)\)\s*$`)

// handshake is the key material a credential submission needs, either fresh
// from the pre-flight request or resumed from a cached pending challenge.
type handshake struct {
	ServerTime  int64
	Nonce       string
	PubKey      string
	PubKeyExp   string
	RSAKV       string
	ChallengeID string
	ShowPin     bool
	IssuedAtMS  int64

	// set only when resuming a suspended challenge
	pin     string
	cookies []domain.SessionCookie
}

// beginOrResume drives the challenge sub-protocol. It returns either
// handshake material ready for submission, or a non-nil suspended result
// telling the caller a pin solution is needed first.
func (s *Service) beginOrResume(ctx context.Context, id domain.Identity, solution string) (handshake, *domain.LoginResult, error) {
	ch, ok, err := s.challenges.Load(ctx, id)
	if err != nil {
		return handshake{}, nil, err
	}
	if ok {
		if solution == "" {
			if _, statErr := os.Stat(ch.ArtifactPath); statErr == nil {
				// Same pin, still waiting on a human. Re-signal rather than
				// burn another handshake.
				return handshake{}, &domain.LoginResult{
					Status:            domain.LoginChallengeRequired,
					ChallengeArtifact: ch.ArtifactPath,
				}, nil
			}
			// The artifact vanished; this challenge can no longer be solved.
			if err := s.challenges.Delete(ctx, id); err != nil {
				return handshake{}, nil, err
			}
		} else {
			// Single-use: consume the entry before we learn whether the
			// solution is correct.
			_ = os.Remove(ch.ArtifactPath)
			if err := s.challenges.Delete(ctx, id); err != nil {
				return handshake{}, nil, err
			}
			return handshake{
				ServerTime:  ch.ServerTime,
				Nonce:       ch.Nonce,
				PubKey:      ch.PubKey,
				PubKeyExp:   ch.PubKeyExp,
				RSAKV:       ch.RSAKV,
				ChallengeID: ch.ChallengeID,
				IssuedAtMS:  ch.CreatedAtMS,
				pin:         solution,
				cookies:     ch.Cookies,
			}, nil, nil
		}
	}

	hs, err := s.prelogin(ctx, id)
	if err != nil {
		return handshake{}, nil, err
	}
	if !hs.ShowPin {
		return hs, nil, nil
	}

	artifact, err := s.fetchPin(ctx, id, hs)
	if err != nil {
		return handshake{}, nil, err
	}
	return handshake{}, &domain.LoginResult{
		Status:            domain.LoginChallengeRequired,
		ChallengeArtifact: artifact,
	}, nil
}

// prelogin performs the pre-flight handshake and validates the JSONP payload.
func (s *Service) prelogin(ctx context.Context, id domain.Identity) (handshake, error) {
	now := time.Now()
	resp, err := s.transport.Do(ctx, http.MethodGet, preloginURL, domain.RequestOptions{
		Headers: map[string]string{"Referer": loginReferer},
		Query: url.Values{
			"entry":    {"weibo"},
			"callback": {"sinaSSOController.preloginCallBack"},
			"su":       {encodeUsername(id.Username)},
			"rsakt":    {"mod"},
			"checkpin": {"1"},
			"client":   {ssoClient},
			"_":        {strconv.FormatInt(now.UnixMilli(), 10)},
		},
		FollowRedirects: true,
	})
	if err != nil {
		return handshake{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return handshake{}, domain.NewError(domain.CodeBadResponse,
			"prelogin failed with HTTP "+strconv.Itoa(resp.StatusCode))
	}

	m := preloginCallbackPattern.FindSubmatch(bytes.TrimSpace(resp.Body))
	if m == nil {
		return handshake{}, domain.NewError(domain.CodeBadResponse, "prelogin response did not match the callback shape")
	}
	var payload struct {
		Retcode    int    `json:"retcode"`
		ServerTime int64  `json:"servertime"`
		ChallengID string `json:"pcid"`
		Nonce      string `json:"nonce"`
		PubKey     string `json:"pubkey"`
		RSAKV      string `json:"rsakv"`
		ShowPin    int    `json:"showpin"`
	}
	if err := json.Unmarshal(m[1], &payload); err != nil {
		return handshake{}, domain.WrapError(domain.CodeBadResponse, "decoding prelogin payload", err)
	}
	if payload.ServerTime == 0 || payload.Nonce == "" || payload.PubKey == "" || payload.RSAKV == "" {
		return handshake{}, domain.NewError(domain.CodeBadResponse, "prelogin payload is missing key material")
	}

	return handshake{
		ServerTime:  payload.ServerTime,
		Nonce:       payload.Nonce,
		PubKey:      payload.PubKey,
		PubKeyExp:   defaultRSAExponent,
		RSAKV:       payload.RSAKV,
		ChallengeID: payload.ChallengID,
		ShowPin:     payload.ShowPin != 0,
		IssuedAtMS:  now.UnixMilli(),
	}, nil
}

// fetchPin downloads the pin image to a caller-visible temp file and persists
// the pending challenge so a later invocation can resume this login.
func (s *Service) fetchPin(ctx context.Context, id domain.Identity, hs handshake) (string, error) {
	resp, err := s.transport.Do(ctx, http.MethodGet, pinURL, domain.RequestOptions{
		Headers: map[string]string{
			"Accept":  "image/png, image/svg+xml, image/*;q=0.8, */*;q=0.5",
			"Referer": pinReferer,
		},
		Query: url.Values{
			"r": {strconv.Itoa(rand.Intn(900000000) + 100000000)},
			"s": {"0"},
			"p": {hs.ChallengeID},
		},
		FollowRedirects: true,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || len(resp.Body) == 0 {
		return "", domain.NewError(domain.CodeBadResponse,
			"pin image fetch failed with HTTP "+strconv.Itoa(resp.StatusCode))
	}

	path := filepath.Join(os.TempDir(), "weibo-pin-"+uuid.NewString()+".png")
	if err := os.WriteFile(path, resp.Body, 0o600); err != nil {
		return "", domain.WrapError(domain.CodeIOFailure, "saving pin image", err)
	}

	ch := domain.PendingChallenge{
		ChallengeID:  hs.ChallengeID,
		ServerTime:   hs.ServerTime,
		Nonce:        hs.Nonce,
		PubKey:       hs.PubKey,
		PubKeyExp:    hs.PubKeyExp,
		RSAKV:        hs.RSAKV,
		ArtifactPath: path,
		CreatedAtMS:  hs.IssuedAtMS,
		Cookies:      s.transport.Snapshot().Cookies,
	}
	if err := s.challenges.Save(ctx, id, ch); err != nil {
		return "", err
	}
	s.log.V(1).Info("login suspended on pin challenge", "account", id.CacheKey(), "artifact", path)
	return path, nil
}
