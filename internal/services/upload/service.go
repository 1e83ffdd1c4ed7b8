package upload

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/consatan/weibo-image-uploader/internal/domain"
	"github.com/consatan/weibo-image-uploader/internal/imageurl"
)

const (
	uploadURL     = "http://picupload.service.weibo.com/interface/pic_upload.php"
	uploadReferer = "http://weibo.com/minipublish"
	uploadAccept  = "text/html, application/xhtml+xml, image/jxr, */*"
)

// maxAttempts bounds the submission loop: the original attempt plus exactly
// one retry after a forced re-login.
const maxAttempts = 2

// Service is the upload pipeline.
type Service struct {
	transport domain.Transport
	auth      domain.Authenticator
	secure    bool
	log       logr.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithHTTPS selects https (default) or http delivery URLs.
func WithHTTPS(secure bool) Option {
	return func(s *Service) { s.secure = secure }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(s *Service) {
		if log.GetSink() != nil {
			s.log = log
		}
	}
}

// New constructs an upload Service.
func New(transport domain.Transport, auth domain.Authenticator, opts ...Option) *Service {
	s := &Service{
		transport: transport,
		auth:      auth,
		secure:    true,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadFile uploads the image at path. An unreadable file is a fatal
// IOFailure, never retried.
func (s *Service) UploadFile(ctx context.Context, path string, id domain.Identity, cfg domain.UploadConfig, opts domain.RequestOptions) (domain.UploadResult, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadResult{}, domain.WrapError(domain.CodeIOFailure, "reading "+path, err)
	}
	return s.upload(ctx, img, id, cfg, opts)
}

// Upload uploads the image read from content. The content is buffered in full
// so a failed submission can be retried verbatim.
func (s *Service) Upload(ctx context.Context, content io.Reader, id domain.Identity, cfg domain.UploadConfig, opts domain.RequestOptions) (domain.UploadResult, error) {
	img, err := io.ReadAll(content)
	if err != nil {
		return domain.UploadResult{}, domain.WrapError(domain.CodeIOFailure, "reading upload content", err)
	}
	return s.upload(ctx, img, id, cfg, opts)
}

func (s *Service) upload(ctx context.Context, img []byte, id domain.Identity, cfg domain.UploadConfig, callerOpts domain.RequestOptions) (domain.UploadResult, error) {
	cfg = normalize(cfg)

	if !id.IsZero() {
		if err := s.ensureSession(ctx, id, true); err != nil {
			return domain.UploadResult{}, err
		}
	}

	req := s.buildRequest(ctx, img, id, cfg, callerOpts)

	var pid string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := s.transport.Do(ctx, http.MethodPost, uploadURL, req)
		if err == nil {
			if p, ok := extractPID(resp); ok {
				pid = p
				break
			}
		}

		if attempt == maxAttempts-1 {
			if err != nil {
				return domain.UploadResult{}, err
			}
			// Definitive upload failure: both attempts exhausted.
			s.log.V(1).Info("upload failed on both attempts")
			return domain.UploadResult{}, nil
		}

		s.log.V(1).Info("upload attempt failed, forcing re-login", "err", err)
		if !id.IsZero() {
			if err := s.ensureSession(ctx, id, false); err != nil {
				return domain.UploadResult{}, err
			}
		}
	}

	return s.resolve(pid, cfg)
}

// ensureSession runs the login state machine and maps its tagged result onto
// the upload pipeline's error channel.
func (s *Service) ensureSession(ctx context.Context, id domain.Identity, useCached bool) error {
	res, err := s.auth.Login(ctx, id, domain.LoginOptions{UseCachedSession: useCached})
	if err != nil {
		return err
	}
	switch res.Status {
	case domain.LoginAuthenticated:
		return nil
	case domain.LoginChallengeRequired:
		return &domain.ChallengeRequiredError{ArtifactPath: res.ChallengeArtifact}
	default:
		return domain.NewError(domain.CodeAuthenticationFailed, "login failed, check the username and password")
	}
}

// buildRequest assembles the one submission that both attempts reuse. The
// Referer and Accept headers are owned by the pipeline: caller copies are
// silently dropped, as are any caller options that conflict with the
// multipart submission (body, query, redirect handling).
func (s *Service) buildRequest(ctx context.Context, img []byte, id domain.Identity, cfg domain.UploadConfig, callerOpts domain.RequestOptions) domain.RequestOptions {
	headers := map[string]string{
		"Referer": uploadReferer,
		"Accept":  uploadAccept,
	}
	for key, val := range callerOpts.Headers {
		switch strings.ToLower(key) {
		case "referer", "accept":
			continue
		}
		headers[key] = val
	}

	nickname := cfg.Nickname
	if nickname == "" && !id.IsZero() {
		nickname = s.auth.Nickname(ctx, id)
	}
	markpos := ""
	if cfg.Watermark {
		markpos = strconv.Itoa(int(cfg.MarkPos))
	}

	return domain.RequestOptions{
		Headers: headers,
		Query: url.Values{
			"ori":     {"1"},
			"marks":   {"1"},
			"app":     {"miniblog"},
			"s":       {"rdxt"},
			"markpos": {markpos},
			"logo":    {""},
			"nick":    {"@" + nickname},
			"url":     {""},
			// The regular-upload callback: the pid comes back in the
			// redirect to this URL, so redirects stay disabled.
			"cb": {"http://weibo.com/aj/static/upimgback.html?_wv=5&callback=STK_ijax_" +
				strconv.FormatInt(time.Now().UnixMilli(), 10) + "1"},
		},
		Multipart: []domain.MultipartPart{
			{FieldName: "pic1", FileName: "pic1", Content: img},
		},
		FollowRedirects: false,
	}
}

// resolve maps the returned pid onto one URL per requested size.
func (s *Service) resolve(pid string, cfg domain.UploadConfig) (domain.UploadResult, error) {
	first, err := imageurl.Resolve(pid, cfg.Sizes[0], s.secure)
	if err != nil {
		return domain.UploadResult{}, domain.WrapError(domain.CodeBadResponse, "unexpected pid in upload response", err)
	}

	out := domain.UploadResult{
		PID:   pid,
		Sizes: cfg.Sizes,
		URLs:  map[string]string{cfg.Sizes[0]: first},
	}
	for _, size := range cfg.Sizes[1:] {
		u, err := imageurl.Resolve(first, size, s.secure)
		if err != nil {
			return domain.UploadResult{}, err
		}
		out.URLs[size] = u
	}
	return out, nil
}

// extractPID reads the content identifier from a redirect response. Anything
// other than a 300-303 with a pid query parameter in Location is a failed
// attempt.
func extractPID(resp domain.Response) (string, bool) {
	if resp.StatusCode < 300 || resp.StatusCode > 303 {
		return "", false
	}
	loc := resp.Location()
	if loc == "" {
		return "", false
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", false
	}
	pid := u.Query().Get("pid")
	return pid, pid != ""
}

// normalize fills config defaults: at least one size, a valid watermark
// position.
func normalize(cfg domain.UploadConfig) domain.UploadConfig {
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = []string{imageurl.SizeLarge}
	}
	if cfg.MarkPos < domain.MarkBottomRight || cfg.MarkPos > domain.MarkCenter {
		cfg.MarkPos = domain.MarkBottomRight
	}
	return cfg
}

// Compile-time assertion that Service implements domain.Uploader.
var _ domain.Uploader = (*Service)(nil)
