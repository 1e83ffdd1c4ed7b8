package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// defaultUserAgent imitates a desktop browser; the sso endpoints reject
// obvious non-browser agents.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.12; rv:45.0) Gecko/20100101 Firefox/45.0"

const defaultTimeout = 30 * time.Second

// cookieHosts lists the hosts whose jar state makes up a session, mapped to
// the domain the cookie is persisted (and later restored) under.
var cookieHosts = []struct {
	sample string
	domain string
}{
	{"login.sina.com.cn", ".sina.com.cn"},
	{"weibo.com", ".weibo.com"},
	{"www.weibo.com", ".weibo.com"},
	{"picupload.service.weibo.com", ".weibo.com"},
}

// Client is the HTTP transport. It is not safe for concurrent use; the whole
// login/upload flow is strictly sequential.
type Client struct {
	http *http.Client
	jar  http.CookieJar
	ua   string
	log  logr.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithUserAgent overrides the browser User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.ua = ua
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient reuses the given client's transport and timeout. Its cookie
// jar, if any, is replaced by the session jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		clone := *hc
		clone.Jar = c.jar
		c.http = &clone
	}
}

// New returns a Client with a fresh cookie jar.
func New(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		http: &http.Client{Jar: jar, Timeout: defaultTimeout},
		jar:  jar,
		ua:   defaultUserAgent,
		log:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do executes one round-trip and buffers the response. With FollowRedirects
// disabled a 300-303 answer is returned as-is so the caller can read its
// Location header.
func (c *Client) Do(ctx context.Context, method, rawURL string, opts domain.RequestOptions) (domain.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.Response{}, domain.WrapError(domain.CodeInvalidInput, "invalid request URL", err)
	}
	if len(opts.Query) > 0 {
		q := u.Query()
		for key, vals := range opts.Query {
			for _, v := range vals {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case len(opts.Multipart) > 0:
		buf := new(bytes.Buffer)
		w := multipart.NewWriter(buf)
		for _, part := range opts.Multipart {
			var fw io.Writer
			var err error
			if part.FileName != "" {
				fw, err = w.CreateFormFile(part.FieldName, part.FileName)
			} else {
				fw, err = w.CreateFormField(part.FieldName)
			}
			if err == nil {
				_, err = fw.Write(part.Content)
			}
			if err != nil {
				return domain.Response{}, domain.WrapError(domain.CodeIOFailure, "building multipart body", err)
			}
		}
		if err := w.Close(); err != nil {
			return domain.Response{}, domain.WrapError(domain.CodeIOFailure, "building multipart body", err)
		}
		body = buf
		contentType = w.FormDataContentType()
	case len(opts.Form) > 0:
		body = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return domain.Response{}, domain.WrapError(domain.CodeInvalidInput, "building request", err)
	}
	req.Header.Set("User-Agent", c.ua)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, val := range opts.Headers {
		req.Header.Set(key, val)
	}

	client := c.http
	if !opts.FollowRedirects {
		clone := *c.http
		clone.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &clone
	}

	c.log.V(1).Info("request", "method", method, "url", u.Redacted())
	resp, err := client.Do(req)
	if err != nil {
		return domain.Response{}, domain.WrapError(domain.CodeBadResponse, "request failed", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Response{}, domain.WrapError(domain.CodeBadResponse, "reading response body", err)
	}
	c.log.V(1).Info("response", "status", resp.StatusCode, "bytes", len(b))
	return domain.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       b,
	}, nil
}

// Snapshot copies the current cookie state into a Session value.
func (c *Client) Snapshot() domain.Session {
	var out domain.Session
	seen := map[string]bool{}
	for _, h := range cookieHosts {
		u := &url.URL{Scheme: "http", Host: h.sample, Path: "/"}
		for _, ck := range c.jar.Cookies(u) {
			key := h.domain + "|" + ck.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Cookies = append(out.Cookies, domain.SessionCookie{
				Name:   ck.Name,
				Value:  ck.Value,
				Domain: h.domain,
				Path:   "/",
			})
		}
	}
	out.SavedUTC = time.Now().Unix()
	return out
}

// Restore replaces the cookie state with the given session's tokens. Any
// previous cookies are dropped, so sessions never mix across identities.
func (c *Client) Restore(sess domain.Session) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	byDomain := map[string][]*http.Cookie{}
	for _, sc := range sess.Cookies {
		d := sc.Domain
		if d == "" {
			d = ".weibo.com"
		}
		path := sc.Path
		if path == "" {
			path = "/"
		}
		byDomain[d] = append(byDomain[d], &http.Cookie{
			Name:   sc.Name,
			Value:  sc.Value,
			Domain: d,
			Path:   path,
		})
	}
	for d, cookies := range byDomain {
		u := &url.URL{Scheme: "http", Host: strings.TrimPrefix(d, "."), Path: "/"}
		jar.SetCookies(u, cookies)
	}
	c.jar = jar
	c.http.Jar = jar
}

// Compile-time assertion that Client implements domain.Transport.
var _ domain.Transport = (*Client)(nil)
