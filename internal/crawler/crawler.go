package crawler

import (
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the HTTP client.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	DialTimeout time.Duration
	SizeCap     int64
	// RatePerSec paces requests across the whole client. Zero disables pacing.
	RatePerSec float64
}

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
	limiter   *rate.Limiter
}

// Response is a fully read HTTP response.
type Response struct {
	Method      string
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
}

func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.SizeCap == 0 {
		opts.SizeCap = 10 * 1024 * 1024
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	h := &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		sizeCap:   opts.SizeCap,
		userAgent: opts.UserAgent,
	}
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return h
}

// Do issues one request and reads the body. Only transport failures are
// returned as errors; status handling is left to the caller (see
// Response.Err).
func (h *HTTPClient) Do(ctx context.Context, method, rawURL string) (*Response, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, eris.Errorf("invalid url %q", rawURL)
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Accept-Encoding", "gzip")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s %s", method, u.Redacted())
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "gzip reader")
		}
		defer gz.Close()
		body = gz
	}

	// enforce a size cap
	data, err := io.ReadAll(io.LimitReader(body, h.sizeCap))
	if err != nil {
		return nil, eris.Wrapf(err, "read body %s", u.Redacted())
	}

	out := &Response{
		Method:      method,
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
		Elapsed:     time.Since(start),
	}
	zap.L().Debug("fetched",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", out.Elapsed),
	)
	return out, nil
}

// Get is Do with GET.
func (h *HTTPClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	return h.Do(ctx, http.MethodGet, rawURL)
}

// Post is Do with POST and an empty body.
func (h *HTTPClient) Post(ctx context.Context, rawURL string) (*Response, error) {
	return h.Do(ctx, http.MethodPost, rawURL)
}

// Err returns an *HTTPError unless the status is 2xx.
func (r *Response) Err() error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	return &HTTPError{Method: r.Method, URL: r.URL, StatusCode: r.StatusCode}
}
