package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/scormlens/pkg/buildinfo"
	"github.com/matzehuels/scormlens/pkg/errors"
	"github.com/matzehuels/scormlens/pkg/observability"
)

// Defaults for [Options].
const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxBytes = 512 << 20
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Options configures a [Client]. Zero fields take the defaults above.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
	Attempts int
	Delay    time.Duration
	Headers  map[string]string
	// PublicOnly refuses connections to loopback, private and link-local
	// addresses. Servers that fetch URLs on behalf of clients set it.
	PublicOnly bool
}

// Client downloads package archives.
type Client struct {
	http     *http.Client
	headers  map[string]string
	maxBytes int64
	attempts int
	delay    time.Duration
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	hc := &http.Client{Timeout: opts.Timeout}
	if opts.PublicOnly {
		hc.Transport = publicTransport()
	}
	return &Client{
		http:     hc,
		headers:  opts.Headers,
		maxBytes: opts.MaxBytes,
		attempts: opts.Attempts,
		delay:    opts.Delay,
	}
}

// Fetch downloads rawURL and returns the body.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, classify(err, rawURL)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		var refused *errors.Error
		if stderrors.As(err, &refused) {
			return nil, refused
		}
		return nil, Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.ContentLength > c.maxBytes {
		return nil, errTooLarge(c.maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, Retryable(err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errTooLarge(c.maxBytes)
	}
	return data, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500 || code == http.StatusTooManyRequests:
		return Retryable(&statusError{code})
	default:
		return &statusError{code}
	}
}

func errTooLarge(limit int64) error {
	return errors.New(errors.ErrCodeInvalidInput, "package exceeds the download limit of %d bytes", limit)
}

// classify maps a download failure onto an error code.
func classify(err error, rawURL string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	var se *statusError
	var ue *url.Error
	switch {
	case stderrors.As(err, &se) && se.code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, err, "package not found at %s", rawURL)
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.As(err, &ue) && ue.Timeout():
		return errors.Wrap(errors.ErrCodeTimeout, err, "download of %s timed out", rawURL)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "download of %s failed", rawURL)
	}
}
