
package crawler

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// ErrorKind tags why a fetch failed.
type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindNonSuccessStatus   ErrorKind = "non_success_status"
	KindNetworkError       ErrorKind = "network_error"
	KindSizeExceeded       ErrorKind = "size_exceeded"
	KindUnsupportedContent ErrorKind = "unsupported_content"
	KindInvalidURL         ErrorKind = "invalid_url"

	// Not produced by Fetch; the crawler uses them for its failure records.
	KindParseError       ErrorKind = "parse_error"
	KindRobotsDisallowed ErrorKind = "robots_disallowed"
)

// FetchError is the only error type returned by HTTPClient.Fetch.
type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindNonSuccessStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	case KindSizeExceeded:
		return fmt.Sprintf("fetch %s: response exceeds size limit", e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchResult is a successfully fetched HTML document.
type FetchResult struct {
	URL         string
	FinalURL    string
	ContentType string
	Body        []byte
	Elapsed     time.Duration
}

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
}

// ClientOptions configures HTTPClient.
type ClientOptions struct {
	Timeout        time.Duration
	DialTimeout    time.Duration
	MaxBodyBytes   int64
	UserAgent      string
	AcceptLanguage string
}

type HTTPClient struct {
	client         *http.Client
	timeout        time.Duration
	sizeCap        int64
	userAgent      string
	acceptLanguage string
}

const (
	DefaultUserAgent      = "Mozilla/5.0 (compatible; SitePromptBot/1.0; +https://example.com/bot)"
	DefaultAcceptLanguage = "ja,en-US;q=0.8,en;q=0.6"
)

func NewHTTPClient(opts ClientOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultAcceptLanguage
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		// decompression is handled in readBody so brotli is covered too
		DisableCompression: true,
	}
	return &HTTPClient{
		client:         &http.Client{Transport: transport},
		timeout:        opts.Timeout,
		sizeCap:        opts.MaxBodyBytes,
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
	}
}

// Client exposes the underlying http.Client (robots.txt fetches reuse it).
func (h *HTTPClient) Client() *http.Client { return h.client }

// UserAgent reports the User-Agent header sent with every request.
func (h *HTTPClient) UserAgent() string { return h.userAgent }

// Fetch performs one GET bounded by the client timeout and size ceiling.
// Every failure is returned as a *FetchError.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &FetchError{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", h.acceptLanguage)
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Kind: KindNonSuccessStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "" && !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") {
		// empty content types are let through, some servers omit the header
		return nil, &FetchError{Kind: KindUnsupportedContent, URL: rawURL, Err: fmt.Errorf("content type %q", mediaType)}
	}

	body, err := h.readBody(resp)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.URL = rawURL
			return nil, fe
		}
		return nil, classifyTransportError(ctx, rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &FetchResult{
		URL:         rawURL,
		FinalURL:    finalURL,
		ContentType: contentType,
		Body:        body,
		Elapsed:     time.Since(start),
	}, nil
}

func (h *HTTPClient) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	if resp.ContentLength > h.sizeCap {
		return nil, &FetchError{Kind: KindSizeExceeded}
	}
	body, err := io.ReadAll(io.LimitReader(reader, h.sizeCap+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > h.sizeCap {
		return nil, &FetchError{Kind: KindSizeExceeded}
	}
	return body, nil
}

func classifyTransportError(ctx context.Context, rawURL string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	return &FetchError{Kind: KindNetworkError, URL: rawURL, Err: err}
}
