package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker decides whether a URL may be fetched.
type RobotsChecker interface {
	Allowed(ctx context.Context, target *url.URL) bool
}

const (
	DefaultRobotsTimeout    = 10 * time.Second
	DefaultRobotsMaxBytes   = 512 << 10
	DefaultRobotsFailureTTL = time.Minute
)

// RobotsAgent caches robots.txt rules per host. Errors fail open and are
// remembered for a short while so a broken host is not asked on every URL.
type RobotsAgent struct {
	client     *http.Client
	userAgent  string
	ttl        time.Duration
	failureTTL time.Duration
	timeout    time.Duration
	maxBytes   int64

	mu    sync.RWMutex
	cache map[string]robotsEntry
}

type robotsEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
	err     error
}

type RobotsOption func(*RobotsAgent)

// WithRobotsTimeout bounds a single robots.txt fetch.
func WithRobotsTimeout(d time.Duration) RobotsOption {
	return func(a *RobotsAgent) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithRobotsMaxBytes caps how much of robots.txt is read.
func WithRobotsMaxBytes(n int64) RobotsOption {
	return func(a *RobotsAgent) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

// WithRobotsFailureTTL sets how long a failed fetch is remembered.
func WithRobotsFailureTTL(d time.Duration) RobotsOption {
	return func(a *RobotsAgent) {
		if d > 0 {
			a.failureTTL = d
		}
	}
}

func NewRobotsAgent(client *http.Client, userAgent string, ttl time.Duration, opts ...RobotsOption) *RobotsAgent {
	if client == nil {
		client = &http.Client{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	a := &RobotsAgent{
		client:     client,
		userAgent:  userAgent,
		ttl:        ttl,
		failureTTL: DefaultRobotsFailureTTL,
		timeout:    DefaultRobotsTimeout,
		maxBytes:   DefaultRobotsMaxBytes,
		cache:      make(map[string]robotsEntry),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *RobotsAgent) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}
	rules, err := a.rules(ctx, target)
	if err != nil {
		return true
	}
	group := rules.FindGroup(a.userAgent)
	if group == nil {
		return true
	}
	return group.Test(target.Path)
}

func (a *RobotsAgent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	entry, ok := a.cache[host]
	a.mu.RUnlock()
	if ok {
		age := time.Since(entry.fetched)
		if entry.err == nil && age < a.ttl {
			return entry.rules, nil
		}
		if entry.err != nil && age < a.failureTTL {
			return nil, entry.err
		}
	}

	data, err := a.fetch(ctx, target)
	if err != nil && ctx.Err() != nil {
		// the crawl ended, not the host's fault
		return nil, err
	}

	a.mu.Lock()
	a.cache[host] = robotsEntry{fetched: time.Now(), rules: data, err: err}
	a.mu.Unlock()
	return data, err
}

func (a *RobotsAgent) fetch(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}
