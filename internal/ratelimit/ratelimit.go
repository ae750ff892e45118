// Package ratelimit keeps a sliding-window request log per client.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultRequests      = 10
	DefaultWindow        = time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Settings configures a Limiter.
type Settings struct {
	Requests      int
	Window        time.Duration
	SweepInterval time.Duration
	// TrustForwardedFor keys clients by the first X-Forwarded-For hop. Only
	// enable it behind a proxy that overwrites the header.
	TrustForwardedFor bool
}

// Limiter admits at most Requests per Window for every client key.
type Limiter struct {
	settings Settings
	now      func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func New(s Settings) *Limiter {
	if s.Requests <= 0 {
		s.Requests = DefaultRequests
	}
	if s.Window <= 0 {
		s.Window = DefaultWindow
	}
	if s.SweepInterval <= 0 {
		s.SweepInterval = DefaultSweepInterval
	}
	return &Limiter{settings: s, now: time.Now, hits: make(map[string][]time.Time)}
}

// Allow records a request for key when it fits in the window. When it does
// not, retryAfter is the time until the oldest request leaves the window.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()
	cutoff := now.Add(-l.settings.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	log := prune(l.hits[key], cutoff)
	if len(log) >= l.settings.Requests {
		l.hits[key] = log
		retry := log[0].Add(l.settings.Window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return false, retry
	}
	l.hits[key] = append(log, now)
	return true, 0
}

// prune drops entries at or before cutoff. Entries are in arrival order.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	return log[i:]
}

// Sweep evicts keys whose whole log fell out of the window.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.settings.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, log := range l.hits {
		log = prune(log, cutoff)
		if len(log) == 0 {
			delete(l.hits, key)
			removed++
			continue
		}
		l.hits[key] = log
	}
	return removed
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// Run sweeps every SweepInterval until ctx is done. Start it once.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.settings.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// ClientKey identifies a caller by IP and a User-Agent fingerprint. The IP is
// the connection's remote host unless TrustForwardedFor is set.
func (l *Limiter) ClientKey(r *http.Request) string {
	return clientKey(r, l.settings.TrustForwardedFor)
}

func clientKey(r *http.Request, trustForwarded bool) string {
	ip := ""
	if trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
	}
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	sum := sha256.Sum256([]byte(r.UserAgent()))
	return ip + "|" + hex.EncodeToString(sum[:8])
}
