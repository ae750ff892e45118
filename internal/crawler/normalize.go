package crawler

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// BlockedExtensions are binary resources never worth crawling.
var BlockedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip", ".doc", ".docx", ".xls", ".xlsx"}

var rejectedPrefixes = []string{"javascript:", "mailto:", "tel:", "data:"}

// Normalize resolves href against base and reports whether the result may be
// crawled: http(s), same hostname as base, not a blocked extension. The
// fragment is dropped. Malformed input yields ("", false).
func Normalize(base *url.URL, href string) (string, bool) {
	if base == nil {
		return "", false
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, p := range rejectedPrefixes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if abs.Hostname() == "" || !strings.EqualFold(abs.Hostname(), base.Hostname()) {
		return "", false
	}
	if hasBlockedExtension(abs.Path) {
		return "", false
	}
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String(), true
}

func hasBlockedExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, blocked := range BlockedExtensions {
		if ext == blocked {
			return true
		}
	}
	return false
}

var ErrInvalidSeed = errors.New("seed must be an absolute http(s) url")

// NormalizeSeed validates a user supplied seed URL. A missing scheme is
// treated as https.
func NormalizeSeed(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidSeed
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidSeed
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, ErrInvalidSeed
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}
