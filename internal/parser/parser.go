
package parser

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"siteprompt-go-crawler/internal/crawler"
	"siteprompt-go-crawler/internal/models"
)

// DefaultBodyTextLimit caps PageRecord.BodyText, in runes.
const DefaultBodyTextLimit = 5000

type Parser struct {
	bodyTextLimit int
}

type Option func(*Parser)

// WithBodyTextLimit overrides DefaultBodyTextLimit.
func WithBodyTextLimit(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.bodyTextLimit = n
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{bodyTextLimit: DefaultBodyTextLimit}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func (p *Parser) Extract(r io.Reader, contentType, pageURL string) (models.PageRecord, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return models.PageRecord{}, fmt.Errorf("page url: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return models.PageRecord{}, err
	}
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return models.PageRecord{}, err
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return models.PageRecord{}, err
	}

	// links are collected before nav/footer are dropped, site menus live there
	links := outboundLinks(doc, base)

	doc.Find("script,noscript,style,nav,footer").Remove()

	title := collapse(doc.Find("title").First().Text())
	desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	var keywords []string
	if kw := doc.Find(`meta[name="keywords"]`).AttrOr("content", ""); kw != "" {
		for _, k := range strings.FieldsFunc(kw, func(r rune) bool { return r == ',' || r == '、' }) {
			if trim := strings.TrimSpace(k); trim != "" {
				keywords = append(keywords, trim)
			}
		}
	}

	var alts []string
	doc.Find("img[alt]").Each(func(i int, s *goquery.Selection) {
		if alt := collapse(s.AttrOr("alt", "")); alt != "" {
			alts = append(alts, alt)
		}
	})

	lang := strings.TrimSpace(doc.Find("html").AttrOr("lang", ""))
	if lang == "" {
		lang = strings.TrimSpace(doc.Find(`meta[property="og:locale"]`).AttrOr("content", ""))
	}

	return models.PageRecord{
		URL:         pageURL,
		Title:       title,
		Description: desc,
		Keywords:    keywords,
		Headings: models.Headings{
			H1: headingTexts(doc, "h1"),
			H2: headingTexts(doc, "h2"),
			H3: headingTexts(doc, "h3"),
		},
		BodyText:      truncateRunes(collapse(doc.Find("body").Text()), p.bodyTextLimit),
		ImageAlts:     alts,
		OutboundLinks: links,
		Language:      lang,
	}, nil
}

func headingTexts(doc *goquery.Document, tag string) []string {
	var out []string
	doc.Find(tag).Each(func(i int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// outboundLinks returns crawlable links in document order without duplicates.
func outboundLinks(doc *goquery.Document, base *url.URL) []string {
	seen := map[string]struct{}{}
	var out []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, ok := crawler.Normalize(base, href)
		if !ok {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	})
	return out
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
