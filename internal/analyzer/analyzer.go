// Package analyzer runs the crawl, classification, theme and prompt stages
// for one site and caches the outcome.
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"siteprompt-go-crawler/internal/classifier"
	"siteprompt-go-crawler/internal/crawler"
	"siteprompt-go-crawler/internal/kvstore"
	"siteprompt-go-crawler/internal/models"
	"siteprompt-go-crawler/internal/prompt"
	"siteprompt-go-crawler/internal/theme"
	"siteprompt-go-crawler/pkg/logger"
)

const (
	DefaultCacheTTL     = 24 * time.Hour
	DefaultTopicCount   = 15
	DefaultCrawlTimeout = 90 * time.Second

	// maxFinishMargin is how far before the caller's deadline a crawl is cut
	// off so the pages already fetched can still be analyzed.
	maxFinishMargin = time.Second
)

// Options are per-request knobs.
type Options struct {
	Detailed bool
	// MaxPages of 0 uses the configured default; larger values are clamped
	// to the configured limit.
	MaxPages int
	Events   func(crawler.Event)
}

// Deps are the pipeline stages.
type Deps struct {
	Crawler     *crawler.Crawler
	Classifier  *classifier.Classifier
	Themes      *theme.Inferencer
	Synthesizer *prompt.Synthesizer
	// Store may be nil, which disables caching.
	Store  kvstore.Store
	Logger *logger.Logger
}

type Settings struct {
	DefaultMaxPages int
	MaxPagesLimit   int
	CacheTTL        time.Duration
	TopicCount      int
	Locale          string
	// CrawlTimeout bounds a crawl that is shared by coalesced callers and so
	// no longer tied to any one caller's context.
	CrawlTimeout time.Duration
}

type Analyzer struct {
	crawler     *crawler.Crawler
	classifier  *classifier.Classifier
	themes      *theme.Inferencer
	synthesizer *prompt.Synthesizer
	store       kvstore.Store
	log         *logger.Logger

	settings Settings
	now      func() time.Time
	group    singleflight.Group
}

func New(d Deps, s Settings) *Analyzer {
	if s.DefaultMaxPages <= 0 {
		s.DefaultMaxPages = crawler.DefaultMaxPages
	}
	if s.MaxPagesLimit < s.DefaultMaxPages {
		s.MaxPagesLimit = s.DefaultMaxPages
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = DefaultCacheTTL
	}
	if s.TopicCount <= 0 {
		s.TopicCount = DefaultTopicCount
	}
	if s.Locale == "" {
		s.Locale = prompt.DefaultLocale
	}
	if s.CrawlTimeout <= 0 {
		s.CrawlTimeout = DefaultCrawlTimeout
	}
	if d.Classifier == nil {
		d.Classifier = classifier.New()
	}
	if d.Themes == nil {
		d.Themes = theme.New()
	}
	if d.Synthesizer == nil {
		d.Synthesizer = prompt.New(s.Locale)
	}
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Analyzer{
		crawler:     d.Crawler,
		classifier:  d.Classifier,
		themes:      d.Themes,
		synthesizer: d.Synthesizer,
		store:       d.Store,
		log:         log,
		settings:    s,
		now:         time.Now,
	}
}

// MaxPagesLimit is the largest accepted per-request budget.
func (a *Analyzer) MaxPagesLimit() int { return a.settings.MaxPagesLimit }

// AnalyzeSite crawls from rawURL and analyzes every page it reached.
// crawler.ErrAllPagesFailed is returned when nothing could be fetched.
func (a *Analyzer) AnalyzeSite(ctx context.Context, rawURL string, opts Options) (*models.SitePromptResult, error) {
	return a.analyze(ctx, rawURL, opts, modeFor(opts.Detailed, "site"))
}

// AnalyzeURL analyzes the single page at rawURL.
func (a *Analyzer) AnalyzeURL(ctx context.Context, rawURL string) (*models.SitePromptResult, error) {
	return a.analyze(ctx, rawURL, Options{MaxPages: 1}, "page")
}

func modeFor(detailed bool, base string) string {
	if detailed {
		return base + "-detailed"
	}
	return base
}

func (a *Analyzer) budget(requested int) int {
	switch {
	case requested <= 0:
		return a.settings.DefaultMaxPages
	case requested > a.settings.MaxPagesLimit:
		return a.settings.MaxPagesLimit
	default:
		return requested
	}
}

// CacheKey hashes the parameters that determine a result.
func CacheKey(mode string, maxPages int, seed string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", mode, maxPages, seed)))
	return hex.EncodeToString(sum[:])
}

func (a *Analyzer) analyze(ctx context.Context, rawURL string, opts Options, mode string) (*models.SitePromptResult, error) {
	seed, err := crawler.NormalizeSeed(rawURL)
	if err != nil {
		return nil, err
	}
	maxPages := a.budget(opts.MaxPages)
	key := CacheKey(mode, maxPages, seed.String())

	if res, ok := a.cached(ctx, key); ok {
		a.log.Infof("analysis cache hit: %s", seed)
		return res, nil
	}

	run := func(crawlCtx context.Context) (*models.SitePromptResult, error) {
		cr, err := a.crawler.Crawl(crawlCtx, seed.String(), crawler.CrawlOptions{MaxPages: maxPages, Events: opts.Events})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && cr != nil && len(cr.Pages) > 0 {
				a.log.Warnf("crawl of %s hit its deadline after %d pages; analyzing partial result", seed, len(cr.Pages))
				res := a.Analyze(seed.String(), cr.Pages, cr.PagesFound, opts.Detailed)
				res.Partial = true
				return res, nil
			}
			return nil, err
		}
		res := a.Analyze(seed.String(), cr.Pages, cr.PagesFound, opts.Detailed)
		a.save(crawlCtx, key, res)
		return res, nil
	}

	// a streaming caller owns its crawl and cancels it by going away
	if opts.Events != nil {
		crawlCtx, cancel := a.crawlContext(ctx, ctx)
		defer cancel()
		return run(crawlCtx)
	}

	// the shared crawl outlives any single waiter; each waiter gives up on its
	// own context
	ch := a.group.DoChan(key, func() (any, error) {
		crawlCtx, cancel := a.crawlContext(context.WithoutCancel(ctx), ctx)
		defer cancel()
		return run(crawlCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*models.SitePromptResult)
		if r.Shared {
			a.log.Debugf("analysis of %s shared with a concurrent request", seed)
		}
		return &res, nil
	}
}

// crawlContext derives the crawl's context from base. The deadline is the
// configured crawl timeout, pulled in to end shortly before the caller's own
// deadline when that comes first.
func (a *Analyzer) crawlContext(base, caller context.Context) (context.Context, context.CancelFunc) {
	now := time.Now()
	deadline := now.Add(a.settings.CrawlTimeout)
	if dl, ok := caller.Deadline(); ok {
		margin := dl.Sub(now) / 10
		if margin > maxFinishMargin {
			margin = maxFinishMargin
		}
		if end := dl.Add(-margin); end.Before(deadline) {
			deadline = end
		}
	}
	return context.WithDeadline(base, deadline)
}

func (a *Analyzer) cached(ctx context.Context, key string) (*models.SitePromptResult, bool) {
	if a.store == nil {
		return nil, false
	}
	data, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.log.Warnf("cache get failed: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res models.SitePromptResult
	if err := json.Unmarshal(data, &res); err != nil {
		a.log.Warnf("cache entry undecodable: %v", err)
		return nil, false
	}
	res.Cached = true
	return &res, true
}

func (a *Analyzer) save(ctx context.Context, key string, res *models.SitePromptResult) {
	if a.store == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		a.log.Warnf("cache encode failed: %v", err)
		return
	}
	if err := a.store.Set(ctx, key, data, a.settings.CacheTTL); err != nil {
		a.log.Warnf("cache set failed: %v", err)
	}
}

// Analyze runs the classification, theme and prompt stages over pages
// already crawled from seedURL. It has no side effects.
func (a *Analyzer) Analyze(seedURL string, pages []models.PageRecord, pagesFound int, detailed bool) *models.SitePromptResult {
	text := classifier.AggregateText(pages)

	urlPath := "/"
	if u, err := url.Parse(seedURL); err == nil && u.Path != "" {
		urlPath = u.Path
	}

	industry := a.classifier.Industry(text)
	contentTypes := a.classifier.ContentTypes(text, urlPath)
	themes := a.themes.Themes(pages)
	if themes == nil {
		themes = []models.ThemeScore{}
	}
	style := a.themes.Style(text, industry.Category)

	actx := models.AnalysisContext{
		Industry:    industry.Category,
		ContentType: contentTypes[0].Category,
		Locale:      a.settings.Locale,
	}
	res := &models.SitePromptResult{
		URL:           seedURL,
		Industry:      industry.Category,
		Confidence:    industry.Confidence,
		ContentType:   actx.ContentType,
		Themes:        themes,
		VisualStyle:   style,
		PromptText:    a.synthesizer.Synthesize(actx, themes, style),
		PagesAnalyzed: len(pages),
		PagesFound:    pagesFound,
		Locale:        actx.Locale,
		AnalyzedAt:    a.now().UTC(),
	}
	if detailed {
		res.IndustryDetail = &industry
		res.ContentTypes = contentTypes
		res.Topics = a.classifier.TopTopics(text, a.settings.TopicCount)
		res.Pages = make([]models.PageSummary, 0, len(pages))
		for _, p := range pages {
			res.Pages = append(res.Pages, models.PageSummary{URL: p.URL, Title: p.Title})
		}
	}
	return res
}
