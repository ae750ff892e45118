
package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"siteprompt-go-crawler/internal/models"
	"siteprompt-go-crawler/pkg/logger"
)

const (
	DefaultMaxPages = 10
	DefaultDelay    = 500 * time.Millisecond
)

var (
	// ErrAllPagesFailed means not a single page, the seed included, could be
	// fetched and extracted.
	ErrAllPagesFailed = errors.New("all pages failed")
	ErrParse          = errors.New("parse error")
)

// Extractor turns a fetched document into a PageRecord.
type Extractor interface {
	Extract(r io.Reader, contentType, pageURL string) (models.PageRecord, error)
}

type Options struct {
	MaxPages int
	// Delay is the minimum spacing between two fetches.
	Delay  time.Duration
	Robots RobotsChecker
	Logger *logger.Logger
}

type EventType string

const (
	EventCrawlStarted  EventType = "crawl_started"
	EventPageFetched   EventType = "page_fetched"
	EventPageFailed    EventType = "page_failed"
	EventPageSkipped   EventType = "page_skipped"
	EventCrawlFinished EventType = "crawl_finished"
)

// Event reports crawl progress to the caller that started the crawl.
type Event struct {
	Type    EventType `json:"type"`
	RunID   string    `json:"runId"`
	URL     string    `json:"url,omitempty"`
	Title   string    `json:"title,omitempty"`
	Visited int       `json:"visited"`
	Queued  int       `json:"queued"`
	Budget  int       `json:"budget"`
	Kind    string    `json:"kind,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// CrawlOptions are per-call overrides.
type CrawlOptions struct {
	MaxPages int
	Events   func(Event)
}

type PageFailure struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	Err  error  `json:"-"`
}

type CrawlResult struct {
	RunID    string
	Seed     string
	Pages    []models.PageRecord
	Visited  []string
	Failures []PageFailure
	// PagesFound counts visited plus still queued URLs.
	PagesFound int
}

type Crawler struct {
	fetcher   Fetcher
	extractor Extractor
	opts      Options
	log       *logger.Logger
}

func New(f Fetcher, e Extractor, opts Options) *Crawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Crawler{fetcher: f, extractor: e, opts: opts, log: log}
}

// crawlState is the frontier bookkeeping of one run. visited only grows and
// a URL is never queued once visited.
type crawlState struct {
	visited  map[string]struct{}
	order    []string
	frontier []string
	queued   map[string]struct{}
	budget   int
}

func newCrawlState(seed string, budget int) *crawlState {
	s := &crawlState{
		visited: make(map[string]struct{}),
		queued:  make(map[string]struct{}),
		budget:  budget,
	}
	s.enqueue(seed)
	return s
}

// dedupKey maps spellings of the same resource to one key: an empty path
// and "/" address the same document.
func dedupKey(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	if parsed.Path == "" && parsed.RawPath == "" && parsed.Opaque == "" {
		parsed.Path = "/"
	}
	return parsed.String()
}

func (s *crawlState) enqueue(u string) bool {
	key := dedupKey(u)
	if _, ok := s.visited[key]; ok {
		return false
	}
	if _, ok := s.queued[key]; ok {
		return false
	}
	s.queued[key] = struct{}{}
	s.frontier = append(s.frontier, u)
	return true
}

func (s *crawlState) pop() string {
	u := s.frontier[0]
	s.frontier = s.frontier[1:]
	delete(s.queued, dedupKey(u))
	return u
}

func (s *crawlState) markVisited(u string) bool {
	key := dedupKey(u)
	if _, ok := s.visited[key]; ok {
		return false
	}
	s.visited[key] = struct{}{}
	s.order = append(s.order, u)
	return true
}

func (s *crawlState) done() bool {
	return len(s.frontier) == 0 || len(s.visited) >= s.budget
}

func (s *crawlState) pagesFound() int { return len(s.visited) + len(s.frontier) }

// Crawl walks the seed's site breadth first, one fetch at a time. Per-page
// failures are recorded and skipped. The partial result is returned together
// with ctx.Err() when the context ends early.
func (c *Crawler) Crawl(ctx context.Context, seed string, co CrawlOptions) (*CrawlResult, error) {
	seedURL, err := NormalizeSeed(seed)
	if err != nil {
		return nil, err
	}
	budget := c.opts.MaxPages
	if co.MaxPages > 0 {
		budget = co.MaxPages
	}
	emit := co.Events
	if emit == nil {
		emit = func(Event) {}
	}

	st := newCrawlState(seedURL.String(), budget)
	res := &CrawlResult{RunID: uuid.NewString(), Seed: seedURL.String()}
	event := func(t EventType, u string) Event {
		return Event{
			Type:    t,
			RunID:   res.RunID,
			URL:     u,
			Visited: len(st.visited),
			Queued:  len(st.frontier),
			Budget:  budget,
			Time:    time.Now().UTC(),
		}
	}
	finish := func() {
		res.Visited = append([]string(nil), st.order...)
		res.PagesFound = st.pagesFound()
		emit(event(EventCrawlFinished, ""))
	}

	pacer := rate.NewLimiter(rate.Inf, 1)
	if c.opts.Delay > 0 {
		pacer = rate.NewLimiter(rate.Every(c.opts.Delay), 1)
	}

	c.log.Infof("crawl %s started: seed=%s budget=%d", res.RunID, res.Seed, budget)
	emit(event(EventCrawlStarted, res.Seed))

	for !st.done() {
		if err := ctx.Err(); err != nil {
			finish()
			return res, err
		}
		next := st.pop()
		if !st.markVisited(next) {
			continue
		}

		target, err := url.Parse(next)
		if err != nil {
			c.fail(res, emit, event(EventPageFailed, next), next, KindInvalidURL, err)
			continue
		}
		if c.opts.Robots != nil && !c.opts.Robots.Allowed(ctx, target) {
			c.log.Infof("crawl %s: robots.txt disallows %s", res.RunID, next)
			res.Failures = append(res.Failures, PageFailure{URL: next, Kind: string(KindRobotsDisallowed)})
			ev := event(EventPageSkipped, next)
			ev.Kind = string(KindRobotsDisallowed)
			emit(ev)
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			finish()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			// the next slot falls after the deadline
			return res, context.DeadlineExceeded
		}

		fetched, err := c.fetcher.Fetch(ctx, next)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				finish()
				return res, ctxErr
			}
			kind := KindNetworkError
			var fe *FetchError
			if errors.As(err, &fe) {
				kind = fe.Kind
			}
			c.fail(res, emit, event(EventPageFailed, next), next, kind, err)
			continue
		}

		page, err := c.extractor.Extract(bytes.NewReader(fetched.Body), fetched.ContentType, next)
		if err != nil {
			c.fail(res, emit, event(EventPageFailed, next), next, KindParseError, fmt.Errorf("%w: %w", ErrParse, err))
			continue
		}
		res.Pages = append(res.Pages, page)

		for _, link := range page.OutboundLinks {
			st.enqueue(link)
		}
		ev := event(EventPageFetched, next)
		ev.Title = page.Title
		emit(ev)
		c.log.Debugf("crawl %s: fetched %s (%d links, %s)", res.RunID, next, len(page.OutboundLinks), fetched.Elapsed)
	}

	finish()
	c.log.Infof("crawl %s finished: pages=%d visited=%d found=%d failures=%d",
		res.RunID, len(res.Pages), len(res.Visited), res.PagesFound, len(res.Failures))

	if len(res.Pages) == 0 {
		if len(res.Failures) > 0 && res.Failures[0].Err != nil {
			return res, fmt.Errorf("%w: %w", ErrAllPagesFailed, res.Failures[0].Err)
		}
		return res, ErrAllPagesFailed
	}
	return res, nil
}

func (c *Crawler) fail(res *CrawlResult, emit func(Event), ev Event, u string, kind ErrorKind, err error) {
	c.log.Warnf("crawl %s: skipping %s: %v", res.RunID, u, err)
	res.Failures = append(res.Failures, PageFailure{URL: u, Kind: string(kind), Err: err})
	ev.Kind = string(kind)
	ev.Error = err.Error()
	emit(ev)
}
