package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteprompt-go-crawler/internal/crawler"
	"siteprompt-go-crawler/internal/parser"
)

// site serves the given path -> HTML map; other paths are 404.
func site(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".txt") {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func page(title string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body><h1>%s</h1>", title, title)
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newCrawler(maxPages int, opts ...func(*crawler.Options)) (*crawler.Crawler, *crawler.HTTPClient) {
	client := crawler.NewHTTPClient(crawler.ClientOptions{Timeout: 2 * time.Second})
	o := crawler.Options{MaxPages: maxPages}
	for _, fn := range opts {
		fn(&o)
	}
	return crawler.New(client, parser.New(), o), client
}

func tenPageSite(t *testing.T) *httptest.Server {
	pages := map[string]string{}
	var links []string
	for i := 1; i <= 9; i++ {
		p := fmt.Sprintf("/p%d", i)
		links = append(links, p)
		pages[p] = page(fmt.Sprintf("Page %d", i), "/", "/p1")
	}
	pages["/"] = page("Home", links...)
	return site(t, pages)
}

func TestCrawlStopsAtBudget(t *testing.T) {
	ts := tenPageSite(t)
	c, _ := newCrawler(3)

	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	require.Len(t, res.Pages, 3)
	assert.Equal(t, []string{ts.URL + "/", ts.URL + "/p1", ts.URL + "/p2"}, res.Visited)
	assert.Equal(t, "Home", res.Pages[0].Title)
	assert.Equal(t, 10, res.PagesFound)
	assert.NotEmpty(t, res.RunID)
}

func TestCrawlPerCallBudgetOverride(t *testing.T) {
	ts := tenPageSite(t)
	c, _ := newCrawler(3)

	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{MaxPages: 1})
	require.NoError(t, err)
	assert.Len(t, res.Pages, 1)
	assert.Equal(t, 10, res.PagesFound)
}

func TestCrawlIgnoresNonCrawlableLinks(t *testing.T) {
	ts := site(t, map[string]string{
		"/": page("Home", "/doc.pdf", "mailto:info@example.com", "https://other.example/", "#top", "javascript:void(0)"),
	})
	c, _ := newCrawler(10)

	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Pages, 1)
	assert.Equal(t, 1, res.PagesFound)
	assert.Empty(t, res.Failures)
}

func TestCrawlUnreachableSeed(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	c, _ := newCrawler(5)
	res, err := c.Crawl(context.Background(), addr, crawler.CrawlOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, crawler.ErrAllPagesFailed)
	var fe *crawler.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, crawler.KindNetworkError, fe.Kind)
	require.NotNil(t, res)
	assert.Empty(t, res.Pages)
	require.Len(t, res.Failures, 1)
}

func TestCrawlInvalidSeed(t *testing.T) {
	c, _ := newCrawler(5)
	_, err := c.Crawl(context.Background(), "ftp://example.com", crawler.CrawlOptions{})
	assert.ErrorIs(t, err, crawler.ErrInvalidSeed)
}

func TestCrawlContinuesPastFailedPage(t *testing.T) {
	ts := site(t, map[string]string{
		"/":   page("Home", "/missing", "/ok"),
		"/ok": page("OK"),
	})
	c, _ := newCrawler(10)

	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, ts.URL+"/missing", res.Failures[0].URL)
	assert.Equal(t, string(crawler.KindNonSuccessStatus), res.Failures[0].Kind)
	assert.Len(t, res.Visited, 3)
}

func TestCrawlVisitsEachURLOnce(t *testing.T) {
	ts := site(t, map[string]string{
		"/":  page("Home", "/a", "/b", "/a#x", "/b"),
		"/a": page("A", "/", "/b", "/a"),
		"/b": page("B", "/", "/a", "/c"),
		"/c": page("C", "/", "/a", "/b"),
	})
	c, _ := newCrawler(10)

	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, u := range res.Visited {
		assert.False(t, seen[u], "visited twice: %s", u)
		seen[u] = true
	}
	assert.Len(t, res.Visited, 4)
	assert.Len(t, res.Pages, 4)
	assert.Equal(t, 4, res.PagesFound)
}

func TestCrawlEmitsEvents(t *testing.T) {
	ts := tenPageSite(t)
	c, _ := newCrawler(2)

	var events []crawler.Event
	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{
		Events: func(ev crawler.Event) { events = append(events, ev) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, crawler.EventCrawlStarted, events[0].Type)
	last := events[len(events)-1]
	assert.Equal(t, crawler.EventCrawlFinished, last.Type)
	assert.Equal(t, 2, last.Visited)
	assert.Equal(t, 2, last.Budget)

	fetched := 0
	for _, ev := range events {
		assert.Equal(t, res.RunID, ev.RunID)
		if ev.Type == crawler.EventPageFetched {
			fetched++
		}
	}
	assert.Equal(t, len(res.Pages), fetched)
}

func TestCrawlStopsOnCancel(t *testing.T) {
	ts := tenPageSite(t)
	c, _ := newCrawler(10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res, err := c.Crawl(ctx, ts.URL, crawler.CrawlOptions{
		Events: func(ev crawler.Event) {
			if ev.Type == crawler.EventPageFetched {
				cancel()
			}
		},
	})
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.Len(t, res.Pages, 1)
}

func TestCrawlHonoursRobots(t *testing.T) {
	ts := site(t, map[string]string{
		"/robots.txt": "User-agent: *\nDisallow: /private\n",
		"/":           page("Home", "/private", "/public"),
		"/private":    page("Private"),
		"/public":     page("Public"),
	})
	client := crawler.NewHTTPClient(crawler.ClientOptions{Timeout: 2 * time.Second})
	robots := crawler.NewRobotsAgent(client.Client(), client.UserAgent(), time.Minute)
	c := crawler.New(client, parser.New(), crawler.Options{MaxPages: 10, Robots: robots})

	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	var titles []string
	for _, p := range res.Pages {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Home", "Public"}, titles)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, string(crawler.KindRobotsDisallowed), res.Failures[0].Kind)
}

func TestCrawlPacesRequests(t *testing.T) {
	ts := tenPageSite(t)
	c, _ := newCrawler(3, func(o *crawler.Options) { o.Delay = 50 * time.Millisecond })

	start := time.Now()
	_, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestCrawlTreatsBareOriginAsRoot(t *testing.T) {
	var hits atomic.Int64
	var origin string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page("Home", origin, origin+"/")))
	}))
	t.Cleanup(ts.Close)
	origin = ts.URL

	c, _ := newCrawler(5)
	res, err := c.Crawl(context.Background(), ts.URL, crawler.CrawlOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{ts.URL + "/"}, res.Visited)
	assert.Len(t, res.Pages, 1)
	assert.Equal(t, 1, res.PagesFound)
	assert.EqualValues(t, 1, hits.Load())
}
