
//go:build integration

package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/config"
	"siteprompt-go-crawler/internal/crawler"
	"siteprompt-go-crawler/internal/parser"
	"siteprompt-go-crawler/pkg/logger"
)

func TestLiveFetchAndExtract(t *testing.T) {
	url := "https://example.com/"

	client := crawler.NewHTTPClient(crawler.ClientOptions{
		Timeout:      25 * time.Second,
		DialTimeout:  5 * time.Second,
		MaxBodyBytes: 5 * 1024 * 1024,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	res, err := client.Fetch(ctx, url)
	if err != nil {
		t.Skipf("skipping: fetch failed due to network: %v", err)
		return
	}

	page, err := parser.New().Extract(bytes.NewReader(res.Body), res.ContentType, res.FinalURL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(strings.ToLower(page.Title), "example") {
		t.Errorf("unexpected title %q", page.Title)
	}
}

func TestLiveAnalyzeSite(t *testing.T) {
	cfg := config.Default()
	cfg.Crawl.MaxPages = 2
	a := analyzer.FromConfig(cfg, nil, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := a.AnalyzeSite(ctx, "https://example.com", analyzer.Options{Detailed: true})
	if err != nil {
		t.Skipf("skipping: analysis failed due to network: %v", err)
		return
	}
	if res.PromptText == "" {
		t.Errorf("expected a prompt")
	}
	if res.PagesAnalyzed < 1 {
		t.Errorf("expected at least one page, got %d", res.PagesAnalyzed)
	}
}
