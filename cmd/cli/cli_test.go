package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteprompt-go-crawler/internal/ioformats"
	"siteprompt-go-crawler/internal/models"
)

const techPage = `<html><head><title>Cloud Platform</title>
<meta name="description" content="software and cloud data platform"></head>
<body><h1>AI software for your data</h1><h2>Cloud platform</h2>
<p>Our software platform brings cloud technology and AI to every team.</p>
<a href="/about">About</a></body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/about" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(techPage))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "crawl:\n  max_pages: 2\n  delay: 0s\n  respect_robots: false\ncache:\n  driver: none\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCommandWritesJSON(t *testing.T) {
	ts := newSite(t)
	out, _, err := run(t, "--config", writeConfig(t), "analyze", ts.URL, "--detailed")
	require.NoError(t, err)

	var res models.SitePromptResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "technology", res.Industry)
	assert.Equal(t, 2, res.PagesAnalyzed)
	assert.NotEmpty(t, res.PromptText)
	assert.Len(t, res.Pages, 2)
}

func TestAnalyzeCommandRequiresURL(t *testing.T) {
	_, _, err := run(t, "--config", writeConfig(t), "analyze")
	require.Error(t, err)
}

func TestBatchCommandPreservesInputOrder(t *testing.T) {
	ts := newSite(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "sites.csv")
	csv := "url,max_pages\n" + ts.URL + ",1\nhttp://127.0.0.1:1/,1\n" + ts.URL + "/about,1\n"
	require.NoError(t, os.WriteFile(input, []byte(csv), 0o644))
	output := filepath.Join(dir, "out.ndjson")

	_, stderr, err := run(t, "--config", writeConfig(t), "batch", "--input", input, "--output", output, "--concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "analyzed 3 sites, 1 failed")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	var records []ioformats.Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec ioformats.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	require.Len(t, records, 3)

	assert.Equal(t, ts.URL, records[0].URL)
	require.NotNil(t, records[0].Result)
	assert.Equal(t, 1, records[0].Result.PagesAnalyzed)
	assert.NotEmpty(t, records[1].Error)
	assert.Nil(t, records[1].Result)
	assert.True(t, strings.HasSuffix(records[2].URL, "/about"))
}

func TestBatchCommandRequiresInput(t *testing.T) {
	_, _, err := run(t, "--config", writeConfig(t), "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input")
}

func TestRenderResultTable(t *testing.T) {
	res := &models.SitePromptResult{
		URL:         "https://example.com/",
		Industry:    "technology",
		Confidence:  models.ConfidenceHigh,
		ContentType: "hero",
		Themes:      []models.ThemeScore{{Theme: "innovation", Score: 9}},
		VisualStyle: models.VisualStyle{Tone: "tech-modern", Atmosphere: []string{"innovative"}},
		PromptText:  "modern technology company workspace",
		Topics:      []string{"cloud", "data"},
		Pages:       []models.PageSummary{{URL: "https://example.com/", Title: "Home"}},
	}
	var buf bytes.Buffer
	renderResult(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "technology (high)")
	assert.Contains(t, out, "innovation")
	assert.Contains(t, out, "modern technology company workspace")
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "Topics: cloud, data")
}
