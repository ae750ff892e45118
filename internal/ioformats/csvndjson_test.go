
package ioformats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"siteprompt-go-crawler/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReadTargetsCSV(t *testing.T) {
	p := writeFile(t, "sites.csv", "name,URL,max_pages\nA,https://a.example,3\nB,https://b.example,\nC,,\n")
	got, err := ReadTargets(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []Target{{URL: "https://a.example", MaxPages: 3}, {URL: "https://b.example"}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadTargetsCSVErrors(t *testing.T) {
	if _, err := ReadTargets(writeFile(t, "a.csv", "site\nhttps://a.example\n")); err == nil {
		t.Error("expected missing url column error")
	}
	if _, err := ReadTargets(writeFile(t, "b.csv", "url,max_pages\nhttps://a.example,many\n")); err == nil {
		t.Error("expected invalid max_pages error")
	}
}

func TestReadTargetsNDJSON(t *testing.T) {
	p := writeFile(t, "sites.ndjson", `{"url":"https://a.example","max_pages":2}
https://b.example

# comment
{"url":"https://c.example"}
`)
	got, err := ReadTargets(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 || got[0].MaxPages != 2 || got[1].URL != "https://b.example" || got[2].URL != "https://c.example" {
		t.Fatalf("unexpected targets: %+v", got)
	}
}

func TestReadTargetsUnknownExtension(t *testing.T) {
	got, err := ReadTargets(writeFile(t, "list", "https://a.example\nhttps://b.example\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}

	if _, err := ReadTargets(writeFile(t, "empty.txt", "\n\n")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestNDJSONWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Write(Record{URL: "https://a.example", Result: &models.SitePromptResult{Industry: "technology"}})
		}()
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, `{"url":"https://a.example","result":`) {
			t.Fatalf("malformed line %q", l)
		}
	}
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, []Record{{URL: "a", Error: "boom"}, {URL: "b"}}); err != nil {
		t.Fatal(err)
	}
	want := "{\"url\":\"a\",\"error\":\"boom\"}\n{\"url\":\"b\"}\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}
