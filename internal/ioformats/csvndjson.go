
package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"siteprompt-go-crawler/internal/models"
)

// Target is one site to analyze. MaxPages of 0 means the configured default.
type Target struct {
	URL      string `json:"url"`
	MaxPages int    `json:"max_pages,omitempty"`
}

// ReadTargets reads targets from a CSV (expects header with "url", optional
// "max_pages"), NDJSON or plain text file with one URL per line.
// If ext cannot be determined, tries CSV first then NDJSON.
func ReadTargets(path string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return readCSV(f)
	case ".ndjson", ".jsonl", ".txt":
		return readNDJSON(f)
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		// try csv then ndjson
		if targets, err := readCSV(strings.NewReader(string(data))); err == nil && len(targets) > 0 {
			return targets, nil
		}
		return readNDJSON(strings.NewReader(string(data)))
	}
}

func readCSV(r io.Reader) ([]Target, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	// find "url" and "max_pages" columns
	urlCol, pagesCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "url":
			urlCol = i
		case "max_pages":
			pagesCol = i
		}
	}
	if urlCol == -1 {
		return nil, errors.New("csv must contain a 'url' header column")
	}
	var out []Target
	for line, row := range rows[1:] {
		if urlCol >= len(row) {
			continue
		}
		u := strings.TrimSpace(row[urlCol])
		if u == "" {
			continue
		}
		t := Target{URL: u}
		if pagesCol >= 0 && pagesCol < len(row) {
			if v := strings.TrimSpace(row[pagesCol]); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					return nil, fmt.Errorf("csv row %d: invalid max_pages %q", line+2, v)
				}
				t.MaxPages = n
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func readNDJSON(r io.Reader) ([]Target, error) {
	var out []Target
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// allow raw string or {"url": "...", "max_pages": n}
		if strings.HasPrefix(line, "{") {
			var t Target
			if err := json.Unmarshal([]byte(line), &t); err == nil && t.URL != "" {
				out = append(out, t)
				continue
			}
		}
		// fallback: treat whole line as url
		out = append(out, Target{URL: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no urls found in input")
	}
	return out, nil
}

// Record is one line of batch output.
type Record struct {
	URL    string                   `json:"url"`
	Result *models.SitePromptResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// NDJSONWriter writes one JSON document per line. Safe for concurrent use.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

func (w *NDJSONWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// WriteNDJSON writes any JSON-marshalable items as NDJSON to w.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
