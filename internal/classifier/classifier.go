
package classifier

import (
	"path"
	"sort"
	"strings"
	"unicode"

	"siteprompt-go-crawler/internal/models"
)

// Thresholds are exclusive: score > High is high, score > Medium is medium.
type Thresholds struct {
	High   int
	Medium int
}

var (
	DefaultIndustryThresholds    = Thresholds{High: 10, Medium: 5}
	DefaultContentTypeThresholds = Thresholds{High: 5, Medium: 2}
)

func (t Thresholds) Bucket(score int) models.Confidence {
	switch {
	case score > t.High:
		return models.ConfidenceHigh
	case score > t.Medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// maxContentTypes bounds ContentTypes results.
const maxContentTypes = 3

type compiledCategory struct {
	name     string
	keywords []string
	folded   []string
}

type Classifier struct {
	industries   []compiledCategory
	contentTypes []compiledCategory
	pathRules    []PathRule

	industryThresholds    Thresholds
	contentTypeThresholds Thresholds
}

type Option func(*Classifier)

func WithIndustries(d Dictionary) Option {
	return func(c *Classifier) { c.industries = compile(d) }
}

func WithContentTypes(d Dictionary) Option {
	return func(c *Classifier) { c.contentTypes = compile(d) }
}

func WithPathRules(rules []PathRule) Option {
	return func(c *Classifier) { c.pathRules = rules }
}

func WithIndustryThresholds(t Thresholds) Option {
	return func(c *Classifier) { c.industryThresholds = t }
}

func WithContentTypeThresholds(t Thresholds) Option {
	return func(c *Classifier) { c.contentTypeThresholds = t }
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		industries:            compile(DefaultIndustries),
		contentTypes:          compile(DefaultContentTypes),
		pathRules:             DefaultPathRules,
		industryThresholds:    DefaultIndustryThresholds,
		contentTypeThresholds: DefaultContentTypeThresholds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func compile(d Dictionary) []compiledCategory {
	out := make([]compiledCategory, 0, len(d))
	for _, cat := range d {
		cc := compiledCategory{name: cat.Name}
		for _, kw := range cat.Keywords {
			if f := Normalize(kw); f != "" {
				cc.keywords = append(cc.keywords, kw)
				cc.folded = append(cc.folded, f)
			}
		}
		out = append(out, cc)
	}
	return out
}

// score returns one result per category, in dictionary order.
func score(cats []compiledCategory, folded string, t Thresholds) []models.ClassificationResult {
	out := make([]models.ClassificationResult, 0, len(cats))
	for _, cat := range cats {
		r := models.ClassificationResult{Category: cat.name, Source: models.SourceText}
		for i, kw := range cat.folded {
			if n := CountOccurrences(folded, kw); n > 0 {
				r.Score += n
				r.MatchedKeywords = append(r.MatchedKeywords, models.KeywordMatch{Keyword: cat.keywords[i], Count: n})
			}
		}
		r.Confidence = t.Bucket(r.Score)
		out = append(out, r)
	}
	return out
}

// Industry returns the highest scoring industry. Ties go to the category
// listed first in the dictionary. Text without any match is "general".
func (c *Classifier) Industry(text string) models.ClassificationResult {
	results := score(c.industries, Normalize(text), c.industryThresholds)
	best := -1
	for i, r := range results {
		if r.Score > 0 && (best < 0 || r.Score > results[best].Score) {
			best = i
		}
	}
	if best < 0 {
		return models.ClassificationResult{
			Category:   GeneralIndustry,
			Confidence: models.ConfidenceLow,
			Source:     models.SourceText,
		}
	}
	return results[best]
}

// ContentTypes ranks content types by keyword score. A URL path match is
// listed first regardless of its text score. At most three results are
// returned, and a single low-confidence "hero" when nothing matched.
func (c *Classifier) ContentTypes(text, urlPath string) []models.ClassificationResult {
	results := score(c.contentTypes, Normalize(text), c.contentTypeThresholds)

	var out []models.ClassificationResult
	pathType, pathMatched := c.MatchPath(urlPath)
	if pathMatched {
		r := models.ClassificationResult{Category: pathType}
		for _, tr := range results {
			if tr.Category == pathType {
				r = tr
				break
			}
		}
		r.Confidence = models.ConfidenceHigh
		r.Source = models.SourcePath
		out = append(out, r)
	}

	var matched []models.ClassificationResult
	for _, r := range results {
		if r.Score > 0 && !(pathMatched && r.Category == pathType) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Score > matched[j].Score })
	out = append(out, matched...)

	if len(out) == 0 {
		return []models.ClassificationResult{{
			Category:   DefaultContentType,
			Confidence: models.ConfidenceLow,
			Source:     models.SourceText,
		}}
	}
	if len(out) > maxContentTypes {
		out = out[:maxContentTypes]
	}
	return out
}

// MatchPath looks the path segments up in the path table. Rules are tried in
// table order; a segment matches when equal to the rule ignoring case and a
// trailing file extension.
func (c *Classifier) MatchPath(urlPath string) (string, bool) {
	var segments []string
	for _, seg := range strings.Split(urlPath, "/") {
		seg = strings.ToLower(strings.TrimSpace(seg))
		seg = strings.TrimSuffix(seg, path.Ext(seg))
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return "", false
	}
	for _, rule := range c.pathRules {
		for _, seg := range segments {
			if seg == rule.Segment {
				return rule.Type, true
			}
		}
	}
	return "", false
}

// simple stopword list (extend as needed)
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {}, "on": {}, "with": {}, "as": {},
	"by": {}, "at": {}, "from": {}, "that": {}, "this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {}, "you": {}, "we": {}, "our": {},
}

// TopTopics returns top N keywords by normalized frequency, ignoring stopwords and short tokens.
func (c *Classifier) TopTopics(text string, n int) []string {
	freq := map[string]int{}
	token := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	words := strings.FieldsFunc(Normalize(text), token)

	for _, w := range words {
		if len([]rune(w)) < 3 && !isCJK(w) {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		freq[w]++
	}

	type kv struct {
		K string
		V int
	}
	var list []kv
	for k, v := range freq {
		list = append(list, kv{k, v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].V == list[j].V {
			return list[i].K < list[j].K
		}
		return list[i].V > list[j].V
	})
	if n > len(list) {
		n = len(list)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, list[i].K)
	}
	return out
}

func isCJK(w string) bool {
	for _, r := range w {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return len([]rune(w)) >= 2
		}
	}
	return false
}
