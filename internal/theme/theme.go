// Package theme scores thematic keywords with heading weights and infers
// visual style hints from rule tables.
package theme

import (
	"sort"
	"strings"

	"siteprompt-go-crawler/internal/classifier"
	"siteprompt-go-crawler/internal/models"
)

// Heading weights. Body covers title, description and body text.
const (
	WeightH1   = 3
	WeightH2   = 2
	WeightBody = 1
)

const maxThemes = 3

var DefaultThemes = classifier.Dictionary{
	{Name: "innovation", Keywords: []string{"革新", "イノベーション", "innovation", "未来", "future", "最先端", "新しい"}},
	{Name: "trust", Keywords: []string{"信頼", "trust", "安心", "実績", "誠実", "reliable", "品質"}},
	{Name: "growth", Keywords: []string{"成長", "growth", "挑戦", "challenge", "拡大", "発展"}},
	{Name: "sustainability", Keywords: []string{"環境", "サステナビリティ", "sustainab", "エコ", "eco-friendly", "SDGs", "自然"}},
	{Name: "community", Keywords: []string{"地域", "community", "つながり", "共に", "together", "家族", "family"}},
	{Name: "craftsmanship", Keywords: []string{"職人", "技術力", "こだわり", "craft", "伝統", "手作り", "handmade"}},
	{Name: "global", Keywords: []string{"グローバル", "global", "海外", "世界", "international", "world"}},
	{Name: "hospitality", Keywords: []string{"おもてなし", "hospitality", "笑顔", "快適", "welcome", "心地よい"}},
	{Name: "wellness", Keywords: []string{"健康", "health", "ウェルネス", "wellness", "癒し", "リラックス"}},
	{Name: "creativity", Keywords: []string{"クリエイティブ", "creative", "デザイン", "design", "アート", "art"}},
}

type Inferencer struct {
	themes []theme

	tones      []Rule
	atmosphere []Rule
	colors     []Rule
}

type theme struct {
	name     string
	keywords []string
}

type Option func(*Inferencer)

func WithThemes(d classifier.Dictionary) Option {
	return func(in *Inferencer) { in.themes = compileThemes(d) }
}

func WithToneRules(rules []Rule) Option {
	return func(in *Inferencer) { in.tones = compileRules(rules) }
}

func WithAtmosphereRules(rules []Rule) Option {
	return func(in *Inferencer) { in.atmosphere = compileRules(rules) }
}

func WithColorRules(rules []Rule) Option {
	return func(in *Inferencer) { in.colors = compileRules(rules) }
}

func New(opts ...Option) *Inferencer {
	in := &Inferencer{
		themes:     compileThemes(DefaultThemes),
		tones:      compileRules(DefaultToneRules),
		atmosphere: compileRules(DefaultAtmosphereRules),
		colors:     compileRules(DefaultColorRules),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func compileThemes(d classifier.Dictionary) []theme {
	out := make([]theme, 0, len(d))
	for _, c := range d {
		t := theme{name: c.Name}
		for _, kw := range c.Keywords {
			if f := classifier.Normalize(kw); f != "" {
				t.keywords = append(t.keywords, f)
			}
		}
		out = append(out, t)
	}
	return out
}

// Themes scores every theme as 3*H1 + 2*H2 + 1*body occurrences across the
// pages and returns at most three themes with a positive score, highest
// first. Equal scores keep dictionary order.
func (in *Inferencer) Themes(pages []models.PageRecord) []models.ThemeScore {
	var h1, h2 []string
	for _, p := range pages {
		h1 = append(h1, p.Headings.H1...)
		h2 = append(h2, p.Headings.H2...)
	}
	h1Text := classifier.Normalize(strings.Join(h1, "\n"))
	h2Text := classifier.Normalize(strings.Join(h2, "\n"))
	bodyText := classifier.Normalize(classifier.AggregateText(pages))

	var scores []models.ThemeScore
	for _, t := range in.themes {
		s := 0
		for _, kw := range t.keywords {
			s += WeightH1*classifier.CountOccurrences(h1Text, kw) +
				WeightH2*classifier.CountOccurrences(h2Text, kw) +
				WeightBody*classifier.CountOccurrences(bodyText, kw)
		}
		if s > 0 {
			scores = append(scores, models.ThemeScore{Theme: t.name, Score: s})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > maxThemes {
		scores = scores[:maxThemes]
	}
	return scores
}
