
package models

import "time"

// Headings groups heading text by level.
type Headings struct {
	H1 []string `json:"h1,omitempty"`
	H2 []string `json:"h2,omitempty"`
	H3 []string `json:"h3,omitempty"`
}

// PageRecord is the extracted content of one fetched page.
type PageRecord struct {
	URL           string   `json:"url"`
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Headings      Headings `json:"headings"`
	BodyText      string   `json:"bodyText,omitempty"`
	ImageAlts     []string `json:"imageAlts,omitempty"`
	OutboundLinks []string `json:"outboundLinks,omitempty"`
	Language      string   `json:"language,omitempty"`
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type KeywordMatch struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Signal sources for a classification.
const (
	SourceText = "text"
	SourcePath = "path"
)

type ClassificationResult struct {
	Category        string         `json:"category"`
	Score           int            `json:"score"`
	Confidence      Confidence     `json:"confidence"`
	MatchedKeywords []KeywordMatch `json:"matchedKeywords,omitempty"`
	Source          string         `json:"source,omitempty"`
}

type ThemeScore struct {
	Theme string `json:"theme"`
	Score int    `json:"score"`
}

type VisualStyle struct {
	Tone       string   `json:"tone"`
	Atmosphere []string `json:"atmosphere"`
	ColorHints []string `json:"colorHints"`
}

// AnalysisContext carries the classification outcome into prompt synthesis
// and image generation.
type AnalysisContext struct {
	Industry    string `json:"industry"`
	ContentType string `json:"contentType"`
	Locale      string `json:"locale"`
}

type PageSummary struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SitePromptResult is the terminal artifact of one analysis.
type SitePromptResult struct {
	URL            string                 `json:"url"`
	Industry       string                 `json:"industry"`
	Confidence     Confidence             `json:"confidence"`
	ContentType    string                 `json:"contentType"`
	Themes         []ThemeScore           `json:"themes"`
	VisualStyle    VisualStyle            `json:"visualStyle"`
	PromptText     string                 `json:"promptText"`
	PagesAnalyzed  int                    `json:"pagesAnalyzed"`
	PagesFound     int                    `json:"pagesFound"`
	Locale         string                 `json:"locale"`
	AnalyzedAt     time.Time              `json:"analyzedAt"`
	Cached         bool                   `json:"cached,omitempty"`
	// Partial is set when the crawl ran out of time before its page budget.
	Partial        bool                   `json:"partial,omitempty"`
	IndustryDetail *ClassificationResult  `json:"industryDetail,omitempty"`
	ContentTypes   []ClassificationResult `json:"contentTypes,omitempty"`
	Topics         []string               `json:"topics,omitempty"`
	Pages          []PageSummary          `json:"pages,omitempty"`
}

// Context returns the AnalysisContext derived from the result.
func (r SitePromptResult) Context() AnalysisContext {
	return AnalysisContext{Industry: r.Industry, ContentType: r.ContentType, Locale: r.Locale}
}

// ThemeNames lists theme names in ranking order.
func (r SitePromptResult) ThemeNames() []string {
	out := make([]string, 0, len(r.Themes))
	for _, t := range r.Themes {
		out = append(out, t.Theme)
	}
	return out
}
