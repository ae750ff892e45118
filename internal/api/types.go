package api

import (
	"time"

	"siteprompt-go-crawler/internal/models"
)

// AnalyzeRequest is the body of POST /analyze-site, /analyze-url and /generate.
type AnalyzeRequest struct {
	URL      string `json:"url"`
	Detailed bool   `json:"detailed,omitempty"`
	MaxPages int    `json:"max_pages,omitempty"`
}

type VisualStyle struct {
	Tone       string   `json:"tone"`
	Atmosphere []string `json:"atmosphere"`
	ColorHints []string `json:"color_hints"`
}

type KeywordMatch struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type Classification struct {
	Category        string         `json:"category"`
	Score           int            `json:"score"`
	Confidence      string         `json:"confidence"`
	MatchedKeywords []KeywordMatch `json:"matched_keywords,omitempty"`
	Source          string         `json:"source,omitempty"`
}

type ThemeScore struct {
	Theme string `json:"theme"`
	Score int    `json:"score"`
}

type Page struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// AnalyzeResponse is the success envelope. Detailed fields are only set when
// the request asked for them.
type AnalyzeResponse struct {
	Success            bool        `json:"success"`
	URL                string      `json:"url"`
	Industry           string      `json:"industry"`
	IndustryConfidence string      `json:"industry_confidence"`
	ContentType        string      `json:"content_type"`
	MainThemes         []string    `json:"main_themes"`
	VisualStyle        VisualStyle `json:"visual_style"`
	SuggestedPrompt    string      `json:"suggested_prompt"`
	PagesAnalyzed      int         `json:"pages_analyzed"`
	PagesFound         int         `json:"pages_found"`
	Cached             bool        `json:"cached"`
	Partial            bool        `json:"partial,omitempty"`
	AnalyzedAt         time.Time   `json:"analyzed_at"`

	IndustryDetail *Classification  `json:"industry_detail,omitempty"`
	ContentTypes   []Classification `json:"content_types,omitempty"`
	ThemeScores    []ThemeScore     `json:"theme_scores,omitempty"`
	Topics         []string         `json:"topics,omitempty"`
	Pages          []Page           `json:"pages,omitempty"`
}

// GenerateResponse adds the generated image to an analysis.
type GenerateResponse struct {
	AnalyzeResponse
	ImageBase64   string  `json:"image_base64"`
	MIMEType      string  `json:"mime_type"`
	Cost          float64 `json:"cost"`
	RevisedPrompt string  `json:"revised_prompt,omitempty"`
}

// ErrorResponse is the failure envelope for every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error codes carried in ErrorResponse.Error.
const (
	CodeInvalidRequest       = "InvalidRequest"
	CodeInvalidURL           = "InvalidURL"
	CodeAllPagesFailed       = "AllPagesFailed"
	CodeRateLimitExceeded    = "RateLimitExceeded"
	CodeMethodNotAllowed     = "MethodNotAllowed"
	CodeTimeout              = "Timeout"
	CodeGeneratorUnavailable = "GeneratorUnavailable"
	CodeGenerationFailed     = "GenerationFailed"
	CodeInternal             = "InternalError"
)

func classification(c models.ClassificationResult) Classification {
	out := Classification{
		Category:   c.Category,
		Score:      c.Score,
		Confidence: string(c.Confidence),
		Source:     c.Source,
	}
	for _, m := range c.MatchedKeywords {
		out.MatchedKeywords = append(out.MatchedKeywords, KeywordMatch{Keyword: m.Keyword, Count: m.Count})
	}
	return out
}

func toResponse(res *models.SitePromptResult) AnalyzeResponse {
	out := AnalyzeResponse{
		Success:            true,
		URL:                res.URL,
		Industry:           res.Industry,
		IndustryConfidence: string(res.Confidence),
		ContentType:        res.ContentType,
		MainThemes:         res.ThemeNames(),
		VisualStyle: VisualStyle{
			Tone:       res.VisualStyle.Tone,
			Atmosphere: nonNil(res.VisualStyle.Atmosphere),
			ColorHints: nonNil(res.VisualStyle.ColorHints),
		},
		SuggestedPrompt: res.PromptText,
		PagesAnalyzed:   res.PagesAnalyzed,
		PagesFound:      res.PagesFound,
		Cached:          res.Cached,
		Partial:         res.Partial,
		AnalyzedAt:      res.AnalyzedAt,
	}
	if res.IndustryDetail != nil {
		d := classification(*res.IndustryDetail)
		out.IndustryDetail = &d
		for _, c := range res.ContentTypes {
			out.ContentTypes = append(out.ContentTypes, classification(c))
		}
		for _, t := range res.Themes {
			out.ThemeScores = append(out.ThemeScores, ThemeScore{Theme: t.Theme, Score: t.Score})
		}
		out.Topics = res.Topics
		for _, p := range res.Pages {
			out.Pages = append(out.Pages, Page{URL: p.URL, Title: p.Title})
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
