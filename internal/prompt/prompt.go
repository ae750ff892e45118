// Package prompt turns an analysis into an image-generation prompt.
package prompt

import (
	"strings"

	"siteprompt-go-crawler/internal/models"
)

type Synthesizer struct {
	defaultLocale string
}

// New returns a Synthesizer that falls back to defaultLocale when the
// analysis context carries no locale, or DefaultLocale when that is empty.
func New(defaultLocale string) *Synthesizer {
	if _, ok := LocalizationTokens(defaultLocale); !ok {
		defaultLocale = DefaultLocale
	}
	return &Synthesizer{defaultLocale: defaultLocale}
}

// Synthesize builds the prompt in a fixed order: industry segment with its
// content-type composition, one segment per theme, tone, atmosphere with
// color hints, then the localization block. Segments are joined with ", ".
func (s *Synthesizer) Synthesize(actx models.AnalysisContext, themes []models.ThemeScore, style models.VisualStyle) string {
	parts := []string{s.industrySegment(actx)}

	for _, th := range themes {
		if t, ok := ThemeTemplate(th.Theme); ok {
			parts = append(parts, t)
			continue
		}
		parts = append(parts, "sense of "+strings.ReplaceAll(th.Theme, "_", " "))
	}

	tone, ok := ToneToken(style.Tone)
	if !ok {
		tone = DefaultToneToken
	}
	parts = append(parts, tone)
	parts = append(parts, atmosphereSegment(style))

	tokens, ok := LocalizationTokens(actx.Locale)
	if !ok {
		tokens, _ = LocalizationTokens(s.defaultLocale)
	}
	parts = append(parts, tokens...)

	return strings.Join(parts, ", ")
}

func (s *Synthesizer) industrySegment(actx models.AnalysisContext) string {
	industry, ok := IndustryTemplate(actx.Industry)
	if !ok {
		industry = DefaultIndustryTemplate
	}
	content, ok := ContentTypeTemplate(actx.ContentType)
	if !ok {
		content = DefaultContentTemplate
	}
	return industry + " " + content
}

func atmosphereSegment(style models.VisualStyle) string {
	seg := DefaultAtmosphereToken
	if len(style.Atmosphere) > 0 {
		seg = strings.Join(style.Atmosphere, " and ") + " atmosphere"
	}
	if len(style.ColorHints) > 0 {
		seg += " with " + strings.Join(style.ColorHints, " and ")
	}
	return seg
}
