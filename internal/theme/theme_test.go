package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteprompt-go-crawler/internal/classifier"
	"siteprompt-go-crawler/internal/models"
)

func TestThemesHeadingWeights(t *testing.T) {
	dict := classifier.Dictionary{
		{Name: "alpha", Keywords: []string{"alpha"}},
		{Name: "beta", Keywords: []string{"beta"}},
		{Name: "gamma", Keywords: []string{"gamma"}},
	}
	in := New(WithThemes(dict))
	pages := []models.PageRecord{{
		Headings: models.Headings{H1: []string{"Alpha"}, H2: []string{"beta", "beta"}},
		BodyText: "gamma gamma gamma gamma gamma gamma gamma",
	}}
	got := in.Themes(pages)
	assert.Equal(t, []models.ThemeScore{
		{Theme: "gamma", Score: 7},
		{Theme: "beta", Score: 4},
		{Theme: "alpha", Score: 3},
	}, got)
}

func TestThemesTopThreeSortedDescending(t *testing.T) {
	in := New()
	pages := []models.PageRecord{{
		Title:    "信頼と実績",
		Headings: models.Headings{H1: []string{"未来をつくる"}, H2: []string{"地域とともに"}},
		BodyText: "成長 挑戦 デザイン 健康 グローバル 職人",
	}}
	got := in.Themes(pages)
	require.LessOrEqual(t, len(got), 3)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.Equal(t, "innovation", got[0].Theme)
}

func TestThemesEmpty(t *testing.T) {
	assert.Empty(t, New().Themes(nil))
}

func TestStyleToneFirstMatchWins(t *testing.T) {
	in := New()
	// casual and luxury both match; casual is evaluated first
	assert.Equal(t, "casual", in.Style("気軽に楽しめる高級ホテル", "travel").Tone)
	assert.Equal(t, "luxury", in.Style("上質な時間", "travel").Tone)
	assert.Equal(t, "tech-modern", in.Style("業務効率化", "technology").Tone)
	assert.Equal(t, DefaultTone, in.Style("会社案内", "construction").Tone)
}

func TestStyleAccumulatesWithoutDuplicates(t *testing.T) {
	in := New(WithAtmosphereRules([]Rule{
		{Tag: "warm", Keywords: []string{"family"}},
		{Tag: "warm", Keywords: []string{"smile"}},
		{Tag: "calm", Keywords: []string{"nature"}},
	}))
	got := in.Style("family smile nature", "")
	assert.Equal(t, []string{"warm", "calm"}, got.Atmosphere)
}

func TestStyleColorHints(t *testing.T) {
	got := New().Style("自然素材の高級家具", "manufacturing")
	assert.Equal(t, []string{"green and earth tones", "black and gold accents"}, got.ColorHints)
	assert.Contains(t, got.Atmosphere, "calm")
	assert.Contains(t, got.Atmosphere, "elegant")

	none := New().Style("", "")
	assert.NotNil(t, none.Atmosphere)
	assert.NotNil(t, none.ColorHints)
	assert.Empty(t, none.ColorHints)
}
