
package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteprompt-go-crawler/internal/models"
)

func TestIndustryTechnologyScore(t *testing.T) {
	cl := New()
	text := strings.Repeat("AI クラウド ", 5)
	got := cl.Industry(text)
	// 10 is not above the high threshold of 10, so the bucket is medium
	assert.Equal(t, models.ClassificationResult{
		Category:        "technology",
		Score:           10,
		Confidence:      models.ConfidenceMedium,
		MatchedKeywords: []models.KeywordMatch{{Keyword: "AI", Count: 5}, {Keyword: "クラウド", Count: 5}},
		Source:          models.SourceText,
	}, got)
}

func TestThresholdBoundariesAreExclusive(t *testing.T) {
	th := DefaultIndustryThresholds
	cases := []struct {
		score int
		want  models.Confidence
	}{
		{0, models.ConfidenceLow},
		{5, models.ConfidenceLow},
		{6, models.ConfidenceMedium},
		{10, models.ConfidenceMedium},
		{11, models.ConfidenceHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, th.Bucket(tc.score), "score %d", tc.score)
	}

	cl := New()
	assert.Equal(t, models.ConfidenceHigh, cl.Industry(strings.Repeat("AI ", 11)).Confidence)
	assert.Equal(t, models.ConfidenceLow, cl.Industry(strings.Repeat("AI ", 5)).Confidence)
}

func TestIndustryTieGoesToFirstInDictionary(t *testing.T) {
	dict := Dictionary{
		{Name: "alpha", Keywords: []string{"apple"}},
		{Name: "beta", Keywords: []string{"banana"}},
	}
	cl := New(WithIndustries(dict))
	assert.Equal(t, "alpha", cl.Industry("banana apple").Category)

	reordered := New(WithIndustries(Dictionary{dict[1], dict[0]}))
	assert.Equal(t, "beta", reordered.Industry("banana apple").Category)

	// default dictionary: healthcare is listed before finance
	assert.Equal(t, "healthcare", New().Industry("病院 銀行").Category)
}

func TestIndustryNoMatch(t *testing.T) {
	got := New().Industry("")
	assert.Equal(t, GeneralIndustry, got.Category)
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, models.ConfidenceLow, got.Confidence)
}

func TestIndustryIsCaseAndWidthInsensitive(t *testing.T) {
	got := New().Industry("ＡＩ ai Ai")
	assert.Equal(t, "technology", got.Category)
	assert.Equal(t, 3, got.Score)
}

func TestIndustryDeterministic(t *testing.T) {
	cl := New()
	text := "医療 クリニック 病院 cloud software 投資"
	first := cl.Industry(text)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, cl.Industry(text))
	}
}

func TestContentTypesPathHasPriority(t *testing.T) {
	cl := New()
	text := strings.Repeat("ブログ お知らせ ", 4) + "お問い合わせ"
	got := cl.ContentTypes(text, "/company/about.html")
	require.NotEmpty(t, got)
	assert.Equal(t, "about", got[0].Category)
	assert.Equal(t, models.SourcePath, got[0].Source)
	assert.Equal(t, models.ConfidenceHigh, got[0].Confidence)
	require.Len(t, got, 3)
	assert.Equal(t, "blog", got[1].Category)
	assert.Equal(t, 8, got[1].Score)
	assert.Equal(t, "contact", got[2].Category)
}

func TestContentTypesRankedAndCapped(t *testing.T) {
	cl := New()
	text := "料金 " + strings.Repeat("採用 ", 3) + strings.Repeat("サービス ", 2) + "製品"
	got := cl.ContentTypes(text, "/")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"recruit", "service", "product"}, categories(got))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestContentTypesDefaultHero(t *testing.T) {
	got := New().ContentTypes("nothing relevant here", "/")
	require.Len(t, got, 1)
	assert.Equal(t, DefaultContentType, got[0].Category)
	assert.Equal(t, models.ConfidenceLow, got[0].Confidence)
}

func TestMatchPath(t *testing.T) {
	cl := New()
	typ, ok := cl.MatchPath("/ja/Recruit/index.php")
	assert.True(t, ok)
	assert.Equal(t, "recruit", typ)
	_, ok = cl.MatchPath("/")
	assert.False(t, ok)
}

func TestTopTopics(t *testing.T) {
	cl := New()
	topics := cl.TopTopics("go go network network network parsing parsing", 3)
	require.NotEmpty(t, topics)
	assert.Equal(t, "network", topics[0])
}

func TestAggregateText(t *testing.T) {
	pages := []models.PageRecord{
		{Title: "A", Description: "desc", BodyText: "body"},
		{Title: "B"},
	}
	assert.Equal(t, "A\ndesc\nbody\nB", AggregateText(pages))
	assert.Equal(t, "", AggregateText(nil))
}

func categories(rs []models.ClassificationResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Category)
	}
	return out
}
