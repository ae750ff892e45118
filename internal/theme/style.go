package theme

import (
	"siteprompt-go-crawler/internal/classifier"
	"siteprompt-go-crawler/internal/models"
)

// DefaultTone applies when no tone rule matches.
const DefaultTone = "professional"

// Rule yields Tag when any keyword occurs in the text or the industry is one
// of Industries.
type Rule struct {
	Tag        string
	Keywords   []string
	Industries []string
}

func (r Rule) matches(folded, industry string) bool {
	for _, ind := range r.Industries {
		if ind == industry {
			return true
		}
	}
	for _, kw := range r.Keywords {
		if classifier.CountOccurrences(folded, kw) > 0 {
			return true
		}
	}
	return false
}

func compileRules(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		c := Rule{Tag: r.Tag, Industries: r.Industries}
		for _, kw := range r.Keywords {
			if f := classifier.Normalize(kw); f != "" {
				c.Keywords = append(c.Keywords, f)
			}
		}
		out = append(out, c)
	}
	return out
}

// Tone rules are evaluated in this order and the first match wins.
var DefaultToneRules = []Rule{
	{Tag: "casual", Keywords: []string{"カジュアル", "casual", "気軽", "楽しい", "fun", "ポップ", "フレンドリー", "friendly"}},
	{Tag: "luxury", Keywords: []string{"高級", "luxury", "プレミアム", "premium", "上質", "ラグジュアリー", "洗練", "exclusive"}},
	{Tag: "tech-modern", Keywords: []string{"テクノロジー", "technology", "デジタル", "digital", "イノベーション", "最先端"}, Industries: []string{"technology"}},
}

var DefaultAtmosphereRules = []Rule{
	{Tag: "warm", Keywords: []string{"家族", "family", "温か", "あたたか", "笑顔", "smile", "warm"}},
	{Tag: "energetic", Keywords: []string{"挑戦", "challenge", "活気", "energetic", "スピード", "成長"}},
	{Tag: "calm", Keywords: []string{"自然", "nature", "癒", "relax", "やすらぎ", "calm"}},
	{Tag: "innovative", Keywords: []string{"革新", "イノベーション", "innovation", "未来", "future", "最先端"}},
	{Tag: "trustworthy", Keywords: []string{"信頼", "trust", "実績", "安全", "safety", "誠実"}},
	{Tag: "elegant", Keywords: []string{"上質", "洗練", "elegant", "エレガント", "高級", "luxury"}},
}

var DefaultColorRules = []Rule{
	{Tag: "green and earth tones", Keywords: []string{"自然", "nature", "エコ", "環境", "sustainab", "オーガニック", "organic"}},
	{Tag: "deep blue and white", Keywords: []string{"信頼", "trust"}, Industries: []string{"technology", "finance", "healthcare"}},
	{Tag: "black and gold accents", Keywords: []string{"高級", "luxury", "プレミアム", "premium", "ラグジュアリー"}},
	{Tag: "warm orange and cream", Keywords: []string{"カフェ", "cafe", "温か", "家族", "family"}, Industries: []string{"food"}},
	{Tag: "soft pastel colors", Keywords: []string{"かわいい", "cute", "ベビー", "baby"}, Industries: []string{"beauty"}},
	{Tag: "vivid accent colors", Keywords: []string{"ポップ", "カジュアル", "casual", "楽しい"}},
}

// Style evaluates the rule tables against the aggregated text.
func (in *Inferencer) Style(text, industry string) models.VisualStyle {
	folded := classifier.Normalize(text)
	style := models.VisualStyle{
		Tone:       DefaultTone,
		Atmosphere: []string{},
		ColorHints: []string{},
	}
	for _, r := range in.tones {
		if r.matches(folded, industry) {
			style.Tone = r.Tag
			break
		}
	}
	style.Atmosphere = collect(in.atmosphere, folded, industry)
	style.ColorHints = collect(in.colors, folded, industry)
	return style
}

func collect(rules []Rule, folded, industry string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, r := range rules {
		if _, dup := seen[r.Tag]; dup {
			continue
		}
		if r.matches(folded, industry) {
			seen[r.Tag] = struct{}{}
			out = append(out, r.Tag)
		}
	}
	return out
}
