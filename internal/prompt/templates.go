package prompt

// Lookup tables. Every lookup reports whether the key was registered so the
// caller picks the default explicitly.

const (
	DefaultIndustryTemplate = "professional business scene with a clean modern workplace"
	DefaultContentTemplate  = "for a website main visual"
	DefaultToneToken        = "professional and polished tone"
	DefaultAtmosphereToken  = "balanced atmosphere"
	DefaultLocale           = "ja-JP"
)

var industryTemplates = map[string]string{
	"technology":    "modern technology company workspace with screens and data visualizations and a collaborating team",
	"healthcare":    "bright clean medical facility with caring staff and patients",
	"finance":       "sophisticated financial office with a city skyline and trustworthy advisors",
	"education":     "inspiring learning environment with students and teachers engaged in discussion",
	"food":          "appetizing food presentation in a welcoming restaurant setting",
	"retail":        "attractive retail display with curated products and happy shoppers",
	"real_estate":   "beautiful residential architecture with spacious interiors and natural light",
	"manufacturing": "precise manufacturing floor with skilled workers and advanced machinery",
	"construction":  "large construction site with engineers and cranes around a rising building",
	"beauty":        "elegant beauty salon with soft lighting and refined treatment space",
	"travel":        "scenic travel destination with a traditional inn and seasonal landscape",
	"consulting":    "strategic business meeting in a bright conference room with consultants",
	"general":       DefaultIndustryTemplate,
}

var contentTemplates = map[string]string{
	"hero":        "as a wide hero banner composition",
	"about":       "for a company overview page",
	"service":     "illustrating the service offering",
	"product":     "showcasing the product lineup",
	"team":        "featuring the team members",
	"testimonial": "capturing satisfied customers",
	"pricing":     "with a clear and approachable pricing feel",
	"contact":     "for a friendly contact page",
	"blog":        "as an editorial article header",
	"recruit":     "for a recruitment page with motivated employees",
}

var themeTemplates = map[string]string{
	"innovation":     "innovative forward-looking elements",
	"trust":          "sense of reliability and trust",
	"growth":         "upward momentum and growth",
	"sustainability": "green sustainable details",
	"community":      "warm local community connections",
	"craftsmanship":  "careful craftsmanship and detail",
	"global":         "global international perspective",
	"hospitality":    "heartfelt hospitality",
	"wellness":       "healthy wellness lifestyle",
	"creativity":     "creative artistic flair",
}

var toneTokens = map[string]string{
	"professional": DefaultToneToken,
	"casual":       "friendly casual tone",
	"luxury":       "luxurious refined tone",
	"tech-modern":  "sleek modern high-tech tone",
}

var localizationTokens = map[string][]string{
	"ja-JP": {"Japanese business context", "Japanese people", "clean Japanese corporate aesthetic", "high quality", "photorealistic"},
	"en-US": {"American business context", "diverse people", "contemporary corporate aesthetic", "high quality", "photorealistic"},
}

func IndustryTemplate(name string) (string, bool) {
	t, ok := industryTemplates[name]
	return t, ok
}

func ContentTypeTemplate(name string) (string, bool) {
	t, ok := contentTemplates[name]
	return t, ok
}

func ThemeTemplate(name string) (string, bool) {
	t, ok := themeTemplates[name]
	return t, ok
}

func ToneToken(tone string) (string, bool) {
	t, ok := toneTokens[tone]
	return t, ok
}

// LocalizationTokens returns a copy of the token block for locale.
func LocalizationTokens(locale string) ([]string, bool) {
	t, ok := localizationTokens[locale]
	if !ok {
		return nil, false
	}
	return append([]string(nil), t...), true
}
