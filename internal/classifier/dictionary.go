package classifier

// Category is one named keyword list.
type Category struct {
	Name     string
	Keywords []string
}

// Dictionary is ordered. Classification ties resolve to the earliest entry,
// so the order below is part of the behaviour.
type Dictionary []Category

// PathRule maps a URL path segment to a content type.
type PathRule struct {
	Segment string
	Type    string
}

// GeneralIndustry is reported when no industry keyword matched at all.
const GeneralIndustry = "general"

// DefaultContentType is reported when neither text nor path matched.
const DefaultContentType = "hero"

var DefaultIndustries = Dictionary{
	{Name: "technology", Keywords: []string{
		"AI", "クラウド", "cloud", "software", "ソフトウェア", "SaaS", "DX", "デジタル", "digital",
		"システム開発", "アプリ", "プログラミング", "データ分析", "machine learning", "機械学習", "テクノロジー", "technology",
	}},
	{Name: "healthcare", Keywords: []string{
		"医療", "病院", "クリニック", "clinic", "hospital", "診療", "看護", "介護", "patient", "患者",
		"healthcare", "medical", "歯科", "薬局", "リハビリ",
	}},
	{Name: "finance", Keywords: []string{
		"金融", "銀行", "bank", "投資", "investment", "保険", "insurance", "資産運用", "融資", "証券",
		"fintech", "会計", "税理士", "finance",
	}},
	{Name: "education", Keywords: []string{
		"教育", "学校", "school", "大学", "university", "塾", "講座", "学習", "learning", "生徒",
		"student", "セミナー", "研修", "education",
	}},
	{Name: "food", Keywords: []string{
		"レストラン", "restaurant", "料理", "飲食", "カフェ", "cafe", "メニュー", "menu", "食材", "グルメ",
		"ランチ", "ディナー", "居酒屋", "bakery", "ベーカリー",
	}},
	{Name: "retail", Keywords: []string{
		"通販", "ショップ", "shop", "store", "ストア", "販売", "商品", "online store", "カート", "cart",
		"セール", "sale",
	}},
	{Name: "real_estate", Keywords: []string{
		"不動産", "real estate", "物件", "賃貸", "マンション", "住宅", "土地", "売買", "property", "リフォーム",
	}},
	{Name: "manufacturing", Keywords: []string{
		"製造", "manufacturing", "工場", "factory", "部品", "加工", "生産", "品質管理", "機械", "素材",
	}},
	{Name: "construction", Keywords: []string{
		"建設", "construction", "建築", "施工", "工事", "設計", "土木", "architecture",
	}},
	{Name: "beauty", Keywords: []string{
		"美容", "beauty", "サロン", "salon", "エステ", "ヘア", "化粧品", "cosmetics", "ネイル", "スキンケア",
	}},
	{Name: "travel", Keywords: []string{
		"旅行", "travel", "ホテル", "hotel", "観光", "tourism", "旅館", "宿泊", "ツアー", "tour",
	}},
	{Name: "consulting", Keywords: []string{
		"コンサルティング", "consulting", "コンサルタント", "経営支援", "戦略", "strategy", "アドバイザリー", "advisory",
	}},
}

var DefaultContentTypes = Dictionary{
	{Name: "about", Keywords: []string{"会社概要", "企業理念", "私たちについて", "about us", "mission", "vision", "代表挨拶", "沿革"}},
	{Name: "service", Keywords: []string{"サービス", "service", "事業内容", "ソリューション", "solution", "支援内容"}},
	{Name: "product", Keywords: []string{"製品", "product", "商品", "ラインナップ", "仕様", "specification"}},
	{Name: "team", Keywords: []string{"スタッフ", "メンバー", "社員紹介", "our team", "staff", "members"}},
	{Name: "testimonial", Keywords: []string{"お客様の声", "testimonial", "導入事例", "case study", "実績", "レビュー"}},
	{Name: "pricing", Keywords: []string{"料金", "pricing", "価格", "プラン", "見積", "円(税込)"}},
	{Name: "contact", Keywords: []string{"お問い合わせ", "問い合わせ", "contact", "アクセス", "電話番号", "所在地"}},
	{Name: "blog", Keywords: []string{"ブログ", "blog", "お知らせ", "ニュース", "news", "コラム", "記事"}},
	{Name: "recruit", Keywords: []string{"採用", "求人", "recruit", "careers", "募集要項", "エントリー"}},
}

var DefaultPathRules = []PathRule{
	{Segment: "about", Type: "about"},
	{Segment: "company", Type: "about"},
	{Segment: "corporate", Type: "about"},
	{Segment: "service", Type: "service"},
	{Segment: "services", Type: "service"},
	{Segment: "solutions", Type: "service"},
	{Segment: "product", Type: "product"},
	{Segment: "products", Type: "product"},
	{Segment: "team", Type: "team"},
	{Segment: "staff", Type: "team"},
	{Segment: "members", Type: "team"},
	{Segment: "voice", Type: "testimonial"},
	{Segment: "testimonials", Type: "testimonial"},
	{Segment: "case", Type: "testimonial"},
	{Segment: "cases", Type: "testimonial"},
	{Segment: "works", Type: "testimonial"},
	{Segment: "price", Type: "pricing"},
	{Segment: "pricing", Type: "pricing"},
	{Segment: "plan", Type: "pricing"},
	{Segment: "contact", Type: "contact"},
	{Segment: "inquiry", Type: "contact"},
	{Segment: "access", Type: "contact"},
	{Segment: "blog", Type: "blog"},
	{Segment: "news", Type: "blog"},
	{Segment: "column", Type: "blog"},
	{Segment: "topics", Type: "blog"},
	{Segment: "recruit", Type: "recruit"},
	{Segment: "careers", Type: "recruit"},
	{Segment: "jobs", Type: "recruit"},
}
