package analyzer

import (
	"siteprompt-go-crawler/internal/classifier"
	"siteprompt-go-crawler/internal/config"
	"siteprompt-go-crawler/internal/crawler"
	"siteprompt-go-crawler/internal/kvstore"
	"siteprompt-go-crawler/internal/parser"
	"siteprompt-go-crawler/internal/prompt"
	"siteprompt-go-crawler/internal/theme"
	"siteprompt-go-crawler/pkg/logger"
)

// FromConfig wires the full pipeline from cfg. store may be nil.
func FromConfig(cfg config.Config, store kvstore.Store, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNop()
	}
	client := crawler.NewHTTPClient(crawler.ClientOptions{
		Timeout:        cfg.Crawl.RequestTimeout.Duration,
		DialTimeout:    cfg.Crawl.DialTimeout.Duration,
		MaxBodyBytes:   cfg.Crawl.MaxBodyBytes,
		UserAgent:      cfg.Crawl.UserAgent,
		AcceptLanguage: cfg.Crawl.AcceptLanguage,
	})
	opts := crawler.Options{
		MaxPages: cfg.Crawl.MaxPages,
		Delay:    cfg.Crawl.Delay.Duration,
		Logger:   log.With("component", "crawler"),
	}
	if cfg.Crawl.RespectRobots {
		opts.Robots = crawler.NewRobotsAgent(client.Client(), client.UserAgent(), cfg.Crawl.RobotsCacheTTL.Duration,
			crawler.WithRobotsTimeout(cfg.Crawl.RequestTimeout.Duration))
	}
	cr := crawler.New(client, parser.New(parser.WithBodyTextLimit(cfg.Extract.BodyTextLimit)), opts)

	cl := classifier.New(
		classifier.WithIndustryThresholds(classifier.Thresholds(cfg.Classify.Industry)),
		classifier.WithContentTypeThresholds(classifier.Thresholds(cfg.Classify.ContentType)),
	)

	return New(Deps{
		Crawler:     cr,
		Classifier:  cl,
		Themes:      theme.New(),
		Synthesizer: prompt.New(cfg.Prompt.Locale),
		Store:       store,
		Logger:      log.With("component", "analyzer"),
	}, Settings{
		DefaultMaxPages: cfg.Crawl.MaxPages,
		MaxPagesLimit:   cfg.Crawl.MaxPagesLimit,
		CacheTTL:        cfg.Cache.TTL.Duration,
		TopicCount:      cfg.Classify.TopicCount,
		Locale:          cfg.Prompt.Locale,
		CrawlTimeout:    cfg.Server.AnalysisTimeout.Duration,
	})
}
