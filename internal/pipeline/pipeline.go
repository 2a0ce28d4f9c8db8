package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/revstat/internal/aggregate"
	"github.com/ppiankov/revstat/internal/cache"
	"github.com/ppiankov/revstat/internal/clean"
	"github.com/ppiankov/revstat/internal/metrics"
	"github.com/ppiankov/revstat/internal/model"
	"github.com/ppiankov/revstat/internal/parse"
	"github.com/ppiankov/revstat/internal/sentiment"
)

// Pipeline orchestrates parse, clean and aggregate for one input at a time
type Pipeline struct {
	loader      *Loader
	parser      *parse.Parser
	cleaner     *clean.Cleaner
	aggregator  *aggregate.Aggregator
	renderer    *Renderer
	cache       cache.Cache      // nil when caching is disabled
	metrics     *metrics.Metrics // nil when metrics are not collected
	group       singleflight.Group
	fingerprint []byte
	config      *model.Config
	logger      zerolog.Logger

	now   func() time.Time
	newID func() string
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithCache overrides the cache built from the config
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithMetrics records analysis counters into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock fixes the clock and run-id source, mainly for tests
func WithClock(now func() time.Time, newID func() string) Option {
	return func(p *Pipeline) {
		p.now = now
		p.newID = newID
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger zerolog.Logger, opts ...Option) *Pipeline {
	classifier := sentiment.FromConfig(cfg.Sentiment)

	p := &Pipeline{
		loader:      NewLoader(cfg.Input.MaxBytes),
		parser:      parse.NewParser(cfg.Input.DelimiterRune()),
		cleaner:     clean.NewCleaner(cfg.Cleaning, classifier, logger),
		aggregator:  aggregate.NewAggregator(classifier),
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		fingerprint: analysisFingerprint(cfg),
		config:      cfg,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.cache == nil && cfg.Cache.Enabled {
		var onEvent cache.EventFunc
		if p.metrics != nil {
			onEvent = p.metrics.ObserveCache
		}
		p.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL, onEvent)
	}

	return p
}

// AnalyzeResult contains the complete analysis result
type AnalyzeResult struct {
	Report *model.Report
	Cached bool // Report was served from the cache
}

// Analyze reads the file at path and analyzes it
func (p *Pipeline) Analyze(ctx context.Context, path string) (*AnalyzeResult, error) {
	loaded, err := p.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return p.analyze(ctx, loaded)
}

// AnalyzeReader analyzes everything readable from r; source labels the report
func (p *Pipeline) AnalyzeReader(ctx context.Context, source string, r io.Reader) (*AnalyzeResult, error) {
	loaded, err := p.loader.Read(source, r)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return p.analyze(ctx, loaded)
}

func (p *Pipeline) analyze(ctx context.Context, loaded *LoadResult) (*AnalyzeResult, error) {
	start := p.now()
	key := cache.Key(loaded.Data, p.fingerprint)

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		if report, ok := p.cached(key); ok {
			return &AnalyzeResult{Report: report, Cached: true}, nil
		}

		report, err := p.run(ctx, loaded)
		if err != nil {
			return nil, err
		}
		p.store(key, report)

		return &AnalyzeResult{Report: report}, nil
	})
	if err != nil {
		return nil, err
	}

	result := v.(*AnalyzeResult)

	// Identical content under another name: same numbers, this source
	if shared || result.Cached {
		report := *result.Report
		report.Source = loaded.Source
		report.Subject = loaded.Subject
		result = &AnalyzeResult{Report: &report, Cached: result.Cached}
	}

	if p.metrics != nil {
		p.metrics.ObserveDuration(p.now().Sub(start))
	}

	p.logger.Info().
		Str("source", loaded.Source).
		Int("rows", result.Report.Input.Rows).
		Int("cleaned", result.Report.Input.Cleaned).
		Int("rejected", result.Report.Input.Rejected).
		Bool("cached", result.Cached).
		Msg("analysis complete")

	return result, nil
}

// run executes every stage over the loaded input
func (p *Pipeline) run(ctx context.Context, loaded *LoadResult) (*model.Report, error) {
	// 1. Parse
	rows, err := p.parser.Parse(bytes.NewReader(loaded.Data))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Clean
	cleaned := p.cleaner.Clean(rows)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Aggregate
	report := &model.Report{
		RunID:   p.newID(),
		Subject: loaded.Subject,
		Source:  loaded.Source,
		Input: model.InputMeta{
			Bytes:         int64(len(loaded.Data)),
			SHA256:        loaded.SHA256,
			Rows:          len(rows),
			Cleaned:       len(cleaned.Reviews),
			Rejected:      len(cleaned.Rejections),
			RejectReasons: cleaned.RejectCounts(),
		},
		ByApp:      p.aggregator.ByApp(cleaned.Reviews),
		ByLanguage: p.aggregator.ByLanguage(cleaned.Reviews),
		Summary:    p.aggregator.Summary(cleaned.Reviews),
	}

	if p.config.Output.IncludeReviews {
		report.Reviews = cleaned.Reviews
	}
	if p.config.Output.IncludeRejections {
		report.Rejections = cleaned.Rejections
	}

	report.AnalyzedAt = p.now().UTC()

	if p.metrics != nil {
		p.metrics.ObserveInput(report.Input)
	}

	return report, nil
}

func (p *Pipeline) cached(key string) (*model.Report, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, found := p.cache.Get(key)
	if !found {
		return nil, false
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		p.logger.Warn().Err(err).Msg("discarding unreadable cache entry")
		_ = p.cache.Delete(key)
		return nil, false
	}
	return &report, true
}

func (p *Pipeline) store(key string, report *model.Report) {
	if p.cache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		p.logger.Warn().Err(err).Msg("cannot encode report for cache")
		return
	}
	if err := p.cache.Set(key, data, 0); err != nil {
		// A failed cache write never fails the analysis
		p.logger.Warn().Err(err).Msg("cache write failed")
	}
}

// analysisFingerprint captures every setting that changes report contents
func analysisFingerprint(cfg *model.Config) []byte {
	data, _ := json.Marshal(struct {
		Input             model.InputConfig
		Cleaning          model.CleaningConfig
		Sentiment         model.SentimentConfig
		IncludeReviews    bool
		IncludeRejections bool
	}{
		Input:             cfg.Input,
		Cleaning:          cfg.Cleaning,
		Sentiment:         cfg.Sentiment,
		IncludeReviews:    cfg.Output.IncludeReviews,
		IncludeRejections: cfg.Output.IncludeRejections,
	})
	return data
}

// RenderReport renders the report to the requested outputs and prints a
// short summary to w
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, w io.Writer) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug().Str("path", jsonPath).Msg("wrote JSON report")
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug().Str("path", mdPath).Msg("wrote Markdown report")
	}

	p.renderer.RenderSummary(w, report)

	return nil
}

// Renderer returns the renderer configured for this pipeline
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
