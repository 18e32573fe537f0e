package app

import (
	"context"
	"time"

	"keystats/domain/core"
	"keystats/domain/series"
	"keystats/domain/stats"
	"keystats/domain/window"
	"keystats/internal"
	"keystats/internal/errors"
	"keystats/internal/metrics"
	"keystats/models"
	"keystats/ports"

	"golang.org/x/sync/errgroup"
)

// AnalyzerOptions tunes the key analyzer
type AnalyzerOptions struct {
	ResultTTL          time.Duration
	StoreTimeout       time.Duration
	RecentLimit        int
	HighScoreLimit     int
	QualifiedThreshold float64
}

// DefaultAnalyzerOptions returns the production settings
func DefaultAnalyzerOptions() AnalyzerOptions {
	return AnalyzerOptions{
		ResultTTL:          300 * time.Second,
		StoreTimeout:       10 * time.Second,
		RecentLimit:        10,
		HighScoreLimit:     10,
		QualifiedThreshold: models.QualifiedScoreThreshold,
	}
}

func (o AnalyzerOptions) withDefaults() AnalyzerOptions {
	d := DefaultAnalyzerOptions()
	if o.ResultTTL <= 0 {
		o.ResultTTL = d.ResultTTL
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = d.StoreTimeout
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = d.RecentLimit
	}
	if o.HighScoreLimit <= 0 {
		o.HighScoreLimit = d.HighScoreLimit
	}
	if o.QualifiedThreshold == 0 {
		o.QualifiedThreshold = d.QualifiedThreshold
	}
	return o
}

// KeyAnalyzerService answers the three dashboard queries behind a
// read-through cache
type KeyAnalyzerService struct {
	store    ports.KeyRecordStore
	cache    ports.Cache
	resolver *window.Resolver
	logger   *internal.Logger
	opts     AnalyzerOptions
	now      func() time.Time
}

// NewKeyAnalyzerService creates the analyzer
func NewKeyAnalyzerService(store ports.KeyRecordStore, cache ports.Cache, resolver *window.Resolver, logger *internal.Logger, opts AnalyzerOptions) *KeyAnalyzerService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &KeyAnalyzerService{
		store:    store,
		cache:    cache,
		resolver: resolver,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
	s.now = func() time.Time { return core.NaiveNow(resolver.Location()) }
	return s
}

// GetRecentKeys returns the newest records of the range
func (s *KeyAnalyzerService) GetRecentKeys(ctx context.Context, start, end *int64) ([]models.RecordView, error) {
	rng, err := s.resolve(start, end)
	if err != nil {
		return nil, err
	}
	key := RecentKeysCacheKey(rng)

	var cached []models.RecordView
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	began := time.Now()
	rows, err := s.query(ctx, "recent_keys", func(ctx context.Context) ([]models.KeyRecord, error) {
		return s.store.FindInRange(ctx, rng, ports.OrderNewest, s.opts.RecentLimit)
	})
	if err != nil {
		return nil, err
	}

	views := s.views(rows)
	s.cache.Set(ctx, key, views, s.opts.ResultTTL)
	s.observe("recent_keys", began)
	return views, nil
}

// GetHighScoreKeys returns the best-scoring qualified records of the range
func (s *KeyAnalyzerService) GetHighScoreKeys(ctx context.Context, start, end *int64) ([]models.RecordView, error) {
	rng, err := s.resolve(start, end)
	if err != nil {
		return nil, err
	}
	key := HighScoreKeysCacheKey(rng)

	var cached []models.RecordView
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	began := time.Now()
	rows, err := s.query(ctx, "high_score_keys", func(ctx context.Context) ([]models.KeyRecord, error) {
		return s.store.FindAboveScore(ctx, rng, s.opts.QualifiedThreshold, ports.OrderHighestScore, s.opts.HighScoreLimit)
	})
	if err != nil {
		return nil, err
	}

	views := s.views(rows)
	s.cache.Set(ctx, key, views, s.opts.ResultTTL)
	s.observe("high_score_keys", began)
	return views, nil
}

// GetStatistics computes the full statistics snapshot of the range with
// trends against the preceding window of equal length
func (s *KeyAnalyzerService) GetStatistics(ctx context.Context, start, end *int64) (*models.StatisticsResult, error) {
	rng, err := s.resolve(start, end)
	if err != nil {
		return nil, err
	}
	key := StatisticsCacheKey(rng)

	cached := &models.StatisticsResult{}
	if s.cache.Get(ctx, key, cached) {
		return cached, nil
	}

	began := time.Now()
	current, previous, err := s.fetchWindows(ctx, rng)
	if err != nil {
		return nil, err
	}

	var result *models.StatisticsResult
	if len(current) == 0 {
		s.logger.Debug("No records in %s, returning empty statistics", rng)
		result = models.EmptyStatistics()
	} else {
		result = s.compute(current, previous, rng)
	}

	s.cache.Set(ctx, key, result, s.opts.ResultTTL)
	s.observe("statistics", began)
	return result, nil
}

func (s *KeyAnalyzerService) compute(current, previous []models.KeyRecord, rng window.Range) *models.StatisticsResult {
	c := &stats.Coercions{}
	summary := stats.CompareWindows(stats.Summarize(current, c), stats.Summarize(previous, nil))

	result := &models.StatisticsResult{
		ScoreDistribution: stats.ScoreDistribution(current, c),
		CorrelationMatrix: stats.CorrelationMatrix(current, c),
		SummaryStats: map[string]models.ScoreSummary{
			models.ColumnScore: summary,
		},
		ScoreTypesStats: stats.ScoreTypeStats(current, c),
		Trends:          series.Bucketize(current, rng),
		Diagnostics:     c.Diagnostics(),
	}

	if c.Total() > 0 {
		s.logger.Debug("Statistics for %s coerced %d undefined and %d failed values", rng, c.Undefined, c.Faults)
		metrics.CoercedValuesTotal.WithLabelValues("undefined").Add(float64(c.Undefined))
		metrics.CoercedValuesTotal.WithLabelValues("fault").Add(float64(c.Faults))
	}
	return result
}

// fetchWindows loads the current and comparison windows concurrently. The
// unbounded range is its own comparison window and is read once.
func (s *KeyAnalyzerService) fetchWindows(ctx context.Context, rng window.Range) ([]models.KeyRecord, []models.KeyRecord, error) {
	if rng.IsUnbounded() {
		rows, err := s.query(ctx, "statistics", func(ctx context.Context) ([]models.KeyRecord, error) {
			return s.store.FindInRange(ctx, rng, ports.OrderOldest, 0)
		})
		return rows, rows, err
	}

	var current, previous []models.KeyRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.query(gctx, "statistics", func(ctx context.Context) ([]models.KeyRecord, error) {
			return s.store.FindInRange(ctx, rng, ports.OrderOldest, 0)
		})
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.query(gctx, "statistics_previous", func(ctx context.Context) ([]models.KeyRecord, error) {
			return s.store.FindInRange(ctx, rng.Previous(), ports.OrderOldest, 0)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}

func (s *KeyAnalyzerService) resolve(start, end *int64) (window.Range, error) {
	rng, err := s.resolver.Resolve(start, end)
	if err != nil {
		return window.Range{}, errors.InvalidRange(err)
	}
	return rng, nil
}

// query runs one store read under the store timeout and maps failures to
// CodeStoreUnavailable
func (s *KeyAnalyzerService) query(ctx context.Context, op string, fn func(context.Context) ([]models.KeyRecord, error)) ([]models.KeyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	rows, err := fn(ctx)
	if err != nil {
		s.logger.Error("Record store query %s failed: %v", op, err)
		return nil, errors.StoreUnavailable(op, err)
	}
	return rows, nil
}

func (s *KeyAnalyzerService) views(rows []models.KeyRecord) []models.RecordView {
	views := make([]models.RecordView, len(rows))
	for i, r := range rows {
		views[i] = models.NewRecordView(r, s.now)
	}
	return views
}

func (s *KeyAnalyzerService) observe(op string, began time.Time) {
	metrics.AnalyzerComputationsTotal.WithLabelValues(op).Inc()
	metrics.AnalyzerDurationSeconds.WithLabelValues(op).Observe(time.Since(began).Seconds())
}
