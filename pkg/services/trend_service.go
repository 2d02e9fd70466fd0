package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/inflection"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/repositories"
)

// Minimum group sizes per axis. Tag groupings need more support because the
// tag space is much sparser than styles or types.
const (
	minGroupSize    = 3
	minTagGroupSize = 5
)

// Popularity blend weights and the default conversion credit applied when a
// group has no conversion data at all.
const (
	popularitySizeWeight       = 0.4
	popularityAestheticWeight  = 0.4
	popularityConversionWeight = 0.2
	popularitySizeCap          = 20
	defaultConversionCredit    = 50.0
)

// Trajectory projection constants: decaying momentum and the popularity
// thresholds classifying market impact.
const (
	momentumDecay         = 0.8
	impactHighThreshold   = 80.0
	impactMediumThreshold = 60.0
	trajectorySampleCap   = 25
)

const trendCacheKeyPrefix = "design-engine:trends:"

// TrendService computes popularity/growth statistics over rolling windows.
// All computation is read-only; repeated calls over unchanged data are
// byte-for-byte reproducible.
type TrendService interface {
	// AnalyzeTrends computes qualifying trends across the style, type and
	// tag axes for components created within the window, sorted by
	// popularity descending.
	AnalyzeTrends(ctx context.Context, window time.Duration) ([]*models.TrendMetric, error)

	// DetectBreakingTrends re-runs analysis over half the standard window
	// and keeps trends whose growth rate is at least minGrowthRate and
	// whose sample size still clears the axis minimum.
	DetectBreakingTrends(ctx context.Context, minGrowthRate float64) ([]*models.TrendMetric, error)

	// PredictTrajectory projects next-period growth for a previously
	// computed trend id using a decaying-momentum assumption.
	PredictTrajectory(ctx context.Context, trendID string) (*models.TrendTrajectory, error)
}

type trendService struct {
	components repositories.ComponentRepository
	cache      *redis.Client // nil disables caching
	window     time.Duration
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time // injectable for tests
}

// NewTrendService creates a new trend analyzer. cache may be nil.
func NewTrendService(
	components repositories.ComponentRepository,
	cache *redis.Client,
	window time.Duration,
	cacheTTL time.Duration,
	logger *zap.Logger,
) TrendService {
	return &trendService{
		components: components,
		cache:      cache,
		window:     window,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("trends"),
		now:        time.Now,
	}
}

var _ TrendService = (*trendService)(nil)

// AnalyzeTrends computes qualifying trends across all three axes.
func (s *trendService) AnalyzeTrends(ctx context.Context, window time.Duration) ([]*models.TrendMetric, error) {
	if window <= 0 {
		window = s.window
	}

	if cached, ok := s.cacheGet(ctx, window); ok {
		return cached, nil
	}

	trends, err := s.analyze(ctx, window)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, window, trends)
	return trends, nil
}

func (s *trendService) analyze(ctx context.Context, window time.Duration) ([]*models.TrendMetric, error) {
	end := s.now()
	start := end.Add(-window)
	prevStart := start.Add(-window)

	current, err := s.components.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load current window: %w", err)
	}
	previous, err := s.components.ListCreatedBetween(ctx, prevStart, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous window: %w", err)
	}

	var trends []*models.TrendMetric
	axes := []struct {
		dimension string
		minSize   int
		keyOf     func(*models.Component) []string
	}{
		{models.TrendDimensionStyle, minGroupSize, func(c *models.Component) []string {
			if c.Style == "" {
				return nil
			}
			return []string{c.Style}
		}},
		{models.TrendDimensionType, minGroupSize, func(c *models.Component) []string {
			if c.ComponentType == "" {
				return nil
			}
			return []string{normalizeGroupName(c.ComponentType)}
		}},
		{models.TrendDimensionTag, minTagGroupSize, func(c *models.Component) []string {
			keys := make([]string, 0, len(c.Tags))
			for _, t := range c.Tags {
				keys = append(keys, normalizeGroupName(t))
			}
			return keys
		}},
	}

	// Batch jobs must be cancellable between (not within) axis computations.
	for _, axis := range axes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trends = append(trends, s.analyzeAxis(axis.dimension, axis.minSize, axis.keyOf, current, previous, start, end)...)
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].PopularityScore != trends[j].PopularityScore {
			return trends[i].PopularityScore > trends[j].PopularityScore
		}
		return trends[i].ID < trends[j].ID
	})

	return trends, nil
}

func (s *trendService) analyzeAxis(
	dimension string,
	minSize int,
	keyOf func(*models.Component) []string,
	current, previous []*models.Component,
	start, end time.Time,
) []*models.TrendMetric {
	groups := make(map[string][]*models.Component)
	for _, c := range current {
		for _, key := range keyOf(c) {
			groups[key] = append(groups[key], c)
		}
	}

	prevCounts := make(map[string]int)
	for _, c := range previous {
		for _, key := range keyOf(c) {
			prevCounts[key]++
		}
	}

	var trends []*models.TrendMetric
	for name, members := range groups {
		if len(members) < minSize {
			continue
		}
		trends = append(trends, buildTrend(dimension, name, members, prevCounts[name], start, end))
	}
	return trends
}

// buildTrend computes the metric for one qualifying group.
func buildTrend(dimension, name string, members []*models.Component, prevCount int, start, end time.Time) *models.TrendMetric {
	var (
		aestheticSum   float64
		conversionSum  float64
		conversionN    int
	)
	for _, c := range members {
		aestheticSum += float64(c.AestheticScore)
		if c.ConversionRate != nil {
			conversionSum += *c.ConversionRate
			conversionN++
		}
	}

	avgAesthetic := aestheticSum / float64(len(members))
	avgConversion := defaultConversionCredit
	if conversionN > 0 {
		avgConversion = conversionSum / float64(conversionN)
	}

	sizeContribution := float64(len(members))
	if sizeContribution > popularitySizeCap {
		sizeContribution = popularitySizeCap
	}
	popularity := popularitySizeWeight*(sizeContribution/popularitySizeCap)*100 +
		popularityAestheticWeight*avgAesthetic +
		popularityConversionWeight*avgConversion

	// Representative components: best aesthetics first, ids break ties.
	ranked := append([]*models.Component(nil), members...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AestheticScore != ranked[j].AestheticScore {
			return ranked[i].AestheticScore > ranked[j].AestheticScore
		}
		return ranked[i].ID.String() < ranked[j].ID.String()
	})
	topN := 5
	if len(ranked) < topN {
		topN = len(ranked)
	}
	trend := &models.TrendMetric{
		ID:                models.TrendID(dimension, name),
		Dimension:         dimension,
		Name:              name,
		PopularityScore:   popularity,
		GrowthRate:        growthRate(prevCount, len(members)),
		ComponentCount:    len(members),
		AvgAestheticScore: avgAesthetic,
		PatternTags:       coOccurringTags(members, name),
		WindowStart:       start,
		WindowEnd:         end,
	}
	for _, c := range ranked[:topN] {
		trend.TopComponentIDs = append(trend.TopComponentIDs, c.ID)
	}
	return trend
}

// growthRate is the percentage change between the previous and current
// window counts. 0 -> 0 is flat; 0 -> anything positive reports 100%.
func growthRate(prev, current int) float64 {
	if prev == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (float64(current) - float64(prev)) / float64(prev) * 100
}

// coOccurringTags returns the most common tags across group members,
// excluding the group's own name, capped at five.
func coOccurringTags(members []*models.Component, exclude string) []string {
	counts := make(map[string]int)
	for _, c := range members {
		for _, t := range c.Tags {
			if normalized := normalizeGroupName(t); normalized != exclude {
				counts[normalized]++
			}
		}
	}

	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return tags
}

// normalizeGroupName lowercases and singularizes a group key so "Buttons"
// and "button" land in the same bucket.
func normalizeGroupName(name string) string {
	return inflection.Singular(strings.ToLower(strings.TrimSpace(name)))
}

// DetectBreakingTrends re-runs analysis over half the standard window.
// Requiring the sample minimum again avoids mistaking small-sample noise for
// a breakout.
func (s *trendService) DetectBreakingTrends(ctx context.Context, minGrowthRate float64) ([]*models.TrendMetric, error) {
	trends, err := s.analyze(ctx, s.window/2)
	if err != nil {
		return nil, err
	}

	var breaking []*models.TrendMetric
	for _, t := range trends {
		if t.GrowthRate >= minGrowthRate {
			breaking = append(breaking, t)
		}
	}
	return breaking, nil
}

// PredictTrajectory projects next-period growth for a known trend.
func (s *trendService) PredictTrajectory(ctx context.Context, trendID string) (*models.TrendTrajectory, error) {
	trends, err := s.AnalyzeTrends(ctx, s.window)
	if err != nil {
		return nil, err
	}

	var trend *models.TrendMetric
	for _, t := range trends {
		if t.ID == trendID {
			trend = t
			break
		}
	}
	if trend == nil {
		return nil, fmt.Errorf("trend %q: %w", trendID, apperrors.ErrNotFound)
	}

	// Confidence grows with sample size and caps out at trajectorySampleCap
	// components.
	confidence := float64(trend.ComponentCount) / trajectorySampleCap * 100
	if confidence > 100 {
		confidence = 100
	}

	impact := models.MarketImpactLow
	switch {
	case trend.PopularityScore >= impactHighThreshold:
		impact = models.MarketImpactHigh
	case trend.PopularityScore >= impactMediumThreshold:
		impact = models.MarketImpactMedium
	}

	return &models.TrendTrajectory{
		TrendID:             trend.ID,
		CurrentGrowthRate:   trend.GrowthRate,
		ProjectedGrowthRate: trend.GrowthRate * momentumDecay,
		Confidence:          confidence,
		MarketImpact:        impact,
	}, nil
}

// cacheGet returns a cached snapshot for the window, if caching is enabled
// and the entry is fresh. Any cache error falls through to live computation.
func (s *trendService) cacheGet(ctx context.Context, window time.Duration) ([]*models.TrendMetric, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, cacheKey(window)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("trend cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var trends []*models.TrendMetric
	if err := json.Unmarshal(data, &trends); err != nil {
		s.logger.Debug("trend cache entry invalid", zap.Error(err))
		return nil, false
	}
	return trends, true
}

func (s *trendService) cacheSet(ctx context.Context, window time.Duration, trends []*models.TrendMetric) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(trends)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(window), data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("trend cache write failed", zap.Error(err))
	}
}

func cacheKey(window time.Duration) string {
	return fmt.Sprintf("%s%d", trendCacheKeyPrefix, int64(window.Seconds()))
}
