package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DailyAggregator 单日健康指标聚合器
type DailyAggregator struct {
	source      FitnessSource
	location    *time.Location
	dedup       *Deduplicator
	concurrency int
	logger      *zap.Logger
}

// NewDailyAggregator 创建单日聚合器
// concurrency <= 1 时各子查询顺序执行
func NewDailyAggregator(
	source FitnessSource,
	location *time.Location,
	authoritativeSources []string,
	concurrency int,
	logger *zap.Logger,
) *DailyAggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DailyAggregator{
		source:      source,
		location:    location,
		dedup:       NewDeduplicator(authoritativeSources),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Aggregate 聚合指定日期的健康指标
// 输入：
//   - 连续指标：每个数据类型一次聚合查询
//   - 会话：睡眠(72)、冥想(45)、不过滤的全部会话
//
// 每个子查询失败只记录日志，对应指标保持 0 / nil。
// 只有窗口构建失败和认证失败会中止整个聚合。
func (a *DailyAggregator) Aggregate(ctx context.Context, date models.Date) (*models.DailyMetrics, error) {
	window, err := BuildWindow(date, a.location)
	if err != nil {
		return nil, models.NewStageError(date, models.StageWindow, err)
	}

	metrics := models.NewDailyMetrics(date)

	var (
		distance, steps, calories, intensity, oxygen []models.Sample
		heartRate, weight, bodyFat                   []models.Sample
		sleep, meditation, allSessions               []models.Session
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	samples := []struct {
		spec MetricSpec
		dst  *[]models.Sample
	}{
		{DistanceSpec, &distance},
		{StepsSpec, &steps},
		{CaloriesSpec, &calories},
		{IntensitySpec, &intensity},
		{MetricSpec{Name: "heart_rate", DataType: DataTypeHeartRate}, &heartRate},
		{OxygenSpec, &oxygen},
		{WeightSpec, &weight},
		{BodyFatSpec, &bodyFat},
	}
	for _, s := range samples {
		s := s
		g.Go(func() error {
			out, err := a.source.QueryAggregate(gctx, window, s.spec.DataType)
			if err != nil {
				return a.isolate(date, s.spec.Name, err)
			}
			*s.dst = out
			return nil
		})
	}

	sleepType, meditationType := ActivitySleep, ActivityMeditation
	sessions := []struct {
		name   string
		filter *int
		dst    *[]models.Session
	}{
		{"sleep_sessions", &sleepType, &sleep},
		{"meditation_sessions", &meditationType, &meditation},
		{"activity_sessions", nil, &allSessions},
	}
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			out, err := a.source.QuerySessions(gctx, window, s.filter)
			if err != nil {
				return a.isolate(date, s.name, err)
			}
			*s.dst = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, models.NewStageError(date, models.StageAuth, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, models.NewStageError(date, models.StageFetch, err)
	}

	metrics.DistanceKm = DistanceSpec.Apply(distance)
	metrics.Steps = int(StepsSpec.Apply(steps))
	metrics.CaloriesKcal = CaloriesSpec.Apply(calories)
	metrics.ActivityIntensityScore = int(IntensitySpec.Apply(intensity))

	metrics.AvgHeartRateBpm = Round(Reduce(heartRate, ReduceAverage), 1)
	metrics.MaxHeartRateBpm = Round(PeakMax(heartRate), 1)
	metrics.MinHeartRateBpm = Round(PeakMin(heartRate), 1)
	metrics.RestingHeartRateBpm = RestingRate(sampleValues(heartRate))

	metrics.AvgOxygenSaturationPct = OxygenSpec.Apply(oxygen)

	if len(weight) > 0 {
		metrics.LatestWeightKg = models.Float64Ptr(WeightSpec.Apply(weight))
	}
	if len(bodyFat) > 0 {
		metrics.LatestBodyFatPct = models.Float64Ptr(BodyFatSpec.Apply(bodyFat))
	}

	// 多个应用同时记录睡眠/冥想时按同样的规则去重
	metrics.TotalSleepMinutes = TotalMinutes(a.dedup.Deduplicate(sleep).Accepted)
	acceptedMeditation := a.dedup.Deduplicate(meditation).Accepted
	metrics.MeditationSessionCount = len(acceptedMeditation)
	metrics.TotalMeditationMinutes = TotalMinutes(acceptedMeditation)

	dedup := a.dedup.Deduplicate(allSessions)
	metrics.ActivitySummary = dedup.Summary
	if len(dedup.Discarded) > 0 {
		a.logger.Debug("Discarded overlapping sessions",
			zap.String("date", date.String()),
			zap.Int("accepted", len(dedup.Accepted)),
			zap.Int("discarded", len(dedup.Discarded)),
		)
	}

	a.logger.Info("Aggregated daily metrics",
		zap.String("date", date.String()),
		zap.Int("steps", metrics.Steps),
		zap.Float64("distance_km", metrics.DistanceKm),
		zap.Int("sleep_minutes", metrics.TotalSleepMinutes),
		zap.Int("activity_count", len(metrics.ActivitySummary)),
	)

	return metrics, nil
}

// isolate 子查询失败处理: 认证错误向上返回，其余记录后吞掉
func (a *DailyAggregator) isolate(date models.Date, metric string, err error) error {
	if errors.Is(err, models.ErrUnauthorized) {
		return fmt.Errorf("failed to fetch %s: %w", metric, err)
	}
	a.logger.Warn("Failed to fetch metric, using default",
		zap.String("date", date.String()),
		zap.String("metric", metric),
		zap.Error(err),
	)
	return nil
}

func sampleValues(samples []models.Sample) []float64 {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}
