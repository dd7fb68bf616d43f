package weather

import (
	"context"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/service"

	"go.uber.org/zap"
)

// Fetcher 逐时观测来源
type Fetcher interface {
	FetchHourly(ctx context.Context, date models.Date) ([]HourlyObservation, error)
}

// Reconciler 找到或创建当天页面并写入
type Reconciler interface {
	Reconcile(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error)
}

// Service 天气同步服务
type Service struct {
	fetcher      Fetcher
	reconciler   Reconciler
	dateProperty string
	logger       *zap.Logger
}

// NewService 创建天气同步服务
func NewService(fetcher Fetcher, reconciler Reconciler, dateProperty string, logger *zap.Logger) *Service {
	return &Service{
		fetcher:      fetcher,
		reconciler:   reconciler,
		dateProperty: dateProperty,
		logger:       logger,
	}
}

// Collect 获取并汇总一天的天气
func (s *Service) Collect(ctx context.Context, date models.Date) (*Summary, error) {
	obs, err := s.fetcher.FetchHourly(ctx, date)
	if err != nil {
		return nil, models.NewStageError(date, models.StageFetch, err)
	}
	summary := Summarize(date, obs)
	return &summary, nil
}

// ProcessDate 获取天气并写入当天页面
// persist 为 false 时只汇总并记录日志
func (s *Service) ProcessDate(ctx context.Context, date models.Date, persist bool) models.ProcessResult {
	summary, err := s.Collect(ctx, date)
	if err != nil {
		return s.fail(date, err)
	}

	s.logger.Info("Weather summary",
		zap.String("date", date.String()),
		zap.String("weather", summary.Weather),
		zap.String("temperature", summary.Temperature),
		zap.String("pressure", summary.Pressure),
		zap.String("sunshine", summary.Sunshine),
	)
	if !persist {
		return models.ProcessResult{Date: date, Status: models.StatusSuccess}
	}

	rec, err := s.reconciler.Reconcile(ctx, models.ReconciliationTarget{
		Date:       date.String(),
		Properties: summary.Properties(s.dateProperty),
	})
	if err != nil {
		return s.fail(date, models.NewStageError(date, models.StageReconcile, err))
	}
	return models.ProcessResult{Date: date, Status: models.StatusSuccess, Reconciliation: rec}
}

// ProcessRange 顺序处理日期范围，日期之间等待 delay
func (s *Service) ProcessRange(ctx context.Context, start, end models.Date, delay time.Duration, persist bool) *service.RangeReport {
	return service.RunRange(ctx, start, end, delay, func(ctx context.Context, date models.Date) models.ProcessResult {
		return s.ProcessDate(ctx, date, persist)
	}, s.logger)
}

func (s *Service) fail(date models.Date, err error) models.ProcessResult {
	s.logger.Error("Failed to process weather",
		zap.String("date", date.String()),
		zap.Error(err),
	)
	return models.ProcessResult{Date: date, Status: models.StatusError, Err: err}
}
