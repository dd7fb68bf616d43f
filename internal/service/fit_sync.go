package service

import (
	"context"
	"errors"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/notion"

	"go.uber.org/zap"
)

// Authorizer 数据获取前确保凭证可用（必要时刷新并持久化）
type Authorizer interface {
	Token(ctx context.Context) (string, error)
}

// MetricsAggregator 单日指标聚合
type MetricsAggregator interface {
	Aggregate(ctx context.Context, date models.Date) (*models.DailyMetrics, error)
}

// DocumentReconciler 文档对账
type DocumentReconciler interface {
	Reconcile(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error)
	UpdateExisting(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error)
	UpdateDocument(ctx context.Context, id string, target models.ReconciliationTarget) (*models.ReconciliationResult, error)
}

// FitSyncOptions 健康数据同步参数
type FitSyncOptions struct {
	DateProperty       string
	ExtendedProperties bool
}

// FitSyncService 健康数据同步服务: 凭证 -> 聚合 -> 对账
type FitSyncService struct {
	auth       Authorizer
	aggregator MetricsAggregator
	reconciler DocumentReconciler
	opts       FitSyncOptions
	logger     *zap.Logger
}

// NewFitSyncService 创建健康数据同步服务
func NewFitSyncService(auth Authorizer, agg MetricsAggregator, rec DocumentReconciler, opts FitSyncOptions, logger *zap.Logger) *FitSyncService {
	return &FitSyncService{
		auth:       auth,
		aggregator: agg,
		reconciler: rec,
		opts:       opts,
		logger:     logger,
	}
}

// ProcessDate 处理单个日期
func (s *FitSyncService) ProcessDate(ctx context.Context, date models.Date) models.ProcessResult {
	metrics, err := s.collect(ctx, date)
	if err != nil {
		return s.fail(date, metrics, err)
	}

	rec, err := s.reconciler.Reconcile(ctx, s.target(metrics))
	if err != nil {
		return s.fail(date, metrics, models.NewStageError(date, models.StageReconcile, err))
	}

	s.logger.Info("Processed date",
		zap.String("date", date.String()),
		zap.String("action", string(rec.Action)),
		zap.String("page_id", rec.DocumentID),
	)
	return models.ProcessResult{Date: date, Status: models.StatusSuccess, Metrics: metrics, Reconciliation: rec}
}

// ProcessPage 处理指定页面（Webhook 触发时页面已知）
func (s *FitSyncService) ProcessPage(ctx context.Context, pageID string, date models.Date) models.ProcessResult {
	metrics, err := s.collect(ctx, date)
	if err != nil {
		return s.fail(date, metrics, err)
	}

	rec, err := s.reconciler.UpdateDocument(ctx, pageID, s.target(metrics))
	if err != nil {
		return s.fail(date, metrics, models.NewStageError(date, models.StageReconcile, err))
	}
	return models.ProcessResult{Date: date, Status: models.StatusSuccess, Metrics: metrics, Reconciliation: rec}
}

// ProcessRange 顺序处理日期范围
func (s *FitSyncService) ProcessRange(ctx context.Context, start, end models.Date, delay time.Duration) *RangeReport {
	return RunRange(ctx, start, end, delay, s.ProcessDate, s.logger)
}

func (s *FitSyncService) collect(ctx context.Context, date models.Date) (*models.DailyMetrics, error) {
	if _, err := s.auth.Token(ctx); err != nil {
		return nil, models.NewStageError(date, models.StageAuth, err)
	}
	metrics, err := s.aggregator.Aggregate(ctx, date)
	if err != nil {
		var se *models.StageError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, models.NewStageError(date, models.StageFetch, err)
	}
	return metrics, nil
}

func (s *FitSyncService) target(metrics *models.DailyMetrics) models.ReconciliationTarget {
	return models.ReconciliationTarget{
		Date:       metrics.Date.String(),
		Properties: notion.FitnessProperties(metrics, s.opts.DateProperty, s.opts.ExtendedProperties),
	}
}

func (s *FitSyncService) fail(date models.Date, metrics *models.DailyMetrics, err error) models.ProcessResult {
	s.logger.Error("Failed to process date",
		zap.String("date", date.String()),
		zap.Error(err),
	)
	return models.ProcessResult{Date: date, Status: models.StatusError, Metrics: metrics, Err: err}
}
