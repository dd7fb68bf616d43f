package service

import (
	"context"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateProcessor 处理单个日期
type DateProcessor func(ctx context.Context, date models.Date) models.ProcessResult

// RangeReport 批量处理结果
type RangeReport struct {
	RunID     string
	Results   []models.ProcessResult
	Succeeded int
	Failed    int
	// 因取消而未处理的日期数
	Skipped int
}

// OverallSuccess 全部日期都处理成功
func (r *RangeReport) OverallSuccess() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// FailedDates 失败的日期
func (r *RangeReport) FailedDates() []models.Date {
	var dates []models.Date
	for _, res := range r.Results {
		if res.Status != models.StatusSuccess {
			dates = append(dates, res.Date)
		}
	}
	return dates
}

// RunRange 按顺序处理 [start, end] 内的每个日期
// 日期之间等待 delay（最后一个日期之后不等待）；ctx 取消后不再处理剩余日期。
// 单个日期失败不影响后续日期。
func RunRange(ctx context.Context, start, end models.Date, delay time.Duration, process DateProcessor, logger *zap.Logger) *RangeReport {
	dates := models.DatesBetween(start, end)
	report := &RangeReport{RunID: uuid.NewString()}
	logger = logger.With(zap.String("run_id", report.RunID))

	logger.Info("Starting range processing",
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.Int("days", len(dates)),
		zap.Duration("delay", delay),
	)

	for i, date := range dates {
		if ctx.Err() != nil {
			report.Skipped = len(dates) - i
			break
		}

		result := process(ctx, date)
		report.Results = append(report.Results, result)
		if result.Status == models.StatusSuccess {
			report.Succeeded++
		} else {
			report.Failed++
			logger.Warn("Date processing failed",
				zap.String("date", date.String()),
				zap.String("stage", string(result.Stage())),
				zap.Error(result.Err),
			)
		}

		if i == len(dates)-1 || delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			report.Skipped = len(dates) - i - 1
		case <-timer.C:
		}
		if report.Skipped > 0 {
			break
		}
	}

	logger.Info("Range processing finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	return report
}
