package service

import (
	"context"
	"testing"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okProcessor(seen *[]models.Date) DateProcessor {
	return func(ctx context.Context, date models.Date) models.ProcessResult {
		*seen = append(*seen, date)
		return models.ProcessResult{Date: date, Status: models.StatusSuccess}
	}
}

func TestRunRange_SequentialWithDelay(t *testing.T) {
	var seen []models.Date
	start := time.Now()
	report := RunRange(context.Background(), models.MustParseDate("2024-03-01"), models.MustParseDate("2024-03-03"), 20*time.Millisecond, okProcessor(&seen), zap.NewNop())

	assert.True(t, report.OverallSuccess())
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, "2024-03-03", seen[2].String())
	// 三个日期之间等待两次
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRunRange_CancelBetweenDates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen []models.Date
	process := func(ctx context.Context, date models.Date) models.ProcessResult {
		seen = append(seen, date)
		cancel()
		return models.ProcessResult{Date: date, Status: models.StatusSuccess}
	}

	report := RunRange(ctx, models.MustParseDate("2024-03-01"), models.MustParseDate("2024-03-05"), time.Hour, process, zap.NewNop())
	assert.Len(t, seen, 1)
	assert.Equal(t, 4, report.Skipped)
	assert.False(t, report.OverallSuccess())
}

func TestRunRange_EmptyWhenStartAfterEnd(t *testing.T) {
	var seen []models.Date
	report := RunRange(context.Background(), models.MustParseDate("2024-03-05"), models.MustParseDate("2024-03-01"), 0, okProcessor(&seen), zap.NewNop())
	assert.Empty(t, seen)
	assert.True(t, report.OverallSuccess())
}
