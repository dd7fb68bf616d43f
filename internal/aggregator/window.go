package aggregator

import (
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// BuildWindow 构建指定日期在本地时区下的一天窗口
// Start = 00:00:00.000，End = 23:59:59.999
func BuildWindow(date models.Date, loc *time.Location) (models.TimeWindow, error) {
	if loc == nil {
		return models.TimeWindow{}, fmt.Errorf("failed to build window for %s: nil location", date)
	}
	if date.IsZero() {
		return models.TimeWindow{}, fmt.Errorf("failed to build window: %w", models.ErrInvalidDate)
	}
	start := date.In(loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return models.TimeWindow{Start: start, End: end}, nil
}
