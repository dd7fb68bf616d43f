package main

import (
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// dateOrDefault 解析可选的日期参数，未提供时取今天向前 daysAgo 天
func dateOrDefault(args []string, i int, now time.Time, loc *time.Location, daysAgo int) (models.Date, error) {
	if len(args) > i && args[i] != "" {
		return models.ParseDate(args[i])
	}
	return models.DateOf(now, loc).AddDays(-daysAgo), nil
}

// dateRange 解析 <start> [end]，end 缺省时等于 start
func dateRange(args []string, start models.Date) (models.Date, models.Date, error) {
	end := start
	if len(args) > 1 && args[1] != "" {
		d, err := models.ParseDate(args[1])
		if err != nil {
			return models.Date{}, models.Date{}, err
		}
		end = d
	}
	if end.Before(start) {
		return models.Date{}, models.Date{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return start, end, nil
}
