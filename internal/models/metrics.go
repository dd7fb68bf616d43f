package models

// DailyMetrics 单日健康指标
// 连续指标缺失时为 0；体重/体脂缺失时为 nil
type DailyMetrics struct {
	Date Date

	DistanceKm             float64
	Steps                  int
	CaloriesKcal           float64
	ActivityIntensityScore int

	AvgHeartRateBpm     float64
	MaxHeartRateBpm     float64
	MinHeartRateBpm     float64
	RestingHeartRateBpm float64

	AvgOxygenSaturationPct float64

	LatestWeightKg   *float64
	LatestBodyFatPct *float64

	TotalSleepMinutes      int
	MeditationSessionCount int
	TotalMeditationMinutes int

	// 活动名称 -> 分钟数（不含睡眠，不含 0 分钟）
	ActivitySummary map[string]int
}

// NewDailyMetrics 创建空指标
func NewDailyMetrics(date Date) *DailyMetrics {
	return &DailyMetrics{Date: date, ActivitySummary: map[string]int{}}
}

// Float64Ptr helper
func Float64Ptr(v float64) *float64 {
	return &v
}
