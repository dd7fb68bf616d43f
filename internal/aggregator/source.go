package aggregator

import (
	"context"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// FitnessSource 健康数据源
// 认证失败必须返回包装了 models.ErrUnauthorized 的错误
type FitnessSource interface {
	// QueryAggregate 查询窗口内某个数据类型的采样点
	QueryAggregate(ctx context.Context, window models.TimeWindow, dataType string) ([]models.Sample, error)
	// QuerySessions 查询窗口内的会话，activityType 为 nil 时不过滤
	QuerySessions(ctx context.Context, window models.TimeWindow, activityType *int) ([]models.Session, error)
}

// Google Fit 数据类型
const (
	DataTypeDistance     = "com.google.distance.delta"
	DataTypeSteps        = "com.google.step_count.delta"
	DataTypeCalories     = "com.google.calories.expended"
	DataTypeHeartMinutes = "com.google.heart_minutes"
	DataTypeHeartRate    = "com.google.heart_rate.bpm"
	DataTypeOxygen       = "com.google.oxygen_saturation"
	DataTypeWeight       = "com.google.weight"
	DataTypeBodyFat      = "com.google.body.fat.percentage"
)

// 连续指标的取数规则
var (
	DistanceSpec  = MetricSpec{Name: "distance", DataType: DataTypeDistance, Reduction: ReduceSum, Scale: 0.001, Decimals: 1}
	StepsSpec     = MetricSpec{Name: "steps", DataType: DataTypeSteps, Reduction: ReduceSum, Decimals: 0}
	CaloriesSpec  = MetricSpec{Name: "calories", DataType: DataTypeCalories, Reduction: ReduceSum, Decimals: 1}
	IntensitySpec = MetricSpec{Name: "heart_minutes", DataType: DataTypeHeartMinutes, Reduction: ReduceSum, Decimals: 0}
	OxygenSpec    = MetricSpec{Name: "oxygen", DataType: DataTypeOxygen, Reduction: ReduceAverage, Decimals: 1}
	WeightSpec    = MetricSpec{Name: "weight", DataType: DataTypeWeight, Reduction: ReduceLatest, Decimals: 1}
	BodyFatSpec   = MetricSpec{Name: "body_fat", DataType: DataTypeBodyFat, Reduction: ReduceLatest, Decimals: 1}
)
