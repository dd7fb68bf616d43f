package aggregator

import (
	"math"
	"sort"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// Reduction 聚合方式
type Reduction string

const (
	ReduceSum     Reduction = "sum"
	ReduceAverage Reduction = "average"
	ReduceMax     Reduction = "max"
	ReduceMin     Reduction = "min"
	ReduceLatest  Reduction = "latest"
	ReduceCount   Reduction = "count"
)

// Reduce 将一组采样点归约为单个值
// 空输入对所有聚合方式都返回 0
func Reduce(samples []models.Sample, kind Reduction) float64 {
	if len(samples) == 0 {
		return 0
	}

	switch kind {
	case ReduceSum, ReduceAverage:
		sum := 0.0
		for _, s := range samples {
			sum += s.Value
		}
		if kind == ReduceAverage {
			return sum / float64(len(samples))
		}
		return sum
	case ReduceMax:
		v := samples[0].Value
		for _, s := range samples[1:] {
			v = math.Max(v, s.Value)
		}
		return v
	case ReduceMin:
		v := samples[0].Value
		for _, s := range samples[1:] {
			v = math.Min(v, s.Value)
		}
		return v
	case ReduceLatest:
		sorted := make([]models.Sample, len(samples))
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})
		return sorted[len(sorted)-1].Value
	case ReduceCount:
		return float64(len(samples))
	}
	return 0
}

// PeakMax 最大值，汇总点优先使用桶内最大值；空输入返回 0
func PeakMax(samples []models.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	v := math.Inf(-1)
	for _, s := range samples {
		if s.Max != nil {
			v = math.Max(v, *s.Max)
		} else {
			v = math.Max(v, s.Value)
		}
	}
	return v
}

// PeakMin 最小值，汇总点优先使用桶内最小值；空输入返回 0
func PeakMin(samples []models.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	v := math.Inf(1)
	for _, s := range samples {
		if s.Min != nil {
			v = math.Min(v, *s.Min)
		} else {
			v = math.Min(v, s.Value)
		}
	}
	return v
}

// MetricSpec 单个连续指标的取数和归约规则
type MetricSpec struct {
	Name      string
	DataType  string
	Reduction Reduction
	// 单位换算系数，0 视为 1
	Scale float64
	// 保留小数位
	Decimals int
}

// Apply 归约、换算单位并四舍五入
func (m MetricSpec) Apply(samples []models.Sample) float64 {
	v := Reduce(samples, m.Reduction)
	if m.Scale != 0 {
		v *= m.Scale
	}
	return Round(v, m.Decimals)
}

// Round 按小数位四舍五入（远离零）
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
