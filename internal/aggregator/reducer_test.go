package aggregator

import (
	"testing"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/stretchr/testify/assert"
)

func samplesOf(values ...float64) []models.Sample {
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	out := make([]models.Sample, len(values))
	for i, v := range values {
		out[i] = models.Sample{Timestamp: base.Add(time.Duration(i) * time.Minute), Value: v}
	}
	return out
}

func TestReduce_EmptyReturnsZero(t *testing.T) {
	for _, kind := range []Reduction{ReduceSum, ReduceAverage, ReduceMax, ReduceMin, ReduceLatest, ReduceCount} {
		assert.Equal(t, 0.0, Reduce(nil, kind), string(kind))
	}
}

func TestReduce_Kinds(t *testing.T) {
	s := samplesOf(3, 9, 1, 7)
	assert.Equal(t, 20.0, Reduce(s, ReduceSum))
	assert.Equal(t, 5.0, Reduce(s, ReduceAverage))
	assert.Equal(t, 9.0, Reduce(s, ReduceMax))
	assert.Equal(t, 1.0, Reduce(s, ReduceMin))
	assert.Equal(t, 7.0, Reduce(s, ReduceLatest))
	assert.Equal(t, 4.0, Reduce(s, ReduceCount))
}

func TestReduce_LatestSortsByTimestamp(t *testing.T) {
	s := samplesOf(70.1, 70.5, 69.8)
	// 打乱顺序：最新的点放在最前面
	shuffled := []models.Sample{s[2], s[0], s[1]}
	assert.Equal(t, 69.8, Reduce(shuffled, ReduceLatest))
}

func TestReduce_SumOrderInvariant(t *testing.T) {
	a := samplesOf(3000, 7000)
	b := []models.Sample{a[1], a[0]}
	assert.Equal(t, 10000.0, Reduce(a, ReduceSum))
	assert.Equal(t, Reduce(a, ReduceSum), Reduce(b, ReduceSum))
}

func TestMetricSpec_Apply(t *testing.T) {
	assert.Equal(t, 5.2, DistanceSpec.Apply(samplesOf(2000, 3210)))
	assert.Equal(t, 10000.0, StepsSpec.Apply(samplesOf(3000, 7000)))
	assert.Equal(t, 0.0, WeightSpec.Apply(nil))
}

func TestRestingRate(t *testing.T) {
	assert.Equal(t, 0.0, RestingRate(nil))
	// n < 10 取最低 1 个
	assert.Equal(t, 61.0, RestingRate([]float64{80, 61, 75}))
	// n = 10 取最低 1 个
	assert.Equal(t, 50.0, RestingRate([]float64{50, 52, 55, 90, 95, 98, 100, 102, 105, 110}))
	// n = 25 取最低 2 个
	values := []float64{60, 61}
	for i := 0; i < 23; i++ {
		values = append(values, 90)
	}
	assert.Equal(t, 60.5, RestingRate(values))
}

func TestBuildWindow(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	w, err := BuildWindow(models.MustParseDate("2024-03-15"), jst)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, jst), w.Start)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 999000000, jst), w.End)
	assert.Equal(t, 24*time.Hour, w.BucketDuration())

	_, err = BuildWindow(models.Date{}, jst)
	assert.ErrorIs(t, err, models.ErrInvalidDate)

	_, err = BuildWindow(models.MustParseDate("2024-03-15"), nil)
	assert.Error(t, err)
}

func TestActivityName(t *testing.T) {
	assert.Equal(t, "Running", ActivityName(8))
	assert.Equal(t, "Walking", ActivityName(7))
	assert.Equal(t, SleepLabel, ActivityName(ActivitySleep))
	assert.Equal(t, "Other (Type 999)", ActivityName(999))
}

func TestPeakMaxMin_UsesBucketExtremes(t *testing.T) {
	samples := []models.Sample{
		{Value: 80, Max: models.Float64Ptr(120), Min: models.Float64Ptr(62)},
		{Value: 90},
		{Value: 70, Max: models.Float64Ptr(75), Min: models.Float64Ptr(48)},
	}
	assert.Equal(t, 120.0, PeakMax(samples))
	assert.Equal(t, 48.0, PeakMin(samples))
	assert.Equal(t, 90.0, Reduce(samples, ReduceMax))

	assert.Equal(t, 0.0, PeakMax(nil))
	assert.Equal(t, 0.0, PeakMin(nil))
}
