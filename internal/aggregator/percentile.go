package aggregator

import "sort"

// RestingRate 安静心率估算: 最低 10% 的采样均值（至少 1 个），保留 1 位小数
// 没有采样时返回 0
func RestingRate(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	k := n / 10
	if k < 1 {
		k = 1
	}
	sum := 0.0
	for _, v := range sorted[:k] {
		sum += v
	}
	return Round(sum/float64(k), 1)
}
