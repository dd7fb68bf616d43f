package notion

import (
	"fmt"
	"sort"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// maxTextLength Notion 单个 text 对象的最大长度
const maxTextLength = 2000

// 健康指标属性名
const (
	PropDistance   = "移動距離 (km)"
	PropSteps      = "歩数 (歩)"
	PropCalories   = "消費カロリー (kcal)"
	PropIntensity  = "強めの運動 (分)"
	PropAvgHeart   = "平均心拍数 (bpm)"
	PropOxygen     = "酸素飽和度 (%)"
	PropWeight     = "体重 (kg)"
	PropSleep      = "睡眠時間 (分)"
	PropResting    = "安静時心拍数 (bpm)"
	PropMaxHeart   = "最大心拍数 (bpm)"
	PropMinHeart   = "最小心拍数 (bpm)"
	PropBodyFat    = "体脂肪率 (%)"
	PropMeditation = "瞑想 (分)"
	PropMedCount   = "瞑想回数"
	PropActivities = "アクティビティ"
)

// FitnessProperties 把单日指标转换成页面属性
// extended 为 true 时追加扩展属性
func FitnessProperties(m *models.DailyMetrics, dateProperty string, extended bool) []models.PropertyValue {
	var weight *float64
	if m.LatestWeightKg != nil && *m.LatestWeightKg > 0 {
		weight = m.LatestWeightKg
	}
	var bodyFat *float64
	if m.LatestBodyFatPct != nil && *m.LatestBodyFatPct > 0 {
		bodyFat = m.LatestBodyFatPct
	}

	props := []models.PropertyValue{
		models.NumberProperty(PropDistance, m.DistanceKm),
		models.NumberProperty(PropSteps, float64(m.Steps)),
		models.NumberProperty(PropCalories, m.CaloriesKcal),
		models.NumberProperty(PropIntensity, float64(m.ActivityIntensityScore)),
		models.NumberProperty(PropAvgHeart, m.AvgHeartRateBpm),
		models.NumberProperty(PropOxygen, m.AvgOxygenSaturationPct),
		models.OptionalNumberProperty(PropWeight, weight),
		models.NumberProperty(PropSleep, float64(m.TotalSleepMinutes)),
		models.DateProperty(dateProperty, m.Date.String()),
	}
	if !extended {
		return props
	}

	return append(props,
		models.NumberProperty(PropResting, m.RestingHeartRateBpm),
		models.NumberProperty(PropMaxHeart, m.MaxHeartRateBpm),
		models.NumberProperty(PropMinHeart, m.MinHeartRateBpm),
		models.OptionalNumberProperty(PropBodyFat, bodyFat),
		models.NumberProperty(PropMeditation, float64(m.TotalMeditationMinutes)),
		models.NumberProperty(PropMedCount, float64(m.MeditationSessionCount)),
		models.TextProperty(PropActivities, ActivityText(m.ActivitySummary)),
	)
}

// ActivityText 活动汇总文本，按分钟数降序，相同时按名称
func ActivityText(summary map[string]int) string {
	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if summary[labels[i]] != summary[labels[j]] {
			return summary[labels[i]] > summary[labels[j]]
		}
		return labels[i] < labels[j]
	})

	text := ""
	for i, label := range labels {
		if i > 0 {
			text += ", "
		}
		text += fmt.Sprintf("%s %d分", label, summary[label])
	}
	return text
}

// EncodeProperties 把类型化属性编码为 Notion API 的 JSON 结构
func EncodeProperties(props []models.PropertyValue) map[string]any {
	out := make(map[string]any, len(props))
	for _, p := range props {
		out[p.Name] = encodeValue(p)
	}
	return out
}

func encodeValue(p models.PropertyValue) map[string]any {
	switch p.Kind {
	case models.KindNumber:
		if p.Number == nil {
			return map[string]any{"number": nil}
		}
		return map[string]any{"number": *p.Number}
	case models.KindDate:
		return map[string]any{"date": map[string]any{"start": p.Date}}
	case models.KindCheckbox:
		return map[string]any{"checkbox": p.Checkbox}
	case models.KindTitle:
		return map[string]any{"title": encodeText(p.Text)}
	default:
		return map[string]any{"rich_text": encodeText(p.Text)}
	}
}

func encodeText(spans []models.TextSpan) []map[string]any {
	out := []map[string]any{}
	for _, span := range spans {
		for _, chunk := range splitText(span.Text) {
			text := map[string]any{"content": chunk}
			if span.Link != "" {
				text["link"] = map[string]any{"url": span.Link}
			}
			out = append(out, map[string]any{"type": "text", "text": text})
		}
	}
	return out
}

// splitText 按 maxTextLength 个字符切分
func splitText(s string) []string {
	runes := []rune(s)
	if len(runes) <= maxTextLength {
		return []string{s}
	}
	var chunks []string
	for len(runes) > 0 {
		n := maxTextLength
		if len(runes) < n {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}
