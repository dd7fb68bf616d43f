package weather

import (
	"fmt"
	"strings"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// Notion 属性名
const (
	PropWeather       = "天気"
	PropTemperature   = "気温"
	PropHumidity      = "湿度"
	PropPrecipitation = "降水量"
	PropPressure      = "気圧"
	PropSunshine      = "日照時間"
)

// pressureDelta 相邻时段气压变化告警阈值（hPa）
const pressureDelta = 5.0

const (
	markDrop = "⤵️💣️"
	markRise = "⤴️⚠️"
)

// Summary 单日天气汇总（均为展示文本）
type Summary struct {
	Date          models.Date
	Weather       string
	Temperature   string
	Humidity      string
	Precipitation string
	Pressure      string
	Sunshine      string
}

// Emoji 天气状况对应的表情，按 快晴 > 晴 > 薄曇 > 曇 > 雨 > 雪 的顺序匹配
func Emoji(condition string) string {
	switch {
	case strings.Contains(condition, "快晴"):
		return "☀️☀️"
	case strings.Contains(condition, "晴"):
		return "☀️"
	case strings.Contains(condition, "薄曇"):
		return "⛅️"
	case strings.Contains(condition, "曇"):
		return "☁️"
	case strings.Contains(condition, "雨"):
		return "☔"
	case strings.Contains(condition, "雪"):
		return "❄️"
	}
	return ""
}

// PressureSpan 6 小时气压时段 [Start, End]
type PressureSpan struct {
	Start, End    int
	Avg, Min, Max float64
	Values        []float64
	Mark          string
}

// PressureSpans 按 1-6, 7-12, 13-18, 19-24 时分段统计海面气压
// 与下一时段相比，本时段最大值比下一时段任一值高 5hPa 以上标记下降，
// 否则下一时段任一值比本时段最小值高 5hPa 以上标记上升。最后一个时段不标记。
func PressureSpans(obs []HourlyObservation) []PressureSpan {
	var spans []PressureSpan
	for start := 1; start < 25; start += 6 {
		var values []float64
		for _, o := range obs {
			if o.SeaLevelPressure != nil && o.Hour >= start && o.Hour < start+6 {
				values = append(values, *o.SeaLevelPressure)
			}
		}
		if len(values) == 0 {
			continue
		}
		lo, hi := minMax(values)
		spans = append(spans, PressureSpan{
			Start:  start,
			End:    start + 5,
			Avg:    mean(values),
			Min:    lo,
			Max:    hi,
			Values: values,
		})
	}

	for i := 0; i < len(spans)-1; i++ {
		cur, next := &spans[i], spans[i+1]
		nextMin, nextMax := minMax(next.Values)
		switch {
		case cur.Max-nextMin >= pressureDelta:
			cur.Mark = markDrop
		case nextMax-cur.Min >= pressureDelta:
			cur.Mark = markRise
		}
	}
	return spans
}

type period int

const (
	morning period = iota // 5-11 时
	daytime               // 12-18 时
	night                 // 19-4 时
)

func periodOf(hour int) period {
	switch {
	case hour >= 5 && hour <= 11:
		return morning
	case hour >= 12 && hour <= 18:
		return daytime
	}
	return night
}

// Summarize 汇总逐时观测
func Summarize(date models.Date, obs []HourlyObservation) Summary {
	var (
		conditions []string
		sunshine   float64
		temps      [3][]float64
		allTemps   []float64
		hums       [3][]float64
		allHums    []float64
		precip     [3]float64
	)

	for _, o := range obs {
		p := periodOf(o.Hour)
		if o.Temperature != nil {
			temps[p] = append(temps[p], *o.Temperature)
			allTemps = append(allTemps, *o.Temperature)
		}
		if o.Humidity != nil {
			hums[p] = append(hums[p], float64(*o.Humidity))
			allHums = append(allHums, float64(*o.Humidity))
		}
		if o.Precipitation != nil {
			precip[p] += *o.Precipitation
		}
		if o.Sunshine != nil {
			sunshine += *o.Sunshine
		}
		if o.Condition != "" {
			conditions = append(conditions, fmt.Sprintf("%d時: %s%s", o.Hour, o.Condition, Emoji(o.Condition)))
		}
	}

	spans := PressureSpans(obs)
	pressure := make([]string, len(spans))
	for i, s := range spans {
		pressure[i] = fmt.Sprintf("%d-%d時:平均%.1fhPa%s", s.Start, s.End, s.Avg, s.Mark)
	}

	minTemp, maxTemp := minMax(allTemps)
	minHum, maxHum := minMax(allHums)

	return Summary{
		Date:    date,
		Weather: strings.Join(conditions, ", "),
		Temperature: fmt.Sprintf("朝:平均%.1f℃, 昼:平均%.1f℃, 夜:平均%.1f℃（最高:%.1f℃, 最低:%.1f℃）",
			mean(temps[morning]), mean(temps[daytime]), mean(temps[night]), maxTemp, minTemp),
		Humidity: fmt.Sprintf("朝:平均%.1f%%, 昼:平均%.1f%%, 夜:平均%.1f%%（最高:%d%%, 最低:%d%%）",
			mean(hums[morning]), mean(hums[daytime]), mean(hums[night]), int(maxHum), int(minHum)),
		Precipitation: fmt.Sprintf("朝:%.1fmm, 昼:%.1fmm, 夜:%.1fmm", precip[morning], precip[daytime], precip[night]),
		Pressure:      strings.Join(pressure, ", "),
		Sunshine:      fmt.Sprintf("%.1f時間", sunshine),
	}
}

// Properties 转换成页面属性
func (s Summary) Properties(dateProperty string) []models.PropertyValue {
	return []models.PropertyValue{
		models.DateProperty(dateProperty, s.Date.String()),
		models.TextProperty(PropWeather, s.Weather),
		models.TextProperty(PropTemperature, s.Temperature),
		models.TextProperty(PropHumidity, s.Humidity),
		models.TextProperty(PropPrecipitation, s.Precipitation),
		models.TextProperty(PropPressure, s.Pressure),
		models.TextProperty(PropSunshine, s.Sunshine),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// minMax 空切片返回 0, 0
func minMax(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
