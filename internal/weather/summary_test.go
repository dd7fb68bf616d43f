package weather

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

func fixtureObservations(t *testing.T) []HourlyObservation {
	obs, err := ParseHourly(strings.NewReader(hourlyPage()))
	require.NoError(t, err)
	return obs
}

func TestParseHourly(t *testing.T) {
	obs := fixtureObservations(t)
	require.Len(t, obs, 24)

	first := obs[0]
	assert.Equal(t, 1, first.Hour)
	require.NotNil(t, first.SeaLevelPressure)
	assert.Equal(t, 1010.0, *first.SeaLevelPressure)
	assert.Nil(t, first.Precipitation)
	assert.Nil(t, first.Sunshine)
	assert.Equal(t, "", first.Condition)

	// 无法解析的降水量按 0
	require.NotNil(t, obs[2].Precipitation)
	assert.Equal(t, 0.0, *obs[2].Precipitation)
	assert.Equal(t, "晴", obs[2].Condition)

	require.NotNil(t, obs[11].Humidity)
	assert.Equal(t, 80, *obs[11].Humidity)
}

func TestParseHourly_NoTable(t *testing.T) {
	_, err := ParseHourly(strings.NewReader(`<html><body><table class="other"></table></body></html>`))
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestParseFloat_QualityMarks(t *testing.T) {
	assert.Nil(t, parseFloat("--"))
	assert.Nil(t, parseFloat(""))
	assert.Nil(t, parseFloat("///"))
	assert.Equal(t, 12.3, *parseFloat("12.3 )"))
	assert.Equal(t, 4.0, *parseFloat("4.0]"))
}

func TestEmoji(t *testing.T) {
	assert.Equal(t, "☀️☀️", Emoji("快晴"))
	assert.Equal(t, "☀️", Emoji("晴れ"))
	assert.Equal(t, "⛅️", Emoji("薄曇"))
	assert.Equal(t, "☁️", Emoji("曇"))
	assert.Equal(t, "☔", Emoji("雨"))
	assert.Equal(t, "❄️", Emoji("雪"))
	assert.Equal(t, "", Emoji("霧"))
}

func TestPressureSpans_Marks(t *testing.T) {
	spans := PressureSpans(fixtureObservations(t))
	require.Len(t, spans, 4)
	assert.Equal(t, markDrop, spans[0].Mark)
	assert.Equal(t, "", spans[1].Mark)
	assert.Equal(t, markRise, spans[2].Mark)
	assert.Equal(t, "", spans[3].Mark)
	assert.Equal(t, 19, spans[3].Start)
	assert.Equal(t, 24, spans[3].End)
}

func TestPressureSpans_SkipsEmptySpan(t *testing.T) {
	p := func(v float64) *float64 { return &v }
	spans := PressureSpans([]HourlyObservation{
		{Hour: 2, SeaLevelPressure: p(1010)},
		{Hour: 20, SeaLevelPressure: p(1003)},
	})
	require.Len(t, spans, 2)
	// 空时段被跳过后与下一个非空时段比较
	assert.Equal(t, markDrop, spans[0].Mark)
}

func TestSummarize(t *testing.T) {
	s := Summarize(models.MustParseDate("2024-03-15"), fixtureObservations(t))

	assert.Equal(t, "3時: 晴☀️, 6時: 快晴☀️☀️, 9時: 薄曇⛅️, 12時: 曇☁️, 15時: 雨☔, 18時: 雪❄️, 21時: 霧", s.Weather)
	assert.Equal(t, "朝:平均8.0℃, 昼:平均15.0℃, 夜:平均13.9℃（最高:24.0℃, 最低:1.0℃）", s.Temperature)
	assert.Equal(t, "朝:平均60.0%, 昼:平均62.9%, 夜:平均60.0%（最高:80%, 最低:60%）", s.Humidity)
	assert.Equal(t, "朝:0.0mm, 昼:3.5mm, 夜:0.5mm", s.Precipitation)
	assert.Equal(t, "1-6時:平均1010.0hPa⤵️💣️, 7-12時:平均1004.0hPa, 13-18時:平均1006.0hPa⤴️⚠️, 19-24時:平均1012.0hPa", s.Pressure)
	assert.Equal(t, "5.5時間", s.Sunshine)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(models.MustParseDate("2024-03-15"), nil)
	assert.Equal(t, "", s.Weather)
	assert.Equal(t, "", s.Pressure)
	assert.Equal(t, "0.0時間", s.Sunshine)
	assert.Equal(t, "朝:0.0mm, 昼:0.0mm, 夜:0.0mm", s.Precipitation)
}

func TestSummary_Properties(t *testing.T) {
	s := Summarize(models.MustParseDate("2024-03-15"), fixtureObservations(t))
	props := s.Properties("日付")
	require.Len(t, props, 7)
	assert.Equal(t, models.KindDate, props[0].Kind)
	assert.Equal(t, "2024-03-15", props[0].Date)
	assert.Equal(t, PropSunshine, props[6].Name)
	assert.Equal(t, "5.5時間", props[6].Text[0].Text)
}
