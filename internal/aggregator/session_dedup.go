package aggregator

import (
	"math"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// DedupResult 会话去重结果
type DedupResult struct {
	// 活动名称 -> 分钟数（不含睡眠，不含时长 <= 0 的会话）
	Summary   map[string]int
	Accepted  []models.Session
	Discarded []models.Session
}

// Deduplicator 会话去重器
//
// 按输入顺序贪心处理: 与已接受会话不重叠的直接接受；重叠时只有权威来源的会话被接受，
// 非权威来源的会话被丢弃。权威会话不会挤掉已经接受的会话，
// 所以非权威会话先到、权威会话后到时两者都会计入汇总。
// 时长 <= 0 的会话同样参与重叠判断并被接受，只是不计入分钟数。
type Deduplicator struct {
	authoritative map[string]struct{}
}

// NewDeduplicator 创建去重器，sources 为权威来源名称（精确匹配）
func NewDeduplicator(sources []string) *Deduplicator {
	set := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return &Deduplicator{authoritative: set}
}

// IsAuthoritative 来源是否在权威列表中
func (d *Deduplicator) IsAuthoritative(source string) bool {
	_, ok := d.authoritative[source]
	return ok
}

// Deduplicate 去重并按活动名称汇总分钟数
func (d *Deduplicator) Deduplicate(sessions []models.Session) DedupResult {
	result := DedupResult{Summary: map[string]int{}}
	minutes := map[string]float64{}

	for _, s := range sessions {
		overlapping := false
		for _, a := range result.Accepted {
			if s.Overlaps(a) {
				overlapping = true
				break
			}
		}
		if overlapping && !d.IsAuthoritative(s.SourceName) {
			result.Discarded = append(result.Discarded, s)
			continue
		}

		result.Accepted = append(result.Accepted, s)
		if s.Label != SleepLabel && s.Minutes() > 0 {
			minutes[s.Label] += s.Minutes()
		}
	}

	for label, m := range minutes {
		if rounded := int(math.Round(m)); rounded > 0 {
			result.Summary[label] = rounded
		}
	}
	return result
}

// TotalMinutes 会话总时长（分钟，四舍五入）
func TotalMinutes(sessions []models.Session) int {
	total := 0.0
	for _, s := range sessions {
		if m := s.Minutes(); m > 0 {
			total += m
		}
	}
	return int(math.Round(total))
}
