package models

import "time"

// TimeWindow 一天的查询窗口 [Start, End]，两端都包含
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// BucketDuration 覆盖整个窗口的桶长度（End - Start + 1ms）
func (w TimeWindow) BucketDuration() time.Duration {
	return w.End.Sub(w.Start) + time.Millisecond
}

// Sample 单个数据点
type Sample struct {
	Timestamp time.Time
	Value     float64
	// 汇总点（平均/最大/最小）才有，普通点为 nil
	Max *float64
	Min *float64
}

// Session 活动会话
type Session struct {
	Start        time.Time
	End          time.Time
	ActivityType int
	Label        string
	SourceName   string
}

// Minutes 会话时长（分钟）
func (s Session) Minutes() float64 {
	return s.End.Sub(s.Start).Minutes()
}

// Overlaps 闭区间比较: 只有首尾相接时不算重叠
func (s Session) Overlaps(o Session) bool {
	return !(!s.End.After(o.Start) || !s.Start.Before(o.End))
}
