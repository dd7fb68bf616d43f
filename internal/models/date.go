package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Date 日历日期（不含时区）
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var (
	dashedDate   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	slashedDate  = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	compactDate  = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	japaneseDate = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
)

// ParseDate 解析日期字符串
// 支持: YYYY-MM-DD, YYYY/MM/DD, YYYYMMDD, YYYY年M月D日, 以及 RFC3339 时间戳（只取日期部分）
func ParseDate(s string) (Date, error) {
	for _, re := range []*regexp.Regexp{dashedDate, slashedDate, compactDate, japaneseDate} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		date := Date{Year: y, Month: time.Month(mo), Day: d}
		if !date.valid() {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return date, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParseDate 解析失败直接 panic（仅用于测试和常量）
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf 取时间在指定时区下的日期
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day
}

// String 规范格式 YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compact YYYYMMDD
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// IsZero 是否为零值
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In 返回该日期在指定时区的 00:00
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays 日期加减
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t, time.UTC)
}

// Before 是否早于另一个日期
func (d Date) Before(o Date) bool {
	return d.String() < o.String()
}

// After 是否晚于另一个日期
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// DatesBetween 返回 [start, end] 内的所有日期，start 晚于 end 时返回空
func DatesBetween(start, end Date) []Date {
	var dates []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}
