package github

import (
	"fmt"
	"strings"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// ItemKind 活动类型
type ItemKind string

const (
	KindIssue  ItemKind = "issue"
	KindPull   ItemKind = "pr"
	KindCommit ItemKind = "commit"
)

// emptyText 没有活动时写入的文本
const emptyText = "該当なし"

// Item 一条 GitHub 活动
// KindCommit 表示某个仓库当天直接提交的汇总
type Item struct {
	Kind      ItemKind
	Repo      string // owner/name
	Number    int
	Title     string
	URL       string
	Commits   int
	Additions int
	Deletions int
}

func (it Item) repoName() string {
	if i := strings.LastIndex(it.Repo, "/"); i >= 0 {
		return it.Repo[i+1:]
	}
	return it.Repo
}

// Text 展示文本
func (it Item) Text() string {
	switch it.Kind {
	case KindIssue:
		return fmt.Sprintf("🎫 %s:Issue #%d: %s", it.repoName(), it.Number, it.Title)
	case KindPull:
		return fmt.Sprintf("🔀 %s:PR #%d: %s", it.repoName(), it.Number, it.Title)
	}
	return fmt.Sprintf("📝 %s:変更行数:+%d-%d (%d commits)", it.repoName(), it.Additions, it.Deletions, it.Commits)
}

// RichText 每条活动一个带链接的片段，片段之间用换行分隔
func RichText(items []Item) []models.TextSpan {
	if len(items) == 0 {
		return []models.TextSpan{{Text: emptyText}}
	}
	spans := make([]models.TextSpan, 0, len(items)*2-1)
	for i, it := range items {
		if i > 0 {
			spans = append(spans, models.TextSpan{Text: "\n"})
		}
		spans = append(spans, models.TextSpan{Text: it.Text(), Link: it.URL})
	}
	return spans
}

// ParseDateArg 解析 YYYYMMDD 或 YYYYMMDD-YYYYMMDD
func ParseDateArg(arg string) (start, end models.Date, err error) {
	first, second, isRange := strings.Cut(arg, "-")
	if !isCompact(first) || (isRange && !isCompact(second)) {
		return models.Date{}, models.Date{}, fmt.Errorf("%w: %q (want YYYYMMDD or YYYYMMDD-YYYYMMDD)", models.ErrInvalidDate, arg)
	}
	if start, err = models.ParseDate(first); err != nil {
		return models.Date{}, models.Date{}, err
	}
	end = start
	if isRange {
		if end, err = models.ParseDate(second); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}
	if end.Before(start) {
		return models.Date{}, models.Date{}, fmt.Errorf("%w: range start %s is after end %s", models.ErrInvalidDate, start, end)
	}
	return start, end, nil
}

func isCompact(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
