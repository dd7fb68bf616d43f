package models

import "errors"

// PropertyKind 属性值类型
type PropertyKind string

const (
	KindNumber   PropertyKind = "number"
	KindDate     PropertyKind = "date"
	KindRichText PropertyKind = "rich_text"
	KindTitle    PropertyKind = "title"
	KindCheckbox PropertyKind = "checkbox"
)

// TextSpan 富文本片段，Link 非空时渲染为链接
type TextSpan struct {
	Text string
	Link string
}

// PropertyValue 文档属性值
// Number 为 nil 表示清空该数值
type PropertyValue struct {
	Name     string
	Kind     PropertyKind
	Number   *float64
	Date     string
	Text     []TextSpan
	Checkbox bool
}

// NumberProperty 数值属性
func NumberProperty(name string, v float64) PropertyValue {
	return PropertyValue{Name: name, Kind: KindNumber, Number: &v}
}

// OptionalNumberProperty 可空数值属性
func OptionalNumberProperty(name string, v *float64) PropertyValue {
	return PropertyValue{Name: name, Kind: KindNumber, Number: v}
}

// DateProperty 日期属性
func DateProperty(name, date string) PropertyValue {
	return PropertyValue{Name: name, Kind: KindDate, Date: date}
}

// TextProperty 纯文本属性
func TextProperty(name, text string) PropertyValue {
	return PropertyValue{Name: name, Kind: KindRichText, Text: []TextSpan{{Text: text}}}
}

// RichTextProperty 富文本属性
func RichTextProperty(name string, spans []TextSpan) PropertyValue {
	return PropertyValue{Name: name, Kind: KindRichText, Text: spans}
}

// TitleProperty 标题属性
func TitleProperty(name, title string) PropertyValue {
	return PropertyValue{Name: name, Kind: KindTitle, Text: []TextSpan{{Text: title}}}
}

// ReconciliationTarget 对账目标
// Date 接受 YYYY-MM-DD 或 YYYY/MM/DD；Title 为空时使用默认标题
type ReconciliationTarget struct {
	Date       string
	Title      string
	Properties []PropertyValue
}

// Candidate 查询到的候选文档
type Candidate struct {
	ID        string
	Reflected bool
	// 原始属性（调试用）
	Properties map[string]any
}

// ReconcileAction 对账动作
type ReconcileAction string

const (
	ActionCreated ReconcileAction = "created"
	ActionUpdated ReconcileAction = "updated"
)

// ReconciliationResult 对账结果
type ReconciliationResult struct {
	Action         ReconcileAction
	DocumentID     string
	CandidateCount int
}

// ProcessStatus 单日处理状态
type ProcessStatus string

const (
	StatusSuccess ProcessStatus = "success"
	StatusError   ProcessStatus = "error"
)

// ProcessResult 单日处理结果
type ProcessResult struct {
	Date           Date
	Status         ProcessStatus
	Metrics        *DailyMetrics
	Reconciliation *ReconciliationResult
	Err            error
}

// Stage 失败阶段（成功时为空）
func (r ProcessResult) Stage() Stage {
	var se *StageError
	if errors.As(r.Err, &se) {
		return se.Stage
	}
	return ""
}
