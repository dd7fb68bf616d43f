package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized 凭证缺失、刷新失败或数据源拒绝访问（致命错误）
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidDate 日期字符串无法解析
	ErrInvalidDate = errors.New("invalid date")
	// ErrNoDocument 目标日期没有对应的文档
	ErrNoDocument = errors.New("no document for date")
	// ErrCredentialNotFound 存储中没有凭证
	ErrCredentialNotFound = errors.New("credential not found")
)

// Stage 处理阶段
type Stage string

const (
	StageAuth      Stage = "auth"
	StageWindow    Stage = "window"
	StageFetch     Stage = "fetch"
	StageReconcile Stage = "reconcile"
)

// StageError 带日期和阶段标签的错误
type StageError struct {
	Date  Date
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Date, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError 创建阶段错误
func NewStageError(date Date, stage Stage, err error) *StageError {
	return &StageError{Date: date, Stage: stage, Err: err}
}
