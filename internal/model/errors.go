package model

import (
	"errors"
	"fmt"
)

// 哨兵错误，供各层 errors.Is 判断。
var (
	// ErrConfiguration 表示启动期配置缺失，构造应立即失败。
	ErrConfiguration = errors.New("configuration error")
	// ErrJobNotFound 表示按 job_id 查询不到记录。
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidTransition 表示状态机不允许的状态变更。
	ErrInvalidTransition = errors.New("invalid status transition")
)

// JobFetchError 包装信息流层面的抓取失败（网络 / 解析），
// 由抓取编排器捕获并转换为结构化错误结果。
type JobFetchError struct {
	Platform string
	Err      error
}

func (e *JobFetchError) Error() string {
	return fmt.Sprintf("fetch jobs from %s: %v", e.Platform, e.Err)
}

func (e *JobFetchError) Unwrap() error { return e.Err }

// AIGenerationError 包装补全服务失败：调用出错、响应无内容块、
// 或重试耗尽。在单任务编排器边界被转换为 failed 状态。
type AIGenerationError struct {
	Err error
}

func (e *AIGenerationError) Error() string {
	return fmt.Sprintf("ai generation: %v", e.Err)
}

func (e *AIGenerationError) Unwrap() error { return e.Err }

// UnsupportedCategoryError 表示内容类型没有对应的生成器变体。
type UnsupportedCategoryError struct {
	Category string
}

func (e *UnsupportedCategoryError) Error() string {
	return fmt.Sprintf("unsupported content category %q", e.Category)
}
