package model

import "fmt"

// Status 是任务的生成流水线状态。
//
// 合法状态图:
//
//	pending ──► in_progress ──► completed
//	                 │
//	                 └────────► failed
//
// completed 与 failed 为终态；failed 不会自动重试，需外部重新排队。
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var validTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusFailed},
	// completed 与 failed 无出边
}

// ParseStatus 将原始字符串转换为 Status，未知值返回错误。
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTransitionAllowed 判断 from → to 是否符合状态机。
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // 终态
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal 判断状态是否为终态。
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusFailed
}
