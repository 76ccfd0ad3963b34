package ai

import (
	"context"
	"fmt"
	"log"
	"os"

	"freelance-assistant/internal/model"
)

// RetryCompleter 为 Completer 增加线性重试：失败即整次重做，
// 不退避、不区分瞬时与永久错误；重试耗尽后以单个
// AIGenerationError 包装最终失败原因向外暴露。
type RetryCompleter struct {
	inner       Completer
	maxAttempts int
	logger      *log.Logger
}

// NewRetryCompleter 创建重试包装器，maxAttempts 非法时取 3。
func NewRetryCompleter(inner Completer, maxAttempts int, logger *log.Logger) *RetryCompleter {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[ai] ", log.LstdFlags)
	}
	return &RetryCompleter{inner: inner, maxAttempts: maxAttempts, logger: logger}
}

// Complete 逐次尝试直到成功或次数用尽。
func (r *RetryCompleter) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		text, err := r.inner.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		r.logger.Printf("attempt %d/%d failed: %v", attempt, r.maxAttempts, err)
	}
	return "", &model.AIGenerationError{
		Err: fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr),
	}
}
