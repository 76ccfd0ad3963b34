package task

import (
	"context"
	"log"
	"os"

	"freelance-assistant/internal/ai"
	"freelance-assistant/internal/model"
	"freelance-assistant/internal/storage"
)

// GenerateStore 是生成编排器需要的最小存储接口。
type GenerateStore interface {
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, opts storage.JobQueryOptions) ([]model.Job, error)
	UpdateJobStatus(ctx context.Context, jobID string, to model.Status) error
	CreateContent(ctx context.Context, content *model.GeneratedContent) error
}

// GeneratorResolver 按内容类型解析生成器变体。
type GeneratorResolver interface {
	Get(category string) (ai.Generator, error)
}

// GenerateTask 驱动单任务状态机 pending → in_progress → {completed | failed}。
// in_progress 在耗时的 AI 调用之前写入；生成失败的任务停在 failed，
// 不自动重试。
type GenerateTask struct {
	store     GenerateStore
	resolver  GeneratorResolver
	maxTokens int
	logger    *log.Logger
}

// NewGenerateTask 创建生成编排器。
func NewGenerateTask(store GenerateStore, resolver GeneratorResolver) *GenerateTask {
	return &GenerateTask{
		store:     store,
		resolver:  resolver,
		maxTokens: 512,
		logger:    log.New(os.Stdout, "[content] ", log.LstdFlags),
	}
}

// GenerateForJob 为单个任务生成内容。任何失败（不支持的分类、AI 出错、
// 落库失败）都转换为 failed 状态与布尔 false，错误只记录不上抛。
func (t *GenerateTask) GenerateForJob(ctx context.Context, jobID string) bool {
	job, err := t.store.GetJob(ctx, jobID)
	if err != nil {
		t.logger.Printf("job %s not found: %v", jobID, err)
		return false
	}

	if err := t.store.UpdateJobStatus(ctx, jobID, model.StatusInProgress); err != nil {
		t.logger.Printf("cannot start job %s: %v", jobID, err)
		return false
	}

	generator, err := t.resolver.Get(job.Category)
	if err != nil {
		t.fail(ctx, jobID, err)
		return false
	}

	generated, err := generator.Generate(ctx, ai.GenerateInput{
		JobContext: job.Title + "\n\n" + job.Description,
		MaxTokens:  t.maxTokens,
	})
	if err != nil {
		t.fail(ctx, jobID, err)
		return false
	}

	content := &model.GeneratedContent{
		JobID:         job.JobID,
		ContentType:   job.Category,
		GeneratedText: generated,
	}
	if err := t.store.CreateContent(ctx, content); err != nil {
		t.fail(ctx, jobID, err)
		return false
	}

	if err := t.store.UpdateJobStatus(ctx, jobID, model.StatusCompleted); err != nil {
		t.logger.Printf("cannot complete job %s: %v", jobID, err)
		return false
	}

	t.logger.Printf("successfully generated content for job %s", jobID)
	return true
}

// ProcessPending 批量处理待生成任务，顺序执行最多 limit 个，
// 返回成功数。超出限额的任务保持 pending 等待下一轮。
func (t *GenerateTask) ProcessPending(ctx context.Context, limit int) int {
	if limit <= 0 {
		limit = 5
	}

	pending, err := t.store.ListJobs(ctx, storage.JobQueryOptions{Status: model.StatusPending})
	if err != nil {
		t.logger.Printf("list pending jobs: %v", err)
		return 0
	}
	if len(pending) > limit {
		pending = pending[:limit]
	}

	processed := 0
	for _, job := range pending {
		if t.GenerateForJob(ctx, job.JobID) {
			processed++
		}
	}

	t.logger.Printf("processed %d pending jobs", processed)
	return processed
}

func (t *GenerateTask) fail(ctx context.Context, jobID string, cause error) {
	t.logger.Printf("error generating content for job %s: %v", jobID, cause)
	if err := t.store.UpdateJobStatus(ctx, jobID, model.StatusFailed); err != nil {
		t.logger.Printf("cannot mark job %s failed: %v", jobID, err)
	}
}
