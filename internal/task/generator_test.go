package task

import (
	"context"
	"errors"
	"testing"

	"freelance-assistant/internal/ai"
	"freelance-assistant/internal/model"
	"freelance-assistant/internal/storage"
)

type stubGenerateStore struct {
	jobs       map[string]*model.Job
	contents   []model.GeneratedContent
	contentErr error
}

func newStubGenerateStore(jobs ...*model.Job) *stubGenerateStore {
	s := &stubGenerateStore{jobs: make(map[string]*model.Job)}
	for _, job := range jobs {
		s.jobs[job.JobID] = job
	}
	return s
}

func (s *stubGenerateStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, model.ErrJobNotFound
	}
	return job, nil
}

func (s *stubGenerateStore) ListJobs(ctx context.Context, opts storage.JobQueryOptions) ([]model.Job, error) {
	out := make([]model.Job, 0)
	for _, job := range s.jobs {
		if opts.Status == "" || job.Status == opts.Status {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *stubGenerateStore) UpdateJobStatus(ctx context.Context, jobID string, to model.Status) error {
	job, ok := s.jobs[jobID]
	if !ok {
		return model.ErrJobNotFound
	}
	if !model.IsTransitionAllowed(job.Status, to) {
		return model.ErrInvalidTransition
	}
	job.Status = to
	return nil
}

func (s *stubGenerateStore) CreateContent(ctx context.Context, content *model.GeneratedContent) error {
	if s.contentErr != nil {
		return s.contentErr
	}
	s.contents = append(s.contents, *content)
	return nil
}

type stubResolver struct {
	generator ai.Generator
	err       error
}

func (r *stubResolver) Get(category string) (ai.Generator, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.generator, nil
}

type stubGenerator struct {
	text   string
	err    error
	inputs []ai.GenerateInput
}

func (g *stubGenerator) Generate(ctx context.Context, in ai.GenerateInput) (string, error) {
	g.inputs = append(g.inputs, in)
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func TestGenerateForJobCompletesAndStoresContent(t *testing.T) {
	t.Parallel()

	store := newStubGenerateStore(&model.Job{
		JobID:       "abc123",
		Title:       "Write a review",
		Description: "Honest review of our app",
		Category:    model.CategoryReview,
		Status:      model.StatusPending,
	})
	gen := &stubGenerator{text: "Generated review text."}
	task := NewGenerateTask(store, &stubResolver{generator: gen})

	if !task.GenerateForJob(context.Background(), "abc123") {
		t.Fatalf("expected generation to succeed")
	}

	if got := store.jobs["abc123"].Status; got != model.StatusCompleted {
		t.Fatalf("expected status completed, got %s", got)
	}
	if len(store.contents) != 1 {
		t.Fatalf("expected 1 content record, got %d", len(store.contents))
	}
	content := store.contents[0]
	if content.JobID != "abc123" || content.ContentType != model.CategoryReview || content.GeneratedText != "Generated review text." {
		t.Fatalf("unexpected content record: %+v", content)
	}
	if got := gen.inputs[0].JobContext; got != "Write a review\n\nHonest review of our app" {
		t.Fatalf("unexpected job context: %q", got)
	}
}

func TestGenerateForJobFailureEndsInFailedWithoutContent(t *testing.T) {
	t.Parallel()

	store := newStubGenerateStore(&model.Job{
		JobID:    "abc123",
		Category: model.CategoryReview,
		Status:   model.StatusPending,
	})
	gen := &stubGenerator{err: &model.AIGenerationError{Err: errors.New("api timeout")}}
	task := NewGenerateTask(store, &stubResolver{generator: gen})

	if task.GenerateForJob(context.Background(), "abc123") {
		t.Fatalf("expected generation to fail")
	}

	if got := store.jobs["abc123"].Status; got != model.StatusFailed {
		t.Fatalf("expected status failed, got %s", got)
	}
	if len(store.contents) != 0 {
		t.Fatalf("expected no content record on failure, got %d", len(store.contents))
	}
}

func TestGenerateForJobUnsupportedCategoryFails(t *testing.T) {
	t.Parallel()

	store := newStubGenerateStore(&model.Job{
		JobID:    "abc123",
		Category: model.CategoryWriting,
		Status:   model.StatusPending,
	})
	resolver := &stubResolver{err: &model.UnsupportedCategoryError{Category: model.CategoryWriting}}
	task := NewGenerateTask(store, resolver)

	if task.GenerateForJob(context.Background(), "abc123") {
		t.Fatalf("expected unsupported category to fail")
	}
	if got := store.jobs["abc123"].Status; got != model.StatusFailed {
		t.Fatalf("expected status failed, got %s", got)
	}
}

func TestGenerateForJobContentSaveFailureMarksFailed(t *testing.T) {
	t.Parallel()

	store := newStubGenerateStore(&model.Job{
		JobID:    "abc123",
		Category: model.CategoryComment,
		Status:   model.StatusPending,
	})
	store.contentErr = errors.New("disk full")
	task := NewGenerateTask(store, &stubResolver{generator: &stubGenerator{text: "A comment."}})

	if task.GenerateForJob(context.Background(), "abc123") {
		t.Fatalf("expected save failure to fail the job")
	}
	if got := store.jobs["abc123"].Status; got != model.StatusFailed {
		t.Fatalf("expected status failed, got %s", got)
	}
}

func TestGenerateForJobMissingJob(t *testing.T) {
	t.Parallel()

	task := NewGenerateTask(newStubGenerateStore(), &stubResolver{generator: &stubGenerator{text: "x"}})

	if task.GenerateForJob(context.Background(), "missing") {
		t.Fatalf("expected missing job to fail")
	}
}

func TestProcessPendingHonorsLimit(t *testing.T) {
	t.Parallel()

	store := newStubGenerateStore(
		&model.Job{JobID: "a", Category: model.CategoryReview, Status: model.StatusPending},
		&model.Job{JobID: "b", Category: model.CategoryReview, Status: model.StatusPending},
		&model.Job{JobID: "c", Category: model.CategoryReview, Status: model.StatusPending},
		&model.Job{JobID: "d", Category: model.CategoryReview, Status: model.StatusCompleted},
	)
	task := NewGenerateTask(store, &stubResolver{generator: &stubGenerator{text: "ok"}})

	processed := task.ProcessPending(context.Background(), 2)

	if processed != 2 {
		t.Fatalf("expected 2 jobs processed, got %d", processed)
	}

	remaining := 0
	for _, job := range store.jobs {
		if job.Status == model.StatusPending {
			remaining++
		}
	}
	if remaining != 1 {
		t.Fatalf("expected 1 job left pending, got %d", remaining)
	}
}

func TestProcessPendingSkipsNothingWhenQueueEmpty(t *testing.T) {
	t.Parallel()

	task := NewGenerateTask(newStubGenerateStore(), &stubResolver{generator: &stubGenerator{text: "ok"}})

	if processed := task.ProcessPending(context.Background(), 0); processed != 0 {
		t.Fatalf("expected 0 processed on empty queue, got %d", processed)
	}
}
