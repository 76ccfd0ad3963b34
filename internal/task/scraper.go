package task

import (
	"context"
	"log"
	"os"

	"freelance-assistant/internal/filter"
	"freelance-assistant/internal/model"
)

// ScrapeConfig 控制一次抓取编排。
type ScrapeConfig struct {
	Platform      string   `yaml:"platform" json:"platform"`
	MaxJobs       int      `yaml:"max_jobs" json:"max_jobs"`
	MaxComplexity int      `yaml:"max_complexity" json:"max_complexity"`
	Categories    []string `yaml:"categories" json:"categories"`
	MinPrice      *float64 `yaml:"min_price" json:"min_price"`
	MaxPrice      *float64 `yaml:"max_price" json:"max_price"`
}

// Fetcher 抽象信息流抓取，便于测试替换。
type Fetcher interface {
	FetchAll(ctx context.Context, maxJobs int) ([]model.Job, error)
}

// ScrapeStore 是抓取编排器需要的最小存储接口。
type ScrapeStore interface {
	CreateJobIfAbsent(ctx context.Context, job *model.Job) (bool, error)
}

// Summary 是一次抓取编排的结构化结果。编排器自身从不向调用方抛错，
// 失败以 Status=error 加错误消息的形式返回。
type Summary struct {
	Status    string `json:"status"`
	JobsFound int    `json:"jobs_found"`
	JobsSaved int    `json:"jobs_saved"`
	Error     string `json:"error,omitempty"`
}

// ScrapeTask 驱动 抓取 → 过滤 → 入库 的编排：
// Idle → Fetching → Filtering → Persisting → Idle。
type ScrapeTask struct {
	fetcher  Fetcher
	store    ScrapeStore
	filters  filter.Chain
	platform string
	maxJobs  int
	logger   *log.Logger
}

// NewScrapeTask 创建抓取编排器，过滤链按固定顺序组装：
// 复杂度 → 分类 → 价格。
func NewScrapeTask(f Fetcher, store ScrapeStore, cfg ScrapeConfig) *ScrapeTask {
	platform := cfg.Platform
	if platform == "" {
		platform = "upwork"
	}
	maxJobs := cfg.MaxJobs
	if maxJobs <= 0 {
		maxJobs = 20
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = []string{
			model.CategoryReview,
			model.CategoryComment,
			model.CategoryFeedback,
			model.CategoryWriting,
		}
	}

	filters := filter.Chain{
		filter.NewComplexity(cfg.MaxComplexity),
		filter.NewCategory(categories),
		filter.Price{Min: cfg.MinPrice, Max: cfg.MaxPrice},
	}

	return &ScrapeTask{
		fetcher:  f,
		store:    store,
		filters:  filters,
		platform: platform,
		maxJobs:  maxJobs,
		logger:   log.New(os.Stdout, "[scraper] ", log.LstdFlags),
	}
}

// Run 执行一次完整的抓取编排。不支持的平台返回空结果而非错误；
// 抓取或入库失败被捕获并体现在 Summary 中。
func (t *ScrapeTask) Run(ctx context.Context) Summary {
	t.logger.Printf("starting job scraping from %s", t.platform)

	if t.platform != "upwork" {
		t.logger.Printf("platform %s not supported yet", t.platform)
		return Summary{Status: "success"}
	}

	jobs, err := t.fetcher.FetchAll(ctx, t.maxJobs)
	if err != nil {
		t.logger.Printf("error in job scraping: %v", err)
		return Summary{Status: "error", Error: err.Error()}
	}

	jobs = t.filters.Apply(jobs)
	t.logger.Printf("after filtering: %d jobs remain", len(jobs))

	saved := 0
	for i := range jobs {
		created, err := t.store.CreateJobIfAbsent(ctx, &jobs[i])
		if err != nil {
			t.logger.Printf("error saving job %s: %v", jobs[i].JobID, err)
			return Summary{Status: "error", JobsFound: len(jobs), JobsSaved: saved, Error: err.Error()}
		}
		if created {
			saved++
		}
	}

	t.logger.Printf("saved %d new jobs", saved)
	return Summary{Status: "success", JobsFound: len(jobs), JobsSaved: saved}
}
