package task

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig 控制后台调度。抓取间隔可配置（默认 30 分钟），
// 生成任务固定每 10 分钟执行一次。
type SchedulerConfig struct {
	ScrapeInterval string `yaml:"scrape_interval" json:"scrape_interval"`
	GenerateLimit  int    `yaml:"generate_limit" json:"generate_limit"`
}

// ScrapeRunner 抽象抓取编排器。
type ScrapeRunner interface {
	Run(ctx context.Context) Summary
}

// GenerateRunner 抽象生成编排器。
type GenerateRunner interface {
	ProcessPending(ctx context.Context, limit int) int
}

const generateInterval = 10 * time.Minute

// Scheduler 以相互独立的固定间隔驱动两个编排器，
// 实例由进程入口显式创建并持有，通过 Start/Stop 管理生命周期。
// 每个任务各自用 atomic 标志防止调度重入；两个任务之间无同步，
// 去重安全完全依赖存储层的 job_id 唯一约束。
type Scheduler struct {
	cron           *cron.Cron
	scraper        ScrapeRunner
	generator      GenerateRunner
	scrapeInterval time.Duration
	generateLimit  int

	scrapeRunning   atomic.Bool
	generateRunning atomic.Bool
	logger          *log.Logger
}

// NewScheduler 创建调度器，解析抓取间隔配置。
func NewScheduler(scraper ScrapeRunner, generator GenerateRunner, cfg SchedulerConfig) *Scheduler {
	interval := 30 * time.Minute
	if cfg.ScrapeInterval != "" {
		if d, err := time.ParseDuration(cfg.ScrapeInterval); err == nil && d > 0 {
			interval = d
		}
	}
	limit := cfg.GenerateLimit
	if limit <= 0 {
		limit = 5
	}

	return &Scheduler{
		cron:           cron.New(),
		scraper:        scraper,
		generator:      generator,
		scrapeInterval: interval,
		generateLimit:  limit,
		logger:         log.New(os.Stdout, "[scheduler] ", log.LstdFlags),
	}
}

// Start 注册两个周期任务并启动调度循环，直到 Stop 被调用。
func (s *Scheduler) Start(ctx context.Context) error {
	if s.scraper == nil || s.generator == nil {
		return fmt.Errorf("scheduler missing dependencies")
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.scrapeInterval), func() {
		s.RunScrape(ctx)
	}); err != nil {
		return fmt.Errorf("register scrape task: %w", err)
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", generateInterval), func() {
		s.RunGenerate(ctx)
	}); err != nil {
		return fmt.Errorf("register generate task: %w", err)
	}

	s.cron.Start()
	s.logger.Printf("started: scrape every %s, generate every %s", s.scrapeInterval, generateInterval)
	return nil
}

// Stop 停止调度，已在执行中的任务会跑完。
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Printf("stopped")
}

// RunScrape 立即执行一次抓取编排，调度与外部触发共用。
// 已有抓取在执行时跳过本次。
func (s *Scheduler) RunScrape(ctx context.Context) Summary {
	if s.scrapeRunning.Swap(true) {
		s.logger.Printf("scrape already running, skipping")
		return Summary{Status: "skipped"}
	}
	defer s.scrapeRunning.Store(false)

	result := s.scraper.Run(ctx)
	s.logger.Printf("scraping result: %+v", result)
	return result
}

// RunGenerate 立即执行一轮批量生成，返回成功数。
func (s *Scheduler) RunGenerate(ctx context.Context) int {
	if s.generateRunning.Swap(true) {
		s.logger.Printf("generation already running, skipping")
		return 0
	}
	defer s.generateRunning.Store(false)

	processed := s.generator.ProcessPending(ctx, s.generateLimit)
	s.logger.Printf("generated content for %d jobs", processed)
	return processed
}
