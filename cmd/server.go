package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"freelance-assistant/internal/ai"
	"freelance-assistant/internal/api"
	"freelance-assistant/internal/fetcher"
	"freelance-assistant/internal/storage"
	"freelance-assistant/internal/task"
)

// AppConfig 应用配置，YAML 文件加载后由环境变量覆盖关键项。
type AppConfig struct {
	Server    ServerConfig         `yaml:"server"`
	Database  DatabaseConfig       `yaml:"database"`
	Fetcher   fetcher.Config       `yaml:"fetcher"`
	AI        ai.Config            `yaml:"ai"`
	Scrape    task.ScrapeConfig    `yaml:"scrape"`
	Scheduler task.SchedulerConfig `yaml:"scheduler"`
	Profile   *ai.Profile          `yaml:"profile"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("load config error: %v", err)
		return
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "freelance_assistant.db"
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		log.Printf("init store error: %v", err)
		return
	}
	defer store.Close()

	// API Key 缺失属于致命配置错误，进程直接退出。
	client, err := ai.NewAnthropicClient(cfg.AI, nil)
	if err != nil {
		log.Printf("init ai client error: %v", err)
		return
	}
	completer := ai.NewRetryCompleter(client, cfg.AI.MaxRetries, nil)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	fetch := fetcher.NewUpworkFetcher(cfg.Fetcher, httpClient)

	scraper := task.NewScrapeTask(fetch, store, cfg.Scrape)
	generate := task.NewGenerateTask(store, ai.NewRegistry(completer))
	proposals := ai.NewProposalGenerator(completer)

	sched := task.NewScheduler(scraper, generate, cfg.Scheduler)

	handler := api.NewHandler(store, sched, generate, proposals)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		log.Printf("scheduler start error: %v", err)
		return
	}
	defer sched.Stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("server error: %v", err)
	}
}

func loadConfig() (AppConfig, error) {
	// .env 优先加载，缺失不报错，与环境变量覆盖配合使用。
	_ = godotenv.Load()

	var cfg AppConfig
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, err
		}
	} else if os.Getenv("CONFIG_FILE") != "" {
		// 显式指定的配置文件必须存在
		return AppConfig{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides 用环境变量覆盖敏感项与常用调优项。
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("SCHEDULER_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scheduler.ScrapeInterval = strconv.Itoa(n) + "m"
		}
	}
	if v := os.Getenv("MIN_JOB_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scrape.MinPrice = &f
		}
	}
	if v := os.Getenv("MAX_JOB_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scrape.MaxPrice = &f
		}
	}
	if v := os.Getenv("TARGET_CATEGORIES"); v != "" {
		categories := make([]string, 0)
		for _, c := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(c); trimmed != "" {
				categories = append(categories, trimmed)
			}
		}
		if len(categories) > 0 {
			cfg.Scrape.Categories = categories
		}
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}
