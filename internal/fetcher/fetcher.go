package fetcher

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"freelance-assistant/internal/model"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// Config 定义抓取配置。Feeds 是分类到 RSS 地址的映射，
// 为空时使用 Upwork 默认的三个写作类信息流。
type Config struct {
	MaxJobs         int               `yaml:"max_jobs" json:"max_jobs"`
	DefaultCategory string            `yaml:"default_category" json:"default_category"`
	Feeds           map[string]string `yaml:"feeds" json:"feeds"`
}

// JobFetcher 抓取统一接口。
type JobFetcher interface {
	Fetch(ctx context.Context, category string, maxJobs int) ([]model.Job, error)
	FetchAll(ctx context.Context, maxJobs int) ([]model.Job, error)
}

// UpworkFetcher 抓取 Upwork RSS 信息流并归一化为 Job 记录。
type UpworkFetcher struct {
	feeds           map[string]string
	defaultCategory string
	client          *http.Client
	logger          *log.Logger
}

var defaultFeeds = map[string]string{
	"reviews":  "https://www.upwork.com/ab/feed/jobs/rss?q=review+writing",
	"comments": "https://www.upwork.com/ab/feed/jobs/rss?q=comment+writing",
	"feedback": "https://www.upwork.com/ab/feed/jobs/rss?q=feedback+writing",
}

// NewUpworkFetcher 创建 Upwork 抓取器。
func NewUpworkFetcher(cfg Config, client *http.Client) *UpworkFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	feeds := cfg.Feeds
	if len(feeds) == 0 {
		feeds = defaultFeeds
	}
	defaultCategory := strings.TrimSpace(cfg.DefaultCategory)
	if defaultCategory == "" {
		defaultCategory = "reviews"
	}
	if _, ok := feeds[defaultCategory]; !ok {
		for name := range feeds {
			defaultCategory = name
			break
		}
	}
	return &UpworkFetcher{
		feeds:           feeds,
		defaultCategory: defaultCategory,
		client:          client,
		logger:          log.New(os.Stdout, "[fetcher] ", log.LstdFlags),
	}
}

// Fetch 抓取指定分类的信息流，逐条归一化。
// 单条解析失败会被跳过并记录，不会中断整批；
// 抓取本身失败（网络 / XML）返回 JobFetchError。
func (u *UpworkFetcher) Fetch(ctx context.Context, category string, maxJobs int) ([]model.Job, error) {
	if maxJobs <= 0 {
		maxJobs = 20
	}
	feedURL, ok := u.feeds[category]
	if !ok {
		feedURL = u.feeds[u.defaultCategory]
	}
	u.logf("fetch category=%s max_jobs=%d url=%s", category, maxJobs, feedURL)

	entries, err := u.fetchEntries(ctx, feedURL)
	if err != nil {
		return nil, &model.JobFetchError{Platform: "upwork", Err: err}
	}
	if len(entries) > maxJobs {
		entries = entries[:maxJobs]
	}

	jobs := make([]model.Job, 0, len(entries))
	for _, entry := range entries {
		job, err := parseEntry(entry)
		if err != nil {
			u.logf("skip entry: %v", err)
			continue
		}
		jobs = append(jobs, job)
	}

	u.logf("fetch done category=%s entries=%d jobs=%d", category, len(entries), len(jobs))
	return jobs, nil
}

// FetchAll 并发抓取全部已配置分类，按 job_id 去重，
// 每个分类受 maxJobs 限制。任一分类失败则整体失败。
func (u *UpworkFetcher) FetchAll(ctx context.Context, maxJobs int) ([]model.Job, error) {
	categories := make([]string, 0, len(u.feeds))
	for name := range u.feeds {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var mu sync.Mutex
	all := make([]model.Job, 0)

	g, ctx := errgroup.WithContext(ctx)
	for _, category := range categories {
		category := category
		g.Go(func() error {
			jobs, err := u.Fetch(ctx, category, maxJobs)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, jobs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	deduped := make([]model.Job, 0, len(all))
	for _, job := range all {
		if _, ok := seen[job.JobID]; ok {
			continue
		}
		seen[job.JobID] = struct{}{}
		deduped = append(deduped, job)
	}

	u.logf("fetch all done categories=%d total=%d deduped=%d", len(categories), len(all), len(deduped))
	return deduped, nil
}

func (u *UpworkFetcher) fetchEntries(ctx context.Context, feedURL string) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}
	return doc.Channel.Items, nil
}

func (u *UpworkFetcher) logf(format string, args ...any) {
	if u.logger == nil {
		u.logger = log.New(os.Stdout, "[fetcher] ", log.LstdFlags)
	}
	u.logger.Printf(format, args...)
}

// rssDocument mirrors Upwork job feed 结构（精简字段）。
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Description string   `xml:"description"`
	Link        string   `xml:"link"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
}

// parseEntry 将单个 RSS 条目归一化为 Job。
func parseEntry(entry rssItem) (model.Job, error) {
	link := strings.TrimSpace(entry.Link)
	if link == "" {
		return model.Job{}, fmt.Errorf("entry missing link")
	}

	title := cleanText(stripMarkup(entry.Title))
	description := cleanText(stripMarkup(entry.Description))

	budget := extractPrice(description)
	budgetType := model.BudgetTypeHourly
	if budget != nil {
		budgetType = model.BudgetTypeFixed
	}

	var postedDate *time.Time
	if t, ok := parsePubDate(entry.PubDate); ok {
		postedDate = &t
	}

	skills := make([]string, 0, len(entry.Categories))
	for _, tag := range entry.Categories {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	return model.Job{
		JobID:          GenerateJobID(link),
		Platform:       "upwork",
		Title:          title,
		Description:    description,
		Category:       classifyCategory(title, description),
		Budget:         budget,
		BudgetType:     budgetType,
		Complexity:     estimateComplexity(title, description),
		Status:         model.StatusPending,
		PostedDate:     postedDate,
		SkillsRequired: datatypes.NewJSONSlice(skills),
		URL:            link,
	}, nil
}

// GenerateJobID 计算条目 URL 的 MD5 摘要前 16 位，
// 确定性保证同一链接永不产生重复记录。
func GenerateJobID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC3339,
}

func parsePubDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
