package task

import (
	"context"
	"sync"
	"testing"
	"time"
)

type blockingScraper struct {
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingScraper) Run(ctx context.Context) Summary {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.release != nil {
		<-b.release
	}
	return Summary{Status: "success", JobsFound: 2, JobsSaved: 1}
}

type countingGenerator struct {
	limit int
}

func (c *countingGenerator) ProcessPending(ctx context.Context, limit int) int {
	c.limit = limit
	return 3
}

func TestRunScrapeDelegatesToScraper(t *testing.T) {
	t.Parallel()

	scraper := &blockingScraper{}
	s := NewScheduler(scraper, &countingGenerator{}, SchedulerConfig{})

	summary := s.RunScrape(context.Background())

	if summary.Status != "success" || summary.JobsSaved != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if scraper.calls != 1 {
		t.Fatalf("expected 1 scraper call, got %d", scraper.calls)
	}
}

func TestRunScrapeSkipsWhileAlreadyRunning(t *testing.T) {
	t.Parallel()

	scraper := &blockingScraper{release: make(chan struct{})}
	s := NewScheduler(scraper, &countingGenerator{}, SchedulerConfig{})

	started := make(chan struct{})
	done := make(chan Summary, 1)
	go func() {
		close(started)
		done <- s.RunScrape(context.Background())
	}()
	<-started

	// Wait until the first run is actually inside Run.
	deadline := time.After(time.Second)
	for {
		scraper.mu.Lock()
		calls := scraper.calls
		scraper.mu.Unlock()
		if calls == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first scrape never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	second := s.RunScrape(context.Background())
	if second.Status != "skipped" {
		t.Fatalf("expected overlapping scrape to be skipped, got %+v", second)
	}

	close(scraper.release)
	first := <-done
	if first.Status != "success" {
		t.Fatalf("expected first scrape to finish normally, got %+v", first)
	}

	// The guard resets once the first run completes.
	third := s.RunScrape(context.Background())
	if third.Status != "success" {
		t.Fatalf("expected scrape to run again after completion, got %+v", third)
	}
}

func TestRunGeneratePassesConfiguredLimit(t *testing.T) {
	t.Parallel()

	gen := &countingGenerator{}
	s := NewScheduler(&blockingScraper{}, gen, SchedulerConfig{GenerateLimit: 7})

	if processed := s.RunGenerate(context.Background()); processed != 3 {
		t.Fatalf("expected 3 processed, got %d", processed)
	}
	if gen.limit != 7 {
		t.Fatalf("expected configured limit 7, got %d", gen.limit)
	}
}

func TestNewSchedulerParsesScrapeInterval(t *testing.T) {
	t.Parallel()

	s := NewScheduler(&blockingScraper{}, &countingGenerator{}, SchedulerConfig{ScrapeInterval: "15m"})
	if s.scrapeInterval != 15*time.Minute {
		t.Fatalf("expected 15m interval, got %s", s.scrapeInterval)
	}

	s = NewScheduler(&blockingScraper{}, &countingGenerator{}, SchedulerConfig{ScrapeInterval: "not-a-duration"})
	if s.scrapeInterval != 30*time.Minute {
		t.Fatalf("expected default interval on bad config, got %s", s.scrapeInterval)
	}
}

func TestStartRequiresDependencies(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, SchedulerConfig{})
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error when dependencies are missing")
	}
}
