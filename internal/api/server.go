package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"freelance-assistant/internal/ai"
	"freelance-assistant/internal/model"
	"freelance-assistant/internal/storage"
	"freelance-assistant/internal/task"
)

// Store 抽象存储接口，web 层只读写 Job Store。
type Store interface {
	ListJobs(ctx context.Context, opts storage.JobQueryOptions) ([]model.Job, error)
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListContentByJob(ctx context.Context, jobID string) ([]model.GeneratedContent, error)
	CreateProposal(ctx context.Context, proposal *model.Proposal) error
	ListProposalsByJob(ctx context.Context, jobID string) ([]model.Proposal, error)
	CountByStatus(ctx context.Context) (map[model.Status]int64, error)
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Scraper 允许请求同步触发一次抓取编排。
type Scraper interface {
	RunScrape(ctx context.Context) task.Summary
}

// Generator 允许请求同步触发单任务生成。
type Generator interface {
	GenerateForJob(ctx context.Context, jobID string) bool
}

// ProposalService 生成提案文本。
type ProposalService interface {
	Generate(ctx context.Context, in ai.ProposalInput) (string, error)
	GenerateShort(ctx context.Context, jobTitle, jobDescription string) (string, error)
}

// NewHandler 构造 HTTP 多路复用器。
func NewHandler(store Store, scraper Scraper, generator Generator, proposals ProposalService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		opts := storage.JobQueryOptions{Limit: 50}
		if s := r.URL.Query().Get("status"); s != "" {
			status, err := model.ParseStatus(s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			opts.Status = status
		}
		if v := r.URL.Query().Get("skip"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				opts.Offset = n
			}
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				if n > 100 {
					n = 100
				}
				opts.Limit = n
			}
		}

		jobs, err := store.ListJobs(r.Context(), opts)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		for i := range jobs {
			jobs[i].Description = truncate(jobs[i].Description, 200)
		}
		writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
	})

	mux.HandleFunc("GET /api/jobs/{job_id}", func(w http.ResponseWriter, r *http.Request) {
		job, err := store.GetJob(r.Context(), r.PathValue("job_id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"job": job})
	})

	mux.HandleFunc("GET /api/jobs/{job_id}/content", func(w http.ResponseWriter, r *http.Request) {
		contents, err := store.ListContentByJob(r.Context(), r.PathValue("job_id"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"content": contents})
	})

	mux.HandleFunc("POST /api/scrape", func(w http.ResponseWriter, r *http.Request) {
		result := scraper.RunScrape(r.Context())
		status := http.StatusOK
		if result.Status == "error" {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, result)
	})

	mux.HandleFunc("POST /api/generate/{job_id}", func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("job_id")
		if generator.GenerateForJob(r.Context(), jobID) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "success", "job_id": jobID})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "generation failed"})
	})

	mux.HandleFunc("POST /api/proposals/{job_id}", func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("job_id")
		job, err := store.GetJob(r.Context(), jobID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		var req struct {
			Type string `json:"type"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // 空 body 视作标准提案
		}
		proposalType := req.Type
		if proposalType != model.ProposalTypeShort {
			proposalType = model.ProposalTypeStandard
		}

		var text string
		if proposalType == model.ProposalTypeShort {
			text, err = proposals.GenerateShort(r.Context(), job.Title, job.Description)
		} else {
			text, err = proposals.Generate(r.Context(), ai.ProposalInput{
				JobTitle:       job.Title,
				JobDescription: job.Description,
				Budget:         job.Budget,
			})
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
			return
		}

		proposal := &model.Proposal{JobID: jobID, ProposalText: text, ProposalType: proposalType}
		if err := store.CreateProposal(r.Context(), proposal); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "proposal": proposal})
	})

	mux.HandleFunc("GET /api/proposals/{job_id}", func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListProposalsByJob(r.Context(), r.PathValue("job_id"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"proposals": list})
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.CountByStatus(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		var total int64
		for _, n := range counts {
			total += n
		}
		writeJSON(w, http.StatusOK, map[string]int64{
			"total_jobs":  total,
			"pending":     counts[model.StatusPending],
			"in_progress": counts[model.StatusInProgress],
			"completed":   counts[model.StatusCompleted],
			"failed":      counts[model.StatusFailed],
		})
	})

	mux.HandleFunc("GET /api/settings/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		value, found, err := store.GetSetting(r.Context(), key)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "setting not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
	})

	mux.HandleFunc("PUT /api/settings/{key}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		key := r.PathValue("key")
		if err := store.SetSetting(r.Context(), key, req.Value); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
	})

	return mux
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "Job not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}
