package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"jobhub/internal/audience"
	"jobhub/internal/model"
	"jobhub/internal/retention"
	"jobhub/internal/storage"
)

// Store 抽象存储接口。
type Store interface {
	ListJobs(ctx context.Context, opts storage.JobQueryOptions) ([]model.Job, error)
	CountJobs(ctx context.Context, opts storage.JobQueryOptions) (int64, error)
	ListCompanies(ctx context.Context, limit int) ([]model.Company, error)
}

// Scheduler 抽象调度接口。
type Scheduler interface {
	RunOnce(ctx context.Context) (int, error)
}

// Recommender 返回每日推荐。
type Recommender interface {
	Daily(ctx context.Context, date, audienceKey string) (*model.DailyRecommendation, error)
}

// Cleaner 执行数据保留清理。
type Cleaner interface {
	Cleanup(ctx context.Context) (retention.Stats, error)
}

// AudienceService 处理受众订阅。
type AudienceService interface {
	Subscribe(ctx context.Context, req audience.Request) (model.Audience, error)
	List(ctx context.Context) ([]model.Audience, error)
}

// NewHandler 构造 HTTP 多路复用器。
func NewHandler(store Store, sched Scheduler, rec Recommender, cleaner Cleaner, auds AudienceService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				if v > 100 {
					v = 100
				}
				limit = v
			}
		}
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}

		opts := queryOptions(r)
		opts.Offset = (page - 1) * limit
		opts.Limit = limit + 1

		jobs, err := store.ListJobs(r.Context(), opts)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		total, err := store.CountJobs(r.Context(), opts)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		hasMore := false
		if len(jobs) > limit {
			hasMore = true
			jobs = jobs[:limit]
		}

		w.Header().Set("X-Page", strconv.Itoa(page))
		w.Header().Set("X-Limit", strconv.Itoa(limit))
		w.Header().Set("X-Has-More", strconv.FormatBool(hasMore))
		w.Header().Set("X-Total", strconv.FormatInt(total, 10))
		writeJSON(w, http.StatusOK, jobs)
	})

	mux.HandleFunc("/api/companies", func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v
			}
		}
		companies, err := store.ListCompanies(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, companies)
	})

	mux.HandleFunc("/api/recommendations/daily", func(w http.ResponseWriter, r *http.Request) {
		if rec == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recommendations disabled"})
			return
		}
		date := r.URL.Query().Get("date")
		key := r.URL.Query().Get("audience")
		result, err := rec.Daily(r.Context(), date, key)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		created, err := sched.RunOnce(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"created": created})
	})

	mux.HandleFunc("/api/retention/cleanup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if cleaner == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "retention disabled"})
			return
		}
		stats, err := cleaner.Cleanup(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	mux.HandleFunc("/api/audiences", func(w http.ResponseWriter, r *http.Request) {
		if auds == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "audiences disabled"})
			return
		}
		switch r.Method {
		case http.MethodPost:
			var req audience.Request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
			created, err := auds.Subscribe(r.Context(), req)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusCreated, created)
		case http.MethodGet:
			list, err := auds.List(r.Context())
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, list)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "job hub api"})
	})

	return mux
}

// queryOptions 把查询参数映射成存储过滤条件。
func queryOptions(r *http.Request) storage.JobQueryOptions {
	q := r.URL.Query()
	opts := storage.JobQueryOptions{
		Region:   model.Region(strings.TrimSpace(q.Get("region"))),
		Category: model.Category(strings.TrimSpace(q.Get("category"))),
		Status:   model.JobStatus(strings.TrimSpace(q.Get("status"))),
	}
	for _, s := range q["skill"] {
		if trimmed := strings.ToLower(strings.TrimSpace(s)); trimmed != "" {
			opts.Skills = append(opts.Skills, trimmed)
		}
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
