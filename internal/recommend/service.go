package recommend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"jobhub/internal/model"
)

// Store 定义推荐记录的持久化接口，记录不存在时返回 sql.ErrNoRows。
type Store interface {
	GetDailyRecommendation(ctx context.Context, date, audienceKey string) (*model.DailyRecommendation, error)
	SaveDailyRecommendation(ctx context.Context, rec *model.DailyRecommendation) error
}

// JobSource 提供候选职位：发布时间早于 publishedBefore 的在架职位。
type JobSource interface {
	ListActiveJobs(ctx context.Context, publishedBefore time.Time) ([]model.Job, error)
}

// Service 负责每日推荐的读取、生成与落库。
type Service struct {
	store  Store
	jobs   JobSource
	logger *log.Logger

	now func() time.Time
}

// NewService 创建推荐服务，logger 传 nil 时输出到标准输出。
func NewService(store Store, jobs JobSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(os.Stdout, "[recommend] ", log.LstdFlags)
	}
	return &Service{store: store, jobs: jobs, logger: logger, now: time.Now}
}

// Daily 返回指定日期、指定受众的推荐。已有记录且通过时间一致性校验时
// 直接复用；记录缺失或包含晚于当天的职位时重新生成并写回。
// date 为空表示今天（UTC），格式必须是 2006-01-02。
func (s *Service) Daily(ctx context.Context, date, audienceKey string) (*model.DailyRecommendation, error) {
	if date == "" {
		date = s.now().UTC().Format("2006-01-02")
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse recommendation date %q: %w", date, err)
	}
	dayEnd := day.AddDate(0, 0, 1)

	existing, err := s.store.GetDailyRecommendation(ctx, date, audienceKey)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load daily recommendation: %w", err)
	}
	if existing != nil && s.consistent(existing, dayEnd) {
		return existing, nil
	}

	pool, err := s.jobs.ListActiveJobs(ctx, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list candidate jobs: %w", err)
	}

	rec := Build(date, audienceKey, pool)
	if err := s.store.SaveDailyRecommendation(ctx, rec); err != nil {
		return nil, fmt.Errorf("save daily recommendation: %w", err)
	}
	return rec, nil
}

// consistent 校验已存记录：任何一条职位发布晚于当天即判定失效。
func (s *Service) consistent(rec *model.DailyRecommendation, dayEnd time.Time) bool {
	for _, rj := range rec.Jobs {
		if !rj.PublishedAt.Before(dayEnd) {
			s.logger.Printf("recommendation %s contains job %s published at %s, regenerating",
				rec.Date, rj.ID, rj.PublishedAt.Format(time.RFC3339))
			return false
		}
	}
	return true
}
