// Package retention 负责职位数据的过期清理与容量控制。
package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"jobhub/internal/model"
)

// Config 控制清理策略。零值字段使用默认：保留 7 天、每 24 小时清理一次、
// 上限 10000 条；AutoCleanup 不配置时默认开启。
type Config struct {
	RetentionDays        int   `yaml:"retention_days" json:"retention_days"`
	CleanupIntervalHours int   `yaml:"cleanup_interval_hours" json:"cleanup_interval_hours"`
	MaxRecords           int   `yaml:"max_records" json:"max_records"`
	AutoCleanup          *bool `yaml:"auto_cleanup" json:"auto_cleanup"`
}

func (c Config) retentionDays() int {
	if c.RetentionDays <= 0 {
		return 7
	}
	return c.RetentionDays
}

func (c Config) interval() time.Duration {
	hours := c.CleanupIntervalHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func (c Config) maxRecords() int {
	if c.MaxRecords <= 0 {
		return 10000
	}
	return c.MaxRecords
}

func (c Config) autoCleanup() bool {
	if c.AutoCleanup == nil {
		return true
	}
	return *c.AutoCleanup
}

// Stats 汇总一次清理的结果。
type Stats struct {
	TotalBefore  int `json:"total_before"`
	ExpiredCount int `json:"expired_count"`
	CleanedCount int `json:"cleaned_count"`
	StorageBytes int `json:"storage_bytes"`
}

// Store 定义清理所需的存储接口。ReplaceJobs 必须原子生效：
// 失败时旧数据保持不变。
type Store interface {
	ListAllJobs(ctx context.Context) ([]model.Job, error)
	ReplaceJobs(ctx context.Context, jobs []model.Job) error
}

// Cleaner 执行过期过滤与容量截断。
type Cleaner struct {
	store  Store
	cfg    Config
	logger *log.Logger

	now func() time.Time
}

// NewCleaner 创建清理器，logger 传 nil 时输出到标准输出。
func NewCleaner(store Store, cfg Config, logger *log.Logger) *Cleaner {
	if logger == nil {
		logger = log.New(os.Stdout, "[retention] ", log.LstdFlags)
	}
	return &Cleaner{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// Cleanup 执行一次清理：先删掉发布时间早于保留窗口的记录（恰好落在
// 窗口边界的保留），再按发布时间倒序截断到容量上限。任何一步出错都
// 不落库，原始数据保持不变。
func (c *Cleaner) Cleanup(ctx context.Context) (Stats, error) {
	stats := Stats{}

	jobs, err := c.store.ListAllJobs(ctx)
	if err != nil {
		return stats, fmt.Errorf("list jobs for cleanup: %w", err)
	}
	stats.TotalBefore = len(jobs)

	cutoff := c.now().Add(-time.Duration(c.cfg.retentionDays()) * 24 * time.Hour)
	keep := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.PublishedAt.Before(cutoff) {
			continue
		}
		keep = append(keep, job)
	}
	stats.ExpiredCount = stats.TotalBefore - len(keep)

	sort.SliceStable(keep, func(i, j int) bool {
		if keep[i].PublishedAt.Equal(keep[j].PublishedAt) {
			return keep[i].ID < keep[j].ID
		}
		return keep[i].PublishedAt.After(keep[j].PublishedAt)
	})
	if max := c.cfg.maxRecords(); len(keep) > max {
		keep = keep[:max]
	}
	stats.CleanedCount = stats.TotalBefore - len(keep)

	if data, err := json.Marshal(keep); err == nil {
		stats.StorageBytes = len(data)
	}

	if stats.CleanedCount == 0 {
		return stats, nil
	}

	if err := c.store.ReplaceJobs(ctx, keep); err != nil {
		return stats, fmt.Errorf("replace jobs after cleanup: %w", err)
	}
	c.logger.Printf("cleanup removed %d of %d jobs (%d expired)",
		stats.CleanedCount, stats.TotalBefore, stats.ExpiredCount)
	return stats, nil
}

// Run 按配置间隔循环清理，直到 ctx 结束。自动清理关闭时立即返回。
func (c *Cleaner) Run(ctx context.Context) error {
	if !c.cfg.autoCleanup() {
		c.logger.Println("auto cleanup disabled")
		return nil
	}

	ticker := time.NewTicker(c.cfg.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.Cleanup(ctx); err != nil {
				c.logger.Printf("scheduled cleanup failed: %v", err)
			}
		}
	}
}
