package retention

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhub/internal/model"
)

type stubStore struct {
	jobs       []model.Job
	listErr    error
	replaceErr error
	replaces   atomic.Int32
}

func (s *stubStore) ListAllJobs(context.Context) ([]model.Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.jobs, nil
}

func (s *stubStore) ReplaceJobs(_ context.Context, jobs []model.Job) error {
	s.replaces.Add(1)
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.jobs = jobs
	return nil
}

func newTestCleaner(store Store, cfg Config, now time.Time) *Cleaner {
	c := NewCleaner(store, cfg, nil)
	c.now = func() time.Time { return now }
	return c
}

func jobAt(id string, publishedAt time.Time) model.Job {
	return model.Job{ID: id, Title: "Engineer " + id, Status: model.StatusActive, PublishedAt: publishedAt}
}

func TestCleanupExpiresOldJobs(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-7 * 24 * time.Hour)

	store := &stubStore{jobs: []model.Job{
		jobAt("fresh", now.Add(-time.Hour)),
		jobAt("boundary", cutoff), // 恰好在窗口边界，保留
		jobAt("stale", cutoff.Add(-time.Second)),
	}}
	c := newTestCleaner(store, Config{}, now)

	stats, err := c.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBefore)
	assert.Equal(t, 1, stats.ExpiredCount)
	assert.Equal(t, 1, stats.CleanedCount)
	assert.Positive(t, stats.StorageBytes)

	require.Len(t, store.jobs, 2)
	assert.Equal(t, "fresh", store.jobs[0].ID, "保留结果按发布时间倒序")
	assert.Equal(t, "boundary", store.jobs[1].ID)
}

func TestCleanupTruncatesToMaxRecords(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	var jobs []model.Job
	for i := 0; i < 5; i++ {
		jobs = append(jobs, jobAt(fmt.Sprintf("job-%d", i), now.Add(-time.Duration(i)*time.Hour)))
	}
	store := &stubStore{jobs: jobs}
	c := newTestCleaner(store, Config{MaxRecords: 3}, now)

	stats, err := c.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ExpiredCount)
	assert.Equal(t, 2, stats.CleanedCount)

	require.Len(t, store.jobs, 3)
	assert.Equal(t, "job-0", store.jobs[0].ID, "容量截断保留最新记录")
	assert.Equal(t, "job-2", store.jobs[2].ID)
}

func TestCleanupNoopSkipsReplace(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &stubStore{jobs: []model.Job{jobAt("fresh", now.Add(-time.Hour))}}
	c := newTestCleaner(store, Config{}, now)

	stats, err := c.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CleanedCount)
	assert.Equal(t, int32(0), store.replaces.Load(), "没有可清理的记录时不应重写存储")
}

func TestCleanupKeepsDataOnReplaceFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &stubStore{
		jobs:       []model.Job{jobAt("stale", now.Add(-30 * 24 * time.Hour))},
		replaceErr: errors.New("disk full"),
	}
	c := newTestCleaner(store, Config{}, now)

	_, err := c.Cleanup(context.Background())
	assert.Error(t, err)
	require.Len(t, store.jobs, 1, "落库失败时原数据不得丢失")
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	assert.Equal(t, 7, cfg.retentionDays())
	assert.Equal(t, 24*time.Hour, cfg.interval())
	assert.Equal(t, 10000, cfg.maxRecords())
	assert.True(t, cfg.autoCleanup())

	off := false
	cfg = Config{AutoCleanup: &off}
	assert.False(t, cfg.autoCleanup())
}

func TestRunDisabledReturnsImmediately(t *testing.T) {
	t.Parallel()

	off := false
	c := NewCleaner(&stubStore{}, Config{AutoCleanup: &off}, nil)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("disabled cleaner should return immediately")
	}
}
