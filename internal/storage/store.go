package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobhub/internal/company"
	"jobhub/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 封装 SQLite 数据库访问，负责职位、公司、每日推荐与受众的增删查。
type Store struct {
	db *gorm.DB
}

// UpsertResult 表示职位写入结果。
type UpsertResult struct {
	Created int
	NewJobs []model.Job
}

// JobQueryOptions 提供职位查询过滤条件。
type JobQueryOptions struct {
	Limit    int
	Offset   int
	Region   model.Region
	Category model.Category
	Status   model.JobStatus
	Skills   []string
}

// NewStore 创建 Store 并自动迁移数据表。
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&model.Job{}, &model.Company{}, &model.DailyRecommendation{}, &model.Audience{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// UpsertJobs 写入职位列表，已有主键则更新，返回新增数量与新增记录。
// 翻译与人工编辑相关字段不在更新列里：重复抓取不能冲掉译文和人工修改。
func (s *Store) UpsertJobs(ctx context.Context, jobs []model.Job) (UpsertResult, error) {
	res := UpsertResult{}
	if len(jobs) == 0 {
		return res, nil
	}

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}

	var existing []string
	if err := s.db.WithContext(ctx).Model(&model.Job{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return res, fmt.Errorf("query existing ids: %w", err)
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	for i, id := range ids {
		if _, ok := existingSet[id]; !ok {
			res.Created++
			res.NewJobs = append(res.NewJobs, jobs[i])
			existingSet[id] = struct{}{}
		}
	}

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source",
			"source_url",
			"title",
			"company",
			"location",
			"description",
			"url",
			"company_url",
			"company_linked_in",
			"timezone",
			"requirements",
			"benefits",
			"skill_tags",
			"category",
			"experience_level",
			"industry",
			"region",
			"salary_range",
			"location_restriction",
			"language_requirements",
			"is_remote",
			"status",
			"data_quality",
			"published_at",
			"updated_at",
		}),
	}).Create(&jobs)
	if tx.Error != nil {
		return res, fmt.Errorf("upsert jobs: %w", tx.Error)
	}

	return res, nil
}

// ListJobs 返回按发布时间倒序的职位列表。
func (s *Store) ListJobs(ctx context.Context, opts JobQueryOptions) ([]model.Job, error) {
	var jobs []model.Job
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	query := s.db.WithContext(ctx).Model(&model.Job{}).Order("published_at DESC")
	query = applyJobFilters(query, opts)
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// CountJobs 返回满足过滤条件的职位数量。
func (s *Store) CountJobs(ctx context.Context, opts JobQueryOptions) (int64, error) {
	var total int64
	query := applyJobFilters(s.db.WithContext(ctx).Model(&model.Job{}), opts)
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return total, nil
}

// GetJob 根据 ID 获取职位。
func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// SaveJob 整条保存职位，用于人工编辑等整体更新。
func (s *Store) SaveJob(ctx context.Context, job *model.Job) error {
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// ListUntranslatedJobs 返回尚未翻译成功的在架职位，按创建时间升序。
func (s *Store) ListUntranslatedJobs(ctx context.Context, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []model.Job
	if err := s.db.WithContext(ctx).
		Where("is_translated = ? AND status = ?", false, model.StatusActive).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list untranslated jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJobTranslation 只写回翻译三字段，不触碰其他列。
func (s *Store) UpdateJobTranslation(ctx context.Context, job model.Job) error {
	tx := s.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", job.ID).
		Select("translations", "is_translated", "translation_error", "updated_at").
		Updates(map[string]any{
			"translations":      job.Translations,
			"is_translated":     job.IsTranslated,
			"translation_error": job.TranslationError,
			"updated_at":        time.Now(),
		})
	if tx.Error != nil {
		return fmt.Errorf("update job translation: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update job translation: id %s not found", job.ID)
	}
	return nil
}

// ListActiveJobs 返回发布时间早于 publishedBefore 的在架职位，
// 按发布时间倒序，用作每日推荐候选池。
func (s *Store) ListActiveJobs(ctx context.Context, publishedBefore time.Time) ([]model.Job, error) {
	var jobs []model.Job
	if err := s.db.WithContext(ctx).
		Where("status = ? AND published_at < ?", model.StatusActive, publishedBefore).
		Order("published_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	return jobs, nil
}

// ListAllJobs 返回全部职位，供清理流程做过滤重写。
func (s *Store) ListAllJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	if err := s.db.WithContext(ctx).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list all jobs: %w", err)
	}
	return jobs, nil
}

// ReplaceJobs 在单个事务里用给定集合整体替换职位表，失败时回滚。
func (s *Store) ReplaceJobs(ctx context.Context, jobs []model.Job) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Job{}).Error; err != nil {
			return fmt.Errorf("clear jobs: %w", err)
		}
		if len(jobs) == 0 {
			return nil
		}
		if err := tx.Create(&jobs).Error; err != nil {
			return fmt.Errorf("rewrite jobs: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace jobs: %w", err)
	}
	return nil
}

// UpsertCompanies 按合并键写入公司目录。已有记录先与新记录合并
// （简介取更长者、标签并集），职位数取新目录的统计值保证可重复执行。
func (s *Store) UpsertCompanies(ctx context.Context, companies []model.Company) error {
	if len(companies) == 0 {
		return nil
	}

	keys := make([]string, 0, len(companies))
	for _, c := range companies {
		keys = append(keys, c.DedupKey)
	}

	var existing []model.Company
	if err := s.db.WithContext(ctx).Where("dedup_key IN ?", keys).Find(&existing).Error; err != nil {
		return fmt.Errorf("query existing companies: %w", err)
	}
	byKey := make(map[string]model.Company, len(existing))
	for _, c := range existing {
		byKey[c.DedupKey] = c
	}

	rows := make([]model.Company, 0, len(companies))
	for _, c := range companies {
		if prev, ok := byKey[c.DedupKey]; ok {
			merged := company.Merge(prev, c)
			merged.ID = prev.ID
			merged.JobCount = c.JobCount
			c = merged
		}
		rows = append(rows, c)
	}

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "url", "description", "logo", "industry", "tags", "source", "job_count", "updated_at",
		}),
	}).Create(&rows)
	if tx.Error != nil {
		return fmt.Errorf("upsert companies: %w", tx.Error)
	}
	return nil
}

// ListCompanies 返回按职位数倒序的公司目录。
func (s *Store) ListCompanies(ctx context.Context, limit int) ([]model.Company, error) {
	var companies []model.Company
	query := s.db.WithContext(ctx).Order("job_count DESC, name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// GetDailyRecommendation 按日期与受众读取推荐，记录不存在时返回 sql.ErrNoRows。
func (s *Store) GetDailyRecommendation(ctx context.Context, date, audienceKey string) (*model.DailyRecommendation, error) {
	var rec model.DailyRecommendation
	if err := s.db.WithContext(ctx).
		First(&rec, "date = ? AND audience_key = ?", date, audienceKey).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get daily recommendation: %w", err)
	}
	return &rec, nil
}

// SaveDailyRecommendation 写入或覆盖某天某受众的推荐记录。
func (s *Store) SaveDailyRecommendation(ctx context.Context, rec *model.DailyRecommendation) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "audience_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"jobs", "timestamp", "updated_at"}),
	}).Create(rec)
	if tx.Error != nil {
		return fmt.Errorf("save daily recommendation: %w", tx.Error)
	}
	return nil
}

// CreateAudience 新增受众订阅。
func (s *Store) CreateAudience(ctx context.Context, aud *model.Audience) error {
	if err := s.db.WithContext(ctx).Create(aud).Error; err != nil {
		return fmt.Errorf("create audience: %w", err)
	}
	return nil
}

// ListAudiences 返回所有受众记录。
func (s *Store) ListAudiences(ctx context.Context) ([]model.Audience, error) {
	var auds []model.Audience
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&auds).Error; err != nil {
		return nil, fmt.Errorf("list audiences: %w", err)
	}
	return auds, nil
}

func applyJobFilters(db *gorm.DB, opts JobQueryOptions) *gorm.DB {
	if opts.Region != "" {
		db = db.Where("region = ?", opts.Region)
	}
	if opts.Category != "" {
		db = db.Where("category = ?", opts.Category)
	}
	if opts.Status != "" {
		db = db.Where("status = ?", opts.Status)
	}
	for _, skill := range opts.Skills {
		if skill == "" {
			continue
		}
		path := fmt.Sprintf("$.\"%s\"", skill)
		db = db.Where("json_extract(skill_tags, ?) = 1", path)
	}
	return db
}
