package model

import (
	"time"

	"gorm.io/datatypes"
)

// Category 表示职位的功能分类，取值为固定的中文枚举（见 classifier 包的关键词表）。
type Category string

// CategoryOther 是未命中任何关键词时的兜底分类。
const CategoryOther Category = "其他"

// Industry 表示公司所属行业，同样为固定枚举。
type Industry string

// IndustryOther 是行业兜底值。
const IndustryOther Industry = "其他"

// ExperienceLevel 表示职级要求。
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "Entry"
	LevelMid       ExperienceLevel = "Mid"
	LevelSenior    ExperienceLevel = "Senior"
	LevelLead      ExperienceLevel = "Lead"
	LevelExecutive ExperienceLevel = "Executive"
)

// Region 表示职位面向的地域池。
type Region string

const (
	RegionDomestic Region = "domestic"
	RegionOverseas Region = "overseas"
	RegionBoth     Region = "both"
)

// JobStatus 表示职位生命周期状态。
type JobStatus string

const (
	StatusActive  JobStatus = "active"
	StatusExpired JobStatus = "expired"
	StatusRemoved JobStatus = "removed"
)

// SalaryPeriod 表示薪资计薪周期。
type SalaryPeriod string

const (
	PeriodHourly  SalaryPeriod = "hourly"
	PeriodDaily   SalaryPeriod = "daily"
	PeriodWeekly  SalaryPeriod = "weekly"
	PeriodMonthly SalaryPeriod = "monthly"
	PeriodYearly  SalaryPeriod = "yearly"
)

// RestrictionType 表示地域限制类型。
type RestrictionType string

const (
	NoRestriction   RestrictionType = "NoRestriction"
	SpecificRegions RestrictionType = "SpecificRegions"
)

// SalaryRange 表示解析出的薪资区间，单位为目标币种的年/月等周期金额。
type SalaryRange struct {
	Min        int          `json:"min"`
	Max        int          `json:"max"`
	Currency   string       `json:"currency"`
	Period     SalaryPeriod `json:"period"`
	Negotiable bool         `json:"negotiable"`
}

// LocationRestriction 表示职位的地域限制说明。
type LocationRestriction struct {
	Type        RestrictionType `json:"type"`
	Regions     []string        `json:"regions,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Translations 保存已通过校验的中文译文，要么整体存在要么整体为空。
type Translations struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements,omitempty"`
	Benefits     []string  `json:"benefits,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DataQuality 表示数据质量评估结果。
type DataQuality struct {
	Score         int      `json:"score"`
	Completeness  float64  `json:"completeness"`
	Accuracy      float64  `json:"accuracy"`
	Freshness     float64  `json:"freshness"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Issues        []string `json:"issues,omitempty"`
}

// LanguageLevel 表示语言要求等级。
type LanguageLevel string

const (
	LangConversational LanguageLevel = "conversational"
	LangBusiness       LanguageLevel = "business"
	LangFluent         LanguageLevel = "fluent"
	LangNative         LanguageLevel = "native"
)

// LanguageRequirement 表示一条语言要求。
type LanguageRequirement struct {
	Language string        `json:"language"`
	Level    LanguageLevel `json:"level"`
	Required bool          `json:"required"`
}

// EditRecord 记录一次人工修改。
type EditRecord struct {
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	EditedAt time.Time `json:"edited_at"`
	EditedBy string    `json:"edited_by"`
}

// Job 表示归一化后的职位记录
// - ID: 由 title+company+publishedAt 确定性推导，或由上游指定
// - Category/ExperienceLevel/Industry/Region: 由分类器推导，人工编辑后需重算
// - Translations: 要么完整（标题+描述非空）要么为 nil，不允许半翻译状态
// - SkillTags: 已按同义词表归一化去重，键为技能名
// - CreatedAt/UpdatedAt: 由 GORM 自动维护
type Job struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Source      string `json:"source"`
	SourceURL   string `json:"source_url"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`

	CompanyURL      string `json:"company_url,omitempty"`
	CompanyLinkedIn string `json:"company_linkedin,omitempty"`
	Timezone        string `json:"timezone,omitempty"`

	Requirements []string          `gorm:"serializer:json" json:"requirements,omitempty"`
	Benefits     []string          `gorm:"serializer:json" json:"benefits,omitempty"`
	SkillTags    datatypes.JSONMap `json:"skill_tags,omitempty"`

	Category        Category        `json:"category"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Industry        Industry        `json:"industry"`
	Region          Region          `json:"region"`

	SalaryRange          *SalaryRange          `gorm:"serializer:json" json:"salary_range,omitempty"`
	LocationRestriction  LocationRestriction   `gorm:"serializer:json" json:"location_restriction"`
	LanguageRequirements []LanguageRequirement `gorm:"serializer:json" json:"language_requirements,omitempty"`
	IsRemote             bool                  `json:"is_remote"`

	Translations     *Translations `gorm:"serializer:json" json:"translations,omitempty"`
	IsTranslated     bool          `json:"is_translated"`
	TranslationError string        `json:"translation_error,omitempty"`

	IsManuallyEdited bool         `json:"is_manually_edited"`
	EditHistory      []EditRecord `gorm:"serializer:json" json:"edit_history,omitempty"`
	IsApproved       bool         `json:"is_approved"`
	IsFeatured       bool         `json:"is_featured"`
	Status           JobStatus    `json:"status"`

	DataQuality DataQuality `gorm:"serializer:json" json:"data_quality"`

	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
