// Package normalizer 把各来源的原始职位数据转换为统一的 Job 模型。
// 归一化是尽力而为的：单个字段提取失败只会留空并压低质量分，绝不让
// 整条数据进不了库。
package normalizer

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"jobhub/internal/classifier"
	"jobhub/internal/model"
)

// Normalizer 负责原始数据到统一模型的全部推导。
type Normalizer struct {
	classifier *classifier.Classifier
	logger     *log.Logger

	now func() time.Time
}

// New 创建归一化器，classifier 或 logger 传 nil 时使用默认值。
func New(c *classifier.Classifier, logger *log.Logger) *Normalizer {
	if c == nil {
		c = classifier.New()
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[normalize] ", log.LstdFlags)
	}
	return &Normalizer{classifier: c, logger: logger, now: time.Now}
}

// Normalize 把一条原始数据转换为统一的 Job。对相同输入输出完全一致。
func (n *Normalizer) Normalize(raw model.RawItem) model.Job {
	description := StripHTML(raw.DescriptionHTML)
	title := CleanTitle(raw.Title)

	company := strings.TrimSpace(raw.Company)
	if company == "" || strings.EqualFold(company, "unknown") || strings.EqualFold(company, "unknown company") {
		company = companyFromTitle(raw.Title)
	}

	location := strings.TrimSpace(raw.Location)
	if location == "" {
		location = classifier.ExtractLocation(raw.Title + " " + description)
	}

	salaryText := strings.TrimSpace(raw.Salary)
	if salaryText == "" {
		salaryText = findSalaryText(description)
	}

	requirements := raw.Requirements
	if len(requirements) == 0 {
		requirements = extractListSection(description, requirementHeadings)
	}
	benefits := raw.Benefits
	if len(benefits) == 0 {
		benefits = extractListSection(description, benefitHeadings)
	}

	isRemote := raw.IsRemote || looksRemote(raw.Title+" "+location+" "+description)

	profile := n.classifier.Company(company, description)

	job := model.Job{
		ID:          UnifiedID(title, company, raw.PublishedAt),
		Source:      raw.SourceName,
		SourceURL:   raw.SourceURL,
		Title:       title,
		Company:     company,
		Location:    location,
		Description: description,
		URL:         strings.TrimSpace(raw.Link),

		CompanyURL:      extractCompanyURL(raw.DescriptionHTML, description),
		CompanyLinkedIn: extractLinkedIn(description),
		Timezone:        extractTimezone(location + " " + raw.RemoteRestriction),

		Requirements: requirements,
		Benefits:     benefits,
		SkillTags:    ExtractSkillTags(raw.Title + " " + description),

		Category:        n.classifier.JobCategory(title, description),
		ExperienceLevel: n.classifier.ExperienceLevel(title, description),
		Industry:        profile.Industry,
		Region:          n.classifier.Region(location),

		SalaryRange:          ParseSalary(salaryText),
		LocationRestriction:  mapLocationRestriction(location, raw.RemoteRestriction, isRemote),
		LanguageRequirements: extractLanguages(raw.Title + " " + description),
		IsRemote:             isRemote,

		Status:      model.StatusActive,
		PublishedAt: raw.PublishedAt,
	}

	job.DataQuality = n.assessQuality(raw, &job)
	return job
}

// UnifiedID 由标题、公司与发布时间确定性推导出职位主键。
// 同一职位被多个源重复抓取时会得到相同 ID，靠存储层 upsert 去重。
func UnifiedID(title, company string, publishedAt time.Time) string {
	seed := title + "-" + company + "-" + publishedAt.UTC().Format(time.RFC3339)
	var hash int32
	for _, r := range seed {
		hash = hash*31 + int32(r)
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return "unified-" + strconv.FormatInt(v, 36)
}

// mapLocationRestriction 把地点与远程限制信息映射为结构化限制。
func mapLocationRestriction(location, restriction string, isRemote bool) model.LocationRestriction {
	resLower := strings.ToLower(strings.TrimSpace(restriction))
	locLower := strings.ToLower(location)

	if isRemote && (strings.Contains(resLower, "anywhere") || strings.Contains(resLower, "global") ||
		strings.Contains(resLower, "worldwide") || strings.Contains(restriction, "不限")) {
		return model.LocationRestriction{Type: model.NoRestriction, Description: "全球远程"}
	}

	if isRemote || strings.Contains(locLower, "remote") || strings.Contains(location, "远程") {
		if restriction != "" {
			return model.LocationRestriction{
				Type:        model.SpecificRegions,
				Regions:     []string{strings.TrimSpace(restriction)},
				Description: "远程工作，限制：" + strings.TrimSpace(restriction),
			}
		}
		return model.LocationRestriction{Type: model.NoRestriction, Description: "远程工作"}
	}

	if location != "" {
		return model.LocationRestriction{
			Type:        model.SpecificRegions,
			Regions:     []string{location},
			Description: "现场办公：" + location,
		}
	}
	return model.LocationRestriction{Type: model.NoRestriction, Description: "地点待定"}
}
