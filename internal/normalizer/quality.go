package normalizer

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"jobhub/internal/model"
)

// assessQuality 按完整度 0.4、准确度 0.4、新鲜度 0.2 加权打分。
// 五个必填字段各占完整度的 0.12，四个可选字段各占 0.1。
func (n *Normalizer) assessQuality(raw model.RawItem, job *model.Job) model.DataQuality {
	required := []struct {
		name  string
		value string
	}{
		{"title", job.Title},
		{"company", job.Company},
		{"location", job.Location},
		{"description", job.Description},
		{"url", job.URL},
	}

	completeness := 0.0
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) != "" {
			completeness += 0.6 / 5
		} else {
			missing = append(missing, f.name)
		}
	}

	optional := []bool{
		job.SalaryRange != nil || strings.TrimSpace(raw.Salary) != "",
		len(job.Requirements) > 0,
		len(job.Benefits) > 0,
		len(job.SkillTags) > 0 || len(raw.Tags) > 0,
	}
	for _, present := range optional {
		if present {
			completeness += 0.4 / 4
		}
	}

	accuracy := 1.0
	if utf8.RuneCountInString(job.Title) < 3 {
		accuracy -= 0.2
	}
	if utf8.RuneCountInString(job.Company) < 2 {
		accuracy -= 0.2
	}
	if !strings.HasPrefix(job.URL, "http") {
		accuracy -= 0.1
	}
	if accuracy < 0 {
		accuracy = 0
	}

	freshness := 0.2
	switch age := n.now().Sub(job.PublishedAt); {
	case age <= 24*time.Hour:
		freshness = 1.0
	case age <= 7*24*time.Hour:
		freshness = 0.8
	case age <= 30*24*time.Hour:
		freshness = 0.6
	case age <= 90*24*time.Hour:
		freshness = 0.4
	}

	var issues []string
	if job.Title == "" {
		issues = append(issues, "缺少岗位标题")
	}
	if job.Company == "" {
		issues = append(issues, "缺少企业名称")
	}
	if job.Location == "" {
		issues = append(issues, "缺少工作地点")
	}
	if job.Description == "" {
		issues = append(issues, "缺少岗位描述")
	}
	if utf8.RuneCountInString(job.Title) > 100 {
		issues = append(issues, "岗位标题过长")
	}

	return model.DataQuality{
		Score:         int(math.Round(100 * (0.4*completeness + 0.4*accuracy + 0.2*freshness))),
		Completeness:  completeness,
		Accuracy:      accuracy,
		Freshness:     freshness,
		MissingFields: missing,
		Issues:        issues,
	}
}
