// Package company 从职位数据聚合公司目录：同一家公司在多个源、多条职位里
// 出现时按归一化网址或公司名折叠成一条记录。
package company

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"jobhub/internal/classifier"
	"jobhub/internal/model"
)

// aggregatorHosts 是招聘聚合平台与 ATS 域名，链接指向它们时不能当公司官网。
var aggregatorHosts = []string{
	"greenhouse.io", "lever.co", "ashbyhq.com", "workable.com", "linkedin.com",
	"indeed.com", "glassdoor.com", "wellfound.com", "ycombinator.com",
	"remoteok.com", "weworkremotely.com",
}

var reNamePunct = regexp.MustCompile(`[,.\-_]`)

// IsAggregatorURL 判断链接是否指向聚合平台或 ATS 而非公司官网。
// 解析失败的链接一律按聚合平台处理。
func IsAggregatorURL(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return true
	}
	return isAggregatorHost(host)
}

func hostOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func isAggregatorHost(host string) bool {
	for _, agg := range aggregatorHosts {
		if host == agg || strings.HasSuffix(host, "."+agg) {
			return true
		}
	}
	return false
}

// DedupKey 计算公司合并键：优先用归一化后的官网 host，没有可用官网时
// 退回到归一化公司名（小写、压缩空白、去标点）。
func DedupKey(name, companyURL string) string {
	if host := hostOf(companyURL); host != "" && !isAggregatorHost(host) {
		return host
	}
	return normalizeName(name)
}

func normalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = reNamePunct.ReplaceAllString(lower, "")
	return strings.Join(strings.Fields(lower), " ")
}

// Resolver 把职位批次折叠成公司目录。
type Resolver struct {
	classifier *classifier.Classifier

	newID func() string
}

// NewResolver 创建公司聚合器，classifier 传 nil 时使用默认规则表。
func NewResolver(c *classifier.Classifier) *Resolver {
	if c == nil {
		c = classifier.New()
	}
	return &Resolver{classifier: c, newID: uuid.NewString}
}

// FromJob 由单条职位构造公司记录。公司名缺失或为占位值时返回 false。
func (r *Resolver) FromJob(job model.Job) (model.Company, bool) {
	name := strings.TrimSpace(job.Company)
	if name == "" || strings.EqualFold(name, "unknown") || strings.EqualFold(name, "unknown company") {
		return model.Company{}, false
	}

	profile := r.classifier.Company(name, job.Description)
	var tags datatypes.JSONMap
	if len(profile.Tags) > 0 {
		tags = datatypes.JSONMap{}
		for _, tag := range profile.Tags {
			tags[tag] = true
		}
	}

	return model.Company{
		ID:       r.newID(),
		DedupKey: DedupKey(name, job.CompanyURL),
		Name:     name,
		URL:      job.CompanyURL,
		Industry: profile.Industry,
		Tags:     tags,
		Source:   job.Source,
		JobCount: 1,
	}, true
}

// Merge 合并同一合并键下的两条公司记录：简介取更长者，网址、Logo 取
// 先出现的非空值，标签求并集，职位数累加。以 dst 为基准，dst 缺失的
// 字段才由 src 补齐。同一实体（ID 相同）重复并入是无操作，职位数
// 不会重复累加。
func Merge(dst, src model.Company) model.Company {
	out := dst
	if out.ID == "" {
		out.ID = src.ID
	}
	if out.DedupKey == "" {
		out.DedupKey = src.DedupKey
	}
	if out.Name == "" {
		out.Name = src.Name
	}
	if len(src.Description) > len(out.Description) {
		out.Description = src.Description
	}
	if out.URL == "" {
		out.URL = src.URL
	}
	if out.Logo == "" {
		out.Logo = src.Logo
	}
	if out.Source == "" {
		out.Source = src.Source
	}
	if out.Industry == "" || (out.Industry == model.IndustryOther && src.Industry != "") {
		out.Industry = src.Industry
	}
	if len(src.Tags) > 0 {
		merged := datatypes.JSONMap{}
		for k, v := range out.Tags {
			merged[k] = v
		}
		for k, v := range src.Tags {
			merged[k] = v
		}
		out.Tags = merged
	}
	if dst.ID != "" && dst.ID == src.ID {
		if src.JobCount > out.JobCount {
			out.JobCount = src.JobCount
		}
		return out
	}
	out.JobCount += src.JobCount
	return out
}

// Resolve 把一批职位折叠成按合并键去重的公司列表，顺序为首次出现顺序。
// 结果完全由输入决定，重复执行得到相同目录。
func (r *Resolver) Resolve(jobs []model.Job) []model.Company {
	index := make(map[string]int)
	var out []model.Company
	for _, job := range jobs {
		c, ok := r.FromJob(job)
		if !ok {
			continue
		}
		if i, seen := index[c.DedupKey]; seen {
			merged := Merge(out[i], c)
			merged.ID = out[i].ID
			out[i] = merged
			continue
		}
		index[c.DedupKey] = len(out)
		out = append(out, c)
	}
	return out
}
