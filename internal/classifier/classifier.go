// 包 classifier 提供纯规则分类：职位分类、职级、公司行业/标签与地域池。
// 所有函数无副作用、无 I/O，相同输入必然得到相同输出。
package classifier

import (
	"regexp"
	"strings"

	"jobhub/internal/model"
)

var (
	reExecutive = regexp.MustCompile(`\b(c[teof]o|vp|vice president|director|head of)\b`)
	reLead      = regexp.MustCompile(`\b(lead|principal|staff|architect|manager)\b`)
	reSenior    = regexp.MustCompile(`\b(senior|sr\.?|iii|iv)\b`)
	reEntry     = regexp.MustCompile(`\b(junior|jr\.?|entry|intern|internship|graduate)\b`)

	// 短地域词必须整词匹配，避免 business 里的 us 之类误判。
	reShortOverseas = regexp.MustCompile(`\b(us|uk|eu)\b`)

	reAlnum    = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	reTechHint = regexp.MustCompile(`\b(tech|software|internet|digital|startup|app)\b`)
)

type jobRule struct {
	keyword  string
	category model.Category
	re       *regexp.Regexp // 非 nil 时整词匹配，否则子串匹配
}

func (r jobRule) matches(text string) bool {
	if r.re != nil {
		return r.re.MatchString(text)
	}
	return strings.Contains(text, r.keyword)
}

type tagRule struct {
	re           *regexp.Regexp
	tag          string
	requiresAI   bool
	excludeIfHas string
}

type industryKeywordRule struct {
	re    *regexp.Regexp
	bonus bool // 多词或 ≥7 字符关键词命中时额外 +1
}

type industryRule struct {
	industry model.Industry
	keywords []industryKeywordRule
}

// Classifier 持有编译好的规则表。规则即数据，构造一次后只读。
type Classifier struct {
	jobRules      []jobRule
	tagRules      []tagRule
	industryRules []industryRule
}

// New 编译默认关键词表并返回分类器。
func New() *Classifier {
	rules := make([]jobRule, 0, len(jobKeywordTable))
	for _, entry := range jobKeywordTable {
		rule := jobRule{keyword: entry.keyword, category: entry.category}
		if len(entry.keyword) <= 3 && reAlnum.MatchString(entry.keyword) {
			rule.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(entry.keyword) + `\b`)
		}
		rules = append(rules, rule)
	}

	tags := make([]tagRule, 0, len(companyTagRules))
	for _, entry := range companyTagRules {
		tags = append(tags, tagRule{
			re:           regexp.MustCompile(entry.pattern),
			tag:          entry.tag,
			requiresAI:   entry.requiresAI,
			excludeIfHas: entry.excludeIfHas,
		})
	}

	industries := make([]industryRule, 0, len(industryKeywords))
	for _, group := range industryKeywords {
		rule := industryRule{industry: group.industry}
		for _, kw := range group.keywords {
			rule.keywords = append(rule.keywords, industryKeywordRule{
				re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
				bonus: strings.Contains(kw, " ") || len(kw) >= 7,
			})
		}
		industries = append(industries, rule)
	}

	return &Classifier{jobRules: rules, tagRules: tags, industryRules: industries}
}

// JobCategory 返回职位功能分类。
// 先按表顺序匹配标题；未命中时用长度大于 4 的关键词再扫一遍描述，
// 最后兜底到「其他」。表顺序即优先级，首个命中即返回。
func (c *Classifier) JobCategory(title, description string) model.Category {
	titleLower := strings.ToLower(title)
	for _, rule := range c.jobRules {
		if rule.matches(titleLower) {
			return rule.category
		}
	}

	descLower := strings.ToLower(description)
	for _, rule := range c.jobRules {
		if len(rule.keyword) > 4 && rule.matches(descLower) {
			return rule.category
		}
	}

	return model.CategoryOther
}

// ExperienceLevel 返回职级，按 Executive > Lead > Senior > Entry 的优先级，
// 标题优先；标题无结论时在全文里按同样顺序再查；默认 Mid。
func (c *Classifier) ExperienceLevel(title, description string) model.ExperienceLevel {
	titleLower := strings.ToLower(title)

	switch {
	case reExecutive.MatchString(titleLower):
		return model.LevelExecutive
	case reLead.MatchString(titleLower):
		return model.LevelLead
	case reSenior.MatchString(titleLower):
		return model.LevelSenior
	case reEntry.MatchString(titleLower):
		return model.LevelEntry
	}

	text := titleLower + " " + strings.ToLower(description)
	switch {
	case reExecutive.MatchString(text):
		return model.LevelExecutive
	case reLead.MatchString(text):
		return model.LevelLead
	case reSenior.MatchString(text):
		return model.LevelSenior
	case reEntry.MatchString(text):
		return model.LevelEntry
	}

	return model.LevelMid
}

// CompanyProfile 是公司分类结果。
type CompanyProfile struct {
	Industry model.Industry
	Tags     []string
}

// Company 对公司做行业打分与标签提取。
// 关键词出现在公司名计 2 分、描述计 1 分，多词或 ≥7 字符的关键词额外 +1；
// 总分最高的行业胜出，并列或全零时退回二次技术线索判断，否则「其他」。
func (c *Classifier) Company(name, description string) CompanyProfile {
	nameLower := strings.ToLower(name)
	descLower := strings.ToLower(description)
	text := nameLower + " " + descLower

	best := model.IndustryOther
	bestScore := 0
	tied := false
	for _, group := range c.industryRules {
		score := 0
		for _, kw := range group.keywords {
			hit := 0
			if kw.re.MatchString(nameLower) {
				hit += 2
			}
			if kw.re.MatchString(descLower) {
				hit++
			}
			if hit > 0 && kw.bonus {
				hit++
			}
			score += hit
		}
		if score > bestScore {
			best = group.industry
			bestScore = score
			tied = false
		} else if score == bestScore && score > 0 {
			tied = true
		}
	}

	if bestScore == 0 || tied {
		if reTechHint.MatchString(text) {
			best = "互联网/软件"
		} else {
			best = model.IndustryOther
		}
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, rule := range c.tagRules {
		if rule.requiresAI && best != "人工智能" {
			continue
		}
		if rule.excludeIfHas != "" && strings.Contains(text, rule.excludeIfHas) {
			continue
		}
		if !rule.re.MatchString(text) {
			continue
		}
		if _, ok := seen[rule.tag]; ok {
			continue
		}
		seen[rule.tag] = struct{}{}
		tags = append(tags, rule.tag)
	}

	return CompanyProfile{Industry: best, Tags: tags}
}

// Region 根据地点文本判断地域池，优先级固定：
// 1) 命中海外词：若同时命中大陆/大中华词则 both，否则 overseas；
// 2) 仅大陆或大中华词：domestic；
// 3) 亚太/时区词（含新加坡）：domestic；
// 4) 全球/远程词：both；
// 5) 全部未命中（含空地点）：overseas。
func (c *Classifier) Region(location string) model.Region {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return model.RegionOverseas
	}

	overseas := containsAny(loc, overseasKeywords) || reShortOverseas.MatchString(loc)
	mainland := containsAny(loc, mainlandKeywords)
	greater := containsAny(loc, greaterChinaKeywords)

	if overseas {
		if mainland || greater {
			return model.RegionBoth
		}
		return model.RegionOverseas
	}
	if mainland || greater {
		return model.RegionDomestic
	}
	if containsAny(loc, apacKeywords) {
		return model.RegionDomestic
	}
	if containsAny(loc, globalKeywords) {
		return model.RegionBoth
	}
	return model.RegionOverseas
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
