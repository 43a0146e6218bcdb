package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"gorm.io/datatypes"

	"jobhub/internal/company"
	"jobhub/internal/model"
)

var (
	reLineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>`)
	reListItemOpen = regexp.MustCompile(`(?i)<li[^>]*>`)

	// \w 在 Go 正则里只含 ASCII，中文需单独放行。
	reTitleJunk = regexp.MustCompile(`[^\w\s\p{Han}-]`)
	reAtWord    = regexp.MustCompile(`(?i)\s+at\s+`)

	reSalaryNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// "week" 里也有 k，千位缩写必须紧跟数字。
	reThousandSuffix = regexp.MustCompile(`(?i)\d\s*k\b`)

	reRemoteWord = regexp.MustCompile(`(?i)\b(remote|wfh|work from home|distributed|anywhere)\b|远程|在家办公`)
	reTimezone   = regexp.MustCompile(`(?i)\b(UTC|GMT|EST|PST|CST|MST)([+-]\d{1,2})?\b`)

	reURLMarker    = regexp.MustCompile(`\*\*URL:\*\*\s*(https?://\S+)`)
	reWebsiteLabel = regexp.MustCompile(`(?i)(?:Website|Site|Web)[:：]\s*(https?://\S+)`)
	reMarkdownLink = regexp.MustCompile(`\[[^\]]*\]\((https?://[^)\s]+)\)`)
	reAnyURL       = regexp.MustCompile(`https?://[^\s<>"')]+`)
	reLinkedIn     = regexp.MustCompile(`linkedin\.com/company/[a-zA-Z0-9-]+`)

	reBulletPrefix = regexp.MustCompile(`^\s*(?:[-•*‣·]|\d+[.)、])\s*`)
)

// salaryPatterns 按可信度排序，从描述里摘出薪资片段。
var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[$¥€£]\s?\d[\d,.]*\s*k?(?:\s*[-–~到至]\s*[$¥€£]?\s?\d[\d,.]*\s*k?)?`),
	regexp.MustCompile(`(?i)\d[\d,.]*\s*k\b(?:\s*[-–~]\s*\d[\d,.]*\s*k\b)?\s*(?:usd|eur|gbp|cny|rmb)?`),
	regexp.MustCompile(`\d[\d,.]*\s*(?:[-–~到至]\s*\d[\d,.]*\s*)?[万千]`),
	regexp.MustCompile(`(?i)(?:salary|compensation|薪资|薪酬)[:：][^\n]{1,80}`),
}

var requirementHeadings = []string{"requirements", "qualifications", "what you'll need", "what we're looking for", "任职要求", "岗位要求", "职位要求"}

var benefitHeadings = []string{"benefits", "perks", "what we offer", "福利待遇", "福利", "我们提供"}

var skillVocabulary = []string{
	"javascript", "typescript", "python", "java", "c++", "c#", "go", "rust", "php",
	"ruby", "swift", "kotlin", "react", "vue", "angular", "html", "css", "sass",
	"less", "webpack", "vite", "node.js", "express", "django", "flask", "spring",
	"laravel", "rails", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"aws", "azure", "gcp", "docker", "kubernetes", "git", "jenkins", "jira", "confluence",
}

// skillSynonyms 把常见别名折叠到词表里的规范名。
var skillSynonyms = map[string]string{
	"js":       "javascript",
	"golang":   "go",
	"k8s":      "kubernetes",
	"postgres": "postgresql",
	"nodejs":   "node.js",
	"reactjs":  "react",
	"react.js": "react",
	"vuejs":    "vue",
	"vue.js":   "vue",
}

var reAlnumTerm = regexp.MustCompile(`^[a-z0-9]+$`)

// 纯字母数字的短词按整词匹配，避免 "Quarterly" 命中 "qa" 一类误判。
var shortSkillRes = func() map[string]*regexp.Regexp {
	res := map[string]*regexp.Regexp{}
	add := func(term string) {
		if len(term) <= 3 && reAlnumTerm.MatchString(term) {
			res[term] = regexp.MustCompile(`\b` + term + `\b`)
		}
	}
	for _, t := range skillVocabulary {
		add(t)
	}
	for t := range skillSynonyms {
		add(t)
	}
	return res
}()

// StripHTML 把描述 HTML 转成保留换行结构的纯文本。
// <br>、</p>、</li> 先替换成换行，剩余标签交给解析器剥离。
func StripHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	pre := reLineBreakTag.ReplaceAllString(html, "\n")
	// 列表项补回项目符号，后续小节提取依赖它识别列表行。
	pre = reListItemOpen.ReplaceAllString(pre, "\n- ")

	var text string
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pre))
	if err != nil {
		text = tokenText(pre)
	} else {
		text = doc.Text()
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// tokenText 逐 token 提取文本，处理 goquery 拒绝解析的畸形 HTML。
func tokenText(s string) string {
	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tok.Text())
			b.WriteByte('\n')
		}
	}
}

// CleanTitle 压缩空白并去掉标题里的装饰符号。
func CleanTitle(title string) string {
	clean := reTitleJunk.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(clean), " ")
}

// companyFromTitle 从 "Acme: Senior Engineer"、"Engineer at Acme"、
// "Engineer | Acme" 这类标题写法中提取公司名。
func companyFromTitle(title string) string {
	if i := strings.Index(title, ":"); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	if locs := reAtWord.FindAllStringIndex(title, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		return strings.TrimSpace(title[last[1]:])
	}
	if parts := strings.Split(title, " | "); len(parts) > 1 {
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return ""
}

func findSalaryText(description string) string {
	for _, re := range salaryPatterns {
		for _, m := range re.FindAllString(description, -1) {
			if strings.Contains(m, "401") {
				continue // 401(k) 是养老金不是薪资
			}
			return m
		}
	}
	return ""
}

// ParseSalary 把薪资文本解析成区间。没有任何数字（含"面议"）返回 nil；
// 只有一个数字时区间收敛为单点并标记可议。
func ParseSalary(text string) *model.SalaryRange {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(t, ",", "")
	nums := reSalaryNumber.FindAllString(cleaned, -1)
	if len(nums) == 0 {
		return nil
	}

	multiplier := 1.0
	switch {
	case reThousandSuffix.MatchString(cleaned) || strings.Contains(t, "千"):
		multiplier = 1000
	case strings.Contains(t, "万"):
		multiplier = 10000
	}

	lower := strings.ToLower(t)
	period := model.PeriodYearly
	switch {
	case strings.Contains(lower, "hour") || strings.Contains(t, "小时") || strings.Contains(t, "时薪"):
		period = model.PeriodHourly
	case strings.Contains(lower, "day") || strings.Contains(t, "日"):
		period = model.PeriodDaily
	case strings.Contains(lower, "week") || strings.Contains(t, "周"):
		period = model.PeriodWeekly
	case strings.Contains(lower, "month") || strings.Contains(t, "月"):
		period = model.PeriodMonthly
	}

	currency := "USD"
	switch {
	case strings.Contains(t, "¥") || strings.Contains(lower, "cny") || strings.Contains(lower, "rmb") || strings.Contains(t, "人民币"):
		currency = "CNY"
	case strings.Contains(t, "€") || strings.Contains(lower, "eur"):
		currency = "EUR"
	case strings.Contains(t, "£") || strings.Contains(lower, "gbp"):
		currency = "GBP"
	}

	negotiable := strings.Contains(lower, "negotiable") || strings.Contains(t, "面议")

	toAmount := func(s string) int {
		f, _ := strconv.ParseFloat(s, 64)
		return int(f * multiplier)
	}

	r := &model.SalaryRange{Currency: currency, Period: period, Negotiable: negotiable}
	if len(nums) >= 2 {
		r.Min, r.Max = toAmount(nums[0]), toAmount(nums[1])
		return r
	}
	r.Min, r.Max = toAmount(nums[0]), toAmount(nums[0])
	r.Negotiable = true
	return r
}

// ExtractSkillTags 按固定词表扫描文本提取技能标签，别名折叠到规范名。
func ExtractSkillTags(text string) datatypes.JSONMap {
	lower := strings.ToLower(text)
	tags := datatypes.JSONMap{}
	for _, term := range skillVocabulary {
		if matchSkillTerm(lower, term) {
			tags[term] = true
		}
	}
	for alias, canonical := range skillSynonyms {
		if matchSkillTerm(lower, alias) {
			tags[canonical] = true
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func matchSkillTerm(lower, term string) bool {
	if re, ok := shortSkillRes[term]; ok {
		return re.MatchString(lower)
	}
	return strings.Contains(lower, term)
}

// extractLanguages 识别英语与中文要求。两种语言都按 native > fluent >
// business > conversational 的修饰词取最高档；英语视为硬性要求，中文
// 默认为加分项。
func extractLanguages(text string) []model.LanguageRequirement {
	lower := strings.ToLower(text)
	var reqs []model.LanguageRequirement

	if strings.Contains(lower, "english") || strings.Contains(text, "英语") || strings.Contains(text, "英文") {
		reqs = append(reqs, model.LanguageRequirement{Language: "English", Level: languageLevel(lower, text), Required: true})
	}

	if strings.Contains(lower, "chinese") || strings.Contains(lower, "mandarin") ||
		strings.Contains(text, "中文") || strings.Contains(text, "普通话") {
		reqs = append(reqs, model.LanguageRequirement{Language: "中文", Level: languageLevel(lower, text), Required: false})
	}
	return reqs
}

// languageLevel 扫描熟练度修饰词，未命中时落到 conversational。
func languageLevel(lower, text string) model.LanguageLevel {
	switch {
	case strings.Contains(lower, "native") || strings.Contains(text, "母语"):
		return model.LangNative
	case strings.Contains(lower, "fluent") || strings.Contains(text, "流利"):
		return model.LangFluent
	case strings.Contains(lower, "business") || strings.Contains(text, "商务"):
		return model.LangBusiness
	}
	return model.LangConversational
}

func extractTimezone(text string) string {
	return strings.ToUpper(reTimezone.FindString(text))
}

func looksRemote(text string) bool {
	return reRemoteWord.MatchString(text)
}

/// extractCompanyURL 按可信度依次尝试 **URL:** 标记、Website: 标签、
// Markdown 链接和裸链接，跳过 ATS/聚合平台域名。
func extractCompanyURL(html, text string) string {
	patterns := []struct {
		re    *regexp.Regexp
		input string
	}{
		{reURLMarker, text},
		{reWebsiteLabel, text},
		{reMarkdownLink, text},
		{reAnyURL, text},
		{reAnyURL, html},
	}
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(p.input, -1) {
			cand := strings.TrimRight(m[len(m)-1], `.,;:)]}'"`)
			if !company.IsAggregatorURL(cand) {
				return cand
			}
		}
	}
	return ""
}

func extractLinkedIn(text string) string {
	if m := reLinkedIn.FindString(text); m != "" {
		return "https://" + m
	}
	return ""
}

// extractListSection 找到小节标题后收集其下的列表项，遇到非列表行结束。
func extractListSection(text string, headings []string) []string {
	var items []string
	collecting := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if collecting && len(items) > 0 {
				break
			}
			continue
		}
		if !collecting {
			if isHeading(trimmed, headings) {
				collecting = true
			}
			continue
		}
		m := reBulletPrefix.FindString(trimmed)
		if m == "" {
			break
		}
		if item := strings.TrimSpace(trimmed[len(m):]); item != "" {
			items = append(items, item)
		}
		if len(items) >= 10 {
			break
		}
	}
	return items
}

func isHeading(line string, headings []string) bool {
	lower := strings.ToLower(line)
	for _, h := range headings {
		if strings.HasPrefix(lower, h) {
			return true
		}
	}
	return false
}
