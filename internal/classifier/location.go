package classifier

import (
	"regexp"
	"strings"
)

var (
	// "Software Engineer - Uruguay (Remote)" 这类标题尾部写法。
	reTitleLoc = regexp.MustCompile(`-\s*([A-Za-z\p{Han}\s]+?)(?:\s*[(（][^)）]*[)）])?$`)
	reParenLoc = regexp.MustCompile(`[(\[{（【]([^)\]}）】]*)[)\]}）】]`)
	reLabelLoc = regexp.MustCompile(`(?i)(?:Location|Based in|Remote from|Remote in|地点|工作地点|城市)[:：]\s*([^\n.<,;]+)`)

	reRemoteHint   = regexp.MustCompile(`(?i)\b(remote|wfh|work from home|distributed|anywhere)\b|远程|在家办公`)
	reRemoteRegion = regexp.MustCompile(`(?i)(?:remote|远程)\s*[-–—]\s*([A-Za-z\p{Han}\s]+)`)

	shortLocationRe = buildShortLocationRe()
)

func allLocationKeywords() [][]string {
	return [][]string{globalKeywords, mainlandKeywords, greaterChinaKeywords, apacKeywords, overseasKeywords}
}

func buildShortLocationRe() *regexp.Regexp {
	shorts := []string{"us", "uk", "eu"}
	for _, group := range allLocationKeywords() {
		for _, kw := range group {
			if len(kw) <= 3 && reAlnum.MatchString(kw) {
				shorts = append(shorts, regexp.QuoteMeta(kw))
			}
		}
	}
	return regexp.MustCompile(`\b(` + strings.Join(shorts, "|") + `)\b`)
}

// isValidLocation 用地域词表做白名单校验，排除把随机短语当地点的情况。
func isValidLocation(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if len(lower) < 2 {
		return false
	}
	if shortLocationRe.MatchString(lower) {
		return true
	}
	for _, group := range allLocationKeywords() {
		for _, kw := range group {
			if len(kw) <= 3 && reAlnum.MatchString(kw) {
				continue // 短词只允许整词命中，上面已查过
			}
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// ExtractLocation 从标题或描述文本中启发式提取工作地点，找不到返回空串。
// 提取顺序：标题尾部连字符写法、括号内容、Location: 标签、远程关键词。
func ExtractLocation(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	clean := strings.Join(strings.Fields(text), " ")

	if m := reTitleLoc.FindStringSubmatch(clean); m != nil {
		if cand := strings.TrimSpace(m[1]); isValidLocation(cand) {
			return cand
		}
	}

	for _, m := range reParenLoc.FindAllStringSubmatch(clean, -1) {
		cand := strings.TrimSpace(m[1])
		if len([]rune(cand)) < 50 && isValidLocation(cand) {
			return cand
		}
	}

	if m := reLabelLoc.FindStringSubmatch(clean); m != nil {
		cand := strings.TrimSpace(m[1])
		if len([]rune(cand)) < 50 && isValidLocation(cand) {
			return cand
		}
	}

	if reRemoteHint.MatchString(clean) {
		if m := reRemoteRegion.FindStringSubmatch(clean); m != nil {
			if cand := strings.TrimSpace(m[1]); isValidLocation(cand) {
				return "Remote - " + cand
			}
		}
		return "Remote"
	}

	return ""
}
