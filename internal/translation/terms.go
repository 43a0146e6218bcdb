package translation

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultProtectedTerms 是默认受保护的技术词汇。
// 这些词直接交给翻译服务经常被意译或大小写破坏，先替换为占位符，译完再还原。
var DefaultProtectedTerms = []string{
	"GitHub", "GitLab", "Kubernetes", "Docker", "Terraform",
	"React", "Vue.js", "Angular", "Node.js", "Next.js",
	"TypeScript", "JavaScript", "Python", "Golang", "Rust",
	"GraphQL", "REST", "gRPC", "WebSocket",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka",
	"AWS", "GCP", "Azure", "SaaS", "DevOps", "SRE",
	"CI/CD", "LLM", "OKR", "Figma",
}

type termRule struct {
	re        *regexp.Regexp
	canonical string
}

// TermProtector 在送翻前用占位符替换技术词汇，译文返回后再替换回来。
type TermProtector struct {
	rules []termRule
}

// NewTermProtector 创建保护器，terms 为空时使用默认词表。
func NewTermProtector(terms ...string) *TermProtector {
	if len(terms) == 0 {
		terms = DefaultProtectedTerms
	}
	rules := make([]termRule, 0, len(terms))
	for _, term := range terms {
		rules = append(rules, termRule{
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
			canonical: term,
		})
	}
	return &TermProtector{rules: rules}
}

// Protect 替换文本中的受保护词汇，返回替换后的文本与占位符映射。
func (p *TermProtector) Protect(text string) (string, map[string]string) {
	placeholders := make(map[string]string)
	out := text
	for i, rule := range p.rules {
		if !rule.re.MatchString(out) {
			continue
		}
		token := fmt.Sprintf("⟦T%d⟧", i)
		out = rule.re.ReplaceAllString(out, token)
		placeholders[token] = rule.canonical
	}
	return out, placeholders
}

// Restore 把占位符还原为规范拼写的原词。
func (p *TermProtector) Restore(text string, placeholders map[string]string) string {
	out := text
	for token, term := range placeholders {
		out = strings.ReplaceAll(out, token, term)
	}
	return out
}
