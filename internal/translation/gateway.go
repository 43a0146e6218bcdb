// 包 translation 提供多服务回退的文本翻译：按固定顺序逐个尝试服务，
// 首个返回非平凡结果的服务胜出；全部失败时原样返回输入，绝不向上抛错。
package translation

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"jobhub/internal/model"
)

// batchConcurrency 限制同时在途的翻译请求数。
// 这是保护上游限流服务的背压手段，不是性能参数，不要调大。
const batchConcurrency = 3

// Config 定义翻译网关配置。
type Config struct {
	TargetLang        string   `yaml:"target_lang" json:"target_lang"`
	PreferredProvider string   `yaml:"preferred_provider" json:"preferred_provider"`
	Timeout           string   `yaml:"timeout" json:"timeout"`
	LibreTranslateURL string   `yaml:"libretranslate_url" json:"libretranslate_url"`
	ProtectedTerms    []string `yaml:"protected_terms" json:"protected_terms"`
	AI                AIConfig `yaml:"ai" json:"ai"`
}

// Gateway 是翻译网关。进程内缓存按 (源语言, 目标语言, 原文) 作键、
// 无过期时间：职位描述入库后视为不可变。
type Gateway struct {
	providers  []Provider
	targetLang string
	timeout    time.Duration
	terms      *TermProtector
	logger     *log.Logger
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]string
}

// NewGateway 按配置组装服务链：preferred 指定的免费服务在最前（AI 不允许置前），
// 其余免费服务按固定顺序跟随，配置了 key 时 AI 服务垫底兜底。
func NewGateway(cfg Config, client *http.Client, logger *log.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	free := []Provider{
		NewLibreTranslateProvider(cfg.LibreTranslateURL, client),
		NewGoogleProvider(client),
		NewMyMemoryProvider(client),
	}

	var chain []Provider
	preferred := strings.ToLower(strings.TrimSpace(cfg.PreferredProvider))
	if preferred != "" && preferred != ProviderAI {
		for i, p := range free {
			if p.Name() == preferred {
				chain = append(chain, p)
				free = append(free[:i], free[i+1:]...)
				break
			}
		}
	}
	chain = append(chain, free...)

	if strings.TrimSpace(cfg.AI.APIKey) != "" {
		chain = append(chain, NewAIProvider(cfg.AI, client))
	}

	return newGateway(chain, cfg, logger)
}

func newGateway(providers []Provider, cfg Config, logger *log.Logger) *Gateway {
	target := cfg.TargetLang
	if target == "" {
		target = "zh-CN"
	}
	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[translate] ", log.LstdFlags)
	}
	return &Gateway{
		providers:  providers,
		targetLang: target,
		timeout:    timeout,
		terms:      NewTermProtector(cfg.ProtectedTerms...),
		logger:     logger,
		now:        time.Now,
		cache:      make(map[string]string),
	}
}

// Translate 翻译一段文本。服务链严格串行尝试（不并发竞速，避免浪费配额）；
// 空结果、或输入超过 20 字符却被原样回显的结果都算失败；
// 全部失败时返回原文，永不报错。
func (g *Gateway) Translate(ctx context.Context, text, targetLang, sourceLang string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if targetLang == "" {
		targetLang = g.targetLang
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}

	key := sourceLang + "|" + targetLang + "|" + text
	if cached, ok := g.lookup(key); ok {
		return cached
	}

	protected, placeholders := g.terms.Protect(text)
	inputLen := utf8.RuneCountInString(protected)

	for _, p := range g.providers {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		result, err := p.Translate(callCtx, protected, sourceLang, targetLang)
		cancel()

		if err != nil {
			g.logger.Printf("provider %s failed: %v", p.Name(), err)
			continue
		}
		result = strings.TrimSpace(result)
		if result == "" {
			g.logger.Printf("provider %s returned empty result", p.Name())
			continue
		}
		if result == protected && inputLen > 20 {
			g.logger.Printf("provider %s echoed input, treating as failure", p.Name())
			continue
		}

		restored := g.terms.Restore(result, placeholders)
		g.store(key, restored)
		return restored
	}

	// 全链失败：优雅降级为原文。
	return text
}

// TranslateBatch 分块翻译，每块 3 条且必须整块完成后才开始下一块。
func (g *Gateway) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) []string {
	results := make([]string, len(texts))
	for start := 0; start < len(texts); start += batchConcurrency {
		end := start + batchConcurrency
		if end > len(texts) {
			end = len(texts)
		}

		var group errgroup.Group
		for i := start; i < end; i++ {
			i := i
			group.Go(func() error {
				results[i] = g.Translate(ctx, texts[i], targetLang, sourceLang)
				return nil
			})
		}
		_ = group.Wait()
	}
	return results
}

// TranslateJob 翻译职位的标题、描述、要求与福利，并在接受前做中文校验。
// 校验不通过时 Translations 置空、IsTranslated=false、TranslationError 记录原因：
// 绝不落库半翻译字段，调度器可在下一轮重试。
func (g *Gateway) TranslateJob(ctx context.Context, job model.Job) model.Job {
	texts := make([]string, 0, 2+len(job.Requirements)+len(job.Benefits))
	texts = append(texts, job.Title, job.Description)
	texts = append(texts, job.Requirements...)
	texts = append(texts, job.Benefits...)

	out := g.TranslateBatch(ctx, texts, "", "auto")

	title := strings.TrimSpace(out[0])
	description := out[1]
	requirements := append([]string(nil), out[2:2+len(job.Requirements)]...)
	benefits := append([]string(nil), out[2+len(job.Requirements):]...)

	valid, reason := validateChinese(description, utf8.RuneCountInString(job.Description))
	if valid && title == "" {
		valid = false
		reason = "Empty translated title"
	}
	if !valid {
		job.Translations = nil
		job.IsTranslated = false
		job.TranslationError = reason
		return job
	}

	job.Translations = &model.Translations{
		Title:        title,
		Description:  description,
		Requirements: requirements,
		Benefits:     benefits,
		UpdatedAt:    g.now(),
	}
	job.IsTranslated = true
	job.TranslationError = ""
	return job
}

func (g *Gateway) lookup(key string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.cache[key]
	return v, ok
}

func (g *Gateway) store(key, value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache[key] = value
}
