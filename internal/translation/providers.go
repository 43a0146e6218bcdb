package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Provider 是单个翻译服务的抽象，固定实现集合见下方四个变体。
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// 供 preferred_provider 配置使用的名字。
const (
	ProviderLibreTranslate = "libretranslate"
	ProviderGoogle         = "google"
	ProviderMyMemory       = "mymemory"
	ProviderAI             = "ai"
)

// --- LibreTranslate ---

// LibreTranslateProvider 调用 LibreTranslate 开源接口。
type LibreTranslateProvider struct {
	base   string
	client *http.Client
}

func NewLibreTranslateProvider(base string, client *http.Client) *LibreTranslateProvider {
	if base == "" {
		base = "https://libretranslate.com"
	}
	return &LibreTranslateProvider{base: strings.TrimRight(base, "/"), client: client}
}

func (p *LibreTranslateProvider) Name() string { return ProviderLibreTranslate }

func (p *LibreTranslateProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": normalizeSource(sourceLang),
		"target": shortLang(targetLang),
		"format": "text",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/translate", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("libretranslate http %d", resp.StatusCode)
	}

	var body struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode libretranslate response: %w", err)
	}
	return strings.TrimSpace(body.TranslatedText), nil
}

// --- Google（非官方免费端点） ---

// GoogleProvider 调用 translate.googleapis.com 的 gtx 免费端点。
type GoogleProvider struct {
	client *http.Client
}

func NewGoogleProvider(client *http.Client) *GoogleProvider {
	return &GoogleProvider{client: client}
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

func (p *GoogleProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	endpoint := "https://translate.googleapis.com/translate_a/single?client=gtx&dt=t" +
		"&sl=" + url.QueryEscape(normalizeSource(sourceLang)) +
		"&tl=" + url.QueryEscape(targetLang) +
		"&q=" + url.QueryEscape(text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("google http %d", resp.StatusCode)
	}

	// 返回体是嵌套数组：[[["译文","原文",...],...],...]，把每段译文拼起来。
	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode google response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("google response empty")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("google response malformed")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// --- MyMemory ---

// MyMemoryProvider 调用 api.mymemory.translated.net。
type MyMemoryProvider struct {
	client *http.Client
}

func NewMyMemoryProvider(client *http.Client) *MyMemoryProvider {
	return &MyMemoryProvider{client: client}
}

func (p *MyMemoryProvider) Name() string { return ProviderMyMemory }

func (p *MyMemoryProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	source := sourceLang
	if source == "" || source == "auto" {
		// MyMemory 不支持自动检测，职位源文本以英文为主。
		source = "en"
	}
	endpoint := "https://api.mymemory.translated.net/get?q=" + url.QueryEscape(text) +
		"&langpair=" + url.QueryEscape(source+"|"+targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("mymemory http %d", resp.StatusCode)
	}

	var body struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus any `json:"responseStatus"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode mymemory response: %w", err)
	}
	return strings.TrimSpace(body.ResponseData.TranslatedText), nil
}

// --- AI（chat-completions 兜底，只在免费服务全挂且配置了 key 时启用） ---

// AIConfig 定义 AI 翻译兜底的配置。
type AIConfig struct {
	APIBase string `yaml:"api_base" json:"api_base"`
	APIKey  string `yaml:"api_key" json:"api_key"`
	Model   string `yaml:"model" json:"model"`
}

// AIProvider 通过 chat-completions 接口做翻译。
type AIProvider struct {
	cfg    AIConfig
	client *http.Client
}

func NewAIProvider(cfg AIConfig, client *http.Client) *AIProvider {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.deepseek.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return &AIProvider{cfg: cfg, client: client}
}

func (p *AIProvider) Name() string { return ProviderAI }

func (p *AIProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return "", fmt.Errorf("ai translate api key missing")
	}

	payload := aiRequest{
		Model: p.cfg.Model,
		Messages: []aiMessage{
			{Role: "system", Content: "You are a professional translator. Translate the user's text to " + targetLang + ". Output only the translation, no explanations."},
			{Role: "user", Content: text},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.cfg.APIBase, "/")+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ai http %d", resp.StatusCode)
	}

	var body aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(body.Choices) == 0 || body.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("ai response empty")
	}
	return strings.TrimSpace(body.Choices[0].Message.Content), nil
}

type aiRequest struct {
	Model    string      `json:"model"`
	Messages []aiMessage `json:"messages"`
}

type aiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type aiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func normalizeSource(sourceLang string) string {
	if sourceLang == "" {
		return "auto"
	}
	return sourceLang
}

// shortLang 把 zh-CN 这类带地区的代码裁成两位，LibreTranslate 只认短码。
func shortLang(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		return lang[:i]
	}
	return lang
}
