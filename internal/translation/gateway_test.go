package translation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhub/internal/model"
)

type stubProvider struct {
	name     string
	fn       func(text string) (string, error)
	calls    atomic.Int32
	inflight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Translate(_ context.Context, text, _, _ string) (string, error) {
	s.calls.Add(1)
	cur := s.inflight.Add(1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	defer s.inflight.Add(-1)
	return s.fn(text)
}

func fixed(result string) func(string) (string, error) {
	return func(string) (string, error) { return result, nil }
}

func testGateway(providers ...Provider) *Gateway {
	return newGateway(providers, Config{Timeout: "2s"}, nil)
}

func TestTranslateFallbackOrder(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "a", fn: func(string) (string, error) { return "", errors.New("boom") }}
	second := &stubProvider{name: "b", fn: fixed("这是一段可用的中文译文")}
	third := &stubProvider{name: "c", fn: fixed("不应该被调用")}

	g := testGateway(first, second, third)

	got := g.Translate(context.Background(), "a long enough english sentence", "", "auto")
	assert.Equal(t, "这是一段可用的中文译文", got)
	assert.Equal(t, int32(1), first.calls.Load())
	assert.Equal(t, int32(1), second.calls.Load())
	assert.Equal(t, int32(0), third.calls.Load(), "链应在首个成功处停止")
}

func TestTranslateEchoTreatedAsFailure(t *testing.T) {
	t.Parallel()

	echo := &stubProvider{name: "echo", fn: func(text string) (string, error) { return text, nil }}
	real := &stubProvider{name: "real", fn: fixed("这是一段真正的中文译文")}

	g := testGateway(echo, real)

	input := "this input is definitely longer than twenty characters"
	got := g.Translate(context.Background(), input, "", "auto")
	assert.Equal(t, "这是一段真正的中文译文", got)
	assert.Equal(t, int32(1), real.calls.Load())
}

func TestTranslateAllFailReturnsOriginal(t *testing.T) {
	t.Parallel()

	failing := &stubProvider{name: "bad", fn: func(string) (string, error) { return "", errors.New("down") }}
	empty := &stubProvider{name: "empty", fn: fixed("  ")}

	g := testGateway(failing, empty)

	input := "original text survives a total provider outage"
	got := g.Translate(context.Background(), input, "", "auto")
	assert.Equal(t, input, got)
}

func TestTranslateCaching(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "p", fn: fixed("缓存的中文译文内容")}
	g := testGateway(p)

	ctx := context.Background()
	first := g.Translate(ctx, "cache me please now", "", "auto")
	second := g.Translate(ctx, "cache me please now", "", "auto")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), p.calls.Load(), "命中缓存不应再调用服务")

	// 不同语言对是不同的缓存键。
	_ = g.Translate(ctx, "cache me please now", "ja", "auto")
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestTranslateBatchBoundedConcurrency(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "p", fn: fixed("分块翻译的中文结果")}
	g := testGateway(p)

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1) // 每条不同，避开缓存
	}

	out := g.TranslateBatch(context.Background(), texts, "", "auto")
	require.Len(t, out, 8)
	for _, s := range out {
		assert.Equal(t, "分块翻译的中文结果", s)
	}
	assert.LessOrEqual(t, p.maxSeen.Load(), int32(batchConcurrency))
}

func TestTranslateJobAcceptsValidTranslation(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "p", fn: fixed("我们正在招聘工程师来构建分布式系统")}
	g := testGateway(p)
	fixedNow := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixedNow }

	job := model.Job{
		Title:        "Senior Backend Engineer",
		Description:  "We are hiring engineers to build large distributed systems.",
		Requirements: []string{"5+ years of Go"},
		Benefits:     []string{"Remote friendly"},
	}

	got := g.TranslateJob(context.Background(), job)
	require.NotNil(t, got.Translations)
	assert.True(t, got.IsTranslated)
	assert.Empty(t, got.TranslationError)
	assert.Equal(t, "我们正在招聘工程师来构建分布式系统", got.Translations.Title)
	assert.Len(t, got.Translations.Requirements, 1)
	assert.Len(t, got.Translations.Benefits, 1)
	assert.Equal(t, fixedNow, got.Translations.UpdatedAt)
}

func TestTranslateJobRejectsUntranslatedResult(t *testing.T) {
	t.Parallel()

	// 全链失败会回落到原文：描述仍是英文，校验必须拦下，不允许半翻译状态。
	failing := &stubProvider{name: "bad", fn: func(string) (string, error) { return "", errors.New("down") }}
	g := testGateway(failing)

	job := model.Job{
		Title:       "Senior Backend Engineer",
		Description: "We are hiring engineers to build large distributed systems across many regions.",
	}

	got := g.TranslateJob(context.Background(), job)
	assert.Nil(t, got.Translations)
	assert.False(t, got.IsTranslated)
	assert.Equal(t, reasonNoChinese, got.TranslationError)
}

func TestNewGatewayChainOrder(t *testing.T) {
	t.Parallel()

	g := NewGateway(Config{PreferredProvider: "google"}, nil, nil)
	require.NotEmpty(t, g.providers)
	assert.Equal(t, ProviderGoogle, g.providers[0].Name())

	names := providerNames(g)
	assert.NotContains(t, names, ProviderAI, "未配置 key 时不应挂载 AI 服务")

	g = NewGateway(Config{AI: AIConfig{APIKey: "sk-test"}}, nil, nil)
	names = providerNames(g)
	require.NotEmpty(t, names)
	assert.Equal(t, ProviderAI, names[len(names)-1], "AI 服务必须垫底")

	// preferred 配成 ai 不生效：AI 只能兜底。
	g = NewGateway(Config{PreferredProvider: "ai", AI: AIConfig{APIKey: "sk-test"}}, nil, nil)
	assert.Equal(t, ProviderLibreTranslate, g.providers[0].Name())
}

func providerNames(g *Gateway) []string {
	names := make([]string, 0, len(g.providers))
	for _, p := range g.providers {
		names = append(names, p.Name())
	}
	return names
}
