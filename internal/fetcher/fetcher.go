package fetcher

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"jobhub/internal/model"

	"github.com/mmcdole/gofeed"
)

// SourceConfig 描述一个 RSS 职位源。
type SourceConfig struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Config 定义抓取配置。
type Config struct {
	MaxAgeDays int            `yaml:"max_age_days" json:"max_age_days"`
	Interval   string         `yaml:"interval" json:"interval"`
	Sources    []SourceConfig `yaml:"sources" json:"sources"`
}

// Fetcher 抓取统一接口。
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.RawItem, error)
}

// RSSFetcher 抓取多个 RSS 源的职位条目。
type RSSFetcher struct {
	parser *gofeed.Parser
	cfg    Config
	now    func() time.Time
	logger *log.Logger
}

// NewRSSFetcher 创建 RSS 抓取器，client 传 nil 时使用默认 HTTP 客户端。
func NewRSSFetcher(cfg Config, client *http.Client) *RSSFetcher {
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 30
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "jobhub/1.0"
	if client != nil {
		parser.Client = client
	}
	return &RSSFetcher{
		parser: parser,
		cfg:    cfg,
		now:    time.Now,
		logger: log.New(os.Stdout, "[fetcher] ", log.LstdFlags),
	}
}

// Fetch 抓取所有源的最新条目，按时间窗口过滤并跨源去重。
// 单个源失败只记日志跳过，不影响其余源。
func (f *RSSFetcher) Fetch(ctx context.Context) ([]model.RawItem, error) {
	cutoff := f.now().AddDate(0, 0, -f.cfg.MaxAgeDays)
	fetchedAt := f.now()

	items := make([]model.RawItem, 0)
	seen := make(map[string]struct{})

	f.logf("start fetch: sources=%d max_age_days=%d cutoff=%s",
		len(f.cfg.Sources), f.cfg.MaxAgeDays, cutoff.Format(time.RFC3339))

	for _, src := range f.cfg.Sources {
		feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			f.logf("source=%s fetch failed: %v", src.Name, err)
			continue
		}

		accepted := 0
		for _, item := range feed.Items {
			publishedAt := pickPublished(item)
			if publishedAt == nil {
				continue // 缺少发布时间，跳过
			}
			if publishedAt.Before(cutoff) {
				continue
			}

			key := dedupKey(src.Name, item)
			if key != "" {
				if _, exists := seen[key]; exists {
					f.logf("source=%s skip_duplicate key=%s", src.Name, key)
					continue
				}
				seen[key] = struct{}{}
			}

			items = append(items, model.RawItem{
				SourceName:      src.Name,
				SourceURL:       src.URL,
				Title:           strings.TrimSpace(item.Title),
				DescriptionHTML: pickDescription(item),
				Link:            strings.TrimSpace(item.Link),
				PublishedAt:     publishedAt.UTC(),
				FetchedAt:       fetchedAt,
				Company:         pickAuthor(item),
				Tags:            item.Categories,
			})
			accepted++
		}
		f.logf("source=%s parsed=%d accepted=%d cumulative=%d",
			src.Name, len(feed.Items), accepted, len(items))
	}

	f.logf("fetch done total_items=%d", len(items))
	return items, nil
}

func (f *RSSFetcher) logf(format string, args ...any) {
	if f.logger == nil {
		f.logger = log.New(os.Stdout, "[fetcher] ", log.LstdFlags)
	}
	f.logger.Printf(format, args...)
}

func pickPublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// pickDescription 优先取 content:encoded 全文，退回摘要。
func pickDescription(item *gofeed.Item) string {
	if strings.TrimSpace(item.Content) != "" {
		return item.Content
	}
	return item.Description
}

func pickAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return strings.TrimSpace(item.Authors[0].Name)
	}
	return ""
}

func dedupKey(sourceName string, item *gofeed.Item) string {
	if item.GUID != "" {
		return sourceName + "|" + item.GUID
	}
	if item.Link != "" {
		return item.Link
	}
	return ""
}
