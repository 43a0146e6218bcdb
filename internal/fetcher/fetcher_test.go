package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRSSFetchFiltersByAge(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	feedXML := buildRSS([]itemFixture{
		{
			Title:       "Acme: Senior Engineer",
			Link:        "https://example.com/jobs/1",
			GUID:        "1",
			Description: "<p>Fresh role</p>",
			PublishedAt: now.Add(-24 * time.Hour),
			Categories:  []string{"golang"},
		},
		{
			Title:       "Old Role",
			Link:        "https://example.com/jobs/2",
			GUID:        "2",
			Description: "<p>Too old</p>",
			PublishedAt: now.AddDate(0, 0, -45),
		},
	})

	rt := newStubRoundTripper(map[string]string{
		"http://feeds.example.com/jobs.rss": feedXML,
	})

	f := NewRSSFetcher(Config{
		MaxAgeDays: 30,
		Sources:    []SourceConfig{{Name: "example", URL: "http://feeds.example.com/jobs.rss"}},
	}, &http.Client{Transport: rt})
	f.now = func() time.Time { return now }

	items, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Title != "Acme: Senior Engineer" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.SourceName != "example" {
		t.Fatalf("unexpected source %q", item.SourceName)
	}
	if !strings.Contains(item.DescriptionHTML, "Fresh role") {
		t.Fatalf("unexpected description %q", item.DescriptionHTML)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "golang" {
		t.Fatalf("unexpected tags %v", item.Tags)
	}
	if !item.PublishedAt.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected published at %s", item.PublishedAt)
	}
}

func TestRSSFetchSkipsFailingSource(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	good := buildRSS([]itemFixture{{
		Title:       "Remote DevOps",
		Link:        "https://example.com/jobs/3",
		GUID:        "3",
		Description: "<p>Cloud</p>",
		PublishedAt: now.Add(-2 * time.Hour),
	}})

	rt := newStubRoundTripper(map[string]string{
		"http://feeds.example.com/good.rss": good,
		// bad.rss 未注册，返回 404。
	})

	f := NewRSSFetcher(Config{
		MaxAgeDays: 30,
		Sources: []SourceConfig{
			{Name: "bad", URL: "http://feeds.example.com/bad.rss"},
			{Name: "good", URL: "http://feeds.example.com/good.rss"},
		},
	}, &http.Client{Transport: rt})
	f.now = func() time.Time { return now }

	items, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 || items[0].SourceName != "good" {
		t.Fatalf("expected only items from healthy source, got %+v", items)
	}
}

func TestRSSFetchDeduplicates(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	dup := itemFixture{
		Title:       "Remote FE",
		Link:        "https://example.com/jobs/4",
		GUID:        "4",
		Description: "<p>React</p>",
		PublishedAt: now.Add(-2 * time.Hour),
	}

	rt := newStubRoundTripper(map[string]string{
		"http://feeds.example.com/jobs.rss": buildRSS([]itemFixture{dup, dup}),
	})

	f := NewRSSFetcher(Config{
		MaxAgeDays: 30,
		Sources:    []SourceConfig{{Name: "example", URL: "http://feeds.example.com/jobs.rss"}},
	}, &http.Client{Transport: rt})
	f.now = func() time.Time { return now }

	items, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected duplicates to collapse, got %d items", len(items))
	}
}

type itemFixture struct {
	Title       string
	Link        string
	GUID        string
	Description string
	PublishedAt time.Time
	Categories  []string
}

func buildRSS(items []itemFixture) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<rss version="2.0"><channel><title>Jobs</title><link>https://example.com</link>`)
	for _, it := range items {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>%s</title>", it.Title)
		fmt.Fprintf(&b, "<link>%s</link>", it.Link)
		if it.GUID != "" {
			fmt.Fprintf(&b, "<guid>%s</guid>", it.GUID)
		}
		fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>", it.Description)
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.PublishedAt.Format(time.RFC1123Z))
		for _, c := range it.Categories {
			fmt.Fprintf(&b, "<category>%s</category>", c)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

type stubRoundTripper struct {
	responses map[string]string
	mu        sync.Mutex
}

func newStubRoundTripper(responses map[string]string) *stubRoundTripper {
	return &stubRoundTripper{responses: responses}
}

func (s *stubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	body, ok := s.responses[req.URL.String()]
	s.mu.Unlock()
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}
