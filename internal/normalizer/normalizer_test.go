package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhub/internal/model"
)

func newTestNormalizer(now time.Time) *Normalizer {
	n := New(nil, nil)
	n.now = func() time.Time { return now }
	return n
}

func TestParseSalary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want *model.SalaryRange
	}{
		{
			name: "美元区间带千位缩写",
			in:   "$80k - $120k",
			want: &model.SalaryRange{Min: 80000, Max: 120000, Currency: "USD", Period: model.PeriodYearly},
		},
		{
			name: "人民币月薪",
			in:   "15k-25k RMB per month",
			want: &model.SalaryRange{Min: 15000, Max: 25000, Currency: "CNY", Period: model.PeriodMonthly},
		},
		{
			name: "欧元时薪单值",
			in:   "€50/hour",
			want: &model.SalaryRange{Min: 50, Max: 50, Currency: "EUR", Period: model.PeriodHourly, Negotiable: true},
		},
		{
			name: "带千分位的单值",
			in:   "$150,000",
			want: &model.SalaryRange{Min: 150000, Max: 150000, Currency: "USD", Period: model.PeriodYearly, Negotiable: true},
		},
		{
			name: "万为单位",
			in:   "2-3万/月 人民币",
			want: &model.SalaryRange{Min: 20000, Max: 30000, Currency: "CNY", Period: model.PeriodMonthly},
		},
		{
			name: "区间带可议",
			in:   "$90k - $110k, negotiable",
			want: &model.SalaryRange{Min: 90000, Max: 110000, Currency: "USD", Period: model.PeriodYearly, Negotiable: true},
		},
		{name: "面议无数字", in: "面议", want: nil},
		{name: "空文本", in: "  ", want: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseSalary(tc.in))
		})
	}
}

func TestFindSalaryTextSkipsRetirementPlan(t *testing.T) {
	t.Parallel()

	desc := "Benefits include 401k matching. Compensation: $100k - $140k per year."
	got := findSalaryText(desc)
	require.NotEmpty(t, got)
	assert.NotContains(t, got, "401")
	assert.Empty(t, findSalaryText("we offer 401k matching and equity"))

	// "per week" 里的 k 不是千位缩写。
	assert.Empty(t, findSalaryText("expect 3 releases per week"))
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Senior React Developer", CleanTitle("  🚀 Senior   React Developer!! "))
	assert.Equal(t, "急聘资深后端工程师 - 远程", CleanTitle("【急聘】资深后端工程师 - 远程"))
}

func TestCompanyFromTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Acme", companyFromTitle("Acme: Senior Engineer"))
	assert.Equal(t, "Acme", companyFromTitle("Senior Engineer at Acme"))
	assert.Equal(t, "Acme", companyFromTitle("Senior Engineer | Platform | Acme"))
	assert.Equal(t, "", companyFromTitle("Senior Engineer"))
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	html := "<p>Hello<br>World</p><ul><li>One</li><li>Two</li></ul>"
	assert.Equal(t, "Hello\nWorld\n- One\n- Two", StripHTML(html))
	assert.Equal(t, "", StripHTML("   "))
}

func TestExtractSkillTags(t *testing.T) {
	t.Parallel()

	tags := ExtractSkillTags("Experience with React, Node.js and k8s; we write Go services on AWS")
	require.NotNil(t, tags)
	assert.Contains(t, tags, "react")
	assert.Contains(t, tags, "node.js")
	assert.Contains(t, tags, "kubernetes", "k8s 应折叠为规范名")
	assert.Contains(t, tags, "go")
	assert.Contains(t, tags, "aws")
	assert.NotContains(t, tags, "k8s")

	// 短词必须整词命中，"growth"、"goals" 不含 go。
	assert.Nil(t, ExtractSkillTags("We value growth and quarterly goals"))
}

func TestExtractLanguages(t *testing.T) {
	t.Parallel()

	reqs := extractLanguages("Fluent English required, Mandarin is a plus")
	require.Len(t, reqs, 2)
	assert.Equal(t, model.LanguageRequirement{Language: "English", Level: model.LangFluent, Required: true}, reqs[0])
	assert.Equal(t, model.LanguageRequirement{Language: "中文", Level: model.LangFluent, Required: false}, reqs[1])

	// 熟练度修饰词同样作用于中文。
	reqs = extractLanguages("要求流利的普通话")
	require.Len(t, reqs, 1)
	assert.Equal(t, model.LanguageRequirement{Language: "中文", Level: model.LangFluent, Required: false}, reqs[0])

	reqs = extractLanguages("Mandarin preferred")
	require.Len(t, reqs, 1)
	assert.Equal(t, model.LangConversational, reqs[0].Level)

	assert.Nil(t, extractLanguages("no language mentioned"))
}

func TestExtractCompanyURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://acme.dev",
		extractCompanyURL("", "about us **URL:** https://acme.dev more text"))
	assert.Equal(t, "https://acme.io/careers",
		extractCompanyURL("", "see [Acme](https://acme.io/careers) for details"))
	assert.Equal(t, "", extractCompanyURL("", "apply at https://jobs.lever.co/acme"),
		"ATS 域名不算公司官网")
	assert.Equal(t, "https://acme.com",
		extractCompanyURL("", "apply at https://jobs.lever.co/acme or visit https://acme.com."))
}

func TestExtractLinkedIn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://linkedin.com/company/acme-inc",
		extractLinkedIn("find us at linkedin.com/company/acme-inc today"))
	assert.Equal(t, "", extractLinkedIn("no social links here"))
}

func TestExtractListSection(t *testing.T) {
	t.Parallel()

	text := "About the role\n" +
		"Requirements:\n" +
		"- 5+ years with Go\n" +
		"- Fluent English\n" +
		"\n" +
		"Benefits:\n" +
		"- Remote friendly\n" +
		"- Annual offsite"

	reqs := extractListSection(text, requirementHeadings)
	assert.Equal(t, []string{"5+ years with Go", "Fluent English"}, reqs)

	benefits := extractListSection(text, benefitHeadings)
	assert.Equal(t, []string{"Remote friendly", "Annual offsite"}, benefits)

	assert.Nil(t, extractListSection("no sections here", requirementHeadings))
}

func TestMapLocationRestriction(t *testing.T) {
	t.Parallel()

	got := mapLocationRestriction("Remote", "Anywhere in the world", true)
	assert.Equal(t, model.NoRestriction, got.Type)
	assert.Equal(t, "全球远程", got.Description)

	got = mapLocationRestriction("Remote", "US timezones only", true)
	assert.Equal(t, model.SpecificRegions, got.Type)
	assert.Equal(t, []string{"US timezones only"}, got.Regions)

	got = mapLocationRestriction("Remote", "", true)
	assert.Equal(t, model.NoRestriction, got.Type)
	assert.Equal(t, "远程工作", got.Description)

	got = mapLocationRestriction("Berlin", "", false)
	assert.Equal(t, model.SpecificRegions, got.Type)
	assert.Equal(t, []string{"Berlin"}, got.Regions)

	got = mapLocationRestriction("", "", false)
	assert.Equal(t, model.NoRestriction, got.Type)
	assert.Equal(t, "地点待定", got.Description)
}

func TestUnifiedIDDeterministic(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := UnifiedID("Senior React Developer", "Acme", ts)
	b := UnifiedID("Senior React Developer", "Acme", ts)
	assert.Equal(t, a, b)
	assert.True(t, len(a) > len("unified-"))
	assert.Contains(t, a, "unified-")

	c := UnifiedID("Senior React Developer", "Acme", ts.Add(time.Hour))
	assert.NotEqual(t, a, c, "发布时间不同应得到不同 ID")
}

func TestNormalizeEndToEnd(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	n := newTestNormalizer(now)

	raw := model.RawItem{
		SourceName: "weworkremotely",
		SourceURL:  "https://weworkremotely.com/remote-jobs.rss",
		Title:      "Senior React Developer",
		Company:    "Acme",
		Location:   "Remote, USA",
		Link:       "https://example.com/jobs/123",
		DescriptionHTML: "<p>We are looking for a Senior React Developer to join our remote team.</p>" +
			"<p>**URL:** https://acme.dev</p>" +
			"<p>Compensation: $100k - $140k per year</p>" +
			"<p>Requirements:</p><ul><li>5+ years with React</li><li>Fluent English</li></ul>",
		PublishedAt: now.Add(-12 * time.Hour),
		FetchedAt:   now,
	}

	job := n.Normalize(raw)

	assert.Equal(t, "Senior React Developer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, model.LevelSenior, job.ExperienceLevel)
	assert.Equal(t, model.Category("前端开发"), job.Category)
	assert.Equal(t, model.RegionOverseas, job.Region)
	assert.True(t, job.IsRemote)
	assert.Equal(t, model.StatusActive, job.Status)
	assert.Equal(t, "https://acme.dev", job.CompanyURL)

	require.NotNil(t, job.SalaryRange)
	assert.Equal(t, 100000, job.SalaryRange.Min)
	assert.Equal(t, 140000, job.SalaryRange.Max)
	assert.Equal(t, "USD", job.SalaryRange.Currency)

	assert.Equal(t, []string{"5+ years with React", "Fluent English"}, job.Requirements)
	assert.Contains(t, job.SkillTags, "react")
	require.NotEmpty(t, job.LanguageRequirements)
	assert.Equal(t, "English", job.LanguageRequirements[0].Language)

	assert.Contains(t, job.ID, "unified-")
	assert.Equal(t, 1.0, job.DataQuality.Freshness, "12 小时内发布应拿满新鲜度")
	assert.Empty(t, job.DataQuality.MissingFields)
	assert.Empty(t, job.DataQuality.Issues)
	assert.Greater(t, job.DataQuality.Score, 80)

	again := n.Normalize(raw)
	assert.Equal(t, job, again, "相同输入必须得到完全一致的输出")
}

func TestNormalizeDegradesGracefully(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	n := newTestNormalizer(now)

	// 只有标题的残缺数据也要能进库，质量分体现缺失。
	raw := model.RawItem{
		SourceName:  "sparse",
		Title:       "Engineer at Tiny Co",
		PublishedAt: now.Add(-40 * 24 * time.Hour),
	}

	job := n.Normalize(raw)
	assert.Equal(t, "Tiny Co", job.Company, "公司名应从标题回退提取")
	assert.Equal(t, model.StatusActive, job.Status)
	assert.Contains(t, job.DataQuality.MissingFields, "url")
	assert.Contains(t, job.DataQuality.MissingFields, "description")
	assert.Contains(t, job.DataQuality.Issues, "缺少岗位描述")
	assert.Equal(t, 0.4, job.DataQuality.Freshness)
	assert.Less(t, job.DataQuality.Score, 60)
}
