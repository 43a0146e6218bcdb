// Package recommend 生成每日职位推荐。同一天对同一候选池的抽样结果
// 完全一致：随机序列由日期字符串播种，不依赖系统时间与调用次数。
package recommend

import (
	"fmt"
	"time"

	"jobhub/internal/model"
)

const (
	dailyCount = 6
	groupSize  = 3

	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// rng 是按日期播种的线性同余序列，保证跨进程可复现。
type rng struct {
	seed int64
}

func newRNG(date string) *rng {
	var h int64
	for _, r := range date {
		h = h*31 + int64(r)
	}
	if h < 0 {
		h = -h
	}
	return &rng{seed: h % lcgModulus}
}

func (r *rng) next() float64 {
	r.seed = (r.seed*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.seed) / lcgModulus
}

func (r *rng) shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(r.next() * float64(i+1))
		swap(i, j)
	}
}

// Build 对候选池做确定性洗牌后取前 6 条，按 3 条一组编号。
// 推荐时间固定为当天 09:00 UTC，随机种子只由日期决定。
func Build(date, audienceKey string, pool []model.Job) *model.DailyRecommendation {
	jobs := make([]model.Job, len(pool))
	copy(jobs, pool)

	r := newRNG(date)
	r.shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })
	if len(jobs) > dailyCount {
		jobs = jobs[:dailyCount]
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		day = time.Now().UTC().Truncate(24 * time.Hour)
	}
	recommendedAt := day.Add(9 * time.Hour)
	recID := fmt.Sprintf("rec_%s_%d", date, recommendedAt.UnixMilli())

	picked := make([]model.RecommendedJob, 0, len(jobs))
	for i, job := range jobs {
		picked = append(picked, model.RecommendedJob{
			Job:                 job,
			RecommendationID:    recID,
			RecommendedAt:       recommendedAt,
			RecommendationGroup: i/groupSize + 1,
		})
	}

	return &model.DailyRecommendation{
		Date:        date,
		AudienceKey: audienceKey,
		Jobs:        picked,
		Timestamp:   recommendedAt.UnixMilli(),
	}
}
