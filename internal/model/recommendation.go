package model

import "time"

// RecommendedJob 是进入每日推荐的职位，附带推荐元信息。
type RecommendedJob struct {
	Job
	RecommendationID    string    `json:"recommendation_id"`
	RecommendedAt       time.Time `json:"recommended_at"`
	RecommendationGroup int       `json:"recommendation_group"`
}

// DailyRecommendation 表示某一天、某个受众的推荐快照。
// 线上传输形状固定为 {date, jobs, timestamp}，Timestamp 为毫秒。
type DailyRecommendation struct {
	Date        string           `gorm:"primaryKey;size:10" json:"date"`
	AudienceKey string           `gorm:"primaryKey" json:"-"`
	Jobs        []RecommendedJob `gorm:"serializer:json" json:"jobs"`
	Timestamp   int64            `json:"timestamp"`
	CreatedAt   time.Time        `json:"-"`
	UpdatedAt   time.Time        `json:"-"`
}
