package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audience 表示一个推荐受众（订阅者）。
// Key 为 uuid，作为 DailyRecommendation 复合主键的一部分；
// Tags 存放技能标签偏好，用于日报过滤。
type Audience struct {
	Key       string            `gorm:"primaryKey" json:"key"`
	Email     string            `gorm:"uniqueIndex" json:"email"`
	Channel   string            `json:"channel"`
	Tags      datatypes.JSONMap `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
