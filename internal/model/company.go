package model

import (
	"time"

	"gorm.io/datatypes"
)

// Company 表示跨职位合并得到的公司记录。
// DedupKey 为归一化后的网址 host，无网址时为归一化公司名，用于合并与 upsert。
type Company struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	DedupKey    string            `gorm:"uniqueIndex" json:"-"`
	Name        string            `json:"name"`
	URL         string            `json:"url,omitempty"`
	Description string            `json:"description,omitempty"`
	Logo        string            `json:"logo,omitempty"`
	Industry    Industry          `json:"industry"`
	Tags        datatypes.JSONMap `json:"tags,omitempty"`
	Source      string            `json:"source"`
	JobCount    int               `json:"job_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
