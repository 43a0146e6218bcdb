package model

import "time"

// RawItem 表示从外部源抓取到、尚未归一化的职位原始数据。
// 抓取完成后不可变，由 normalizer 消费一次。
// Company/Location/Salary 等字段由源头尽力填充，缺失时归一化阶段会从
// 标题与描述中启发式提取。
type RawItem struct {
	SourceName      string    `json:"source_name"`
	SourceURL       string    `json:"source_url"`
	Title           string    `json:"title"`
	DescriptionHTML string    `json:"description_html"`
	Link            string    `json:"link"`
	PublishedAt     time.Time `json:"published_at"`
	FetchedAt       time.Time `json:"fetched_at"`

	Company           string   `json:"company,omitempty"`
	Location          string   `json:"location,omitempty"`
	Salary            string   `json:"salary,omitempty"`
	Requirements      []string `json:"requirements,omitempty"`
	Benefits          []string `json:"benefits,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	IsRemote          bool     `json:"is_remote,omitempty"`
	RemoteRestriction string   `json:"remote_restriction,omitempty"`
}
