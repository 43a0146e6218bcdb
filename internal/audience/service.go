// Package audience 管理订阅每日推荐的受众：校验订阅请求并分配受众标识。
package audience

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"jobhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Store 定义持久化接口。
type Store interface {
	CreateAudience(ctx context.Context, aud *model.Audience) error
	ListAudiences(ctx context.Context) ([]model.Audience, error)
}

// Config 控制可用渠道与可选的分类标签。
type Config struct {
	AllowedChannels []string `yaml:"allowed_channels" json:"allowed_channels"`
	TagCandidates   []string `yaml:"tag_candidates" json:"tag_candidates"`
}

// Request 表示订阅请求。
type Request struct {
	Email   string   `json:"email"`
	Channel string   `json:"channel"`
	Tags    []string `json:"tags"`
}

// Service 负责校验并登记受众。
type Service struct {
	store    Store
	channels map[string]struct{}
	tags     map[string]string

	newKey func() string
}

// NewService 创建受众服务。
func NewService(store Store, cfg Config) *Service {
	channelMap := make(map[string]struct{})
	for _, ch := range cfg.AllowedChannels {
		if trimmed := strings.ToLower(strings.TrimSpace(ch)); trimmed != "" {
			channelMap[trimmed] = struct{}{}
		}
	}
	if len(channelMap) == 0 {
		channelMap["email"] = struct{}{}
	}
	tagLookup := make(map[string]string)
	for _, tag := range cfg.TagCandidates {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tagLookup[strings.ToLower(trimmed)] = trimmed
		}
	}
	return &Service{store: store, channels: channelMap, tags: tagLookup, newKey: uuid.NewString}
}

// Subscribe 校验请求、分配受众键并写入数据库。
func (s *Service) Subscribe(ctx context.Context, req Request) (model.Audience, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return model.Audience{}, fmt.Errorf("email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Audience{}, fmt.Errorf("invalid email: %w", err)
	}

	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	if channel == "" {
		channel = "email"
	}
	if _, ok := s.channels[channel]; !ok {
		return model.Audience{}, fmt.Errorf("unsupported channel %s", channel)
	}

	tagMap := datatypes.JSONMap{}
	for _, tag := range req.Tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		canonical, ok := s.tags[key]
		if !ok && len(s.tags) > 0 {
			return model.Audience{}, fmt.Errorf("unknown tag %s", tag)
		}
		if canonical == "" {
			canonical = strings.TrimSpace(tag)
		}
		tagMap[canonical] = true
	}

	aud := model.Audience{
		Key:     s.newKey(),
		Email:   email,
		Channel: channel,
		Tags:    tagMap,
	}
	if err := s.store.CreateAudience(ctx, &aud); err != nil {
		return model.Audience{}, err
	}
	return aud, nil
}

// List 返回全部受众。
func (s *Service) List(ctx context.Context) ([]model.Audience, error) {
	return s.store.ListAudiences(ctx)
}
