package notifier

import (
	"context"
	"fmt"
	"strings"

	"jobhub/internal/model"
)

// AudienceStore 定义受众读取接口。
type AudienceStore interface {
	ListAudiences(ctx context.Context) ([]model.Audience, error)
}

// jobNotifier 提供统一通知接口。
type jobNotifier interface {
	Notify(ctx context.Context, jobs []model.Job) error
}

// AudienceNotifier 按受众的订阅标签过滤后推送通知。
type AudienceNotifier struct {
	store    AudienceStore
	emailCfg EmailConfig
	sender   EmailSender
	fallback jobNotifier
}

// NewAudienceNotifier 创建实例。
func NewAudienceNotifier(store AudienceStore, cfg EmailConfig, sender EmailSender, fallback jobNotifier) *AudienceNotifier {
	return &AudienceNotifier{
		store:    store,
		emailCfg: cfg,
		sender:   sender,
		fallback: fallback,
	}
}

// Notify 根据受众偏好过滤并发送消息。没有任何受众时退回 fallback。
func (n *AudienceNotifier) Notify(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 || n.store == nil {
		return nil
	}

	auds, err := n.store.ListAudiences(ctx)
	if err != nil {
		return fmt.Errorf("list audiences: %w", err)
	}
	if len(auds) == 0 {
		if n.fallback != nil {
			return n.fallback.Notify(ctx, jobs)
		}
		return nil
	}

	for _, aud := range auds {
		matches := filterJobsForAudience(aud, jobs)
		if len(matches) == 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(aud.Channel)) {
		case "email", "":
			cfg := n.emailCfg
			cfg.To = []string{aud.Email}
			email := NewEmailNotifier(cfg, n.sender)
			if err := email.Notify(ctx, matches); err != nil {
				return err
			}
		default:
			continue
		}
	}

	return nil
}

// filterJobsForAudience 保留命中任一订阅标签的职位；标签可以是职位分类
// 或技能名。未配置标签的受众收到全部职位。
func filterJobsForAudience(aud model.Audience, jobs []model.Job) []model.Job {
	if len(aud.Tags) == 0 {
		return jobs
	}
	filtered := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if jobMatches(job, aud.Tags) {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

func jobMatches(job model.Job, tags map[string]any) bool {
	for tag, v := range tags {
		if !isTruthy(v) {
			continue
		}
		if string(job.Category) == tag {
			return true
		}
		if job.SkillTags != nil && isTruthy(job.SkillTags[strings.ToLower(tag)]) {
			return true
		}
	}
	return false
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.TrimSpace(strings.ToLower(val)) == "true"
	case float64:
		return val != 0
	default:
		return val != nil
	}
}
