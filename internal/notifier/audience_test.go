package notifier

import (
	"context"
	"strings"
	"testing"

	"jobhub/internal/model"

	"gorm.io/datatypes"
)

func TestAudienceNotifierFiltersJobsPerAudience(t *testing.T) {
	t.Parallel()

	store := &stubAudienceStore{
		auds: []model.Audience{
			{Key: "a-1", Email: "be@example.com", Channel: "email", Tags: datatypes.JSONMap{"后端开发": true}},
			{Key: "a-2", Email: "log@example.com", Channel: "log", Tags: datatypes.JSONMap{"前端开发": true}},
		},
	}

	emailSender := &stubSender{}
	cfg := EmailConfig{From: "from@example.com", Host: "smtp", To: []string{"placeholder"}}
	n := NewAudienceNotifier(store, cfg, emailSender, nil)

	jobs := []model.Job{
		{ID: "be", Title: "Backend Engineer", Category: model.Category("后端开发")},
		{ID: "fe", Title: "Frontend Engineer", Category: model.Category("前端开发")},
	}

	if err := n.Notify(context.Background(), jobs); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	if emailSender.calls != 1 {
		t.Fatalf("expected email sender called once, got %d", emailSender.calls)
	}
	if !strings.Contains(emailSender.lastBody, "Backend Engineer") {
		t.Fatalf("expected backend job in email body, got %s", emailSender.lastBody)
	}
	if strings.Contains(emailSender.lastBody, "Frontend Engineer") {
		t.Fatalf("expected frontend job to be filtered out, got %s", emailSender.lastBody)
	}
}

func TestAudienceNotifierMatchesSkillTags(t *testing.T) {
	t.Parallel()

	store := &stubAudienceStore{
		auds: []model.Audience{
			{Key: "a-1", Email: "go@example.com", Channel: "email", Tags: datatypes.JSONMap{"go": true}},
		},
	}

	emailSender := &stubSender{}
	n := NewAudienceNotifier(store, EmailConfig{From: "from@example.com"}, emailSender, nil)

	jobs := []model.Job{
		{ID: "1", Title: "Platform Engineer", Category: model.Category("后端开发"), SkillTags: datatypes.JSONMap{"go": true}},
		{ID: "2", Title: "Designer", Category: model.Category("设计")},
	}

	if err := n.Notify(context.Background(), jobs); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if emailSender.calls != 1 {
		t.Fatalf("expected one email, got %d", emailSender.calls)
	}
	if !strings.Contains(emailSender.lastBody, "Platform Engineer") {
		t.Fatalf("expected skill-matched job in body, got %s", emailSender.lastBody)
	}
}

func TestAudienceNotifierIgnoresUnknownChannel(t *testing.T) {
	t.Parallel()

	store := &stubAudienceStore{
		auds: []model.Audience{
			{Key: "a-1", Email: "log@example.com", Channel: "log", Tags: datatypes.JSONMap{"前端开发": true}},
		},
	}

	emailSender := &stubSender{}
	n := NewAudienceNotifier(store, EmailConfig{From: "from@example.com"}, emailSender, nil)

	jobs := []model.Job{
		{ID: "fe", Title: "Frontend Engineer", Category: model.Category("前端开发")},
	}

	if err := n.Notify(context.Background(), jobs); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if emailSender.calls != 0 {
		t.Fatalf("expected email sender not to be called for log channel, got %d", emailSender.calls)
	}
}

func TestAudienceNotifierFallsBackWhenNoAudiences(t *testing.T) {
	t.Parallel()

	store := &stubAudienceStore{}
	fallback := &stubNotifier{}

	n := NewAudienceNotifier(store, EmailConfig{}, nil, fallback)

	if err := n.Notify(context.Background(), []model.Job{{ID: "only"}}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if fallback.calls == 0 {
		t.Fatalf("expected fallback notifier to be invoked")
	}
}

type stubAudienceStore struct {
	auds []model.Audience
}

func (s *stubAudienceStore) ListAudiences(ctx context.Context) ([]model.Audience, error) {
	return s.auds, nil
}

type stubNotifier struct {
	calls int
}

func (s *stubNotifier) Notify(ctx context.Context, jobs []model.Job) error {
	s.calls++
	return nil
}
