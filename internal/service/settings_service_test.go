package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"fiatimetable/internal/dto"
)

func TestSettingsService_GetAndUpdate(t *testing.T) {
	store, _, _ := setupTestStore()
	terms := NewTermService(store, fixedClock(2024, 9, 10, 9, 0), zap.NewNop())
	createTerm(t, terms, "秋")
	createTerm(t, terms, "春")
	svc := NewSettingsService(store, zap.NewNop())
	ctx := context.Background()

	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if got.SelectedTerm != "秋" || got.Theme != "system" {
		t.Errorf("默认设置错误: %+v", got)
	}

	term, theme := "春", "dark"
	got, err = svc.Update(ctx, &dto.UpdateSettingsRequest{SelectedTerm: &term, Theme: &theme})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.SelectedTerm != "春" || got.Theme != "dark" {
		t.Errorf("更新结果错误: %+v", got)
	}

	missing := "夏"
	if _, err := svc.Update(ctx, &dto.UpdateSettingsRequest{SelectedTerm: &missing}); !errors.Is(err, ErrTermNotFound) {
		t.Errorf("期望 ErrTermNotFound，实际: %v", err)
	}
	bad := "blue"
	if _, err := svc.Update(ctx, &dto.UpdateSettingsRequest{Theme: &bad}); !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("期望 ErrInvalidTheme，实际: %v", err)
	}

	// 失败的更新不应写回
	got, _ = svc.Get(ctx)
	if got.SelectedTerm != "春" || got.Theme != "dark" {
		t.Errorf("失败的更新不应改变设置: %+v", got)
	}
}
