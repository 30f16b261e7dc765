package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

// ErrInvalidTheme 主题取值无效
var ErrInvalidTheme = errors.New("主题只能是 system、light 或 dark")

// SettingsService 会话设置（当前学期与主题）
//
// 设置与课表存在同一个文档中，没有第二份副本。
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	store  *DocumentStore
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(store *DocumentStore, logger *zap.Logger) SettingsService {
	return &settingsService{store: store, logger: logger}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(doc.Session()), nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	doc, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		session := doc.Session()
		if req.SelectedTerm != nil {
			if _, _, ok := doc.FindTerm(*req.SelectedTerm); !ok {
				return ErrTermNotFound
			}
			session.SelectedTerm = *req.SelectedTerm
		}
		if req.Theme != nil {
			switch *req.Theme {
			case timetable.ThemeSystem, timetable.ThemeLight, timetable.ThemeDark:
				session.Theme = *req.Theme
			default:
				return ErrInvalidTheme
			}
		}
		doc.ApplySession(session)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("更新设置",
		zap.String("selected_term", doc.SelectedTerm),
		zap.String("theme", doc.Theme),
	)
	return toSettingsResponse(doc.Session()), nil
}

func toSettingsResponse(s timetable.Session) *dto.SettingsResponse {
	return &dto.SettingsResponse{SelectedTerm: s.SelectedTerm, Theme: s.Theme}
}
