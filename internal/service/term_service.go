package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

// ── 学期模块业务错误 ──

var (
	ErrTermNotFound   = errors.New("学期不存在")
	ErrTermNameExists = errors.New("学期名称已存在")
	ErrNoTerm         = errors.New("尚未创建任何学期")
)

// TermService 学期业务接口
//
// 删除学期不级联：该学期的课表与线上课程保留在文档中，只是无法再访问。
// 改名时课表与线上课程随之迁移到新名称下。
type TermService interface {
	List(ctx context.Context) ([]dto.TermResponse, error)
	Create(ctx context.Context, req *dto.CreateTermRequest) (*dto.TermResponse, error)
	Update(ctx context.Context, name string, req *dto.UpdateTermRequest) (*dto.TermResponse, error)
	Delete(ctx context.Context, name string) error
}

type termService struct {
	store  *DocumentStore
	now    func() time.Time
	logger *zap.Logger
}

// NewTermService 创建 TermService 实例
func NewTermService(store *DocumentStore, now func() time.Time, logger *zap.Logger) TermService {
	return &termService{store: store, now: now, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *termService) List(ctx context.Context) ([]dto.TermResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	result := make([]dto.TermResponse, 0, len(doc.Terms))
	for _, t := range doc.Terms {
		result = append(result, toTermResponse(t, doc.SelectedTerm, today))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *termService) Create(ctx context.Context, req *dto.CreateTermRequest) (*dto.TermResponse, error) {
	term := timetable.Term{
		Name:      strings.TrimSpace(req.Name),
		Weeks:     req.Weeks,
		StartDate: req.StartDate,
	}

	doc, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		if _, _, exists := doc.FindTerm(term.Name); exists {
			return ErrTermNameExists
		}
		doc.Terms = append(doc.Terms, term)
		if doc.SelectedTerm == "" {
			doc.SelectedTerm = term.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建学期", zap.String("term", term.Name), zap.Int("weeks", term.Weeks))
	resp := toTermResponse(term, doc.SelectedTerm, s.now())
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *termService) Update(ctx context.Context, name string, req *dto.UpdateTermRequest) (*dto.TermResponse, error) {
	var updated timetable.Term

	doc, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		term, idx, ok := doc.FindTerm(name)
		if !ok {
			return ErrTermNotFound
		}

		if req.Name != nil {
			newName := strings.TrimSpace(*req.Name)
			if newName != "" && newName != name {
				if _, _, exists := doc.FindTerm(newName); exists {
					return ErrTermNameExists
				}
				renameTerm(doc, name, newName)
				term.Name = newName
			}
		}
		if req.Weeks != nil {
			term.Weeks = *req.Weeks
		}
		if req.StartDate != nil {
			term.StartDate = *req.StartDate
		}

		doc.Terms[idx] = term
		updated = term
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toTermResponse(updated, doc.SelectedTerm, s.now())
	return &resp, nil
}

// renameTerm 把课表、线上课程与选中状态迁移到新学期名下
func renameTerm(doc *timetable.Document, from, to string) {
	if tg, ok := doc.Courses[from]; ok {
		doc.Courses[to] = tg
		delete(doc.Courses, from)
	}
	if list, ok := doc.OnlineCourses[from]; ok {
		doc.OnlineCourses[to] = list
		delete(doc.OnlineCourses, from)
	}
	if doc.SelectedTerm == from {
		doc.SelectedTerm = to
	}
}

// ────────────────────── Delete ──────────────────────

func (s *termService) Delete(ctx context.Context, name string) error {
	_, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		_, idx, ok := doc.FindTerm(name)
		if !ok {
			return ErrTermNotFound
		}
		doc.Terms = append(doc.Terms[:idx], doc.Terms[idx+1:]...)
		if doc.SelectedTerm == name {
			doc.SelectedTerm = ""
			if len(doc.Terms) > 0 {
				doc.SelectedTerm = doc.Terms[0].Name
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("删除学期", zap.String("term", name))
	return nil
}

// ── 内部辅助方法 ──

func toTermResponse(t timetable.Term, selected string, today time.Time) dto.TermResponse {
	resp := dto.TermResponse{
		Name:        t.Name,
		Weeks:       t.Weeks,
		StartDate:   t.StartDate,
		CurrentWeek: timetable.CurrentWeek(t, today),
		Selected:    t.Name == selected,
	}
	if end, ok := timetable.TermEnd(t); ok {
		resp.EndDate = end.Format(timetable.DateLayout)
	}
	return resp
}

// activeTerm 按名称查找学期，name 为空时取当前选中的学期
func activeTerm(doc *timetable.Document, name string) (timetable.Term, error) {
	if name == "" {
		t, ok := doc.ActiveTerm()
		if !ok {
			return timetable.Term{}, ErrNoTerm
		}
		return t, nil
	}
	t, _, ok := doc.FindTerm(name)
	if !ok {
		return timetable.Term{}, ErrTermNotFound
	}
	return t, nil
}
