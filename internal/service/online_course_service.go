package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

// ── 线上课程模块业务错误 ──

var (
	ErrOnlineCourseNotFound = errors.New("线上课程不存在")
	ErrInvalidWeekSpan      = errors.New("结束周不能早于开始周")
)

// OnlineCourseService 线上课程业务接口
type OnlineCourseService interface {
	List(ctx context.Context, term string, week int) ([]dto.OnlineCourseResponse, error)
	Create(ctx context.Context, term string, req *dto.OnlineCourseRequest) (*dto.OnlineCourseResponse, error)
	Update(ctx context.Context, term, id string, req *dto.OnlineCourseRequest) (*dto.OnlineCourseResponse, error)
	Delete(ctx context.Context, term, id string) error
}

type onlineCourseService struct {
	store  *DocumentStore
	logger *zap.Logger
}

// NewOnlineCourseService 创建 OnlineCourseService 实例
func NewOnlineCourseService(store *DocumentStore, logger *zap.Logger) OnlineCourseService {
	return &onlineCourseService{store: store, logger: logger}
}

// ────────────────────── List ──────────────────────

// List week 为 0 时返回全部
func (s *onlineCourseService) List(ctx context.Context, term string, week int) ([]dto.OnlineCourseResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, ok := doc.FindTerm(term); !ok {
		return nil, ErrTermNotFound
	}

	list := doc.OnlineCourses[term]
	if week > 0 {
		list = doc.TermOnlineCourses(term, week)
	}
	return toOnlineCourseResponses(list), nil
}

// ────────────────────── Create ──────────────────────

func (s *onlineCourseService) Create(ctx context.Context, term string, req *dto.OnlineCourseRequest) (*dto.OnlineCourseResponse, error) {
	oc, err := fromOnlineCourseRequest(req)
	if err != nil {
		return nil, err
	}
	oc.ID = uuid.NewString()

	_, err = s.store.Update(ctx, func(doc *timetable.Document) error {
		if _, _, ok := doc.FindTerm(term); !ok {
			return ErrTermNotFound
		}
		doc.OnlineCourses[term] = append(doc.OnlineCourses[term], oc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建线上课程", zap.String("term", term), zap.String("id", oc.ID), zap.String("name", oc.Name))
	resp := toOnlineCourseResponse(oc)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *onlineCourseService) Update(ctx context.Context, term, id string, req *dto.OnlineCourseRequest) (*dto.OnlineCourseResponse, error) {
	oc, err := fromOnlineCourseRequest(req)
	if err != nil {
		return nil, err
	}
	oc.ID = id

	_, err = s.store.Update(ctx, func(doc *timetable.Document) error {
		if _, _, ok := doc.FindTerm(term); !ok {
			return ErrTermNotFound
		}
		list := doc.OnlineCourses[term]
		for i := range list {
			if list[i].ID == id {
				list[i] = oc
				return nil
			}
		}
		return ErrOnlineCourseNotFound
	})
	if err != nil {
		return nil, err
	}

	resp := toOnlineCourseResponse(oc)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *onlineCourseService) Delete(ctx context.Context, term, id string) error {
	_, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		if _, _, ok := doc.FindTerm(term); !ok {
			return ErrTermNotFound
		}
		list := doc.OnlineCourses[term]
		for i := range list {
			if list[i].ID == id {
				doc.OnlineCourses[term] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
		return ErrOnlineCourseNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("删除线上课程", zap.String("term", term), zap.String("id", id))
	return nil
}

// ── 内部辅助方法 ──

func fromOnlineCourseRequest(req *dto.OnlineCourseRequest) (timetable.OnlineCourse, error) {
	if req.EndWeek < req.StartWeek {
		return timetable.OnlineCourse{}, ErrInvalidWeekSpan
	}
	return timetable.OnlineCourse{
		Name:      strings.TrimSpace(req.Name),
		StartWeek: req.StartWeek,
		EndWeek:   req.EndWeek,
		Teacher:   req.Teacher,
		Platform:  req.Platform,
		Link:      req.Link,
		Notes:     req.Notes,
		Color:     req.Color,
	}, nil
}

func toOnlineCourseResponse(oc timetable.OnlineCourse) dto.OnlineCourseResponse {
	return dto.OnlineCourseResponse{
		ID:        oc.ID,
		Name:      oc.Name,
		StartWeek: oc.StartWeek,
		EndWeek:   oc.EndWeek,
		Teacher:   oc.Teacher,
		Platform:  oc.Platform,
		Link:      oc.Link,
		Notes:     oc.Notes,
		Color:     oc.Color,
	}
}

func toOnlineCourseResponses(list []timetable.OnlineCourse) []dto.OnlineCourseResponse {
	result := make([]dto.OnlineCourseResponse, 0, len(list))
	for _, oc := range list {
		result = append(result, toOnlineCourseResponse(oc))
	}
	return result
}
