package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

// ── 课表网格模块业务错误 ──

var (
	ErrCellEmpty      = errors.New("该位置没有课程")
	ErrCourseNotFound = errors.New("该位置不存在指定课程")
)

// CourseService 课表网格业务接口
type CourseService interface {
	// Grid 列出学期内所有起始节
	Grid(ctx context.Context, term string) (*dto.GridResponse, error)
	// Set 覆盖写入 (day, slot)，原有课程的完整占用范围先被清除
	Set(ctx context.Context, term string, day, slot int, req *dto.CourseRequest) (*dto.GridCellResponse, error)
	// Append 在同一位置追加一门课（按周交替上课）
	Append(ctx context.Context, term string, day, slot int, req *dto.CourseRequest) (*dto.GridCellResponse, error)
	// Delete 删除位置上的课程；courseID 非空时只移除该门课
	Delete(ctx context.Context, term string, day, slot int, courseID string) error
	// Resolve 解析第 week 周该位置实际上课的课程，week 为 0 时取当前周
	Resolve(ctx context.Context, term string, day, slot, week int) (*dto.OccupantResponse, error)
}

type courseService struct {
	store  *DocumentStore
	now    func() time.Time
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(store *DocumentStore, now func() time.Time, logger *zap.Logger) CourseService {
	return &courseService{store: store, now: now, logger: logger}
}

// ────────────────────── Grid ──────────────────────

func (s *courseService) Grid(ctx context.Context, term string) (*dto.GridResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, ok := doc.FindTerm(term); !ok {
		return nil, ErrTermNotFound
	}

	entries := doc.Courses.Term(term).Entries()
	cells := make([]dto.GridCellResponse, 0, len(entries))
	for _, e := range entries {
		cells = append(cells, toGridCellResponse(e.Day, e.Slot, e.Courses, len(doc.TimeSlots)))
	}
	return &dto.GridResponse{Term: term, SlotCount: len(doc.TimeSlots), Cells: cells}, nil
}

// ────────────────────── Set / Append ──────────────────────

func (s *courseService) Set(ctx context.Context, term string, day, slot int, req *dto.CourseRequest) (*dto.GridCellResponse, error) {
	return s.write(ctx, term, day, slot, req, false)
}

func (s *courseService) Append(ctx context.Context, term string, day, slot int, req *dto.CourseRequest) (*dto.GridCellResponse, error) {
	return s.write(ctx, term, day, slot, req, true)
}

func (s *courseService) write(ctx context.Context, term string, day, slot int, req *dto.CourseRequest, appendMode bool) (*dto.GridCellResponse, error) {
	course := fromCourseRequest(req)

	doc, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		if _, _, ok := doc.FindTerm(term); !ok {
			return ErrTermNotFound
		}
		if appendMode {
			return doc.Courses.AppendCourse(term, day, slot, course, len(doc.TimeSlots))
		}
		return doc.Courses.SetCourse(term, day, slot, course, len(doc.TimeSlots))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("写入课程",
		zap.String("term", term),
		zap.Int("day", day),
		zap.Int("slot", slot),
		zap.String("course", course.Name),
		zap.Bool("append", appendMode),
	)

	cell := doc.Courses.Term(term).Cell(day, slot)
	resp := toGridCellResponse(day, slot, cell.Courses, len(doc.TimeSlots))
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, term string, day, slot int, courseID string) error {
	_, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		if _, _, ok := doc.FindTerm(term); !ok {
			return ErrTermNotFound
		}
		if courseID == "" {
			if !doc.Courses.DeleteCourse(term, day, slot) {
				return ErrCellEmpty
			}
			return nil
		}
		if doc.Courses.Term(term).Cell(day, slot).Kind == timetable.CellEmpty {
			return ErrCellEmpty
		}
		if !doc.Courses.RemoveCourse(term, day, slot, courseID) {
			return ErrCourseNotFound
		}
		return nil
	})
	return err
}

// ────────────────────── Resolve ──────────────────────

func (s *courseService) Resolve(ctx context.Context, term string, day, slot, week int) (*dto.OccupantResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	t, _, ok := doc.FindTerm(term)
	if !ok {
		return nil, ErrTermNotFound
	}
	if week <= 0 {
		week = timetable.CurrentWeek(t, s.now())
	}

	resp := &dto.OccupantResponse{Day: day, Slot: slot, Week: week}
	occ, ok := doc.Courses.Resolve(term, day, slot, week)
	if !ok {
		return resp, nil
	}
	course := toCourseResponse(occ.Course)
	resp.Occupied = true
	resp.OriginSlot = occ.OriginSlot
	resp.Continuation = occ.Continuation
	resp.Course = &course
	return resp, nil
}

// ── 内部辅助方法 ──

func fromCourseRequest(req *dto.CourseRequest) timetable.Course {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return timetable.Course{
		ID:            id,
		Name:          req.Name,
		Duration:      req.Duration,
		SelectedWeeks: req.SelectedWeeks,
		WeeksRange:    req.WeeksRange,
		Color:         req.Color,
		Teacher:       req.Teacher,
		Classroom:     req.Classroom,
		CourseCode:    req.CourseCode,
		Credits:       req.Credits,
		CourseType:    req.CourseType,
		Notes:         req.Notes,
	}.Normalize()
}

func toCourseResponse(c timetable.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:            c.ID,
		Name:          c.Name,
		Duration:      c.Duration,
		SelectedWeeks: c.SelectedWeeks,
		WeeksRange:    c.WeeksRange,
		Color:         c.Color,
		Teacher:       c.Teacher,
		Classroom:     c.Classroom,
		CourseCode:    c.CourseCode,
		Credits:       c.Credits,
		CourseType:    c.CourseType,
		Notes:         c.Notes,
	}
}

// toGridCellResponse end_slot 取列表中最长课程的最后一节，并截断到节次范围
func toGridCellResponse(day, slot int, courses []timetable.Course, slotCount int) dto.GridCellResponse {
	resp := dto.GridCellResponse{Day: day, Slot: slot, EndSlot: slot, Courses: make([]dto.CourseResponse, 0, len(courses))}
	for _, c := range courses {
		resp.Courses = append(resp.Courses, toCourseResponse(c))
		if end := slot + timetable.ClampDuration(c.Duration) - 1; end > resp.EndSlot {
			resp.EndSlot = end
		}
	}
	if slotCount > 0 && resp.EndSlot >= slotCount {
		resp.EndSlot = slotCount - 1
	}
	return resp
}
