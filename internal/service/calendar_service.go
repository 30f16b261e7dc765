package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

var (
	ErrICSInvalid     = errors.New("ICS 文件格式无效")
	ErrICSFetchFailed = errors.New("ICS URL 获取失败")
)

// CalendarService 从 iCalendar 导入课程到指定学期
//
// 与已有课程同名同位置的课程被替换，其余课程追加到同一格子中按周交替。
type CalendarService interface {
	ImportICS(ctx context.Context, term string, r io.Reader) (*dto.ImportResponse, error)
	ImportICSURL(ctx context.Context, term, url string) (*dto.ImportResponse, error)
}

type calendarService struct {
	store  *DocumentStore
	now    func() time.Time
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(store *DocumentStore, now func() time.Time, logger *zap.Logger) CalendarService {
	return &calendarService{store: store, now: now, logger: logger}
}

func (s *calendarService) ImportICSURL(ctx context.Context, term, url string) (*dto.ImportResponse, error) {
	body, err := FetchICSContent(ctx, url)
	if err != nil {
		s.logger.Warn("获取 ICS 失败", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	defer body.Close()
	return s.ImportICS(ctx, term, body)
}

func (s *calendarService) ImportICS(ctx context.Context, term string, r io.Reader) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{}
	loc := s.now().Location()

	_, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		t, _, ok := doc.FindTerm(term)
		if !ok {
			return ErrTermNotFound
		}
		courses, skipped, err := parseICS(r, t, doc.SlotTimes(), loc)
		if err != nil {
			s.logger.Warn("解析 ICS 失败", zap.Error(err))
			return ErrICSInvalid
		}
		resp.Skipped = skipped

		slotCount := len(doc.TimeSlots)
		for _, c := range courses {
			course := timetable.Course{
				ID:            uuid.NewString(),
				Name:          c.Name,
				Duration:      c.Duration,
				SelectedWeeks: c.Weeks,
				Classroom:     c.Classroom,
				Notes:         c.Notes,
			}.Normalize()

			if err := placeCourse(doc.Courses, term, c.Day, c.Slot, course, slotCount); err != nil {
				resp.Skipped++
				continue
			}
			resp.Courses++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("导入 ICS", zap.String("term", term), zap.Int("courses", resp.Courses), zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// placeCourse 空格子或后续节直接写入；起始节上有同名课程则替换，否则追加
func placeCourse(g timetable.Grid, term string, day, slot int, course timetable.Course, slotCount int) error {
	cell := g.Term(term).Cell(day, slot)
	if cell.Kind != timetable.CellPrimary {
		return g.SetCourse(term, day, slot, course, slotCount)
	}
	for _, existing := range cell.Courses {
		if existing.Name == course.Name {
			g.RemoveCourse(term, day, slot, existing.ID)
			break
		}
	}
	if g.Term(term).Cell(day, slot).Kind != timetable.CellPrimary {
		return g.SetCourse(term, day, slot, course, slotCount)
	}
	return g.AppendCourse(term, day, slot, course, slotCount)
}
