package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

// ── 视图模块业务错误 ──

var (
	ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidWeek = errors.New("周次超出学期范围")
)

const (
	// nextUpcomingLimit "下一节课"视图附带的后续课程条数
	nextUpcomingLimit = 5
	timelineMemoTTL   = 24 * time.Hour
)

// ViewService 日 / 周 / 下一节课 三种视图
//
// 三种视图都只读取当前选中的学期。时间线按 (学期, 日期, 文档版本) 缓存，
// 任一项变化才重新展开；倒计时只在缓存的时间线上重新标记。
type ViewService interface {
	Day(ctx context.Context, date string) (*dto.DayViewResponse, error)
	Week(ctx context.Context, week int) (*dto.WeekViewResponse, error)
	Next(ctx context.Context) (*dto.NextViewResponse, error)
	// Countdown 按配置的间隔推送倒计时，直到 ctx 取消或本学期已无课程
	Countdown(ctx context.Context, emit func(dto.CountdownEvent)) error
	// FlushMemo 清空时间线缓存（跨天时由定时任务调用）
	FlushMemo()
}

type viewService struct {
	store    *DocumentStore
	now      func() time.Time
	interval time.Duration
	memo     *gocache.Cache
	logger   *zap.Logger
}

// NewViewService 创建 ViewService 实例
func NewViewService(store *DocumentStore, now func() time.Time, interval time.Duration, logger *zap.Logger) ViewService {
	return &viewService{
		store:    store,
		now:      now,
		interval: interval,
		memo:     gocache.New(timelineMemoTTL, time.Hour),
		logger:   logger,
	}
}

// ────────────────────── Day ──────────────────────

func (s *viewService) Day(ctx context.Context, date string) (*dto.DayViewResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	term, err := activeTerm(doc, "")
	if err != nil {
		return nil, err
	}

	day := s.now()
	if date = strings.TrimSpace(date); date != "" {
		day, err = time.ParseInLocation(timetable.DateLayout, date, day.Location())
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	week := timetable.CurrentWeek(term, day)
	dayIdx := timetable.DayIndex(day)
	resp := &dto.DayViewResponse{
		Term:          term.Name,
		Date:          day.Format(timetable.DateLayout),
		Week:          week,
		Day:           dayIdx,
		Lessons:       make([]dto.LessonResponse, 0),
		OnlineCourses: make([]dto.OnlineCourseResponse, 0),
	}
	// 学期之外的日期不上课，周次仅作显示用
	if !withinTerm(term, day) {
		return resp, nil
	}
	resp.Lessons = lessonsOn(doc.Courses.Term(term.Name), doc.SlotTimes(), dayIdx, week)
	resp.OnlineCourses = toOnlineCourseResponses(doc.TermOnlineCourses(term.Name, week))
	return resp, nil
}

// withinTerm 判断日期是否落在 [学期开始, 学期最后一天]；开始日期非法时视为在学期内
func withinTerm(term timetable.Term, day time.Time) bool {
	start, ok := term.Start()
	if !ok {
		return true
	}
	end, _ := timetable.TermEnd(term)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !date.Before(start) && !date.After(end)
}

// ────────────────────── Week ──────────────────────

func (s *viewService) Week(ctx context.Context, week int) (*dto.WeekViewResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	term, err := activeTerm(doc, "")
	if err != nil {
		return nil, err
	}

	today := s.now()
	current := timetable.CurrentWeek(term, today)
	if week <= 0 {
		week = current
	}
	if week > term.TotalWeeks() {
		return nil, ErrInvalidWeek
	}

	tg := doc.Courses.Term(term.Name)
	slots := doc.SlotTimes()
	dates := timetable.WeekDates(term, week)
	todayText := today.Format(timetable.DateLayout)

	days := make([]dto.WeekDayResponse, 7)
	for d := range days {
		days[d] = dto.WeekDayResponse{Day: d, Lessons: lessonsOn(tg, slots, d, week)}
		if dates != nil {
			days[d].Date = dates[d].Format(timetable.DateLayout)
			days[d].Today = days[d].Date == todayText
		}
	}

	return &dto.WeekViewResponse{
		Term:          term.Name,
		Week:          week,
		CurrentWeek:   current,
		TotalWeeks:    term.TotalWeeks(),
		TimeSlots:     toTimeSlotResponses(doc.TimeSlots),
		Days:          days,
		OnlineCourses: toOnlineCourseResponses(doc.TermOnlineCourses(term.Name, week)),
	}, nil
}

// ────────────────────── Next ──────────────────────

func (s *viewService) Next(ctx context.Context) (*dto.NextViewResponse, error) {
	term, occs, err := s.timeline(ctx)
	if err != nil {
		return nil, err
	}

	f := timetable.Countdown(occs, s.now())
	resp := &dto.NextViewResponse{
		Term:             term,
		State:            f.State.String(),
		Display:          f.Display,
		RemainingSeconds: int64(f.Remaining / time.Second),
		Upcoming:         []dto.OccurrenceResponse{},
	}
	if f.Occurrence == nil {
		return resp, nil
	}

	focus := toOccurrenceResponse(*f.Occurrence)
	resp.Focus = &focus
	end := f.Index + 1 + nextUpcomingLimit
	if end > len(occs) {
		end = len(occs)
	}
	for _, o := range occs[f.Index+1 : end] {
		resp.Upcoming = append(resp.Upcoming, toOccurrenceResponse(o))
	}
	return resp, nil
}

// ────────────────────── Countdown ──────────────────────

func (s *viewService) Countdown(ctx context.Context, emit func(dto.CountdownEvent)) error {
	_, occs, err := s.timeline(ctx)
	if err != nil {
		return err
	}
	return timetable.RunCountdown(ctx, occs, s.interval, s.now, func(f timetable.Focus) {
		emit(toCountdownEvent(f))
	})
}

func (s *viewService) FlushMemo() {
	s.memo.Flush()
}

// ── 内部辅助方法 ──

// timeline 返回当前学期从今天起的时间线副本，调用方可以自由标记
func (s *viewService) timeline(ctx context.Context) (string, []timetable.Occurrence, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return "", nil, err
	}
	term, err := activeTerm(doc, "")
	if err != nil {
		return "", nil, err
	}

	today := s.now()
	key := fmt.Sprintf("%s|%s|%s|%d", s.store.Owner(), term.Name, today.Format(timetable.DateLayout), doc.Revision)

	var occs []timetable.Occurrence
	if cached, ok := s.memo.Get(key); ok {
		occs = cached.([]timetable.Occurrence)
	} else {
		occs = timetable.BuildTimeline(term, doc.Courses.Term(term.Name), doc.SlotTimes(), today)
		s.memo.SetDefault(key, occs)
		s.logger.Debug("重建时间线", zap.String("key", key), zap.Int("occurrences", len(occs)))
	}

	local := make([]timetable.Occurrence, len(occs))
	copy(local, occs)
	return term.Name, local, nil
}

// lessonsOn 某天某周实际上课的起始节，多节课只出现一次
func lessonsOn(tg timetable.TermGrid, slots []timetable.SlotTime, day, week int) []dto.LessonResponse {
	lessons := make([]dto.LessonResponse, 0)
	for slot := range slots {
		occ, ok := tg.Resolve(day, slot, week)
		if !ok || occ.Continuation {
			continue
		}
		last := slot + timetable.ClampDuration(occ.Course.Duration) - 1
		if last >= len(slots) {
			last = len(slots) - 1
		}
		lessons = append(lessons, dto.LessonResponse{
			Slot:    slot,
			EndSlot: last,
			Start:   slots[slot].Start.String(),
			End:     slots[last].End.String(),
			Segment: slots[slot].Segment.String(),
			Course:  toCourseResponse(occ.Course),
		})
	}
	return lessons
}

func toOccurrenceResponse(o timetable.Occurrence) dto.OccurrenceResponse {
	return dto.OccurrenceResponse{
		Date:      o.Date.Format(timetable.DateLayout),
		Week:      o.Week,
		Day:       o.Day,
		Slot:      o.Slot,
		EndSlot:   o.EndSlot,
		Start:     o.Start.Format(time.RFC3339),
		End:       o.End.Format(time.RFC3339),
		Course:    toCourseResponse(o.Course),
		IsCurrent: o.IsCurrent,
		IsNext:    o.IsNext,
	}
}

func toCountdownEvent(f timetable.Focus) dto.CountdownEvent {
	ev := dto.CountdownEvent{
		State:            f.State.String(),
		Display:          f.Display,
		RemainingSeconds: int64(f.Remaining / time.Second),
	}
	if f.Occurrence != nil {
		ev.CourseName = f.Occurrence.Course.Name
		ev.Start = f.Occurrence.Start.Format(time.RFC3339)
		ev.End = f.Occurrence.End.Format(time.RFC3339)
	}
	return ev
}
