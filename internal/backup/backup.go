// Package backup 实现课表备份文件与内部稀疏网格之间的双向转换。
//
// 导出时每个起始节生成一条扁平记录（后续节不导出，导入时由 duration 重建）；
// 导入时逐条校验，缺少课程名称、颜色或位置的记录单独跳过，不影响其余记录。
package backup

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"fiatimetable/internal/timetable"
)

// FormatVersion 当前导出格式版本
const FormatVersion = "1.0"

// ErrInvalidFile 文件不是合法的备份格式（整体无法解析或缺少 data）
var ErrInvalidFile = errors.New("备份文件格式无效")

var validate = validator.New()

// File 备份文件顶层结构
type File struct {
	Version    string `json:"version"`
	ExportDate string `json:"exportDate"`
	Data       Data   `json:"data"`
}

// Data 备份内容
type Data struct {
	Terms         []TermRecord                                `json:"terms"`
	Courses       map[string]map[string]map[string]RecordList `json:"courses"`
	TimeSlots     []SlotRecord                                `json:"timeSlots"`
	SelectedTerm  string                                      `json:"selectedTerm"`
	Theme         string                                      `json:"theme"`
	OnlineCourses map[string][]OnlineCourseRecord             `json:"onlineCourses"`
}

// TermRecord 学期
type TermRecord struct {
	Name      string  `json:"name"      validate:"required"`
	Weeks     FlexInt `json:"weeks"     validate:"min=1,max=60"`
	StartDate string  `json:"startDate" validate:"required,datetime=2006-01-02"`
}

// SlotRecord 节次，period 为 morning / afternoon / evening
type SlotRecord struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Period string `json:"period"`
}

// CourseRecord 一门课的扁平记录，day 从 1 开始，slotIndex 从 0 开始
type CourseRecord struct {
	ID            FlexString `json:"id"`
	Name          string     `json:"name"  validate:"required"`
	Color         string     `json:"color" validate:"required"`
	Day           *FlexInt   `json:"day,omitempty"`
	SlotIndex     *FlexInt   `json:"slotIndex,omitempty"`
	Duration      FlexInt    `json:"duration"`
	SelectedWeeks FlexWeeks  `json:"selectedWeeks"`
	WeeksRange    string     `json:"weeksRange"`
	Teacher       string     `json:"teacher,omitempty"`
	Classroom     string     `json:"classroom,omitempty"`
	CourseCode    FlexString `json:"courseCode,omitempty"`
	Credits       FlexString `json:"credits,omitempty"`
	CourseType    string     `json:"courseType,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// OnlineCourseRecord 线上课程
type OnlineCourseRecord struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"name" validate:"required"`
	StartWeek FlexInt    `json:"startWeek"`
	EndWeek   FlexInt    `json:"endWeek"`
	Teacher   string     `json:"teacher,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	Link      string     `json:"link,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Color     string     `json:"color,omitempty"`
}

// Stats 导入统计
type Stats struct {
	Terms         int `json:"terms"`
	Courses       int `json:"courses"`
	OnlineCourses int `json:"online_courses"`
	Skipped       int `json:"skipped"`
}

// ────────────────────── Export ──────────────────────

// Export 将文档转换为备份文件结构
func Export(doc *timetable.Document, now time.Time) *File {
	data := Data{
		Terms:         make([]TermRecord, 0, len(doc.Terms)),
		Courses:       make(map[string]map[string]map[string]RecordList),
		TimeSlots:     make([]SlotRecord, 0, len(doc.TimeSlots)),
		SelectedTerm:  doc.SelectedTerm,
		Theme:         doc.Theme,
		OnlineCourses: make(map[string][]OnlineCourseRecord),
	}

	for _, t := range doc.Terms {
		data.Terms = append(data.Terms, TermRecord{Name: t.Name, Weeks: FlexInt(t.Weeks), StartDate: t.StartDate})
	}
	for _, st := range doc.SlotTimes() {
		data.TimeSlots = append(data.TimeSlots, SlotRecord{
			Start:  st.Start.String(),
			End:    st.End.String(),
			Period: st.Segment.String(),
		})
	}

	for term, tg := range doc.Courses {
		for _, e := range tg.Entries() {
			days, ok := data.Courses[term]
			if !ok {
				days = make(map[string]map[string]RecordList)
				data.Courses[term] = days
			}
			dayKey := strconv.Itoa(e.Day)
			if days[dayKey] == nil {
				days[dayKey] = make(map[string]RecordList)
			}
			records := make(RecordList, 0, len(e.Courses))
			for _, c := range e.Courses {
				records = append(records, toCourseRecord(c, e.Day, e.Slot))
			}
			days[dayKey][strconv.Itoa(e.Slot)] = records
		}
	}

	for term, list := range doc.OnlineCourses {
		records := make([]OnlineCourseRecord, 0, len(list))
		for _, oc := range list {
			records = append(records, OnlineCourseRecord{
				ID:        FlexString(oc.ID),
				Name:      oc.Name,
				StartWeek: FlexInt(oc.StartWeek),
				EndWeek:   FlexInt(oc.EndWeek),
				Teacher:   oc.Teacher,
				Platform:  oc.Platform,
				Link:      oc.Link,
				Notes:     oc.Notes,
				Color:     oc.Color,
			})
		}
		data.OnlineCourses[term] = records
	}

	return &File{
		Version:    FormatVersion,
		ExportDate: now.Format(time.RFC3339),
		Data:       data,
	}
}

// Marshal 导出并编码为带缩进的 JSON
func Marshal(doc *timetable.Document, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Export(doc, now), "", "  ")
}

func toCourseRecord(c timetable.Course, day, slot int) CourseRecord {
	d := FlexInt(day + 1)
	s := FlexInt(slot)
	return CourseRecord{
		ID:            FlexString(c.ID),
		Name:          c.Name,
		Color:         c.Color,
		Day:           &d,
		SlotIndex:     &s,
		Duration:      FlexInt(c.Duration),
		SelectedWeeks: FlexWeeks(c.SelectedWeeks),
		WeeksRange:    c.WeeksRange,
		Teacher:       c.Teacher,
		Classroom:     c.Classroom,
		CourseCode:    FlexString(c.CourseCode),
		Credits:       FlexString(c.Credits),
		CourseType:    c.CourseType,
		Notes:         c.Notes,
	}
}

// ────────────────────── Import ──────────────────────

// rawFile 导入时先按原始片段解码，再逐条解析，单条损坏不影响整体
type rawFile struct {
	Version string   `json:"version"`
	Data    *rawData `json:"data"`
}

type rawData struct {
	Terms         []json.RawMessage                                `json:"terms"`
	Courses       map[string]map[string]map[string]json.RawMessage `json:"courses"`
	TimeSlots     []json.RawMessage                                `json:"timeSlots"`
	SelectedTerm  string                                           `json:"selectedTerm"`
	Theme         string                                           `json:"theme"`
	OnlineCourses map[string][]json.RawMessage                     `json:"onlineCourses"`
}

// Import 解析备份文件并重建文档。只有文件整体无法解析时返回错误；
// 单条记录的问题计入 Stats.Skipped
func Import(content []byte) (*timetable.Document, Stats, error) {
	var stats Stats
	var raw rawFile
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if raw.Data == nil {
		return nil, stats, ErrInvalidFile
	}

	doc := timetable.NewDocument()
	if slots := importSlots(raw.Data.TimeSlots); len(slots) > 0 {
		doc.TimeSlots = slots
	}

	seen := make(map[string]bool)
	for _, item := range raw.Data.Terms {
		var rec TermRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			stats.Skipped++
			continue
		}
		rec.Name = strings.TrimSpace(rec.Name)
		if validate.Struct(rec) != nil || seen[rec.Name] {
			stats.Skipped++
			continue
		}
		seen[rec.Name] = true
		doc.Terms = append(doc.Terms, timetable.Term{Name: rec.Name, Weeks: int(rec.Weeks), StartDate: rec.StartDate})
		stats.Terms++
	}

	slotCount := len(doc.TimeSlots)
	for _, term := range sortedKeys(raw.Data.Courses) {
		days := raw.Data.Courses[term]
		for _, dayKey := range sortedKeys(days) {
			slots := days[dayKey]
			for _, slotKey := range sortedKeys(slots) {
				first := true
				for _, item := range splitRecords(slots[slotKey]) {
					course, day, slot, ok := decodeCourse(item, dayKey, slotKey)
					if !ok {
						stats.Skipped++
						continue
					}
					var err error
					if first {
						err = doc.Courses.SetCourse(term, day, slot, course, slotCount)
					} else {
						err = doc.Courses.AppendCourse(term, day, slot, course, slotCount)
					}
					if err != nil {
						stats.Skipped++
						continue
					}
					first = false
					stats.Courses++
				}
			}
		}
	}

	for term, items := range raw.Data.OnlineCourses {
		for _, item := range items {
			var rec OnlineCourseRecord
			if err := json.Unmarshal(item, &rec); err != nil {
				stats.Skipped++
				continue
			}
			rec.Name = strings.TrimSpace(rec.Name)
			if validate.Struct(rec) != nil {
				stats.Skipped++
				continue
			}
			doc.OnlineCourses[term] = append(doc.OnlineCourses[term], toOnlineCourse(rec))
			stats.OnlineCourses++
		}
	}

	doc.SelectedTerm = raw.Data.SelectedTerm
	switch raw.Data.Theme {
	case timetable.ThemeLight, timetable.ThemeDark, timetable.ThemeSystem:
		doc.Theme = raw.Data.Theme
	}
	doc.Normalize()

	return doc, stats, nil
}

func importSlots(items []json.RawMessage) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		var rec SlotRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			// 兼容直接保存 "HH:MM-HH:MM" 字符串的旧格式
			var label string
			if json.Unmarshal(item, &label) != nil {
				continue
			}
			labels = append(labels, timetable.ParseSlot(label).Label())
			continue
		}
		start := timetable.ParseClock(rec.Start)
		end := timetable.ParseClock(rec.End)
		labels = append(labels, start.String()+"-"+end.String())
	}
	return labels
}

// decodeCourse 解析一条课程记录并确定位置：优先使用 map 键，
// 键无法解析时退回记录里的 day / slotIndex
func decodeCourse(item json.RawMessage, dayKey, slotKey string) (timetable.Course, int, int, bool) {
	var rec CourseRecord
	if err := json.Unmarshal(item, &rec); err != nil {
		return timetable.Course{}, 0, 0, false
	}
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Color = strings.TrimSpace(rec.Color)
	if validate.Struct(rec) != nil {
		return timetable.Course{}, 0, 0, false
	}

	day, err := strconv.Atoi(dayKey)
	if err != nil {
		if rec.Day == nil {
			return timetable.Course{}, 0, 0, false
		}
		day = int(*rec.Day) - 1
	}
	slot, err := strconv.Atoi(slotKey)
	if err != nil {
		if rec.SlotIndex == nil {
			return timetable.Course{}, 0, 0, false
		}
		slot = int(*rec.SlotIndex)
	}

	id := strings.TrimSpace(string(rec.ID))
	if id == "" {
		id = uuid.NewString()
	}
	course := timetable.Course{
		ID:            id,
		Name:          rec.Name,
		Duration:      int(rec.Duration),
		SelectedWeeks: []int(rec.SelectedWeeks),
		WeeksRange:    rec.WeeksRange,
		Color:         rec.Color,
		Teacher:       rec.Teacher,
		Classroom:     rec.Classroom,
		CourseCode:    string(rec.CourseCode),
		Credits:       string(rec.Credits),
		CourseType:    rec.CourseType,
		Notes:         rec.Notes,
	}
	return course, day, slot, true
}

func toOnlineCourse(rec OnlineCourseRecord) timetable.OnlineCourse {
	id := strings.TrimSpace(string(rec.ID))
	if id == "" {
		id = uuid.NewString()
	}
	start, end := int(rec.StartWeek), int(rec.EndWeek)
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	return timetable.OnlineCourse{
		ID:        id,
		Name:      rec.Name,
		StartWeek: start,
		EndWeek:   end,
		Teacher:   rec.Teacher,
		Platform:  rec.Platform,
		Link:      rec.Link,
		Notes:     rec.Notes,
		Color:     rec.Color,
	}
}

// sortedKeys 数字键按数值排序，其余按字典序排在后面
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
