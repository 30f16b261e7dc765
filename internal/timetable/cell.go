package timetable

import (
	"github.com/goccy/go-json"
)

// CellKind 课表格子的类型
type CellKind uint8

const (
	CellEmpty CellKind = iota
	// CellPrimary 课程起始节，持有课程列表
	CellPrimary
	// CellContinuation 多节课的后续节，仅记录起始节下标
	CellContinuation
)

// Cell 课表格子：Empty | Primary(courses) | Continuation(fromSlot)
type Cell struct {
	Kind     CellKind
	Courses  []Course
	FromSlot int
}

// Primary 构造起始节格子
func Primary(courses ...Course) Cell {
	cp := make([]Course, len(courses))
	copy(cp, courses)
	return Cell{Kind: CellPrimary, Courses: cp}
}

// Continuation 构造指向 fromSlot 的后续节格子
func Continuation(fromSlot int) Cell {
	return Cell{Kind: CellContinuation, FromSlot: fromSlot}
}

// span 起始节格子覆盖的节数：取列表中最长的课程，无有效课程时为 1
func (c Cell) span() int {
	n := 1
	for _, course := range c.Courses {
		if d := ClampDuration(course.Duration); d > n {
			n = d
		}
	}
	return n
}

// cellJSON 持久化形态，与备份格式无关
type cellJSON struct {
	Courses   []Course `json:"courses,omitempty"`
	Continued bool     `json:"continued,omitempty"`
	FromSlot  *int     `json:"fromSlot,omitempty"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellPrimary:
		return json.Marshal(cellJSON{Courses: c.Courses})
	case CellContinuation:
		from := c.FromSlot
		return json.Marshal(cellJSON{Continued: true, FromSlot: &from})
	default:
		return []byte("null"), nil
	}
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw *cellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw == nil:
		*c = Cell{}
	case raw.Continued && raw.FromSlot != nil:
		*c = Continuation(*raw.FromSlot)
	case len(raw.Courses) > 0:
		*c = Primary(raw.Courses...)
	default:
		*c = Cell{}
	}
	return nil
}
