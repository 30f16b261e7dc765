package timetable

import (
	"errors"
	"sort"
)

// ── 课表网格模型 ──────────────────────────────────────────
//
// 结构：学期 → 星期(0-6) → 节次(0 起) → Cell。
// 时长为 D、起始于 S 的课程：S 为 Primary，S+1..S+D-1 均为指向 S 的
// Continuation，且不被其他课程占用。每次写入前先清除旧的占用范围。
// ─────────────────────────────────────────────────────────────

var (
	ErrInvalidDay         = errors.New("星期索引必须在 0-6 之间")
	ErrInvalidSlot        = errors.New("节次索引超出已配置的节次范围")
	ErrCourseNameRequired = errors.New("课程名称不能为空")
)

// DayGrid 一天内 节次 → 格子
type DayGrid map[int]Cell

// TermGrid 一个学期内 星期 → DayGrid
type TermGrid map[int]DayGrid

// Grid 学期名 → TermGrid
type Grid map[string]TermGrid

// Occupant 解析后某格子在指定周的实际课程
type Occupant struct {
	Course       Course
	OriginSlot   int
	Continuation bool
}

// Entry 一个起始节格子及其位置
type Entry struct {
	Day     int
	Slot    int
	Courses []Course
}

// ── Grid：按学期名转发 ──

// Term 返回学期网格，不存在时返回 nil（只读安全）
func (g Grid) Term(name string) TermGrid {
	return g[name]
}

func (g Grid) ensure(name string) TermGrid {
	tg, ok := g[name]
	if !ok {
		tg = make(TermGrid)
		g[name] = tg
	}
	return tg
}

// SetCourse 覆盖写入 (day, slot) 处的课程
func (g Grid) SetCourse(term string, day, slot int, course Course, slotCount int) error {
	return g.ensure(term).SetCourse(day, slot, course, slotCount)
}

// AppendCourse 在同一节追加一门课（按周交替上课的情形）
func (g Grid) AppendCourse(term string, day, slot int, course Course, slotCount int) error {
	return g.ensure(term).AppendCourse(day, slot, course, slotCount)
}

// DeleteCourse 删除 (day, slot) 处的课程及其后续节
func (g Grid) DeleteCourse(term string, day, slot int) bool {
	return g.Term(term).DeleteCourse(day, slot)
}

// RemoveCourse 从 (day, slot) 的课程列表中删除指定 ID 的课程
func (g Grid) RemoveCourse(term string, day, slot int, courseID string) bool {
	return g.Term(term).RemoveCourse(day, slot, courseID)
}

// Resolve 解析第 week 周 (day, slot) 处实际上课的课程
func (g Grid) Resolve(term string, day, slot, week int) (Occupant, bool) {
	return g.Term(term).Resolve(day, slot, week)
}

// ── TermGrid ──

// Cell 读取格子，不存在时为 Empty
func (g TermGrid) Cell(day, slot int) Cell {
	return g[day][slot]
}

func (g TermGrid) set(day, slot int, c Cell) {
	dg, ok := g[day]
	if !ok {
		dg = make(DayGrid)
		g[day] = dg
	}
	dg[slot] = c
}

func (g TermGrid) clear(day, slot int) {
	dg, ok := g[day]
	if !ok {
		return
	}
	delete(dg, slot)
	if len(dg) == 0 {
		delete(g, day)
	}
}

// origin 找到覆盖 slot 的起始节；空格子或悬空的后续节返回 ok=false
func (g TermGrid) origin(day, slot int) (int, Cell, bool) {
	c := g.Cell(day, slot)
	switch c.Kind {
	case CellPrimary:
		return slot, c, true
	case CellContinuation:
		if c.FromSlot < slot {
			if o := g.Cell(day, c.FromSlot); o.Kind == CellPrimary {
				return c.FromSlot, o, true
			}
		}
	}
	return 0, Cell{}, false
}

// clearFootprint 清除覆盖 slot 的整门课（起始节 + 全部后续节）。
// 悬空的后续节只清除自身
func (g TermGrid) clearFootprint(day, slot int) {
	from, cell, ok := g.origin(day, slot)
	if !ok {
		if g.Cell(day, slot).Kind == CellContinuation {
			g.clear(day, slot)
		}
		return
	}
	g.clear(day, from)
	for s := from + 1; s < from+cell.span(); s++ {
		if c := g.Cell(day, s); c.Kind == CellContinuation && c.FromSlot == from {
			g.clear(day, s)
		}
	}
}

// writeTail 为起始于 slot 的课程写入后续节，超出 slotCount 的部分丢弃。
// 后续节原先属于其他课程时，先清除那门课的完整占用
func (g TermGrid) writeTail(day, slot, duration, slotCount int) {
	for i := 1; i < duration; i++ {
		s := slot + i
		if s >= slotCount {
			break
		}
		if c := g.Cell(day, s); !(c.Kind == CellContinuation && c.FromSlot == slot) {
			g.clearFootprint(day, s)
		}
		g.set(day, s, Continuation(slot))
	}
}

func checkPosition(day, slot, slotCount int) error {
	if day < 0 || day > 6 {
		return ErrInvalidDay
	}
	if slot < 0 || slot >= slotCount {
		return ErrInvalidSlot
	}
	return nil
}

// SetCourse 覆盖写入：先清除 slot 当前所属课程的完整占用（slot 可能是
// 某门多节课的中间节），再写入新的起始节和后续节
func (g TermGrid) SetCourse(day, slot int, course Course, slotCount int) error {
	if err := checkPosition(day, slot, slotCount); err != nil {
		return err
	}
	course = course.Normalize()
	if course.Name == "" {
		return ErrCourseNameRequired
	}

	g.clearFootprint(day, slot)
	g.set(day, slot, Primary(course))
	g.writeTail(day, slot, course.Duration, slotCount)
	return nil
}

// AppendCourse 保留 slot 处已有的课程列表并追加 course，
// 后续节无条件重写。slot 为其他课程的中间节时先清除那门课
func (g TermGrid) AppendCourse(day, slot int, course Course, slotCount int) error {
	if err := checkPosition(day, slot, slotCount); err != nil {
		return err
	}
	course = course.Normalize()
	if course.Name == "" {
		return ErrCourseNameRequired
	}

	cell := g.Cell(day, slot)
	if cell.Kind == CellPrimary {
		cell = Primary(append(append([]Course{}, cell.Courses...), course)...)
	} else {
		g.clearFootprint(day, slot)
		cell = Primary(course)
	}
	g.set(day, slot, cell)
	g.writeTail(day, slot, course.Duration, slotCount)
	return nil
}

// DeleteCourse 删除 slot 处的课程；slot 为后续节时删除其所属的整门课
func (g TermGrid) DeleteCourse(day, slot int) bool {
	if g.Cell(day, slot).Kind == CellEmpty {
		return false
	}
	g.clearFootprint(day, slot)
	return true
}

// RemoveCourse 从课程列表中移除一门课，剩余课程的占用范围缩短时同步清理后续节
func (g TermGrid) RemoveCourse(day, slot int, courseID string) bool {
	from, cell, ok := g.origin(day, slot)
	if !ok {
		return false
	}

	remaining := make([]Course, 0, len(cell.Courses))
	for _, c := range cell.Courses {
		if c.ID != courseID {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == len(cell.Courses) {
		return false
	}
	if len(remaining) == 0 {
		g.clearFootprint(day, from)
		return true
	}

	next := Primary(remaining...)
	g.set(day, from, next)
	for s := from + next.span(); s < from+cell.span(); s++ {
		if c := g.Cell(day, s); c.Kind == CellContinuation && c.FromSlot == from {
			g.clear(day, s)
		}
	}
	return true
}

// Resolve 返回第 week 周 (day, slot) 处上课的课程。
// 后续节没有独立的周次：取起始节在该周上课、且时长覆盖到本节的课程
func (g TermGrid) Resolve(day, slot, week int) (Occupant, bool) {
	from, cell, ok := g.origin(day, slot)
	if !ok {
		return Occupant{}, false
	}
	for _, c := range cell.Courses {
		if !c.ActiveIn(week) {
			continue
		}
		if from+ClampDuration(c.Duration)-1 < slot {
			continue
		}
		return Occupant{Course: c, OriginSlot: from, Continuation: from != slot}, true
	}
	return Occupant{}, false
}

// Entries 按 (星期, 节次) 顺序列出所有起始节格子
func (g TermGrid) Entries() []Entry {
	var entries []Entry
	for day := 0; day <= 6; day++ {
		dg := g[day]
		slots := make([]int, 0, len(dg))
		for s, c := range dg {
			if c.Kind == CellPrimary {
				slots = append(slots, s)
			}
		}
		sort.Ints(slots)
		for _, s := range slots {
			entries = append(entries, Entry{Day: day, Slot: s, Courses: dg[s].Courses})
		}
	}
	return entries
}

// MaxSlot 已占用的最大节次下标，空网格返回 -1
func (g TermGrid) MaxSlot() int {
	highest := -1
	for _, dg := range g {
		for s, c := range dg {
			if c.Kind != CellEmpty && s > highest {
				highest = s
			}
		}
	}
	return highest
}
