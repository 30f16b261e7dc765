package timetable

import (
	"sort"
	"time"
)

// Occurrence 某一天某一节的一次具体上课
type Occurrence struct {
	Date    time.Time // 当天零点，时区与 today 一致
	Week    int
	Day     int
	Slot    int
	EndSlot int
	Start   time.Time
	End     time.Time
	Course  Course

	IsCurrent bool
	IsNext    bool
}

// BuildTimeline 从 max(today, 学期开始) 到学期最后一天，按日期展开所有上课记录。
// 多节课只在起始节生成一条，结束时间取最后一节的下课时间，
// 因此连上节次之间的课间也算作正在上课。
// 结果按 (日期, 开始时间) 稳定排序；开始日期无法解析时返回 nil
func BuildTimeline(term Term, grid TermGrid, slots []SlotTime, today time.Time) []Occurrence {
	start, ok := term.Start()
	if !ok || len(slots) == 0 {
		return nil
	}
	end, _ := TermEnd(term)
	loc := today.Location()

	from := civilDate(today)
	if from.Before(start) {
		from = start
	}

	var result []Occurrence
	for d := from; !d.After(end); d = d.AddDate(0, 0, 1) {
		week := WeekOf(start, d)
		day := DayIndex(d)
		date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)

		for slot := range slots {
			occ, ok := grid.Resolve(day, slot, week)
			if !ok || occ.Continuation {
				continue
			}
			last := slot + ClampDuration(occ.Course.Duration) - 1
			if last >= len(slots) {
				last = len(slots) - 1
			}
			result = append(result, Occurrence{
				Date:    date,
				Week:    week,
				Day:     day,
				Slot:    slot,
				EndSlot: last,
				Start:   at(date, slots[slot].Start),
				End:     at(date, slots[last].End),
				Course:  occ.Course,
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Start.Before(result[j].Start)
	})
	return result
}

func at(date time.Time, c Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}

// Tag 重新标记正在上课 / 下一节课，返回被标记的下标，无则 -1。
// 只比较已展开的时间边界，不重建时间线
func Tag(occs []Occurrence, now time.Time) int {
	for i := range occs {
		occs[i].IsCurrent = false
		occs[i].IsNext = false
	}

	today := civilDate(now)
	for i, o := range occs {
		if civilDate(o.Date).Equal(today) && !now.Before(o.Start) && !now.After(o.End) {
			occs[i].IsCurrent = true
			return i
		}
	}
	for i, o := range occs {
		if o.Start.After(now) {
			occs[i].IsNext = true
			return i
		}
	}
	return -1
}
