package timetable

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

const testSlotCount = 10

func newCourse(id, name string, duration int, weeks string) Course {
	return Course{ID: id, Name: name, Duration: duration, WeeksRange: weeks, Color: "#FF0000"}
}

func TestGrid_SetCourse_ResolveRoundTrip(t *testing.T) {
	g := make(Grid)
	if err := g.SetCourse("秋", 0, 2, newCourse("c1", "高数", 3, "1-8"), testSlotCount); err != nil {
		t.Fatalf("SetCourse 应成功: %v", err)
	}

	for week := 1; week <= 8; week++ {
		for slot := 2; slot <= 4; slot++ {
			occ, ok := g.Resolve("秋", 0, slot, week)
			if !ok || occ.Course.ID != "c1" {
				t.Fatalf("第%d周第%d节应为 c1，实际 ok=%v %+v", week, slot, ok, occ)
			}
			if occ.OriginSlot != 2 || occ.Continuation != (slot != 2) {
				t.Errorf("第%d节起始节信息错误: %+v", slot, occ)
			}
		}
	}
	for slot := 2; slot <= 4; slot++ {
		if _, ok := g.Resolve("秋", 0, slot, 9); ok {
			t.Errorf("第9周第%d节应为空", slot)
		}
	}
	if _, ok := g.Resolve("秋", 0, 5, 1); ok {
		t.Error("第5节不应被占用")
	}

	tg := g.Term("秋")
	for _, s := range []int{3, 4} {
		c := tg.Cell(0, s)
		if c.Kind != CellContinuation || c.FromSlot != 2 {
			t.Errorf("第%d节应为指向2的后续节，实际=%+v", s, c)
		}
	}
}

func TestGrid_SetCourse_OverwriteMidFootprint(t *testing.T) {
	g := make(Grid)
	_ = g.SetCourse("秋", 1, 0, newCourse("a", "A", 3, "1-16"), testSlotCount)

	// 点击的是 A 的中间节
	if err := g.SetCourse("秋", 1, 1, newCourse("b", "B", 1, "1-16"), testSlotCount); err != nil {
		t.Fatalf("SetCourse 应成功: %v", err)
	}

	tg := g.Term("秋")
	if c := tg.Cell(1, 0); c.Kind != CellEmpty {
		t.Errorf("A 的起始节应被清除，实际=%+v", c)
	}
	if c := tg.Cell(1, 2); c.Kind != CellEmpty {
		t.Errorf("A 的后续节应被清除，实际=%+v", c)
	}
	if c := tg.Cell(1, 1); c.Kind != CellPrimary || c.Courses[0].ID != "b" {
		t.Errorf("第1节应为 B，实际=%+v", c)
	}
	for _, dg := range tg {
		for s, c := range dg {
			if c.Kind == CellContinuation && c.FromSlot == 0 {
				t.Errorf("第%d节残留指向已删除起始节的后续节", s)
			}
		}
	}
}

func TestGrid_SetCourse_TailClearsOverlappedCourse(t *testing.T) {
	g := make(Grid)
	_ = g.SetCourse("秋", 0, 3, newCourse("a", "A", 2, "1-16"), testSlotCount)
	_ = g.SetCourse("秋", 0, 2, newCourse("b", "B", 2, "1-16"), testSlotCount)

	tg := g.Term("秋")
	if c := tg.Cell(0, 3); c.Kind != CellContinuation || c.FromSlot != 2 {
		t.Errorf("第3节应成为 B 的后续节，实际=%+v", c)
	}
	if c := tg.Cell(0, 4); c.Kind != CellEmpty {
		t.Errorf("A 原来的后续节应被清除，实际=%+v", c)
	}
}

func TestGrid_SetCourse_ClipsTail(t *testing.T) {
	g := make(Grid)
	if err := g.SetCourse("秋", 0, 2, newCourse("a", "A", 3, "1-16"), 4); err != nil {
		t.Fatalf("超出节次范围的后续节应被丢弃而不是报错: %v", err)
	}
	tg := g.Term("秋")
	if c := tg.Cell(0, 3); c.Kind != CellContinuation {
		t.Errorf("第3节应为后续节，实际=%+v", c)
	}
	if c := tg.Cell(0, 4); c.Kind != CellEmpty {
		t.Errorf("第4节超出范围不应写入，实际=%+v", c)
	}
}

func TestGrid_SetCourse_InvalidInput(t *testing.T) {
	g := make(Grid)
	if err := g.SetCourse("秋", 7, 0, newCourse("a", "A", 1, "1"), testSlotCount); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("期望 ErrInvalidDay，实际: %v", err)
	}
	if err := g.SetCourse("秋", 0, testSlotCount, newCourse("a", "A", 1, "1"), testSlotCount); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("期望 ErrInvalidSlot，实际: %v", err)
	}
	if err := g.SetCourse("秋", 0, 0, newCourse("a", "  ", 1, "1"), testSlotCount); !errors.Is(err, ErrCourseNameRequired) {
		t.Errorf("期望 ErrCourseNameRequired，实际: %v", err)
	}
}

func TestGrid_DeleteCourse(t *testing.T) {
	for _, target := range []int{0, 1, 2} {
		g := make(Grid)
		_ = g.SetCourse("秋", 4, 0, newCourse("a", "A", 3, "1-16"), testSlotCount)

		if !g.DeleteCourse("秋", 4, target) {
			t.Fatalf("从第%d节删除应成功", target)
		}
		for slot := 0; slot < 3; slot++ {
			for week := 1; week <= 16; week++ {
				if _, ok := g.Resolve("秋", 4, slot, week); ok {
					t.Fatalf("从第%d节删除后，第%d周第%d节仍被占用", target, week, slot)
				}
			}
		}
	}

	g := make(Grid)
	if g.DeleteCourse("秋", 0, 0) {
		t.Error("删除空格子应返回 false")
	}
}

func TestGrid_AppendCourse_AlternatingWeeks(t *testing.T) {
	g := make(Grid)
	_ = g.SetCourse("秋", 2, 0, newCourse("a", "A", 2, "1-8"), testSlotCount)
	if err := g.AppendCourse("秋", 2, 0, newCourse("b", "B", 1, "9-16"), testSlotCount); err != nil {
		t.Fatalf("AppendCourse 应成功: %v", err)
	}

	if occ, ok := g.Resolve("秋", 2, 0, 3); !ok || occ.Course.ID != "a" {
		t.Errorf("第3周应为 A，实际=%+v", occ)
	}
	if occ, ok := g.Resolve("秋", 2, 0, 10); !ok || occ.Course.ID != "b" {
		t.Errorf("第10周应为 B，实际=%+v", occ)
	}
	if occ, ok := g.Resolve("秋", 2, 1, 3); !ok || occ.Course.ID != "a" || !occ.Continuation {
		t.Errorf("第3周第1节应为 A 的后续节，实际=%+v", occ)
	}
	if _, ok := g.Resolve("秋", 2, 1, 10); ok {
		t.Error("第10周 B 只有1节，第1节应为空")
	}

	// 移除 A 后后续节随之清除
	if !g.RemoveCourse("秋", 2, 0, "a") {
		t.Fatal("RemoveCourse 应成功")
	}
	tg := g.Term("秋")
	if c := tg.Cell(2, 1); c.Kind != CellEmpty {
		t.Errorf("A 的后续节应被清除，实际=%+v", c)
	}
	if c := tg.Cell(2, 0); c.Kind != CellPrimary || len(c.Courses) != 1 || c.Courses[0].ID != "b" {
		t.Errorf("第0节应只剩 B，实际=%+v", c)
	}
	if g.RemoveCourse("秋", 2, 0, "missing") {
		t.Error("移除不存在的课程应返回 false")
	}
}

func TestGrid_AppendCourse_OnContinuationReplacesOrigin(t *testing.T) {
	g := make(Grid)
	_ = g.SetCourse("秋", 0, 0, newCourse("a", "A", 2, "1-16"), testSlotCount)
	_ = g.AppendCourse("秋", 0, 1, newCourse("b", "B", 1, "1-16"), testSlotCount)

	tg := g.Term("秋")
	if c := tg.Cell(0, 0); c.Kind != CellEmpty {
		t.Errorf("被打断的 A 应被清除，实际=%+v", c)
	}
	if c := tg.Cell(0, 1); c.Kind != CellPrimary || c.Courses[0].ID != "b" {
		t.Errorf("第1节应为 B，实际=%+v", c)
	}
}

func TestGrid_DanglingContinuationResolvesEmpty(t *testing.T) {
	tg := TermGrid{0: DayGrid{1: Continuation(0), 3: Continuation(5)}}
	if _, ok := tg.Resolve(0, 1, 1); ok {
		t.Error("起始节不存在的后续节应解析为空")
	}
	if _, ok := tg.Resolve(0, 3, 1); ok {
		t.Error("指向后方的后续节应解析为空")
	}
	if !tg.DeleteCourse(0, 1) {
		t.Error("悬空后续节应可删除")
	}
	if c := tg.Cell(0, 1); c.Kind != CellEmpty {
		t.Errorf("悬空后续节删除后应为空，实际=%+v", c)
	}
}

func TestTermGrid_EntriesAndMaxSlot(t *testing.T) {
	g := make(Grid)
	_ = g.SetCourse("秋", 3, 4, newCourse("a", "A", 2, "1-16"), testSlotCount)
	_ = g.SetCourse("秋", 0, 6, newCourse("b", "B", 1, "1-16"), testSlotCount)

	entries := g.Term("秋").Entries()
	if len(entries) != 2 {
		t.Fatalf("期望2个起始节，实际=%d", len(entries))
	}
	if entries[0].Day != 0 || entries[0].Slot != 6 || entries[1].Day != 3 || entries[1].Slot != 4 {
		t.Errorf("起始节顺序错误: %+v", entries)
	}
	if got := g.Term("秋").MaxSlot(); got != 6 {
		t.Errorf("期望最大节次=6，实际=%d", got)
	}
	if got := g.Term("不存在").MaxSlot(); got != -1 {
		t.Errorf("空网格期望-1，实际=%d", got)
	}
}

func TestCell_JSONRoundTrip(t *testing.T) {
	g := make(Grid)
	_ = g.SetCourse("秋", 1, 0, newCourse("a", "A", 2, "1-4"), testSlotCount)

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal 应成功: %v", err)
	}
	var decoded Grid
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal 应成功: %v", err)
	}

	tg := decoded.Term("秋")
	if c := tg.Cell(1, 0); c.Kind != CellPrimary || c.Courses[0].Name != "A" {
		t.Errorf("起始节应还原，实际=%+v", c)
	}
	if c := tg.Cell(1, 1); c.Kind != CellContinuation || c.FromSlot != 0 {
		t.Errorf("后续节应还原，实际=%+v", c)
	}
}
