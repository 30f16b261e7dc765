package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

func setupTestCourseService(t *testing.T) (CourseService, *DocumentStore) {
	t.Helper()
	store, _, _ := setupTestStore()
	now := fixedClock(2024, 9, 10, 9, 0) // 第2周
	createTerm(t, NewTermService(store, now, zap.NewNop()), "秋")
	return NewCourseService(store, now, zap.NewNop()), store
}

func TestCourseService_Set_GeneratesIDAndNormalizes(t *testing.T) {
	svc, _ := setupTestCourseService(t)

	cell, err := svc.Set(context.Background(), "秋", 0, 2, &dto.CourseRequest{Name: "高数", Duration: 3, WeeksRange: "1-8，10"})
	if err != nil {
		t.Fatalf("Set 应成功: %v", err)
	}
	if len(cell.Courses) != 1 {
		t.Fatalf("期望1门课，实际=%d", len(cell.Courses))
	}
	c := cell.Courses[0]
	if c.ID == "" {
		t.Error("未提供 id 时应自动生成")
	}
	if c.WeeksRange != "1-8,10" || c.Color != timetable.DefaultColor {
		t.Errorf("规范化结果错误: %+v", c)
	}
	if cell.EndSlot != 4 {
		t.Errorf("期望 end_slot=4，实际=%d", cell.EndSlot)
	}
}

func TestCourseService_Set_UnknownTermAndInvalidPosition(t *testing.T) {
	svc, _ := setupTestCourseService(t)
	ctx := context.Background()

	if _, err := svc.Set(ctx, "春", 0, 0, &dto.CourseRequest{Name: "A"}); !errors.Is(err, ErrTermNotFound) {
		t.Errorf("期望 ErrTermNotFound，实际: %v", err)
	}
	if _, err := svc.Set(ctx, "秋", 7, 0, &dto.CourseRequest{Name: "A"}); !errors.Is(err, timetable.ErrInvalidDay) {
		t.Errorf("期望 ErrInvalidDay，实际: %v", err)
	}
	if _, err := svc.Set(ctx, "秋", 0, 10, &dto.CourseRequest{Name: "A"}); !errors.Is(err, timetable.ErrInvalidSlot) {
		t.Errorf("期望 ErrInvalidSlot，实际: %v", err)
	}
}

func TestCourseService_AppendAndResolve(t *testing.T) {
	svc, _ := setupTestCourseService(t)
	ctx := context.Background()

	_, _ = svc.Set(ctx, "秋", 3, 0, &dto.CourseRequest{ID: "odd", Name: "物理", SelectedWeeks: []int{1, 3, 5}})
	cell, err := svc.Append(ctx, "秋", 3, 0, &dto.CourseRequest{ID: "even", Name: "化学", Duration: 2, SelectedWeeks: []int{2, 4, 6}})
	if err != nil {
		t.Fatalf("Append 应成功: %v", err)
	}
	if len(cell.Courses) != 2 || cell.EndSlot != 1 {
		t.Errorf("追加后格子错误: %+v", cell)
	}

	// week 为 0 取当前周（第2周）
	occ, err := svc.Resolve(ctx, "秋", 3, 1, 0)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if !occ.Occupied || occ.Week != 2 || occ.Course.ID != "even" || !occ.Continuation {
		t.Errorf("第2周第1节应为化学的后续节，实际=%+v", occ)
	}

	occ, _ = svc.Resolve(ctx, "秋", 3, 1, 3)
	if occ.Occupied {
		t.Errorf("第3周物理只有1节，第1节应为空，实际=%+v", occ)
	}
}

func TestCourseService_Delete(t *testing.T) {
	svc, store := setupTestCourseService(t)
	ctx := context.Background()

	_, _ = svc.Set(ctx, "秋", 1, 0, &dto.CourseRequest{ID: "a", Name: "A", Duration: 2, WeeksRange: "1-8"})
	_, _ = svc.Append(ctx, "秋", 1, 0, &dto.CourseRequest{ID: "b", Name: "B", WeeksRange: "9-16"})

	if err := svc.Delete(ctx, "秋", 1, 0, "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, "秋", 1, 1, "a"); err != nil {
		t.Fatalf("从后续节移除 A 应成功: %v", err)
	}
	doc, _ := store.Load(ctx)
	if c := doc.Courses.Term("秋").Cell(1, 1); c.Kind != timetable.CellEmpty {
		t.Errorf("A 的后续节应被清除，实际=%+v", c)
	}

	if err := svc.Delete(ctx, "秋", 1, 0, ""); err != nil {
		t.Fatalf("删除整个格子应成功: %v", err)
	}
	if err := svc.Delete(ctx, "秋", 1, 0, ""); !errors.Is(err, ErrCellEmpty) {
		t.Errorf("删除空格子期望 ErrCellEmpty，实际: %v", err)
	}
	if err := svc.Delete(ctx, "秋", 1, 0, "b"); !errors.Is(err, ErrCellEmpty) {
		t.Errorf("空格子按 id 删除期望 ErrCellEmpty，实际: %v", err)
	}
}

func TestCourseService_Grid(t *testing.T) {
	svc, _ := setupTestCourseService(t)
	ctx := context.Background()

	_, _ = svc.Set(ctx, "秋", 4, 8, &dto.CourseRequest{Name: "选修", Duration: 5})
	_, _ = svc.Set(ctx, "秋", 0, 0, &dto.CourseRequest{Name: "高数"})

	grid, err := svc.Grid(ctx, "秋")
	if err != nil {
		t.Fatalf("Grid 应成功: %v", err)
	}
	if grid.SlotCount != 10 || len(grid.Cells) != 2 {
		t.Fatalf("期望10个节次、2个起始节，实际=%d/%d", grid.SlotCount, len(grid.Cells))
	}
	if grid.Cells[0].Day != 0 || grid.Cells[1].Day != 4 {
		t.Errorf("起始节应按星期排序: %+v", grid.Cells)
	}
	if grid.Cells[1].EndSlot != 9 {
		t.Errorf("超出节次范围的部分应截断，期望 end_slot=9，实际=%d", grid.Cells[1].EndSlot)
	}

	if _, err := svc.Grid(ctx, "春"); !errors.Is(err, ErrTermNotFound) {
		t.Errorf("期望 ErrTermNotFound，实际: %v", err)
	}
}
