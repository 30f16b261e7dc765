package timetable

import (
	"reflect"
	"testing"
)

func TestParseWeekRange(t *testing.T) {
	tests := []struct {
		expr string
		want []int
	}{
		{"1-8,10-16", []int{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 14, 15, 16}},
		{"3", []int{3}},
		{" 5 , 1-2 ,2 ", []int{1, 2, 5}},
		{"1，3、5", []int{1, 3, 5}},
		{"2～4", []int{2, 3, 4}},
		{"abc", DefaultWeeks()},
		{"", DefaultWeeks()},
		{"8-1", DefaultWeeks()},
		{"0-3", DefaultWeeks()},
		{"1-", DefaultWeeks()},
		{"1,x", DefaultWeeks()},
		{"1-999999999", DefaultWeeks()},
		{"61", DefaultWeeks()},
		{"58-60", []int{58, 59, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := ParseWeekRange(tt.expr); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望=%v，实际=%v", tt.want, got)
			}
		})
	}
}

func TestDefaultWeeks(t *testing.T) {
	weeks := DefaultWeeks()
	if len(weeks) != 16 || weeks[0] != 1 || weeks[15] != 16 {
		t.Errorf("期望 1..16，实际=%v", weeks)
	}
}

func TestFormatWeekRange(t *testing.T) {
	tests := []struct {
		weeks []int
		want  string
	}{
		{[]int{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 14, 15, 16}, "1-8,10-16"},
		{[]int{3}, "3"},
		{[]int{5, 1, 3, 3}, "1,3,5"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := FormatWeekRange(tt.weeks); got != tt.want {
			t.Errorf("%v 期望=%q，实际=%q", tt.weeks, tt.want, got)
		}
	}
}

func TestWeekRange_RoundTrip(t *testing.T) {
	for _, expr := range []string{"1-8,10-16", "1,3,5,7", "2-3,9"} {
		if got := FormatWeekRange(ParseWeekRange(expr)); got != expr {
			t.Errorf("往返后期望=%q，实际=%q", expr, got)
		}
	}
}

func TestNormalizeWeeks_DropsOutOfRange(t *testing.T) {
	got := NormalizeWeeks([]int{61, 3, 0, 1000000, 60, 3, -2})
	if !reflect.DeepEqual(got, []int{3, 60}) {
		t.Errorf("应只保留 1..%d 内的周次，实际=%v", MaxWeekCount, got)
	}
}

func TestCourse_Normalize_HugeWeeksRange(t *testing.T) {
	c := Course{Name: "体育", WeeksRange: "1-3000000"}.Normalize()
	if !reflect.DeepEqual(c.SelectedWeeks, DefaultWeeks()) {
		t.Errorf("超大区间应回退为默认周次，实际长度=%d", len(c.SelectedWeeks))
	}
	if c.WeeksRange != "1-16" {
		t.Errorf("WeeksRange 应随之重写，实际=%q", c.WeeksRange)
	}
}

func TestCourse_Normalize(t *testing.T) {
	c := Course{Name: " 高数 ", Duration: 12, WeeksRange: "1-4"}.Normalize()
	if c.Name != "高数" {
		t.Errorf("名称应去除空白，实际=%q", c.Name)
	}
	if c.Duration != MaxDuration {
		t.Errorf("节数应截断为%d，实际=%d", MaxDuration, c.Duration)
	}
	if c.Color != DefaultColor {
		t.Errorf("颜色应取默认值，实际=%s", c.Color)
	}
	if !reflect.DeepEqual(c.SelectedWeeks, []int{1, 2, 3, 4}) {
		t.Errorf("应由 WeeksRange 解析出周次，实际=%v", c.SelectedWeeks)
	}

	// SelectedWeeks 为准，WeeksRange 随之重写
	c = Course{Name: "线代", SelectedWeeks: []int{3, 1, 2}, WeeksRange: "9-10"}.Normalize()
	if c.WeeksRange != "1-3" {
		t.Errorf("WeeksRange 应由 SelectedWeeks 生成，实际=%q", c.WeeksRange)
	}
	if c.Duration != 1 {
		t.Errorf("缺省节数应为1，实际=%d", c.Duration)
	}
}
