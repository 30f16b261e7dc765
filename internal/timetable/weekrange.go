package timetable

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultWeekCount 周次表达式非法时回退的周数（1..16）
const DefaultWeekCount = 16

// MaxWeekCount 学期周数与周次的上限
const MaxWeekCount = 60

// DefaultWeeks 返回 1..DefaultWeekCount
func DefaultWeeks() []int {
	weeks := make([]int, DefaultWeekCount)
	for i := range weeks {
		weeks[i] = i + 1
	}
	return weeks
}

var weekRangeReplacer = strings.NewReplacer("，", ",", "、", ",", "；", ",", ";", ",", "－", "-", "–", "-", "—", "-", "~", "-", "～", "-")

// ParseWeekRange 解析 "1-8,10-16" 形式的周次表达式。
// 结果升序去重；任一片段非法（含倒序区间、小于 1 或大于 MaxWeekCount 的周次）时整体回退为 1..16
func ParseWeekRange(expr string) []int {
	expr = strings.TrimSpace(weekRangeReplacer.Replace(expr))
	if expr == "" {
		return DefaultWeeks()
	}

	set := make(map[int]bool)
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		lo, hi, ok := parseWeekToken(token)
		if !ok {
			return DefaultWeeks()
		}
		for w := lo; w <= hi; w++ {
			set[w] = true
		}
	}
	if len(set) == 0 {
		return DefaultWeeks()
	}

	weeks := make([]int, 0, len(set))
	for w := range set {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

func parseWeekToken(token string) (int, int, bool) {
	loText, hiText, isRange := strings.Cut(token, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(loText))
	if err != nil || lo < 1 || lo > MaxWeekCount {
		return 0, 0, false
	}
	if !isRange {
		return lo, lo, true
	}
	hi, err := strconv.Atoi(strings.TrimSpace(hiText))
	if err != nil || hi < lo || hi > MaxWeekCount {
		return 0, 0, false
	}
	return lo, hi, true
}

// FormatWeekRange 将周次列表压缩为表达式，如 [1 2 3 5] → "1-3,5"
func FormatWeekRange(weeks []int) string {
	weeks = NormalizeWeeks(weeks)
	if len(weeks) == 0 {
		return ""
	}

	var parts []string
	lo, prev := weeks[0], weeks[0]
	flush := func() {
		if lo == prev {
			parts = append(parts, strconv.Itoa(lo))
		} else {
			parts = append(parts, strconv.Itoa(lo)+"-"+strconv.Itoa(prev))
		}
	}
	for _, w := range weeks[1:] {
		if w == prev+1 {
			prev = w
			continue
		}
		flush()
		lo, prev = w, w
	}
	flush()
	return strings.Join(parts, ",")
}

// NormalizeWeeks 升序去重并剔除 1..MaxWeekCount 之外的周次
func NormalizeWeeks(weeks []int) []int {
	set := make(map[int]bool, len(weeks))
	result := make([]int, 0, len(weeks))
	for _, w := range weeks {
		if w < 1 || w > MaxWeekCount || set[w] {
			continue
		}
		set[w] = true
		result = append(result, w)
	}
	sort.Ints(result)
	return result
}
