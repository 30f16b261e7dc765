package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// ── 节次标签解析 ──────────────────────────────────────────
//
// 节次以 "HH:MM-HH:MM" 文本保存，数组下标即课表寻址用的节次索引。
// 解析永不失败：格式错误时降级为 00:00。
// ─────────────────────────────────────────────────────────────

// Segment 一天中的时段
type Segment int

const (
	SegmentMorning Segment = iota
	SegmentAfternoon
	SegmentEvening
)

// String 返回备份文件中使用的时段标识
func (s Segment) String() string {
	switch s {
	case SegmentMorning:
		return "morning"
	case SegmentAfternoon:
		return "afternoon"
	default:
		return "evening"
	}
}

// SegmentOf 按开始小时归类时段：[0,12) 上午，[12,18) 下午，其余晚上
func SegmentOf(hour int) Segment {
	switch {
	case hour < 12:
		return SegmentMorning
	case hour < 18:
		return SegmentAfternoon
	default:
		return SegmentEvening
	}
}

// Clock 一天内的时刻，单位分钟（0 ~ 1439）
type Clock int

// NewClock 由时、分构造时刻
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// SlotTime 解析后的节次
type SlotTime struct {
	Start   Clock
	End     Clock
	Segment Segment
}

// Label 还原为标准 "HH:MM-HH:MM" 文本
func (t SlotTime) Label() string {
	return t.Start.String() + "-" + t.End.String()
}

var slotSeparators = []string{"-", "–", "—", "~", "～", "－", "至"}

// ParseSlot 解析节次标签
func ParseSlot(label string) SlotTime {
	label = strings.TrimSpace(label)
	startText, endText := label, ""
	for _, sep := range slotSeparators {
		if i := strings.Index(label, sep); i >= 0 {
			startText = label[:i]
			endText = label[i+len(sep):]
			break
		}
	}

	start := ParseClock(startText)
	return SlotTime{
		Start:   start,
		End:     ParseClock(endText),
		Segment: SegmentOf(start.Hour()),
	}
}

// ParseClock 解析 "H"、"HH:MM" 或全角冒号形式的时刻；
// 分钟无法解析时取 0，小时无法解析或越界时返回 00:00
func ParseClock(text string) Clock {
	text = strings.TrimSpace(strings.ReplaceAll(text, "：", ":"))
	if text == "" {
		return 0
	}
	hourText, minuteText, _ := strings.Cut(text, ":")

	hour, err := strconv.Atoi(strings.TrimSpace(hourText))
	if err != nil || hour < 0 || hour > 23 {
		return 0
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteText))
	if err != nil || minute < 0 || minute > 59 {
		minute = 0
	}
	return NewClock(hour, minute)
}

// ParseSlots 批量解析节次标签，保持下标不变
func ParseSlots(labels []string) []SlotTime {
	result := make([]SlotTime, len(labels))
	for i, l := range labels {
		result[i] = ParseSlot(l)
	}
	return result
}
