package timetable

import (
	"context"
	"fmt"
	"time"
)

// FocusState "下一节课" 视图的状态
type FocusState int

const (
	// FocusNone 本学期已无后续课程
	FocusNone FocusState = iota
	FocusCurrent
	FocusNext
)

func (s FocusState) String() string {
	switch s {
	case FocusCurrent:
		return "current"
	case FocusNext:
		return "next"
	default:
		return "none"
	}
}

// Focus 一次倒计时刷新的结果
type Focus struct {
	State      FocusState
	Index      int
	Occurrence *Occurrence
	Remaining  time.Duration
	Display    string
}

// Countdown 标记当前/下一节课并计算剩余时间：
// 正在上课时为距下课，否则为距上课
func Countdown(occs []Occurrence, now time.Time) Focus {
	idx := Tag(occs, now)
	if idx < 0 {
		return Focus{State: FocusNone, Index: -1, Display: "本学期已无课程"}
	}

	o := occs[idx]
	f := Focus{Index: idx, Occurrence: &o}
	if o.IsCurrent {
		f.State = FocusCurrent
		f.Remaining = o.End.Sub(now)
		f.Display = "距下课 " + FormatRemaining(f.Remaining)
	} else {
		f.State = FocusNext
		f.Remaining = o.Start.Sub(now)
		f.Display = "距上课 " + FormatRemaining(f.Remaining)
	}
	return f
}

// FormatRemaining 格式化剩余时间："2天03:04:05" 或 "03:04:05"
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	days := total / 86400
	h := total % 86400 / 3600
	m := total % 3600 / 60
	s := total % 60
	if days > 0 {
		return fmt.Sprintf("%d天%02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// RunCountdown 每个 interval 重新计算一次 Focus 并回调 emit，直到 ctx 取消
// 或已无后续课程。只重新标记，不重建时间线
func RunCountdown(ctx context.Context, occs []Occurrence, interval time.Duration, now func() time.Time, emit func(Focus)) error {
	local := make([]Occurrence, len(occs))
	copy(local, occs)

	f := Countdown(local, now())
	emit(f)
	if f.State == FocusNone {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f := Countdown(local, now())
			emit(f)
			if f.State == FocusNone {
				return nil
			}
		}
	}
}
