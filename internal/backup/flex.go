package backup

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"fiatimetable/internal/timetable"
)

// 旧版本导出的文件里 id、学分、周次可能是数字也可能是字符串，
// 以下类型在解码时两种写法都接受

// FlexString 接受字符串或数字
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return err
	}
	*s = FlexString(data)
	return nil
}

// FlexInt 接受数字或数字字符串，无法解析时为 0
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		*n = 0
		return nil
	}
	text := strings.TrimSpace(string(s))
	if v, err := strconv.Atoi(text); err == nil {
		*n = FlexInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		*n = FlexInt(int(f))
		return nil
	}
	*n = 0
	return nil
}

// FlexWeeks 接受周次数组（元素为数字或字符串）或周次表达式字符串
type FlexWeeks []int

func (w *FlexWeeks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*w = nil
	case data[0] == '"':
		var expr string
		if err := json.Unmarshal(data, &expr); err != nil {
			return err
		}
		*w = FlexWeeks(timetable.ParseWeekRange(expr))
	default:
		var items []FlexInt
		if err := json.Unmarshal(data, &items); err != nil {
			*w = nil
			return nil
		}
		weeks := make([]int, 0, len(items))
		for _, it := range items {
			weeks = append(weeks, int(it))
		}
		*w = FlexWeeks(timetable.NormalizeWeeks(weeks))
	}
	return nil
}

// RecordList 同一节的课程记录。只有一门课时编码为单个对象，
// 多门（按周交替）时编码为数组
type RecordList []CourseRecord

func (l RecordList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]CourseRecord(l))
}

// splitRecords 把一节的原始内容拆成单条记录，对象与数组两种形式都接受
func splitRecords(data json.RawMessage) []json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '[' {
		return []json.RawMessage{data}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return []json.RawMessage{data}
	}
	return items
}
