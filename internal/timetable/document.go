package timetable

// 主题取值
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// DefaultTimeSlots 新建课表时的默认节次
var DefaultTimeSlots = []string{
	"08:00-08:45", "08:55-09:40", "10:00-10:45", "10:55-11:40",
	"14:00-14:45", "14:55-15:40", "16:00-16:45", "16:55-17:40",
	"19:00-19:45", "19:55-20:40",
}

// Document 课表聚合：唯一的持久化单元，每次修改整体读出、整体写回
type Document struct {
	Terms         []Term                    `json:"terms"`
	Courses       Grid                      `json:"courses"`
	OnlineCourses map[string][]OnlineCourse `json:"onlineCourses"`
	TimeSlots     []string                  `json:"timeSlots"`
	SelectedTerm  string                    `json:"selectedTerm"`
	Theme         string                    `json:"theme"`

	// Revision 由存储层维护，仅用于缓存失效
	Revision int64 `json:"-"`
}

// Session 当前选中学期与主题，唯一来源是 Document
type Session struct {
	SelectedTerm string
	Theme        string
}

// NewDocument 创建带默认节次的空课表
func NewDocument() *Document {
	d := &Document{
		TimeSlots: append([]string(nil), DefaultTimeSlots...),
		Theme:     ThemeSystem,
	}
	d.Normalize()
	return d
}

// Normalize 补齐 nil 集合，反序列化后调用
func (d *Document) Normalize() {
	if d.Terms == nil {
		d.Terms = []Term{}
	}
	if d.Courses == nil {
		d.Courses = make(Grid)
	}
	if d.OnlineCourses == nil {
		d.OnlineCourses = make(map[string][]OnlineCourse)
	}
	if d.TimeSlots == nil {
		d.TimeSlots = []string{}
	}
	if d.Theme == "" {
		d.Theme = ThemeSystem
	}
}

// Session 返回会话状态
func (d *Document) Session() Session {
	return Session{SelectedTerm: d.SelectedTerm, Theme: d.Theme}
}

// ApplySession 写回会话状态
func (d *Document) ApplySession(s Session) {
	d.SelectedTerm = s.SelectedTerm
	d.Theme = s.Theme
}

// FindTerm 按名称查找学期
func (d *Document) FindTerm(name string) (Term, int, bool) {
	for i, t := range d.Terms {
		if t.Name == name {
			return t, i, true
		}
	}
	return Term{}, -1, false
}

// ActiveTerm 选中的学期；未选中或已被删除时退回第一个学期
func (d *Document) ActiveTerm() (Term, bool) {
	if t, _, ok := d.FindTerm(d.SelectedTerm); ok {
		return t, true
	}
	if len(d.Terms) > 0 {
		return d.Terms[0], true
	}
	return Term{}, false
}

// SlotTimes 解析全部节次
func (d *Document) SlotTimes() []SlotTime {
	return ParseSlots(d.TimeSlots)
}

// TermOnlineCourses 指定学期在第 week 周进行中的线上课程
func (d *Document) TermOnlineCourses(term string, week int) []OnlineCourse {
	var result []OnlineCourse
	for _, oc := range d.OnlineCourses[term] {
		if oc.ActiveIn(week) {
			result = append(result, oc)
		}
	}
	return result
}
