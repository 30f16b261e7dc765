package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/timetable"
)

// ── 节次模块业务错误 ──

var (
	ErrTimeSlotNotFound = errors.New("节次不存在")
	ErrTimeSlotInUse    = errors.New("该节次或其后的节次仍有课程，无法删除")
	ErrInvalidTimeSlot  = errors.New("节次格式无效，应为 HH:MM-HH:MM 且结束晚于开始")
)

// TimeSlotService 节次业务接口
//
// 节次以数组下标寻址课表格子。追加与修改时间总是允许；
// 删除某个下标会使其后所有格子错位，因此只要任一学期在该下标
// 或之后仍有课程就拒绝删除。
type TimeSlotService interface {
	List(ctx context.Context) ([]dto.TimeSlotResponse, error)
	Append(ctx context.Context, req *dto.TimeSlotRequest) (*dto.TimeSlotResponse, error)
	Update(ctx context.Context, index int, req *dto.TimeSlotRequest) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, index int) error
}

type timeSlotService struct {
	store  *DocumentStore
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(store *DocumentStore, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{store: store, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List(ctx context.Context) ([]dto.TimeSlotResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return toTimeSlotResponses(doc.TimeSlots), nil
}

// ────────────────────── Append ──────────────────────

func (s *timeSlotService) Append(ctx context.Context, req *dto.TimeSlotRequest) (*dto.TimeSlotResponse, error) {
	label, err := normalizeSlotLabel(req.Label)
	if err != nil {
		return nil, err
	}

	var index int
	if _, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		doc.TimeSlots = append(doc.TimeSlots, label)
		index = len(doc.TimeSlots) - 1
		return nil
	}); err != nil {
		return nil, err
	}

	resp := toTimeSlotResponse(index, label)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, index int, req *dto.TimeSlotRequest) (*dto.TimeSlotResponse, error) {
	label, err := normalizeSlotLabel(req.Label)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		if index < 0 || index >= len(doc.TimeSlots) {
			return ErrTimeSlotNotFound
		}
		doc.TimeSlots[index] = label
		return nil
	}); err != nil {
		return nil, err
	}

	resp := toTimeSlotResponse(index, label)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeSlotService) Delete(ctx context.Context, index int) error {
	_, err := s.store.Update(ctx, func(doc *timetable.Document) error {
		if index < 0 || index >= len(doc.TimeSlots) {
			return ErrTimeSlotNotFound
		}
		for term, tg := range doc.Courses {
			if tg.MaxSlot() >= index {
				s.logger.Info("节次仍被占用，拒绝删除",
					zap.Int("index", index),
					zap.String("term", term),
					zap.Int("max_slot", tg.MaxSlot()),
				)
				return ErrTimeSlotInUse
			}
		}
		doc.TimeSlots = append(doc.TimeSlots[:index], doc.TimeSlots[index+1:]...)
		return nil
	})
	return err
}

// ── 内部辅助方法 ──

// normalizeSlotLabel 用户输入的节次统一为 "HH:MM-HH:MM"
func normalizeSlotLabel(label string) (string, error) {
	st := timetable.ParseSlot(label)
	if st.End <= st.Start {
		return "", ErrInvalidTimeSlot
	}
	return st.Label(), nil
}

func toTimeSlotResponse(index int, label string) dto.TimeSlotResponse {
	st := timetable.ParseSlot(label)
	return dto.TimeSlotResponse{
		Index:   index,
		Label:   label,
		Start:   st.Start.String(),
		End:     st.End.String(),
		Segment: st.Segment.String(),
	}
}

func toTimeSlotResponses(labels []string) []dto.TimeSlotResponse {
	result := make([]dto.TimeSlotResponse, 0, len(labels))
	for i, l := range labels {
		result = append(result, toTimeSlotResponse(i, l))
	}
	return result
}
