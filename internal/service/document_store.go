package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fiatimetable/internal/repository"
	"fiatimetable/internal/timetable"
)

// DocumentStore 课表文档的读写入口
//
// 每次修改都是：读出整个文档 → 在内存中修改 → 整体写回。
// 不加锁，并发写入时后写者胜出；Revision 只用于缓存失效。
type DocumentStore struct {
	repo   *repository.Repository
	owner  string
	logger *zap.Logger
}

// NewDocumentStore 创建 DocumentStore
func NewDocumentStore(repo *repository.Repository, owner string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{repo: repo, owner: owner, logger: logger}
}

// Owner 文档的存储键
func (s *DocumentStore) Owner() string { return s.owner }

// Load 读取文档，尚未保存过时返回带默认节次的空文档
func (s *DocumentStore) Load(ctx context.Context) (*timetable.Document, error) {
	row, err := s.repo.Document.Get(ctx, s.owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return timetable.NewDocument(), nil
		}
		s.logger.Error("读取课表文档失败", zap.String("owner", s.owner), zap.Error(err))
		return nil, err
	}

	doc := timetable.NewDocument()
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, doc); err != nil {
			s.logger.Error("课表文档解码失败", zap.String("owner", s.owner), zap.Error(err))
			return nil, fmt.Errorf("解码课表文档: %w", err)
		}
	}
	doc.Normalize()
	doc.Revision = row.Revision
	return doc, nil
}

// Save 整体写回文档并更新 doc.Revision
func (s *DocumentStore) Save(ctx context.Context, doc *timetable.Document) error {
	doc.Normalize()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("编码课表文档: %w", err)
	}

	revision, err := s.repo.Document.Save(ctx, s.owner, payload)
	if err != nil {
		s.logger.Error("保存课表文档失败", zap.String("owner", s.owner), zap.Error(err))
		return err
	}
	doc.Revision = revision
	return nil
}

// Update 读取、修改、写回。fn 返回错误时不写回
func (s *DocumentStore) Update(ctx context.Context, fn func(doc *timetable.Document) error) (*timetable.Document, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
