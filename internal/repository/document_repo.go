package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fiatimetable/internal/model"
	"fiatimetable/pkg/redis"
)

// DocumentCache 文档载荷缓存，由 pkg/redis.Client 实现。
// SetDocument 必须拒绝低于失效标记的版本号
type DocumentCache interface {
	GetDocument(ctx context.Context, owner string) ([]byte, int64, error)
	SetDocument(ctx context.Context, owner string, payload []byte, revision int64) error
	InvalidateDocument(ctx context.Context, owner string, revision int64) error
}

// DocumentRepository 课表文档数据访问接口
// 文档是唯一的持久化单元：整体读取、整体覆盖写回（后写者胜出）
type DocumentRepository interface {
	// Get 读取文档，不存在时返回 gorm.ErrRecordNotFound
	Get(ctx context.Context, owner string) (*model.ScheduleDocument, error)
	// Save 覆盖写入载荷并返回新的版本号
	Save(ctx context.Context, owner string, payload []byte) (int64, error)
}

type documentRepo struct {
	db     *gorm.DB
	cache  DocumentCache
	logger *zap.Logger
}

// NewDocumentRepo 创建 DocumentRepository 实例，cache 为 nil 时直接读库
func NewDocumentRepo(db *gorm.DB, cache DocumentCache, logger *zap.Logger) DocumentRepository {
	return &documentRepo{db: db, cache: cache, logger: logger}
}

func (r *documentRepo) Get(ctx context.Context, owner string) (*model.ScheduleDocument, error) {
	if r.cache != nil {
		payload, revision, err := r.cache.GetDocument(ctx, owner)
		if err == nil {
			return &model.ScheduleDocument{OwnerKey: owner, Payload: datatypes.JSON(payload), Revision: revision}, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			r.logger.Warn("读取文档缓存失败，回源数据库", zap.String("owner", owner), zap.Error(err))
		}
	}

	var doc model.ScheduleDocument
	err := r.db.WithContext(ctx).
		Where("owner_key = ?", owner).
		First(&doc).Error
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetDocument(ctx, owner, doc.Payload, doc.Revision); err != nil {
			r.logger.Warn("写入文档缓存失败", zap.String("owner", owner), zap.Error(err))
		}
	}
	return &doc, nil
}

func (r *documentRepo) Save(ctx context.Context, owner string, payload []byte) (int64, error) {
	doc := model.ScheduleDocument{OwnerKey: owner, Payload: datatypes.JSON(payload), Revision: 1}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"payload":    doc.Payload,
				"revision":   gorm.Expr("schedule_documents.revision + 1"),
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&doc).Error; err != nil {
			return err
		}
		return tx.Model(&model.ScheduleDocument{}).
			Where("owner_key = ?", owner).
			Pluck("revision", &doc.Revision).Error
	})
	if err != nil {
		return 0, err
	}

	// 失效而不是回填；失效标记带上新版本号，并发读者拿着旧版本无法回填
	if r.cache != nil {
		if err := r.cache.InvalidateDocument(ctx, owner, doc.Revision); err != nil {
			r.logger.Warn("清除文档缓存失败", zap.String("owner", owner), zap.Error(err))
		}
	}
	return doc.Revision, nil
}
