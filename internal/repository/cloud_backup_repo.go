package repository

import (
	"context"

	"gorm.io/gorm"

	"fiatimetable/internal/model"
)

// CloudBackupRepository 云端同步记录数据访问接口
type CloudBackupRepository interface {
	Create(ctx context.Context, record *model.CloudBackup) error
	ListRecent(ctx context.Context, owner string, limit int) ([]model.CloudBackup, error)
}

type cloudBackupRepo struct {
	db *gorm.DB
}

// NewCloudBackupRepo 创建 CloudBackupRepository 实例
func NewCloudBackupRepo(db *gorm.DB) CloudBackupRepository {
	return &cloudBackupRepo{db: db}
}

func (r *cloudBackupRepo) Create(ctx context.Context, record *model.CloudBackup) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *cloudBackupRepo) ListRecent(ctx context.Context, owner string, limit int) ([]model.CloudBackup, error) {
	var records []model.CloudBackup
	err := r.db.WithContext(ctx).
		Where("owner_key = ?", owner).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
