package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fiatimetable/internal/backup"
	"fiatimetable/internal/dto"
	"fiatimetable/internal/model"
	"fiatimetable/internal/repository"
	apperrors "fiatimetable/pkg/errors"
)

// ErrBackupInvalid 备份文件整体无法解析
var ErrBackupInvalid = errors.New("备份文件格式无效")

// cloudHistoryLimit 云端同步记录最多返回条数
const cloudHistoryLimit = 20

// ObjectStore 云端备份使用的对象存储
type ObjectStore interface {
	ObjectKey(owner string) string
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// BackupService 本地备份与云端同步
//
// 导入总是整体替换当前文档。云端失败只有两种信号：
// 未配置（pkg/errors.ErrCloudNotConfigured）与传输失败（ErrCloudTransferFailed）。
type BackupService interface {
	Export(ctx context.Context) ([]byte, string, error)
	Import(ctx context.Context, content []byte) (*dto.ImportResponse, error)
	UploadCloud(ctx context.Context) (*dto.CloudSyncResponse, error)
	DownloadCloud(ctx context.Context) (*dto.CloudSyncResponse, error)
	History(ctx context.Context) ([]dto.CloudSyncResponse, error)
}

type backupService struct {
	store   *DocumentStore
	repo    *repository.Repository
	objects ObjectStore
	now     func() time.Time
	logger  *zap.Logger
}

// NewBackupService 创建 BackupService 实例；objects 为 nil 表示未配置云端存储
func NewBackupService(store *DocumentStore, repo *repository.Repository, objects ObjectStore, now func() time.Time, logger *zap.Logger) BackupService {
	return &backupService{store: store, repo: repo, objects: objects, now: now, logger: logger}
}

// ────────────────────── Export / Import ──────────────────────

func (s *backupService) Export(ctx context.Context) ([]byte, string, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	data, err := backup.Marshal(doc, now)
	if err != nil {
		s.logger.Error("生成备份文件失败", zap.Error(err))
		return nil, "", err
	}
	return data, fmt.Sprintf("fiatimetable_backup_%s.json", now.Format("20060102_150405")), nil
}

func (s *backupService) Import(ctx context.Context, content []byte) (*dto.ImportResponse, error) {
	stats, err := s.restore(ctx, content)
	if err != nil {
		return nil, err
	}
	return toImportResponse(stats), nil
}

// restore 解析并整体替换文档
func (s *backupService) restore(ctx context.Context, content []byte) (backup.Stats, error) {
	doc, stats, err := backup.Import(content)
	if err != nil {
		s.logger.Warn("备份文件解析失败", zap.Error(err))
		return stats, ErrBackupInvalid
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return stats, err
	}

	s.logger.Info("导入备份",
		zap.Int("terms", stats.Terms),
		zap.Int("courses", stats.Courses),
		zap.Int("online_courses", stats.OnlineCourses),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// ────────────────────── Cloud ──────────────────────

func (s *backupService) UploadCloud(ctx context.Context) (*dto.CloudSyncResponse, error) {
	if s.objects == nil {
		return nil, apperrors.ErrCloudNotConfigured
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := backup.Marshal(doc, s.now())
	if err != nil {
		return nil, err
	}

	key := s.objects.ObjectKey(s.store.Owner())
	if err := s.objects.Upload(ctx, key, data); err != nil {
		s.logger.Error("云端上传失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCloudTransferFailed, err)
	}

	record := s.record(ctx, model.CloudDirectionUpload, key, len(data), doc.Revision)
	s.logger.Info("云端上传完成", zap.String("key", key), zap.Int("size", len(data)))
	return toCloudSyncResponse(record, nil), nil
}

func (s *backupService) DownloadCloud(ctx context.Context) (*dto.CloudSyncResponse, error) {
	if s.objects == nil {
		return nil, apperrors.ErrCloudNotConfigured
	}

	key := s.objects.ObjectKey(s.store.Owner())
	data, err := s.objects.Download(ctx, key)
	if err != nil {
		s.logger.Error("云端下载失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCloudTransferFailed, err)
	}

	stats, err := s.restore(ctx, data)
	if err != nil {
		return nil, err
	}

	// 读回新版本号
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	record := s.record(ctx, model.CloudDirectionDownload, key, len(data), doc.Revision)
	return toCloudSyncResponse(record, toImportResponse(stats)), nil
}

func (s *backupService) History(ctx context.Context) ([]dto.CloudSyncResponse, error) {
	records, err := s.repo.CloudBackup.ListRecent(ctx, s.store.Owner(), cloudHistoryLimit)
	if err != nil {
		s.logger.Error("查询云端同步记录失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CloudSyncResponse, 0, len(records))
	for i := range records {
		result = append(result, *toCloudSyncResponse(&records[i], nil))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// record 写入同步记录；记录失败不影响同步结果
func (s *backupService) record(ctx context.Context, direction, key string, size int, revision int64) *model.CloudBackup {
	rec := &model.CloudBackup{
		ID:        uuid.NewString(),
		OwnerKey:  s.store.Owner(),
		Direction: direction,
		ObjectKey: key,
		SizeBytes: int64(size),
		Revision:  revision,
		CreatedAt: s.now(),
	}
	if err := s.repo.CloudBackup.Create(ctx, rec); err != nil {
		s.logger.Warn("写入云端同步记录失败", zap.String("direction", direction), zap.Error(err))
	}
	return rec
}

func toImportResponse(stats backup.Stats) *dto.ImportResponse {
	return &dto.ImportResponse{
		Terms:         stats.Terms,
		Courses:       stats.Courses,
		OnlineCourses: stats.OnlineCourses,
		Skipped:       stats.Skipped,
	}
}

func toCloudSyncResponse(rec *model.CloudBackup, imported *dto.ImportResponse) *dto.CloudSyncResponse {
	return &dto.CloudSyncResponse{
		ID:        rec.ID,
		Direction: rec.Direction,
		ObjectKey: rec.ObjectKey,
		SizeBytes: rec.SizeBytes,
		Revision:  rec.Revision,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		Imported:  imported,
	}
}
