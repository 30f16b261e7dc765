package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fiatimetable/config"
	"fiatimetable/internal/dto"
)

// backupUploadTimeout 单次自动上传的超时
const backupUploadTimeout = 2 * time.Minute

// MemoFlusher 日期翻转时清空按日缓存的时间线
type MemoFlusher interface {
	FlushMemo()
}

// CloudUploader 定时把课表备份上传到对象存储
type CloudUploader interface {
	UploadCloud(ctx context.Context) (*dto.CloudSyncResponse, error)
}

// Scheduler 后台定时任务：零点清空时间线缓存、可选的自动云端备份
type Scheduler struct {
	cfg    *config.Config
	memo   MemoFlusher
	backup CloudUploader
	logger *zap.Logger

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

// NewScheduler 创建 Scheduler；backup 为 nil 时不注册自动备份
func NewScheduler(cfg *config.Config, memo MemoFlusher, backup CloudUploader, logger *zap.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, memo: memo, backup: backup, logger: logger}
}

// Start 注册任务并启动，cron 表达式非法时返回错误且不启动任何任务
func (s *Scheduler) Start(ctx context.Context) error {
	s.runCtx, s.cancel = context.WithCancel(ctx)

	loc := s.cfg.Timetable.Clock()().Location()
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(s.cfg.Timetable.RolloverCron, s.runRollover); err != nil {
		s.cancel()
		return fmt.Errorf("注册日期翻转任务失败: %w", err)
	}

	if s.cfg.Backup.AutoUpload && s.backup != nil {
		if _, err := c.AddFunc(s.cfg.Backup.Cron, func() { s.runBackup(s.runCtx) }); err != nil {
			s.cancel()
			return fmt.Errorf("注册自动备份任务失败: %w", err)
		}
	}

	c.Start()
	s.cron = c
	s.logger.Info("定时任务已启动",
		zap.String("rollover_cron", s.cfg.Timetable.RolloverCron),
		zap.Bool("auto_upload", s.cfg.Backup.AutoUpload && s.backup != nil),
		zap.Int("entries", len(c.Entries())),
	)
	return nil
}

// Stop 取消进行中的任务并等待其结束
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ── 任务 ──

func (s *Scheduler) runRollover() {
	s.memo.FlushMemo()
	s.logger.Info("日期翻转，已清空时间线缓存")
}

func (s *Scheduler) runBackup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, backupUploadTimeout)
	defer cancel()

	result, err := s.backup.UploadCloud(ctx)
	if err != nil {
		s.logger.Warn("自动云端备份失败", zap.Error(err))
		return
	}
	s.logger.Info("自动云端备份完成",
		zap.String("object_key", result.ObjectKey),
		zap.Int64("revision", result.Revision),
	)
}
