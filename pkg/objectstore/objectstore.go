package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"fiatimetable/config"
)

// Client S3 兼容对象存储封装，用于云端备份的上传与下载
type Client struct {
	mc     *minio.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewClient 创建对象存储客户端。未配置端点或存储桶时返回 nil, nil，
// 调用方据此判断云端备份不可用
func NewClient(cfg *config.StorageConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		logger.Info("未配置对象存储，云端备份不可用")
		return nil, nil
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建对象存储客户端失败: %w", err)
	}

	logger.Info("对象存储已配置",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)
	return &Client{mc: mc, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}, nil
}

// ObjectKey 备份文件在存储桶中的对象名：<prefix>/<owner>.json
func (c *Client) ObjectKey(owner string) string {
	return path.Join(c.prefix, owner+".json")
}

// Upload 覆盖上传对象
func (c *Client) Upload(ctx context.Context, key string, data []byte) error {
	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("上传对象 %s 失败: %w", key, err)
	}
	return nil
}

// Download 读取整个对象
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s 失败: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 失败: %w", key, err)
	}
	return data, nil
}
