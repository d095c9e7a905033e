// Package media 把上传的图片写入 S3 兼容的对象存储（AWS S3 / MinIO）。
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	appconfig "curiohub/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader 负责对象的写入与删除。
type Uploader struct {
	cfg    *appconfig.MediaConfig
	logger *slog.Logger
	client *s3.Client
}

// NewUploader 创建上传器并初始化 S3 客户端。
// Endpoint 非空时走自定义端点（MinIO 等），使用 path-style 访问。
func NewUploader(ctx context.Context, cfg *appconfig.MediaConfig, logger *slog.Logger) (*Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		cfg:    cfg,
		logger: logger,
		client: client,
	}, nil
}

// StorageKey 生成按日期分区的对象键，如 uploads/2026/09/01/<uuid>.png。
func StorageKey(contentType string) string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), extFor(contentType))
}

// Upload 写入对象并返回公开访问 URL 与对象键。
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, string, error) {
	key := StorageKey(contentType)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}

	u.logger.Info("media uploaded", slog.String("key", key), slog.Int("bytes", len(data)))
	return u.PublicURL(key), key, nil
}

// Delete 删除对象。
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	u.logger.Info("media deleted", slog.String("key", key))
	return nil
}

// PublicURL 拼出对象的访问地址。
// 配置了 PublicBaseURL（CDN 或反代）时优先使用，否则退回 endpoint/bucket/key。
func (u *Uploader) PublicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
