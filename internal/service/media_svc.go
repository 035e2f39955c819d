package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"realty_dev_v1_202608/internal/apperr"
)

// ==================== 接口定义 ====================

// FileUpload 一个待上传的照片文件
type FileUpload struct {
	Data        []byte
	Filename    string
	ContentType string
	// SourceURL 非空时表示按 URL 引入，由适配器自行下载
	SourceURL string
}

// MediaAttachmentService 媒体上传服务
// 整批全有或全无：任何一个文件失败，整次调用失败且不产生可见的 URL
type MediaAttachmentService interface {
	Upload(ctx context.Context, files []FileUpload) ([]string, error)
}

// StorageProvider 存储提供者接口
type StorageProvider interface {
	// Upload 上传文件，返回公开访问URL
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)

	// Delete 删除文件
	Delete(ctx context.Context, url string) error
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // 自定义端点 (MinIO 等)
	CDNDomain string // CDN域名 (可选)
	BasePath  string // 基础路径前缀
	LocalDir  string // local 模式落盘目录
	LocalBase string // local 模式对外 URL 前缀
}

// ==================== 工厂方法 ====================

func NewStorageProvider(cfg *StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== MediaService 上传服务 ====================

// MediaService 媒体上传服务实现
type MediaService struct {
	provider StorageProvider
	client   *resty.Client
}

// NewMediaService 创建媒体上传服务
func NewMediaService(provider StorageProvider) *MediaService {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", "Realty-Hub/1.0")

	return &MediaService{
		provider: provider,
		client:   client,
	}
}

// Upload 整批上传
// 任何一个文件失败时，尽力删除本批已上传的对象并返回 UploadError，
// 保证调用方永远不会拿到半个批次的 URL
func (s *MediaService) Upload(ctx context.Context, files []FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))

	for i, f := range files {
		data := f.Data
		contentType := f.ContentType
		filename := f.Filename

		if f.SourceURL != "" {
			downloaded, ct, err := s.download(ctx, f.SourceURL)
			if err != nil {
				s.rollback(ctx, urls)
				return nil, apperr.Newf(apperr.KindUpload, "下载第 %d 张照片失败: %v", i+1, err)
			}
			data = downloaded
			if contentType == "" {
				contentType = ct
			}
			if filename == "" {
				filename = filepath.Base(f.SourceURL)
			}
		}

		if len(data) == 0 {
			s.rollback(ctx, urls)
			return nil, apperr.Newf(apperr.KindUpload, "第 %d 张照片内容为空", i+1)
		}

		url, err := s.provider.Upload(ctx, data, filename, contentType)
		if err != nil {
			s.rollback(ctx, urls)
			return nil, apperr.Newf(apperr.KindUpload, "上传第 %d 张照片失败: %v", i+1, err)
		}
		urls = append(urls, url)
	}

	return urls, nil
}

// download 按 URL 拉取照片内容
func (s *MediaService) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("源站返回状态码 %d", resp.StatusCode())
	}

	data := resp.Body()
	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// rollback 尽力删除本批已上传对象
func (s *MediaService) rollback(ctx context.Context, urls []string) {
	for _, url := range urls {
		_ = s.provider.Delete(ctx, url)
	}
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	cdnDomain string
	basePath  string
}

func NewS3Storage(cfg *StorageConfig) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		cdnDomain: cfg.CDNDomain,
		basePath:  cfg.BasePath,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := s.generateKey(filename)

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %v", err)
	}

	return s.getPublicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key := s.extractKey(url)
	if key == "" {
		return fmt.Errorf("无法解析文件路径")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) generateKey(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	datePath := time.Now().Format("2006/01/02")
	if s.basePath != "" {
		return fmt.Sprintf("%s/%s/%s", s.basePath, datePath, newFilename)
	}
	return fmt.Sprintf("%s/%s", datePath, newFilename)
}

func (s *S3Storage) getPublicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) extractKey(url string) string {
	if s.cdnDomain != "" && strings.Contains(url, s.cdnDomain) {
		return strings.TrimPrefix(url, fmt.Sprintf("https://%s/", s.cdnDomain))
	}
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	return strings.TrimPrefix(url, prefix)
}

// ==================== 本地存储实现 ====================

// LocalStorage 本地磁盘存储（开发环境用）
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(cfg *StorageConfig) (*LocalStorage, error) {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %v", err)
	}

	baseURL := cfg.LocalBase
	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("写入本地文件失败: %v", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, name), nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	name := filepath.Base(url)
	if name == "" || name == "." {
		return fmt.Errorf("无法解析文件路径")
	}
	return os.Remove(filepath.Join(s.dir, name))
}
