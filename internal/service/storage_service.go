package service

import (
	"caregiver_support_backend/internal/config"
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/util"
	"caregiver_support_backend/pkg/logger"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, filename))
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// MediaService stores uploaded course media and records duration metadata
// so day tasks can surface it.
type MediaService struct {
	Provider  StorageProvider
	MediaRepo *repository.MediaRepository
	LocalPath string
}

func NewMediaService(cfg *config.Config, mediaRepo *repository.MediaRepository) *MediaService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("minio unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &MediaService{
		Provider:  provider,
		MediaRepo: mediaRepo,
		LocalPath: cfg.Storage.LocalPath,
	}
}

var allowedMediaExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true,
	".mp3": true, ".m4a": true, ".wav": true, ".ogg": true,
}

// UploadMedia stores an uploaded file, probes it for duration and records
// the asset. The file is staged locally first because ffprobe needs a path.
func (s *MediaService) UploadMedia(ctx context.Context, userID uint, header *multipart.FileHeader) (*model.MediaAsset, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedMediaExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported media type %q", util.ErrValidationFailure, ext)
	}

	filename := model.GenerateUUID() + ext
	staging := filepath.Join(os.TempDir(), filename)

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	tmp, err := os.Create(staging)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(staging)
		return nil, err
	}
	tmp.Close()
	defer os.Remove(staging)

	info, err := util.ProbeMedia(staging)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrValidationFailure, err)
	}

	file, err := os.Open(staging)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := s.Provider.Upload(ctx, filename, file, info.Size, contentType)
	if err != nil {
		return nil, err
	}

	asset := &model.MediaAsset{
		FileName:        header.Filename,
		URL:             url,
		ContentType:     contentType,
		SizeBytes:       info.Size,
		DurationSeconds: info.Duration,
		UploadedBy:      userID,
	}
	if err := s.MediaRepo.Create(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *MediaService) ListMedia(page, limit int) ([]model.MediaAsset, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.MediaRepo.List(page, limit)
}

// DeleteMedia removes both the stored object and the database record.
func (s *MediaService) DeleteMedia(ctx context.Context, id string) error {
	asset, err := s.MediaRepo.FindByID(id)
	if err != nil {
		return err
	}
	stored := strings.TrimPrefix(asset.URL, s.Provider.GetURL(""))
	if err := s.Provider.Delete(ctx, stored); err != nil {
		logger.Log.Warn("stored media removal failed", zap.String("id", id), zap.Error(err))
	}
	return s.MediaRepo.Delete(id)
}
