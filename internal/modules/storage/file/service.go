package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	appcfg "github.com/sitesmith/core/internal/config"
	"github.com/sitesmith/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service stores page attachments. Backends are tried in order: the tenant
// wiki first, then S3 when configured, then the local uploads directory.
// Whatever backend accepted the blob is recorded on the file row so serving
// never has to guess.
type Service struct {
	db      *gorm.DB
	gw      Gateway
	s3      *s3Store
	uploads appcfg.UploadsConfig
	log     *zap.Logger
}

func NewService(db *gorm.DB, gw Gateway, cfg *appcfg.AppConfig, log *zap.Logger) *Service {
	s := &Service{db: db, gw: gw, uploads: cfg.Uploads, log: log}
	if cfg.S3.Enable {
		store, err := newS3Store(cfg.S3)
		if err != nil {
			log.Warn("s3 backend disabled", zap.Error(err))
		} else {
			s.s3 = store
		}
	}
	return s
}

// Upload validates the blob, then walks the backend chain. The local
// directory is the backstop; its failure fails the upload.
func (s *Service) Upload(ctx context.Context, site *models.SiteModel, p *models.PageModel, actorID, originalName, declaredType string, payload []byte) (*models.PageFileModel, error) {
	mimeType := detectContentType(originalName, payload, declaredType)
	if err := validateUpload(mimeType, int64(len(payload))); err != nil {
		return nil, err
	}

	filename := buildFileName(originalName)

	storage, path := s.store(ctx, site, p, filename, payload, mimeType)
	if storage == "" {
		return nil, errors.New("no storage backend accepted the file")
	}

	f := models.PageFileModel{
		PageID:       p.ID,
		UserID:       actorID,
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         int64(len(payload)),
		Storage:      storage,
		Path:         path,
	}
	return &f, s.db.Create(&f).Error
}

// Blobs are namespaced by (site, page, filename) on every backend.
func (s *Service) store(ctx context.Context, site *models.SiteModel, p *models.PageModel, filename string, payload []byte, mimeType string) (storage, path string) {
	if site.WikiURL != "" {
		ok, err := s.gw.UploadFile(ctx, site.WikiURL, filename, payload, "uploaded via api")
		if err == nil && ok {
			if info, ierr := s.gw.FileInfo(ctx, site.WikiURL, filename); ierr == nil && info.URL != "" {
				return models.FileStorageWiki, info.URL
			}
		}
		if err != nil {
			s.log.Warn("wiki upload failed",
				zap.String("site", site.Subdomain),
				zap.String("filename", filename), zap.Error(err))
		}
	}

	if s.s3 != nil {
		key := site.Subdomain + "/" + p.ID + "/" + filename
		url, err := s.s3.Put(ctx, key, payload, mimeType)
		if err == nil {
			return models.FileStorageS3, url
		}
		s.log.Warn("s3 upload failed",
			zap.String("site", site.Subdomain),
			zap.String("filename", filename), zap.Error(err))
	}

	dir := filepath.Join(s.uploads.Dir, site.ID, p.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("uploads dir create failed", zap.String("dir", dir), zap.Error(err))
		return "", ""
	}
	if err := os.WriteFile(filepath.Join(dir, filename), payload, 0o644); err != nil {
		s.log.Error("local write failed", zap.String("filename", filename), zap.Error(err))
		return "", ""
	}
	return models.FileStorageLocal, s.uploads.PublicBase + "/" + site.ID + "/" + p.ID + "/" + filename
}

func (s *Service) List(pageID string) ([]models.PageFileModel, error) {
	var files []models.PageFileModel
	return files, s.db.Where("page_id = ?", pageID).
		Order("created_at DESC").Find(&files).Error
}

// Delete removes the file row and, for locally stored files, the blob.
// Wiki and S3 copies are left behind; they are mirrors, not the record.
func (s *Service) Delete(site *models.SiteModel, pageID, fileID string) error {
	var f models.PageFileModel
	if err := s.db.Where("id = ? AND page_id = ?", fileID, pageID).First(&f).Error; err != nil {
		return err
	}
	if f.Storage == models.FileStorageLocal {
		if err := os.Remove(filepath.Join(s.uploads.Dir, site.ID, f.PageID, f.Filename)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("local blob remove failed", zap.String("filename", f.Filename), zap.Error(err))
		}
	}
	return s.db.Delete(&f).Error
}
