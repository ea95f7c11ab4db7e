package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	appcfg "github.com/sitesmith/core/internal/config"
	"github.com/sitesmith/core/internal/database"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/storage/file"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngPayload = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type fakeWiki struct {
	uploadOK  bool
	uploadErr error
	infoURL   string
}

func (f *fakeWiki) UploadFile(_ context.Context, _, _ string, _ []byte, _ string) (bool, error) {
	return f.uploadOK, f.uploadErr
}

func (f *fakeWiki) FileInfo(_ context.Context, _, filename string) (*mediawiki.FileInfo, error) {
	if f.infoURL == "" {
		return nil, &mediawiki.APIError{Code: "missingtitle"}
	}
	return &mediawiki.FileInfo{URL: f.infoURL + "/" + filename, Mime: "image/png"}, nil
}

func newFixture(t *testing.T, fw *fakeWiki) (*file.Service, *gorm.DB, *models.SiteModel, *models.PageModel, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	u := models.UserModel{Username: "owner", Name: "Owner", Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	site := models.SiteModel{Name: "Acme", Subdomain: "acme", WikiURL: "http://acme.test/api.php", UserID: u.ID}
	if err := db.Create(&site).Error; err != nil {
		t.Fatalf("create site: %v", err)
	}
	p := models.PageModel{SiteID: site.ID, Title: "Home", Content: "x", Format: models.PageFormatHTML, IsPublished: true}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create page: %v", err)
	}

	uploadsDir := t.TempDir()
	cfg := &appcfg.AppConfig{
		Uploads: appcfg.UploadsConfig{Dir: uploadsDir, PublicBase: "/uploads"},
	}
	return file.NewService(db, fw, cfg, zap.NewNop()), db, &site, &p, uploadsDir
}

func TestUploadMirrorsToWikiFirst(t *testing.T) {
	fw := &fakeWiki{uploadOK: true, infoURL: "http://acme.test/files"}
	svc, _, site, p, uploadsDir := newFixture(t, fw)

	f, err := svc.Upload(context.Background(), site, p, site.UserID, "logo.png", "image/png", pngPayload)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.Storage != models.FileStorageWiki {
		t.Fatalf("storage = %q, want wiki", f.Storage)
	}
	if f.Path == "" {
		t.Fatal("empty wiki file URL")
	}

	entries, _ := os.ReadDir(uploadsDir)
	if len(entries) != 0 {
		t.Error("local blob written although the wiki accepted the upload")
	}
}

func TestUploadFallsBackToLocal(t *testing.T) {
	fw := &fakeWiki{uploadErr: errors.New("wiki down")}
	svc, db, site, p, uploadsDir := newFixture(t, fw)

	f, err := svc.Upload(context.Background(), site, p, site.UserID, "logo.png", "image/png", pngPayload)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.Storage != models.FileStorageLocal {
		t.Fatalf("storage = %q, want local", f.Storage)
	}

	blob := filepath.Join(uploadsDir, site.ID, p.ID, f.Filename)
	if _, err := os.Stat(blob); err != nil {
		t.Fatalf("local blob missing: %v", err)
	}
	if !strings.Contains(f.Path, site.ID+"/"+p.ID+"/") {
		t.Fatalf("path = %q, not namespaced by site and page", f.Path)
	}

	var count int64
	db.Model(&models.PageFileModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("file rows = %d, want 1", count)
	}
}

func TestUploadRejectedByWikiUsesFallback(t *testing.T) {
	// The wiki answers but declines the file; that is a fallback, not an error.
	fw := &fakeWiki{uploadOK: false}
	svc, _, site, p, _ := newFixture(t, fw)

	f, err := svc.Upload(context.Background(), site, p, site.UserID, "logo.png", "image/png", pngPayload)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.Storage != models.FileStorageLocal {
		t.Fatalf("storage = %q, want local", f.Storage)
	}
}

func TestUploadValidatesBeforeStoring(t *testing.T) {
	fw := &fakeWiki{uploadOK: true, infoURL: "http://acme.test/files"}
	svc, db, site, p, uploadsDir := newFixture(t, fw)

	if _, err := svc.Upload(context.Background(), site, p, site.UserID, "doc.pdf", "application/pdf", []byte("%PDF-1.4")); err == nil {
		t.Fatal("pdf upload accepted")
	}
	if _, err := svc.Upload(context.Background(), site, p, site.UserID, "big.png", "image/png", make([]byte, file.MaxUploadSize+1)); err == nil {
		t.Fatal("oversize upload accepted")
	}

	var count int64
	db.Model(&models.PageFileModel{}).Count(&count)
	if count != 0 {
		t.Errorf("file rows = %d, want 0", count)
	}
	entries, _ := os.ReadDir(uploadsDir)
	if len(entries) != 0 {
		t.Error("blob written for rejected upload")
	}
}

func TestDeleteRemovesLocalBlob(t *testing.T) {
	fw := &fakeWiki{uploadErr: errors.New("wiki down")}
	svc, db, site, p, uploadsDir := newFixture(t, fw)

	f, err := svc.Upload(context.Background(), site, p, site.UserID, "logo.png", "image/png", pngPayload)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Delete(site, p.ID, f.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := os.Stat(filepath.Join(uploadsDir, site.ID, p.ID, f.Filename)); !os.IsNotExist(err) {
		t.Error("local blob still present after delete")
	}
	var count int64
	db.Model(&models.PageFileModel{}).Count(&count)
	if count != 0 {
		t.Errorf("file rows = %d, want 0", count)
	}
}
