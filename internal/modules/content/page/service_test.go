package page_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sitesmith/core/internal/database"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/page"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeWiki struct {
	fetchHTML  string
	fetchErr   error
	saveErr    error
	deleteErr  error
	protectErr error

	saves   []string
	deletes []string
}

func (f *fakeWiki) FetchPage(_ context.Context, _, title string) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return f.fetchHTML, nil
}

func (f *fakeWiki) SavePage(_ context.Context, _, title, _, _ string, _ bool) (*mediawiki.EditResult, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saves = append(f.saves, title)
	return &mediawiki.EditResult{Result: "Success", Title: title}, nil
}

func (f *fakeWiki) DeletePage(_ context.Context, _, title string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, title)
	return nil
}

func (f *fakeWiki) Protect(_ context.Context, _, _, _, _ string) error {
	return f.protectErr
}

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestSite(t *testing.T, db *gorm.DB) *models.SiteModel {
	t.Helper()
	u := models.UserModel{Username: "owner", Name: "Owner", Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	s := models.SiteModel{Name: "Acme", Subdomain: "acme", WikiURL: "http://acme.test/api.php", UserID: u.ID}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create site: %v", err)
	}
	return &s
}

func newService(t *testing.T, fw *fakeWiki) (*page.Service, *gorm.DB, *models.SiteModel) {
	t.Helper()
	db := newTestDB(t)
	return page.NewService(db, fw, zap.NewNop()), db, newTestSite(t, db)
}

func TestSaveRejectsEmptyContentBeforeAnyStore(t *testing.T) {
	fw := &fakeWiki{}
	svc, db, site := newService(t, fw)

	for _, dto := range []*page.SaveDTO{
		{Title: "Home", Content: ""},
		{Title: "Home", Content: "   "},
		{Title: "", Content: "hello"},
	} {
		if _, err := svc.Save(context.Background(), site, site.UserID, dto); err == nil {
			t.Fatalf("Save(%+v) accepted an empty write", dto)
		}
	}

	if len(fw.saves) != 0 {
		t.Fatalf("wiki saw %d saves, want none", len(fw.saves))
	}
	var pages, revs int64
	db.Model(&models.PageModel{}).Count(&pages)
	db.Model(&models.PageRevisionModel{}).Count(&revs)
	if pages != 0 || revs != 0 {
		t.Fatalf("pages = %d, revisions = %d, want 0/0", pages, revs)
	}
}

func TestSaveCreatesPageAndRevision(t *testing.T) {
	fw := &fakeWiki{}
	svc, db, site := newService(t, fw)

	res, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Home",
		Content: "<p>hi</p>",
		Comment: "first",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !res.Mirrored {
		t.Error("Mirrored = false, want true")
	}
	if res.RevisionWarning != "" {
		t.Errorf("unexpected revision warning %q", res.RevisionWarning)
	}
	if len(fw.saves) != 1 || fw.saves[0] != "Home" {
		t.Errorf("wiki saves = %v", fw.saves)
	}

	var count int64
	db.Model(&models.PageRevisionModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("revision count = %d, want 1", count)
	}

	p, err := svc.Get(site, "Home")
	if err != nil || p == nil {
		t.Fatalf("Get after save: p=%v err=%v", p, err)
	}
	if !p.IsPublished || p.Format != models.PageFormatHTML {
		t.Errorf("page = %+v", p)
	}
}

func TestSaveSucceedsLocallyWhenWikiIsDown(t *testing.T) {
	fw := &fakeWiki{saveErr: errors.New("connection refused")}
	svc, _, site := newService(t, fw)

	res, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Home",
		Content: "durable",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.Mirrored {
		t.Error("Mirrored = true, want false when the wiki rejects the edit")
	}

	p, err := svc.Get(site, "Home")
	if err != nil || p == nil {
		t.Fatalf("page missing after wiki outage: p=%v err=%v", p, err)
	}
	if p.Content != "durable" {
		t.Errorf("content = %q", p.Content)
	}
}

func TestSaveUpsertsByTitle(t *testing.T) {
	fw := &fakeWiki{}
	svc, db, site := newService(t, fw)

	for _, content := range []string{"v1", "v2"} {
		if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
			Title:   "About",
			Content: content,
		}); err != nil {
			t.Fatalf("Save %q: %v", content, err)
		}
	}

	var pages int64
	db.Model(&models.PageModel{}).Where("site_id = ?", site.ID).Count(&pages)
	if pages != 1 {
		t.Fatalf("page rows = %d, want 1", pages)
	}
	var revs int64
	db.Model(&models.PageRevisionModel{}).Count(&revs)
	if revs != 2 {
		t.Fatalf("revision rows = %d, want 2", revs)
	}

	p, _ := svc.Get(site, "About")
	if p.Content != "v2" {
		t.Errorf("content = %q, want v2", p.Content)
	}
}

func TestSaveProtectedPageRejectsNonOwner(t *testing.T) {
	fw := &fakeWiki{}
	svc, db, site := newService(t, fw)

	if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Policy",
		Content: "locked",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.SetProtection(context.Background(), site, "Policy", true); err != nil {
		t.Fatalf("SetProtection: %v", err)
	}

	_, err := svc.Save(context.Background(), site, "someone-else", &page.SaveDTO{
		Title:   "Policy",
		Content: "overwrite",
	})
	if err == nil {
		t.Fatal("Save by non-owner succeeded on protected page")
	}
	if len(fw.saves) != 1 {
		t.Errorf("wiki saw %d saves, want 1 (rejected edit must not mirror)", len(fw.saves))
	}

	p, _ := svc.Get(site, "Policy")
	if p.Content != "locked" {
		t.Errorf("content = %q, protected page was modified", p.Content)
	}
	var revs int64
	db.Model(&models.PageRevisionModel{}).Count(&revs)
	if revs != 1 {
		t.Errorf("revision rows = %d, want 1", revs)
	}

	// The owner can still edit.
	if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Policy",
		Content: "owner edit",
	}); err != nil {
		t.Fatalf("owner Save on protected page: %v", err)
	}
}

func TestResolvePrefersPublishedLocalPage(t *testing.T) {
	fw := &fakeWiki{fetchHTML: "<p>remote</p>"}
	svc, _, site := newService(t, fw)

	if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Home",
		Content: "local wins",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	view, err := svc.Resolve(context.Background(), site, "Home")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Source != page.SourceLocal || view.Content != "local wins" {
		t.Fatalf("view = %+v", view)
	}
}

func TestResolveFallsBackToWiki(t *testing.T) {
	fw := &fakeWiki{fetchHTML: "<p>only on the wiki</p>"}
	svc, _, site := newService(t, fw)

	view, err := svc.Resolve(context.Background(), site, "Orphan")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Source != page.SourceRemote || view.Content != "<p>only on the wiki</p>" {
		t.Fatalf("view = %+v", view)
	}
	if view.Format != models.PageFormatHTML {
		t.Errorf("format = %q", view.Format)
	}
}

func TestResolveFallsBackToOldestPublishedPage(t *testing.T) {
	fw := &fakeWiki{fetchErr: errors.New("wiki down")}
	svc, _, site := newService(t, fw)

	for _, title := range []string{"First", "Second"} {
		if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
			Title:   title,
			Content: title + " body",
		}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	view, err := svc.Resolve(context.Background(), site, "Missing")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Source != page.SourceFallback || view.Title != "First" {
		t.Fatalf("view = %+v", view)
	}
}

func TestResolveEmptySite(t *testing.T) {
	fw := &fakeWiki{fetchErr: errors.New("wiki down")}
	svc, _, site := newService(t, fw)

	view, err := svc.Resolve(context.Background(), site, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Source != page.SourceEmpty {
		t.Fatalf("source = %q, want empty", view.Source)
	}
	if view.Title != page.DefaultTitle {
		t.Errorf("title = %q, want %q", view.Title, page.DefaultTitle)
	}
}

func TestResolveSkipsUnpublishedLocalPage(t *testing.T) {
	fw := &fakeWiki{fetchErr: errors.New("no wiki")}
	svc, _, site := newService(t, fw)

	unpublished := false
	if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:       "Draft",
		Content:     "secret",
		IsPublished: &unpublished,
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	view, err := svc.Resolve(context.Background(), site, "Draft")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Source == page.SourceLocal {
		t.Fatal("unpublished page served to the public")
	}
}

func TestDeleteKeepsWorkingWhenWikiIsDown(t *testing.T) {
	fw := &fakeWiki{deleteErr: errors.New("wiki down")}
	svc, _, site := newService(t, fw)

	if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Gone",
		Content: "x",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Delete(context.Background(), site, site.UserID, "Gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	p, err := svc.Get(site, "Gone")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != nil {
		t.Fatal("page still present after delete")
	}
}

func TestSetProtectionMirrorsBestEffort(t *testing.T) {
	fw := &fakeWiki{protectErr: errors.New("wiki down")}
	svc, _, site := newService(t, fw)

	if _, err := svc.Save(context.Background(), site, site.UserID, &page.SaveDTO{
		Title:   "Rules",
		Content: "x",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p, err := svc.SetProtection(context.Background(), site, "Rules", true)
	if err != nil {
		t.Fatalf("SetProtection: %v", err)
	}
	if !p.IsProtected {
		t.Fatal("local protection flag not set despite wiki outage")
	}
}
