package search_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sitesmith/core/internal/config"
	"github.com/sitesmith/core/internal/database"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/stats/search"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeWiki struct {
	hits []mediawiki.SearchResult
	err  error
}

func (f *fakeWiki) Search(_ context.Context, _, _ string, _ int) ([]mediawiki.SearchResult, error) {
	return f.hits, f.err
}

func newFixture(t *testing.T, fw *fakeWiki) (*search.Service, *models.SiteModel) {
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

	pages := []models.PageModel{
		{SiteID: site.ID, Title: "Welcome", Content: "<p>hello world</p>", Format: models.PageFormatHTML, IsPublished: true},
		{SiteID: site.ID, Title: "Hidden", Content: "hello from a draft", Format: models.PageFormatHTML, IsPublished: false},
	}
	for i := range pages {
		if err := db.Create(&pages[i]).Error; err != nil {
			t.Fatalf("create page: %v", err)
		}
	}
	cfg := &config.AppConfig{
		Protocol:   "http",
		BaseDomain: "example.test",
		Wiki:       config.WikiConfig{FarmAPI: "http://wiki.example.test/api.php"},
	}
	return search.NewService(db, fw, cfg, zap.NewNop()), &site
}

func TestSearchMergesLocalAndWikiHits(t *testing.T) {
	fw := &fakeWiki{hits: []mediawiki.SearchResult{
		{Title: "Welcome", Snippet: "duplicate of a local page"},
		{Title: "WikiOnly", Snippet: "<span>hello</span> there"},
	}}
	svc, site := newFixture(t, fw)

	hits, err := svc.Search(context.Background(), site, "hello", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %+v, want 2", hits)
	}
	if hits[0].Title != "Welcome" || hits[0].Source != "local" {
		t.Fatalf("hits[0] = %+v", hits[0])
	}
	if hits[1].Title != "WikiOnly" || hits[1].Source != "wiki" {
		t.Fatalf("hits[1] = %+v", hits[1])
	}
	if hits[1].Snippet != "hello there" {
		t.Errorf("wiki snippet = %q, markup not stripped", hits[1].Snippet)
	}
}

func TestSearchExcludesUnpublishedPages(t *testing.T) {
	svc, site := newFixture(t, &fakeWiki{})

	hits, err := svc.Search(context.Background(), site, "draft", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.Title == "Hidden" {
			t.Fatal("unpublished page leaked into search results")
		}
	}
}

func TestSearchSurvivesWikiOutage(t *testing.T) {
	svc, site := newFixture(t, &fakeWiki{err: errors.New("wiki down")})

	hits, err := svc.Search(context.Background(), site, "hello", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Source != "local" {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestSearchSitesFindsLocalSites(t *testing.T) {
	svc, _ := newFixture(t, &fakeWiki{})

	hits, err := svc.SearchSites(context.Background(), "acme", 10)
	if err != nil {
		t.Fatalf("SearchSites: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v, want 1", hits)
	}
	h := hits[0]
	if h.Name != "Acme" || h.Subdomain != "acme" || h.Owner != "owner" || h.Source != "local" {
		t.Fatalf("hit = %+v", h)
	}
	if h.URL != "http://acme.example.test" {
		t.Fatalf("url = %q", h.URL)
	}
}

func TestSearchSitesMergesPlatformWikiHits(t *testing.T) {
	fw := &fakeWiki{hits: []mediawiki.SearchResult{
		{Title: "Acme Corp", Snippet: "an <b>acme</b> site"},
	}}
	svc, _ := newFixture(t, fw)

	hits, err := svc.SearchSites(context.Background(), "acme", 10)
	if err != nil {
		t.Fatalf("SearchSites: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %+v, want 2", hits)
	}
	if hits[1].Source != "wiki" || hits[1].Description != "an acme site" {
		t.Fatalf("hits[1] = %+v", hits[1])
	}
}

func TestSearchSitesSurvivesPlatformWikiOutage(t *testing.T) {
	svc, _ := newFixture(t, &fakeWiki{err: errors.New("wiki down")})

	hits, err := svc.SearchSites(context.Background(), "acme", 10)
	if err != nil {
		t.Fatalf("SearchSites: %v", err)
	}
	if len(hits) != 1 || hits[0].Source != "local" {
		t.Fatalf("hits = %+v", hits)
	}
}
