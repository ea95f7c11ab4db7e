package site_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sitesmith/core/internal/database"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/site"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func deriveURL(sub string) string { return "http://" + sub + ".example.com/api.php" }

func newFixture(t *testing.T, farmAPI string) (*site.Service, *gorm.DB, string) {
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

	farm := mediawiki.NewFarm(mediawiki.NewClient(2*time.Second), farmAPI, "", deriveURL)
	return site.NewService(db, farm, zap.NewNop()), db, u.ID
}

func TestCreateDerivesWikiURL(t *testing.T) {
	svc, _, userID := newFixture(t, "")

	s, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "Acme", Subdomain: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Subdomain != "acme" {
		t.Errorf("subdomain = %q, want lowercased", s.Subdomain)
	}
	if s.WikiURL != "http://acme.example.com/api.php" {
		t.Errorf("wiki url = %q", s.WikiURL)
	}
	if !s.IsActive {
		t.Error("new site not active")
	}
}

func TestCreateSurvivesFarmOutage(t *testing.T) {
	// Nothing listens here; provisioning must fail without failing the create.
	svc, _, userID := newFixture(t, "http://127.0.0.1:1/api.php")

	s, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.WikiURL != "http://acme.example.com/api.php" {
		t.Errorf("wiki url = %q, want derived endpoint despite farm outage", s.WikiURL)
	}
}

func TestCreateRejectsBadSubdomains(t *testing.T) {
	svc, _, userID := newFixture(t, "")

	for _, sub := range []string{"", "UPPER CASE", "has_underscore", "-leading", "trailing-", "a.b", "www", "api"} {
		if _, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "x", Subdomain: sub}); err == nil {
			t.Errorf("subdomain %q accepted", sub)
		}
	}
}

func TestCreateRejectsDuplicateSubdomain(t *testing.T) {
	svc, _, userID := newFixture(t, "")

	if _, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "a", Subdomain: "acme"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "b", Subdomain: "acme"}); err == nil {
		t.Fatal("duplicate subdomain accepted")
	}
}

func TestManageSuspendHidesSiteFromPublicResolution(t *testing.T) {
	svc, _, userID := newFixture(t, "")

	s, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, _ := svc.GetBySubdomain("acme"); got == nil {
		t.Fatal("active site not resolvable")
	}

	if err := svc.Manage(context.Background(), userID, s.ID, mediawiki.FarmActionSuspend); err != nil {
		t.Fatalf("Manage suspend: %v", err)
	}
	if got, _ := svc.GetBySubdomain("acme"); got != nil {
		t.Fatal("suspended site still resolvable")
	}

	if err := svc.Manage(context.Background(), userID, s.ID, mediawiki.FarmActionActivate); err != nil {
		t.Fatalf("Manage activate: %v", err)
	}
	if got, _ := svc.GetBySubdomain("acme"); got == nil {
		t.Fatal("reactivated site not resolvable")
	}
}

func TestManageDelete(t *testing.T) {
	svc, _, userID := newFixture(t, "")

	s, err := svc.Create(context.Background(), userID, &site.CreateDTO{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Manage(context.Background(), userID, s.ID, mediawiki.FarmActionDelete); err != nil {
		t.Fatalf("Manage delete: %v", err)
	}
	if got, _ := svc.Get(userID, s.ID); got != nil {
		t.Fatal("deleted site still listed for its owner")
	}
}
