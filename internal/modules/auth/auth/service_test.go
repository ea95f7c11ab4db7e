package auth_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sitesmith/core/internal/database"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/auth/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newService(t *testing.T) (*auth.Service, *gorm.DB) {
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
	return auth.NewService(db), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db := newService(t)

	u, err := svc.Register(&auth.RegisterDTO{Username: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Password == "hunter22" {
		t.Fatal("password stored in plain text")
	}
	if u.Name != "alice" {
		t.Fatalf("name = %q, want username fallback", u.Name)
	}

	token, err := svc.Login("alice", "hunter22", "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	var stored models.UserModel
	if err := db.Where("username = ?", "alice").First(&stored).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.LastLoginTime == nil || stored.LastLoginIP != "127.0.0.1" {
		t.Fatalf("login metadata not recorded: %+v", stored)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.Register(&auth.RegisterDTO{Username: "alice", Password: "hunter22"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(&auth.RegisterDTO{Username: "alice", Password: "other123"}); err == nil {
		t.Fatal("duplicate username accepted")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("failed logins are rate limited by a delay")
	}
	svc, _ := newService(t)

	if _, err := svc.Register(&auth.RegisterDTO{Username: "alice", Password: "hunter22"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login("alice", "wrong", "127.0.0.1", "test"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestAPITokenLifecycle(t *testing.T) {
	svc, _ := newService(t)

	u, err := svc.Register(&auth.RegisterDTO{Username: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tok, err := svc.CreateToken(u.ID, &auth.CreateTokenDTO{Name: "ci"})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if !strings.HasPrefix(tok.Token, "sst") {
		t.Fatalf("token = %q, want sst prefix", tok.Token)
	}

	tokens, err := svc.ListTokens(u.ID)
	if err != nil {
		t.Fatalf("ListTokens: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("tokens = %+v, want 1", tokens)
	}

	if err := svc.DeleteToken(u.ID, tok.ID); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := svc.DeleteToken(u.ID, tok.ID); err == nil {
		t.Fatal("second delete should report missing token")
	}
}
