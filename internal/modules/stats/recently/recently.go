// Package recently surfaces a user's latest activity across all of their
// sites: site creations and the local revision log, merged with each tenant
// wiki's recent-changes feed.
package recently

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"github.com/sitesmith/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxWikiSites = 5
)

// Gateway is the wiki client subset used for remote change feeds.
type Gateway interface {
	RecentChanges(ctx context.Context, apiURL string, limit int) ([]mediawiki.RecentChange, error)
}

// Entry is one line of the merged activity feed.
type Entry struct {
	Type    string    `json:"type"`
	Site    string    `json:"site"`
	Title   string    `json:"title"`
	User    string    `json:"user,omitempty"`
	Comment string    `json:"comment,omitempty"`
	IsMinor bool      `json:"is_minor"`
	Created time.Time `json:"created"`
}

const (
	typeEdit       = "edit"
	typeWikiEdit   = "wiki-edit"
	typeSiteCreate = "site-create"
)

type Service struct {
	db  *gorm.DB
	gw  Gateway
	log *zap.Logger
}

func NewService(db *gorm.DB, gw Gateway, log *zap.Logger) *Service {
	return &Service{db: db, gw: gw, log: log}
}

type localRow struct {
	CreatedAt time.Time
	Comment   string
	IsMinor   bool
	Title     string
	Subdomain string
	Username  string
}

// List returns the newest entries first. Wiki feeds are consulted for the
// user's most recently updated active sites only, and a feed failure just
// thins the result.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	var rows []localRow
	err := s.db.Table("page_revisions").
		Select("page_revisions.created_at, page_revisions.comment, page_revisions.is_minor, pages.title, sites.subdomain, users.username").
		Joins("JOIN pages ON pages.id = page_revisions.page_id AND pages.deleted_at IS NULL").
		Joins("JOIN sites ON sites.id = pages.site_id AND sites.deleted_at IS NULL").
		Joins("LEFT JOIN users ON users.id = page_revisions.user_id").
		Where("sites.user_id = ? AND page_revisions.deleted_at IS NULL", userID).
		Order("page_revisions.created_at DESC").
		Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			Type:    typeEdit,
			Site:    r.Subdomain,
			Title:   r.Title,
			User:    r.Username,
			Comment: r.Comment,
			IsMinor: r.IsMinor,
			Created: r.CreatedAt,
		})
	}

	var createdSites []models.SiteModel
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").Limit(limit).Find(&createdSites).Error; err != nil {
		return nil, err
	}
	for _, site := range createdSites {
		entries = append(entries, Entry{
			Type:    typeSiteCreate,
			Site:    site.Subdomain,
			Title:   site.Name,
			Comment: "website created: " + site.Subdomain,
			Created: site.CreatedAt,
		})
	}

	var sites []models.SiteModel
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").Limit(maxWikiSites).Find(&sites).Error; err != nil {
		return nil, err
	}
	for _, site := range sites {
		changes, cerr := s.gw.RecentChanges(ctx, site.WikiURL, limit)
		if cerr != nil {
			s.log.Debug("wiki recent changes failed",
				zap.String("site", site.Subdomain), zap.Error(cerr))
			continue
		}
		for _, ch := range changes {
			ts, _ := time.Parse(time.RFC3339, ch.Timestamp)
			entries = append(entries, Entry{
				Type:    typeWikiEdit,
				Site:    site.Subdomain,
				Title:   ch.Title,
				User:    ch.User,
				Comment: ch.Comment,
				IsMinor: ch.Minor,
				Created: ts,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.After(entries[j].Created)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/recently", authMW, h.list)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, entries)
}
