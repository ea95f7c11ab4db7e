package search

import (
	"context"
	"strings"
	"time"

	"github.com/sitesmith/core/internal/config"
	"github.com/sitesmith/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers per-site search queries from the page store, topped up
// with hits from the tenant wiki's index. Local hits win on title collision.
// It also serves the platform-wide site discovery search.
type Service struct {
	db  *gorm.DB
	gw  Gateway
	cfg *config.AppConfig
	log *zap.Logger
}

func NewService(db *gorm.DB, gw Gateway, cfg *config.AppConfig, log *zap.Logger) *Service {
	return &Service{db: db, gw: gw, cfg: cfg, log: log}
}

func (s *Service) Search(ctx context.Context, site *models.SiteModel, query string, limit int) ([]Hit, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	pattern := "%" + escapeLike(query) + "%"
	var pages []models.PageModel
	if err := s.db.Where("site_id = ? AND is_published = ?", site.ID, true).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("updated_at DESC").Limit(limit).Find(&pages).Error; err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(pages))
	seen := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		hits = append(hits, Hit{
			Title:   p.Title,
			Snippet: makeSnippet(p.Content, query),
			Source:  sourceLocal,
		})
		seen[p.Title] = struct{}{}
	}

	remote, err := s.gw.Search(ctx, site.WikiURL, query, limit)
	if err != nil {
		s.log.Debug("wiki search failed",
			zap.String("site", site.Subdomain),
			zap.String("query", query), zap.Error(err))
		return hits, nil
	}
	for _, r := range remote {
		if _, dup := seen[r.Title]; dup {
			continue
		}
		hits = append(hits, Hit{
			Title:   r.Title,
			Snippet: stripTags(r.Snippet),
			Source:  sourceWiki,
		})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

type siteRow struct {
	Name      string
	Subdomain string
	Username  string
	CreatedAt time.Time
}

// SearchSites finds published sites by name or subdomain and tops the list up
// with hits from the platform wiki's index when one is configured. A wiki
// failure degrades to local results only.
func (s *Service) SearchSites(ctx context.Context, query string, limit int) ([]SiteHit, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	pattern := "%" + escapeLike(query) + "%"
	var rows []siteRow
	err := s.db.Table("sites").
		Select("sites.name, sites.subdomain, sites.created_at, users.username").
		Joins("LEFT JOIN users ON users.id = sites.user_id").
		Where("sites.is_active = ? AND sites.deleted_at IS NULL", true).
		Where("sites.name LIKE ? OR sites.subdomain LIKE ?", pattern, pattern).
		Order("sites.created_at DESC").
		Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]SiteHit, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = r.Subdomain
		}
		hits = append(hits, SiteHit{
			Name:      name,
			Subdomain: r.Subdomain,
			Owner:     r.Username,
			URL:       s.cfg.SubdomainURL(r.Subdomain),
			Source:    sourceLocal,
			Created:   r.CreatedAt,
		})
	}

	if s.cfg.Wiki.FarmAPI == "" || len(hits) >= limit {
		return hits, nil
	}
	remote, err := s.gw.Search(ctx, s.cfg.Wiki.FarmAPI, query, limit-len(hits))
	if err != nil {
		s.log.Debug("platform wiki search failed",
			zap.String("query", query), zap.Error(err))
		return hits, nil
	}
	for _, r := range remote {
		hits = append(hits, SiteHit{
			Name:        r.Title,
			Description: stripTags(r.Snippet),
			Source:      sourceWiki,
		})
	}
	return hits, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
