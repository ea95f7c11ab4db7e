package page

import (
	"context"
	"errors"
	"strings"

	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/pkg/pagination"
	"github.com/sitesmith/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service reconciles the page store against each tenant's wiki. The local
// database is authoritative; the wiki is a best-effort mirror that is written
// through on every mutation and only consulted on reads when the local store
// has nothing to serve.
type Service struct {
	db  *gorm.DB
	gw  Gateway
	log *zap.Logger
}

func NewService(db *gorm.DB, gw Gateway, log *zap.Logger) *Service {
	return &Service{db: db, gw: gw, log: log}
}

// Get returns the page row for (site, title), nil when absent.
func (s *Service) Get(site *models.SiteModel, title string) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.db.Where("site_id = ? AND title = ?", site.ID, title).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(site *models.SiteModel, q pagination.Query) ([]models.PageModel, response.Pagination, error) {
	var pages []models.PageModel
	query := s.db.Model(&models.PageModel{}).
		Where("site_id = ?", site.ID).Order("created_at ASC")
	pg, err := pagination.Paginate(query, q, &pages)
	return pages, pg, err
}

// Resolve serves a tenant page request. A published local page wins; a page
// that exists only on the wiki is served from there without being persisted;
// failing both, the site's oldest published page stands in. An empty view
// means the site has no servable content at all.
func (s *Service) Resolve(ctx context.Context, site *models.SiteModel, title string) (*View, error) {
	if title == "" {
		title = DefaultTitle
	}

	p, err := s.Get(site, title)
	if err != nil {
		return nil, err
	}
	if p != nil && p.IsPublished {
		return &View{
			Title:    p.Title,
			Content:  p.Content,
			Format:   p.Format,
			Source:   SourceLocal,
			Modified: p.UpdatedAt,
		}, nil
	}

	if html, rerr := s.gw.FetchPage(ctx, site.WikiURL, title); rerr == nil && html != "" {
		return &View{
			Title:   title,
			Content: html,
			Format:  models.PageFormatHTML,
			Source:  SourceRemote,
		}, nil
	} else if rerr != nil {
		s.log.Debug("wiki fetch failed",
			zap.String("site", site.Subdomain),
			zap.String("title", title), zap.Error(rerr))
	}

	var oldest models.PageModel
	err = s.db.Where("site_id = ? AND is_published = ?", site.ID, true).
		Order("created_at ASC").First(&oldest).Error
	if err == nil {
		return &View{
			Title:    oldest.Title,
			Content:  oldest.Content,
			Format:   oldest.Format,
			Source:   SourceFallback,
			Modified: oldest.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &View{Title: title, Source: SourceEmpty}, nil
}

// Save upserts a page by (site, title). The wiki mirror is written first so
// the result can report whether the edit landed remotely, but only the local
// write decides success. The revision row is appended after the page row; if
// that append fails the save still succeeds with a warning.
func (s *Service) Save(ctx context.Context, site *models.SiteModel, actorID string, dto *SaveDTO) (*SaveResult, error) {
	if strings.TrimSpace(dto.Title) == "" || strings.TrimSpace(dto.Content) == "" {
		return nil, errEmptyPageWrite
	}

	existing, err := s.Get(site, dto.Title)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsProtected && actorID != site.UserID {
		return nil, errPageProtected
	}

	mirrored := true
	if _, merr := s.gw.SavePage(ctx, site.WikiURL, dto.Title, dto.Content, dto.Comment, dto.IsMinor); merr != nil {
		mirrored = false
		s.log.Warn("wiki mirror save failed",
			zap.String("site", site.Subdomain),
			zap.String("title", dto.Title), zap.Error(merr))
	}

	format := dto.Format
	if format == "" {
		if existing != nil {
			format = existing.Format
		} else {
			format = models.PageFormatHTML
		}
	}

	var p *models.PageModel
	if existing != nil {
		updates := map[string]any{
			"content": dto.Content,
			"format":  format,
		}
		if dto.Slug != "" {
			updates["slug"] = dto.Slug
		}
		if dto.IsPublished != nil {
			updates["is_published"] = *dto.IsPublished
		}
		if err := s.db.Model(existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		p, err = s.Get(site, dto.Title)
		if err != nil {
			return nil, err
		}
	} else {
		published := true
		if dto.IsPublished != nil {
			published = *dto.IsPublished
		}
		p = &models.PageModel{
			SiteID:      site.ID,
			Title:       dto.Title,
			Slug:        dto.Slug,
			Content:     dto.Content,
			Format:      format,
			IsPublished: published,
		}
		if err := s.db.Create(p).Error; err != nil {
			return nil, err
		}
	}

	result := &SaveResult{Page: toResponse(p), Mirrored: mirrored}

	rev := models.PageRevisionModel{
		PageID:  p.ID,
		UserID:  actorID,
		Content: dto.Content,
		Comment: dto.Comment,
		IsMinor: dto.IsMinor,
	}
	if rerr := s.db.Create(&rev).Error; rerr != nil {
		s.log.Error("revision append failed",
			zap.String("page", p.ID), zap.Error(rerr))
		result.RevisionWarning = "page saved but revision history was not recorded"
	}

	return result, nil
}

// Delete removes the page locally and mirrors the deletion best-effort.
// Revisions are kept; the history of a deleted page is still history.
func (s *Service) Delete(ctx context.Context, site *models.SiteModel, actorID, title string) error {
	p, err := s.Get(site, title)
	if err != nil {
		return err
	}
	if p == nil {
		return gorm.ErrRecordNotFound
	}
	if p.IsProtected && actorID != site.UserID {
		return errPageProtected
	}

	if merr := s.gw.DeletePage(ctx, site.WikiURL, title); merr != nil {
		s.log.Warn("wiki mirror delete failed",
			zap.String("site", site.Subdomain),
			zap.String("title", title), zap.Error(merr))
	}

	return s.db.Delete(p).Error
}

// SetProtection flips the local protection flag, then mirrors it.
func (s *Service) SetProtection(ctx context.Context, site *models.SiteModel, title string, protected bool) (*models.PageModel, error) {
	p, err := s.Get(site, title)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if err := s.db.Model(p).Update("is_protected", protected).Error; err != nil {
		return nil, err
	}

	level := "all"
	if protected {
		level = "sysop"
	}
	if merr := s.gw.Protect(ctx, site.WikiURL, title, level, "protection updated"); merr != nil {
		s.log.Warn("wiki mirror protect failed",
			zap.String("site", site.Subdomain),
			zap.String("title", title), zap.Error(merr))
	}

	return s.Get(site, title)
}
