package site

import (
	"context"
	"errors"
	"strings"

	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	farm *mediawiki.Farm
	log  *zap.Logger
}

func NewService(db *gorm.DB, farm *mediawiki.Farm, log *zap.Logger) *Service {
	return &Service{db: db, farm: farm, log: log}
}

func (s *Service) Create(ctx context.Context, userID string, dto *CreateDTO) (*models.SiteModel, error) {
	sub := strings.ToLower(strings.TrimSpace(dto.Subdomain))
	if !subdomainRe.MatchString(sub) {
		return nil, errSubdomainInvalid
	}
	if _, reserved := reservedSubdomains[sub]; reserved {
		return nil, errSubdomainReserved
	}

	var count int64
	if err := s.db.Model(&models.SiteModel{}).
		Where("subdomain = ?", sub).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errSubdomainTaken
	}

	// Provisioning the tenant wiki is best-effort. The derived endpoint is
	// recorded either way so the mirror starts working once the wiki exists.
	wikiURL, err := s.farm.CreateSite(ctx, sub)
	if err != nil {
		s.log.Warn("wiki farm create failed", zap.String("subdomain", sub), zap.Error(err))
	}

	site := models.SiteModel{
		Name:      dto.Name,
		Subdomain: sub,
		WikiURL:   wikiURL,
		UserID:    userID,
	}
	return &site, s.db.Create(&site).Error
}

func (s *Service) ListByUser(userID string) ([]models.SiteModel, error) {
	var sites []models.SiteModel
	return sites, s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&sites).Error
}

func (s *Service) Get(userID, siteID string) (*models.SiteModel, error) {
	var site models.SiteModel
	if err := s.db.Where("id = ? AND user_id = ?", siteID, userID).
		First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

// GetBySubdomain resolves a tenant for public rendering. Suspended sites are
// not resolved.
func (s *Service) GetBySubdomain(subdomain string) (*models.SiteModel, error) {
	var site models.SiteModel
	if err := s.db.Where("subdomain = ? AND is_active = ?", strings.ToLower(subdomain), true).
		First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

func (s *Service) Update(userID, siteID string, dto *UpdateDTO) (*models.SiteModel, error) {
	site, err := s.Get(userID, siteID)
	if err != nil || site == nil {
		return site, err
	}

	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Domain != nil {
		updates["domain"] = *dto.Domain
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.Model(site).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID, siteID)
}

// Manage applies a lifecycle action locally, then mirrors it to the wiki farm
// best-effort.
func (s *Service) Manage(ctx context.Context, userID, siteID, action string) error {
	site, err := s.Get(userID, siteID)
	if err != nil {
		return err
	}
	if site == nil {
		return gorm.ErrRecordNotFound
	}

	switch action {
	case mediawiki.FarmActionSuspend:
		err = s.db.Model(site).Update("is_active", false).Error
	case mediawiki.FarmActionActivate:
		err = s.db.Model(site).Update("is_active", true).Error
	case mediawiki.FarmActionDelete:
		err = s.db.Delete(site).Error
	default:
		return errors.New("unknown action: " + action)
	}
	if err != nil {
		return err
	}

	if ferr := s.farm.ManageSite(ctx, site.WikiURL, action); ferr != nil {
		s.log.Warn("wiki farm manage failed",
			zap.String("subdomain", site.Subdomain),
			zap.String("action", action), zap.Error(ferr))
	}
	return nil
}
