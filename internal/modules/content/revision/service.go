package revision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/page"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const remoteHistoryLimit = 50

// Service exposes a page's merged edit history: local revisions are the
// durable record, wiki revisions are advisory extras that may cover edits
// made directly on the wiki.
type Service struct {
	db    *gorm.DB
	gw    Gateway
	pages *page.Service
	log   *zap.Logger
}

func NewService(db *gorm.DB, gw Gateway, pages *page.Service, log *zap.Logger) *Service {
	return &Service{db: db, gw: gw, pages: pages, log: log}
}

// List returns the merged history for (site, title), newest first. A wiki
// outage degrades the list to local entries only.
func (s *Service) List(ctx context.Context, site *models.SiteModel, title string) ([]Entry, error) {
	p, err := s.pages.Get(site, title)
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	if p != nil {
		var revs []models.PageRevisionModel
		if err := s.db.Preload("User").Where("page_id = ?", p.ID).
			Order("created_at DESC").Find(&revs).Error; err != nil {
			return nil, err
		}
		for _, r := range revs {
			e := Entry{
				ID:      r.ID,
				Source:  sourceLocal,
				Comment: r.Comment,
				IsMinor: r.IsMinor,
				Created: r.CreatedAt,
			}
			if r.User != nil {
				e.User = r.User.Username
			}
			entries = append(entries, e)
		}
	}

	remote, rerr := s.gw.PageHistory(ctx, site.WikiURL, title, remoteHistoryLimit)
	if rerr != nil {
		s.log.Debug("wiki history fetch failed",
			zap.String("site", site.Subdomain),
			zap.String("title", title), zap.Error(rerr))
	}
	for _, r := range remote {
		ts, _ := time.Parse(time.RFC3339, r.Timestamp)
		entries = append(entries, Entry{
			ID:      fmt.Sprintf("%s%d", RemoteIDPrefix, r.RevID),
			Source:  sourceWiki,
			User:    r.User,
			Comment: r.Comment,
			IsMinor: r.Minor,
			Created: ts,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.After(entries[j].Created)
	})
	return entries, nil
}

// Content fetches the full text of a single revision, local or remote by id
// shape. Returns ("", nil) when the revision does not exist or the wiki
// cannot serve it.
func (s *Service) Content(ctx context.Context, site *models.SiteModel, title, revID string) (string, error) {
	if strings.HasPrefix(revID, RemoteIDPrefix) {
		n, err := strconv.ParseInt(strings.TrimPrefix(revID, RemoteIDPrefix), 10, 64)
		if err != nil {
			return "", fmt.Errorf("bad remote revision id %q", revID)
		}
		content, rerr := s.gw.RevisionContent(ctx, site.WikiURL, n)
		if rerr != nil {
			s.log.Debug("wiki revision fetch failed",
				zap.String("site", site.Subdomain),
				zap.String("rev", revID), zap.Error(rerr))
			return "", nil
		}
		return content, nil
	}

	p, err := s.pages.Get(site, title)
	if err != nil || p == nil {
		return "", err
	}
	var r models.PageRevisionModel
	if err := s.db.Where("id = ? AND page_id = ?", revID, p.ID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return r.Content, nil
}

// Restore saves a past revision's content as a new edit. The restored
// revision is untouched; history only ever grows.
func (s *Service) Restore(ctx context.Context, site *models.SiteModel, actorID, title, revID string) (*page.SaveResult, error) {
	content, err := s.Content(ctx, site, title, revID)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, gorm.ErrRecordNotFound
	}

	return s.pages.Save(ctx, site, actorID, &page.SaveDTO{
		Title:   title,
		Content: content,
		Comment: "restored revision " + revID,
	})
}
