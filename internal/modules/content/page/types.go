package page

import (
	"context"
	"errors"
	"time"

	"github.com/sitesmith/core/internal/pkg/mediawiki"
)

// DefaultTitle is served when a tenant request does not name a page.
const DefaultTitle = "Home"

// Gateway is the slice of the wiki client the page module uses. The zero
// cost of a missing or unreachable wiki is the point: every call through it
// is advisory.
type Gateway interface {
	FetchPage(ctx context.Context, apiURL, title string) (string, error)
	SavePage(ctx context.Context, apiURL, title, text, summary string, minor bool) (*mediawiki.EditResult, error)
	DeletePage(ctx context.Context, apiURL, title string) error
	Protect(ctx context.Context, apiURL, title, level, reason string) error
}

type SaveDTO struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Format      string `json:"format" binding:"omitempty,oneof=html markdown"`
	Slug        string `json:"slug"`
	IsPublished *bool  `json:"is_published"`
	Comment     string `json:"comment"`
	IsMinor     bool   `json:"is_minor"`
}

type ProtectDTO struct {
	Protected *bool `json:"protected" binding:"required"`
}

// SaveResult reports the durable outcome plus the advisory ones. Mirrored is
// false when the wiki rejected or never saw the edit; RevisionWarning is set
// when the page row was written but its revision row was not.
type SaveResult struct {
	Page            *pageResponse `json:"page"`
	Mirrored        bool          `json:"mirrored"`
	RevisionWarning string        `json:"revision_warning,omitempty"`
}

// Page view sources for the read path.
const (
	SourceLocal    = "local"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
)

// View is what a tenant page request resolves to. Content is raw in the
// page's format for local sources and rendered HTML for remote ones.
type View struct {
	Title    string
	Content  string
	Format   string
	Source   string
	Modified time.Time
}

type pageResponse struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"site_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug,omitempty"`
	Content     string    `json:"content"`
	Format      string    `json:"format"`
	IsPublished bool      `json:"is_published"`
	IsProtected bool      `json:"is_protected"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

var (
	errPageProtected  = errors.New("page is protected")
	errEmptyPageWrite = errors.New("title and content are required")
)
