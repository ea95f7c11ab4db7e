package search

import (
	"context"
	"time"

	"github.com/sitesmith/core/internal/pkg/mediawiki"
)

const defaultLimit = 20

// Gateway is the wiki client subset used for remote full-text search.
type Gateway interface {
	Search(ctx context.Context, apiURL, query string, limit int) ([]mediawiki.SearchResult, error)
}

// Hit is one search result. Local hits come from the page store, wiki hits
// from the tenant wiki's full-text index.
type Hit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

const (
	sourceLocal = "local"
	sourceWiki  = "wiki"
)

// SiteHit is one result of the platform-wide site discovery search.
type SiteHit struct {
	Name        string    `json:"name"`
	Subdomain   string    `json:"subdomain,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source"`
	Created     time.Time `json:"created"`
}
