package revision

import (
	"context"
	"time"

	"github.com/sitesmith/core/internal/pkg/mediawiki"
)

// RemoteIDPrefix marks revision ids that live on the tenant wiki rather than
// in the local store.
const RemoteIDPrefix = "mw:"

// Gateway is the wiki client subset used for remote history.
type Gateway interface {
	PageHistory(ctx context.Context, apiURL, title string, limit int) ([]mediawiki.Revision, error)
	RevisionContent(ctx context.Context, apiURL string, revID int64) (string, error)
}

// Entry is one line of a page's merged history. Remote entries carry the
// RemoteIDPrefix and the wiki username instead of a local user.
type Entry struct {
	ID      string    `json:"id"`
	Source  string    `json:"source"`
	User    string    `json:"user,omitempty"`
	Comment string    `json:"comment,omitempty"`
	IsMinor bool      `json:"is_minor"`
	Created time.Time `json:"created"`
}

const (
	sourceLocal = "local"
	sourceWiki  = "wiki"
)
