package mediawiki

import "fmt"

// APIError is an error reported by the remote wiki's action API.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("mediawiki: %s: %s", e.Code, e.Info)
	}
	return fmt.Sprintf("mediawiki: %s", e.Code)
}

// EditResult is the outcome of a successful edit action.
type EditResult struct {
	Result   string `json:"result"`
	PageID   int64  `json:"pageid"`
	Title    string `json:"title"`
	OldRevID int64  `json:"oldrevid"`
	NewRevID int64  `json:"newrevid"`
}

// Revision is a remote revision entry from prop=revisions.
type Revision struct {
	RevID     int64  `json:"revid"`
	ParentID  int64  `json:"parentid"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Comment   string `json:"comment"`
	Content   string `json:"content"`
	Minor     bool   `json:"minor"`
	Size      int64  `json:"size"`
}

// FileInfo describes an uploaded file from prop=imageinfo.
type FileInfo struct {
	URL      string `json:"url"`
	DescURL  string `json:"descriptionurl"`
	Mime     string `json:"mime"`
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ThumbURL string `json:"thumburl"`
}

// SearchResult is a full-text search hit from list=search.
type SearchResult struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Size      int64  `json:"size"`
	WordCount int    `json:"wordcount"`
	Timestamp string `json:"timestamp"`
}

// RecentChange is an entry from list=recentchanges.
type RecentChange struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	User      string `json:"user"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
	RevID     int64  `json:"revid"`
	OldRevID  int64  `json:"old_revid"`
	Minor     bool   `json:"minor"`
}
