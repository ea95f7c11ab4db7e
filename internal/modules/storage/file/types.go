package file

import (
	"context"
	"errors"
	"time"

	"github.com/sitesmith/core/internal/pkg/mediawiki"
)

// MaxUploadSize caps uploads before any storage backend is touched.
const MaxUploadSize = 10 << 20

// Gateway is the wiki client subset used for file mirroring.
type Gateway interface {
	UploadFile(ctx context.Context, apiURL, filename string, data []byte, comment string) (bool, error)
	FileInfo(ctx context.Context, apiURL, filename string) (*mediawiki.FileInfo, error)
}

type fileResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Storage      string    `json:"storage"`
	URL          string    `json:"url"`
	Created      time.Time `json:"created"`
}

var (
	errFileTooLarge   = errors.New("file exceeds the upload size limit")
	errFileTypeDenied = errors.New("file type is not allowed")
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}
