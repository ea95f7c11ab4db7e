package file

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// buildFileName generates a collision-resistant filename that preserves the
// original extension.
func buildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

// detectContentType sniffs the MIME type from the declared header, extension,
// or raw payload bytes, in that priority order.
func detectContentType(filename string, payload []byte, declared string) string {
	if ct := strings.TrimSpace(declared); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
	}
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			if mt, _, err := mime.ParseMediaType(guessed); err == nil {
				return mt
			}
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}

// validateUpload runs the pre-storage checks shared by every backend.
func validateUpload(mimeType string, size int64) error {
	if size > MaxUploadSize {
		return errFileTooLarge
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return errFileTypeDenied
	}
	return nil
}
