package models

// Storage backends for uploaded files. The kind is recorded explicitly so
// callers never have to infer it from the shape of Path.
const (
	FileStorageWiki  = "wiki"
	FileStorageS3    = "s3"
	FileStorageLocal = "local"
)

// PageFileModel is an uploaded asset attached to a page. Path is a remote URL
// for wiki/s3 storage and a site-relative path for local storage.
type PageFileModel struct {
	Base
	PageID       string `json:"page_id"       gorm:"index;not null"`
	UserID       string `json:"user_id"       gorm:"index;not null"`
	Filename     string `json:"filename"      gorm:"not null"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Storage      string `json:"storage"       gorm:"not null;default:local"`
	Path         string `json:"path"          gorm:"not null"`

	User *UserModel `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (PageFileModel) TableName() string { return "page_files" }
