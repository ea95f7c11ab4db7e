package models

// Page content formats.
const (
	PageFormatHTML     = "html"
	PageFormatMarkdown = "markdown"
)

// PageModel is a named document within a Site. Title doubles as the remote
// wiki page title, which is the join key between local and remote state.
type PageModel struct {
	Base
	SiteID      string `json:"site_id"      gorm:"index:idx_pages_site_title;not null"`
	Title       string `json:"title"        gorm:"index:idx_pages_site_title;not null"`
	Slug        string `json:"slug"         gorm:"index"`
	Content     string `json:"content"      gorm:"type:longtext"`
	Format      string `json:"format"       gorm:"default:html"`
	IsPublished bool   `json:"is_published" gorm:"default:true"`
	IsProtected bool   `json:"is_protected" gorm:"default:false"`

	Revisions []PageRevisionModel `json:"revisions,omitempty" gorm:"foreignKey:PageID"`
	Files     []PageFileModel     `json:"files,omitempty"     gorm:"foreignKey:PageID"`
}

func (PageModel) TableName() string { return "pages" }
