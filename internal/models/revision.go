package models

// PageRevisionModel is an immutable snapshot of a page's content.
// Rows are append-only; restoring an old revision creates a new row.
type PageRevisionModel struct {
	Base
	PageID  string `json:"page_id" gorm:"index;not null"`
	UserID  string `json:"user_id" gorm:"index;not null"`
	Content string `json:"content" gorm:"type:longtext"`
	Comment string `json:"comment"`
	IsMinor bool   `json:"is_minor" gorm:"default:false"`

	User *UserModel `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (PageRevisionModel) TableName() string { return "page_revisions" }
