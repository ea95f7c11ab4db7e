package models

// SiteModel is a tenant website identified by a unique subdomain.
// The remote wiki mirror for the tenant is reachable at WikiURL.
type SiteModel struct {
	Base
	Name      string `json:"name"      gorm:"not null"`
	Subdomain string `json:"subdomain" gorm:"uniqueIndex;not null"`
	Domain    string `json:"domain"`
	WikiURL   string `json:"wiki_url"`
	IsActive  bool   `json:"is_active" gorm:"default:true;index"`
	UserID    string `json:"user_id"   gorm:"index;not null"`

	Pages []PageModel `json:"pages,omitempty" gorm:"foreignKey:SiteID"`
}

func (SiteModel) TableName() string { return "sites" }
