package site

import (
	"errors"
	"regexp"
	"time"
)

type CreateDTO struct {
	Name      string `json:"name" binding:"required"`
	Subdomain string `json:"subdomain" binding:"required"`
}

type UpdateDTO struct {
	Name     *string `json:"name"`
	Domain   *string `json:"domain"`
	IsActive *bool   `json:"is_active"`
}

type ManageDTO struct {
	Action string `json:"action" binding:"required,oneof=suspend activate delete"`
}

type siteResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Domain    string    `json:"domain,omitempty"`
	URL       string    `json:"url"`
	WikiURL   string    `json:"wiki_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}

var (
	errSubdomainTaken    = errors.New("subdomain already taken")
	errSubdomainInvalid  = errors.New("invalid subdomain")
	errSubdomainReserved = errors.New("subdomain is reserved")
)

// DNS label, lowercase only.
var subdomainRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

var reservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "admin": {}, "mail": {}, "static": {}, "uploads": {},
}
