package mediawiki

import (
	"context"
	"net/url"
)

// Valid farm lifecycle actions.
const (
	FarmActionSuspend  = "suspend"
	FarmActionActivate = "activate"
	FarmActionDelete   = "delete"
)

// Farm manages tenant wiki lifecycle against the platform wiki farm. All farm
// operations are best-effort infrastructure: callers log failures and proceed
// with the local, authoritative state change.
type Farm struct {
	client     *Client
	apiURL     string
	adminToken string
	deriveURL  func(subdomain string) string
}

// NewFarm creates a farm handle. deriveURL maps a subdomain to its tenant
// wiki api.php endpoint.
func NewFarm(client *Client, apiURL, adminToken string, deriveURL func(string) string) *Farm {
	return &Farm{client: client, apiURL: apiURL, adminToken: adminToken, deriveURL: deriveURL}
}

// CreateSite provisions a tenant wiki and returns its api endpoint. The
// endpoint is derived from the subdomain regardless of farm outcome, so a
// farm outage still yields a usable (future) wiki URL for the site record.
func (f *Farm) CreateSite(ctx context.Context, subdomain string) (string, error) {
	wikiURL := f.deriveURL(subdomain)
	if f.apiURL == "" {
		return wikiURL, nil
	}

	var out struct {
		CreateWiki *struct {
			Result string `json:"result"`
		} `json:"createwiki"`
	}
	err := f.client.postForm(ctx, f.apiURL, url.Values{
		"action":    {"createwiki"},
		"subdomain": {subdomain},
		"token":     {f.adminToken},
	}, &out)
	return wikiURL, err
}

// ManageSite suspends, activates or deletes a tenant wiki.
func (f *Farm) ManageSite(ctx context.Context, wikiURL, action string) error {
	if f.apiURL == "" {
		return nil
	}
	var out struct {
		ManageWiki *struct {
			Result string `json:"result"`
		} `json:"managewiki"`
	}
	return f.client.postForm(ctx, f.apiURL, url.Values{
		"action":   {"managewiki"},
		"wiki":     {wikiURL},
		"mwaction": {action},
		"token":    {f.adminToken},
	}, &out)
}
