// Package mediawiki wraps the action API of a MediaWiki instance. Each tenant
// site points at its own api.php endpoint, so every method takes the endpoint
// explicitly. CSRF tokens are fetched immediately before each mutating call
// and never cached across requests.
package mediawiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultTimeout = 15 * time.Second

// Client is a stateless action-API client shared by all tenants.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// CSRFToken fetches a fresh csrf token for mutating actions.
func (c *Client) CSRFToken(ctx context.Context, apiURL string) (string, error) {
	var out struct {
		Query struct {
			Tokens struct {
				CSRFToken string `json:"csrftoken"`
			} `json:"tokens"`
		} `json:"query"`
	}
	params := url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {"csrf"},
	}
	if err := c.get(ctx, apiURL, params, &out); err != nil {
		return "", err
	}
	if out.Query.Tokens.CSRFToken == "" {
		return "", &APIError{Code: "notoken", Info: "no csrf token in response"}
	}
	return out.Query.Tokens.CSRFToken, nil
}

// FetchPage returns the rendered HTML of a page via action=parse.
// A missing page is an error; callers treat it as "no remote content".
func (c *Client) FetchPage(ctx context.Context, apiURL, title string) (string, error) {
	var out struct {
		Parse struct {
			Text string `json:"text"`
		} `json:"parse"`
	}
	params := url.Values{
		"action": {"parse"},
		"page":   {title},
	}
	if err := c.get(ctx, apiURL, params, &out); err != nil {
		return "", err
	}
	return out.Parse.Text, nil
}

// FetchPageContent returns the raw wikitext/content of a page's latest
// revision. Returns "" (no error) when the page does not exist remotely.
func (c *Client) FetchPageContent(ctx context.Context, apiURL, title string) (string, error) {
	pages, err := c.queryPages(ctx, apiURL, url.Values{
		"titles": {title},
		"prop":   {"revisions"},
		"rvprop": {"content"},
	})
	if err != nil {
		return "", err
	}
	if len(pages) == 0 || pages[0].Missing || len(pages[0].Revisions) == 0 {
		return "", nil
	}
	return pages[0].Revisions[0].Content, nil
}

// SavePage edits (create or overwrite) a page. The edit token is acquired
// immediately before the edit.
func (c *Client) SavePage(ctx context.Context, apiURL, title, text, summary string, minor bool) (*EditResult, error) {
	token, err := c.CSRFToken(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"action":  {"edit"},
		"title":   {title},
		"text":    {text},
		"summary": {summary},
		"token":   {token},
	}
	if minor {
		form.Set("minor", "1")
	}

	var out struct {
		Edit *EditResult `json:"edit"`
	}
	if err := c.postForm(ctx, apiURL, form, &out); err != nil {
		return nil, err
	}
	if out.Edit == nil || out.Edit.Result != "Success" {
		return nil, &APIError{Code: "editfailed", Info: "edit was not successful"}
	}
	return out.Edit, nil
}

// DeletePage removes a page from the remote wiki.
func (c *Client) DeletePage(ctx context.Context, apiURL, title string) error {
	token, err := c.CSRFToken(ctx, apiURL)
	if err != nil {
		return err
	}
	var out struct {
		Delete *struct {
			Title string `json:"title"`
		} `json:"delete"`
	}
	return c.postForm(ctx, apiURL, url.Values{
		"action": {"delete"},
		"title":  {title},
		"token":  {token},
	}, &out)
}

// ListPages returns all page titles of the wiki (capped at 500).
func (c *Client) ListPages(ctx context.Context, apiURL string) ([]string, error) {
	var out struct {
		Query struct {
			AllPages []struct {
				Title string `json:"title"`
			} `json:"allpages"`
		} `json:"query"`
	}
	params := url.Values{
		"action":  {"query"},
		"list":    {"allpages"},
		"aplimit": {"500"},
	}
	if err := c.get(ctx, apiURL, params, &out); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(out.Query.AllPages))
	for _, p := range out.Query.AllPages {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

// PageHistory returns up to limit revisions of a page, newest first.
func (c *Client) PageHistory(ctx context.Context, apiURL, title string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	pages, err := c.queryPages(ctx, apiURL, url.Values{
		"titles":  {title},
		"prop":    {"revisions"},
		"rvprop":  {"ids|timestamp|user|comment|content|size|flags"},
		"rvlimit": {strconv.Itoa(limit)},
		"rvdir":   {"older"},
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 || pages[0].Missing {
		return nil, nil
	}
	return pages[0].Revisions, nil
}

// RevisionContent returns the content of a single revision by id.
func (c *Client) RevisionContent(ctx context.Context, apiURL string, revID int64) (string, error) {
	pages, err := c.queryPages(ctx, apiURL, url.Values{
		"revids": {strconv.FormatInt(revID, 10)},
		"prop":   {"revisions"},
		"rvprop": {"content"},
	})
	if err != nil {
		return "", err
	}
	if len(pages) == 0 || len(pages[0].Revisions) == 0 {
		return "", &APIError{Code: "norevision", Info: fmt.Sprintf("revision %d not found", revID)}
	}
	return pages[0].Revisions[0].Content, nil
}

// UploadFile uploads a file via multipart action=upload. Returns false (no
// error) when the remote rejects the upload, signaling local fallback.
func (c *Client) UploadFile(ctx context.Context, apiURL, filename string, data []byte, comment string) (bool, error) {
	token, err := c.CSRFToken(ctx, apiURL)
	if err != nil {
		return false, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"action":         "upload",
		"format":         "json",
		"formatversion":  "2",
		"filename":       filename,
		"comment":        comment,
		"token":          token,
		"ignorewarnings": "1",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return false, err
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return false, err
	}
	if _, err := fw.Write(data); err != nil {
		return false, err
	}
	if err := mw.Close(); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, &buf)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Upload *struct {
			Result string `json:"result"`
		} `json:"upload"`
	}
	if err := c.send(req, &out); err != nil {
		return false, err
	}
	return out.Upload != nil && out.Upload.Result == "Success", nil
}

// FileInfo fetches url/size/mime details of an uploaded file.
func (c *Client) FileInfo(ctx context.Context, apiURL, filename string) (*FileInfo, error) {
	pages, err := c.queryPages(ctx, apiURL, url.Values{
		"titles": {"File:" + filename},
		"prop":   {"imageinfo"},
		"iiprop": {"url|size|mime"},
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 || len(pages[0].ImageInfo) == 0 {
		return nil, nil
	}
	info := pages[0].ImageInfo[0]
	return &info, nil
}

// Search runs full-text search against the wiki's page index.
func (c *Client) Search(ctx context.Context, apiURL, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var out struct {
		Query struct {
			Search []SearchResult `json:"search"`
		} `json:"query"`
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
		"srprop":   {"snippet|size|timestamp|wordcount"},
	}
	if err := c.get(ctx, apiURL, params, &out); err != nil {
		return nil, err
	}
	return out.Query.Search, nil
}

// RecentChanges returns the wiki's recent-changes feed, newest first.
func (c *Client) RecentChanges(ctx context.Context, apiURL string, limit int) ([]RecentChange, error) {
	if limit <= 0 {
		limit = 50
	}
	var out struct {
		Query struct {
			RecentChanges []RecentChange `json:"recentchanges"`
		} `json:"query"`
	}
	params := url.Values{
		"action":  {"query"},
		"list":    {"recentchanges"},
		"rclimit": {strconv.Itoa(limit)},
		"rcprop":  {"ids|title|timestamp|user|comment|flags"},
	}
	if err := c.get(ctx, apiURL, params, &out); err != nil {
		return nil, err
	}
	return out.Query.RecentChanges, nil
}

// Protect mirrors an edit lock onto the remote wiki (best-effort; the local
// protection flag stays authoritative).
func (c *Client) Protect(ctx context.Context, apiURL, title, level, reason string) error {
	token, err := c.CSRFToken(ctx, apiURL)
	if err != nil {
		return err
	}
	var out struct {
		Protect *struct {
			Title string `json:"title"`
		} `json:"protect"`
	}
	return c.postForm(ctx, apiURL, url.Values{
		"action":      {"protect"},
		"title":       {title},
		"protections": {"edit=" + level},
		"expiry":      {"indefinite"},
		"reason":      {reason},
		"token":       {token},
	}, &out)
}

// queryPage is the formatversion=2 shape of a query result page.
type queryPage struct {
	PageID    int64      `json:"pageid"`
	Title     string     `json:"title"`
	Missing   bool       `json:"missing"`
	Revisions []Revision `json:"revisions"`
	ImageInfo []FileInfo `json:"imageinfo"`
}

func (c *Client) queryPages(ctx context.Context, apiURL string, params url.Values) ([]queryPage, error) {
	params.Set("action", "query")
	var out struct {
		Query struct {
			Pages []queryPage `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, apiURL, params, &out); err != nil {
		return nil, err
	}
	return out.Query.Pages, nil
}

func (c *Client) get(ctx context.Context, apiURL string, params url.Values, out interface{}) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) postForm(ctx context.Context, apiURL string, form url.Values, out interface{}) error {
	form.Set("format", "json")
	form.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &APIError{Code: "http_" + strconv.Itoa(resp.StatusCode), Info: strings.TrimSpace(string(data))}
	}

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode mediawiki response: %w", err)
	}
	if envelope.Error != nil {
		return &APIError{Code: envelope.Error.Code, Info: envelope.Error.Info}
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
