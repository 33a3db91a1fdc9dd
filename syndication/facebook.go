package syndication

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// FacebookAdapter posts a job to one Facebook page via the Graph API.
// The long-lived page token is exchanged on every send and the fresh
// token persisted before posting; wasteful, but it keeps the stored
// token from ever going stale between sends.
type FacebookAdapter struct {
	PageID     string
	GraphURL   string
	SiteURL    string
	WordLimit  int
	Tokens     *TokenStore
	HTTPClient *http.Client
}

func NewFacebookAdapter(pageID, graphURL, siteURL string, wordLimit int, tokens *TokenStore, client *http.Client) *FacebookAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FacebookAdapter{
		PageID:     pageID,
		GraphURL:   strings.TrimRight(graphURL, "/"),
		SiteURL:    strings.TrimRight(siteURL, "/"),
		WordLimit:  wordLimit,
		Tokens:     tokens,
		HTTPClient: client,
	}
}

func (f *FacebookAdapter) Name() string { return "facebook:" + f.PageID }

func (f *FacebookAdapter) Publish(ctx context.Context, job *models.Job) error {
	token, err := f.refreshToken(ctx)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}

	message := fmt.Sprintf("%s\n\n%s\n\n%s/jobs/%d",
		job.Title, TruncateWords(job.Description, f.WordLimit), f.SiteURL, job.ID)

	form := url.Values{}
	form.Set("access_token", token)

	var endpoint string
	if logo := companyLogo(job); logo != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", f.GraphURL, f.PageID)
		form.Set("url", logo)
		form.Set("caption", message)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", f.GraphURL, f.PageID)
		form.Set("message", message)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("graph api responded %d: %s", resp.StatusCode, body)
	}
	return nil
}

// refreshToken runs the fb_exchange_token flow against the stored
// token and persists the replacement under the version guard.
func (f *FacebookAdapter) refreshToken(ctx context.Context) (string, error) {
	setting, err := f.Tokens.Get()
	if err != nil {
		return "", err
	}
	if setting.FacebookToken == "" {
		return "", fmt.Errorf("no facebook token configured")
	}

	exchange := fmt.Sprintf("%s/oauth/access_token?grant_type=fb_exchange_token&fb_exchange_token=%s",
		f.GraphURL, url.QueryEscape(setting.FacebookToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exchange, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange responded %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty token")
	}

	if _, err := f.Tokens.Update(func(s *models.Setting) {
		s.FacebookToken = out.AccessToken
	}); err != nil {
		// A concurrent refresh already stored a usable token; the one
		// we just exchanged is still valid for this send.
		if err != ErrTokenConflict {
			return "", err
		}
	}
	return out.AccessToken, nil
}

func companyLogo(job *models.Job) string {
	if job.Company != nil {
		return job.Company.LogoURL
	}
	return ""
}
