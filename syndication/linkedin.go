package syndication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// LinkedInAdapter publishes a job as a UGC post on one organization
// page. Image posts are a two-step flow: register an upload slot, PUT
// the image bytes, then reference the asset from the post. There is no
// retry on partial failure, so a registered upload followed by a failed
// post leaves an orphaned asset behind; that is logged, not repaired.
type LinkedInAdapter struct {
	PageURN    string
	APIURL     string
	SiteURL    string
	WordLimit  int
	Tokens     *TokenStore
	HTTPClient *http.Client
}

func NewLinkedInAdapter(pageURN, apiURL, siteURL string, wordLimit int, tokens *TokenStore, client *http.Client) *LinkedInAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &LinkedInAdapter{
		PageURN:    pageURN,
		APIURL:     strings.TrimRight(apiURL, "/"),
		SiteURL:    strings.TrimRight(siteURL, "/"),
		WordLimit:  wordLimit,
		Tokens:     tokens,
		HTTPClient: client,
	}
}

func (l *LinkedInAdapter) Name() string { return "linkedin:" + l.PageURN }

func (l *LinkedInAdapter) Publish(ctx context.Context, job *models.Job) error {
	setting, err := l.Tokens.Get()
	if err != nil {
		return err
	}
	if setting.LinkedInToken == "" {
		return fmt.Errorf("no linkedin token configured")
	}
	token := setting.LinkedInToken

	message := fmt.Sprintf("%s\n\n%s\n\n%s/jobs/%d",
		job.Title, TruncateWords(job.Description, l.WordLimit), l.SiteURL, job.ID)

	var asset string
	if logo := companyLogo(job); logo != "" {
		asset, err = l.uploadImage(ctx, token, logo)
		if err != nil {
			return fmt.Errorf("image upload: %w", err)
		}
	}

	if err := l.createPost(ctx, token, message, asset); err != nil {
		if asset != "" {
			log.Printf("syndication: linkedin post failed after upload, orphaned asset %s", asset)
		}
		return err
	}
	return nil
}

func (l *LinkedInAdapter) uploadImage(ctx context.Context, token, imageURL string) (string, error) {
	register := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   l.PageURN,
			"serviceRelationships": []map[string]string{{
				"relationshipType": "OWNER",
				"identifier":       "urn:li:userGeneratedContent",
			}},
		},
	}

	var registered struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism struct {
				Request struct {
					UploadURL string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	err := l.postJSON(ctx, token, l.APIURL+"/assets?action=registerUpload", register, &registered)
	if err != nil {
		return "", err
	}

	uploadURL := registered.Value.UploadMechanism.Request.UploadURL
	if uploadURL == "" {
		return "", fmt.Errorf("registerUpload returned no upload url")
	}

	image, err := l.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("image upload responded %d", resp.StatusCode)
	}

	return registered.Value.Asset, nil
}

func (l *LinkedInAdapter) createPost(ctx context.Context, token, message, asset string) error {
	media := "NONE"
	var mediaList []map[string]interface{}
	if asset != "" {
		media = "IMAGE"
		mediaList = []map[string]interface{}{{
			"status": "READY",
			"media":  asset,
		}}
	}

	post := map[string]interface{}{
		"author":         l.PageURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": message},
				"shareMediaCategory": media,
				"media":              mediaList,
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	return l.postJSON(ctx, token, l.APIURL+"/ugcPosts", post, nil)
}

func (l *LinkedInAdapter) postJSON(ctx context.Context, token, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("linkedin responded %d: %s", resp.StatusCode, raw)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (l *LinkedInAdapter) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logo fetch responded %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 5<<20))
}
