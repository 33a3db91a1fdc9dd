package syndication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// PartnerPayload is the flat JSON shape partner job boards accept. It
// mirrors the job's public fields.
type PartnerPayload struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	CompanyName  string  `json:"company_name"`
	CompanyEmail string  `json:"company_email"`
	Category     string  `json:"category,omitempty"`
	SalaryMode   string  `json:"salary_mode"`
	MinSalary    float64 `json:"min_salary"`
	MaxSalary    float64 `json:"max_salary"`
	CustomSalary string  `json:"custom_salary,omitempty"`
	Deadline     string  `json:"deadline"`
	IsOngoing    bool    `json:"is_ongoing"`
	Country      string  `json:"country"`
	Region       string  `json:"region"`
	Address      string  `json:"address"`
	IsRemote     bool    `json:"is_remote"`
	Vacancies    int     `json:"vacancies"`
	PostedAt     string  `json:"posted_at"`
}

// PartnerAdapter POSTs jobs to one configured partner job board.
type PartnerAdapter struct {
	name       string
	url        string
	db         *database.DB
	HTTPClient *http.Client
}

func NewPartnerAdapter(name, url string, db *database.DB, client *http.Client) *PartnerAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PartnerAdapter{name: name, url: url, db: db, HTTPClient: client}
}

func (p *PartnerAdapter) Name() string { return "partner:" + p.name }

func (p *PartnerAdapter) Publish(ctx context.Context, job *models.Job) error {
	if p.url == "" {
		return fmt.Errorf("partner %s has no endpoint configured", p.name)
	}

	payload := PartnerPayload{
		Title:        job.Title,
		Description:  job.Description,
		CompanyName:  DisplayCompany(job),
		Category:     p.categoryName(job),
		SalaryMode:   job.SalaryMode,
		MinSalary:    job.MinSalary,
		MaxSalary:    job.MaxSalary,
		CustomSalary: job.CustomSalary,
		Deadline:     job.Deadline.Format("2006-01-02"),
		IsOngoing:    job.IsOngoing,
		Country:      job.Country,
		Region:       job.Region,
		Address:      job.Address,
		IsRemote:     job.IsRemote,
		Vacancies:    job.Vacancies,
		PostedAt:     job.CreatedAt.Format(time.RFC3339),
	}
	if job.Company != nil && job.Company.User != nil {
		payload.CompanyEmail = job.Company.User.Email
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("partner %s responded %d", p.name, resp.StatusCode)
	}
	return nil
}

func (p *PartnerAdapter) categoryName(job *models.Job) string {
	if job.CategoryID == nil || p.db == nil {
		return ""
	}
	var category models.Category
	if err := p.db.First(&category, *job.CategoryID).Error; err != nil {
		return ""
	}
	return category.Name
}
