package syndication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// Address codes accepted by the registry. Anything that cannot be
// mapped from the job's state name falls back to "ACT".
const fallbackStateCode = "ACT"

var stateCodes = map[string]bool{
	"ACT": true, "NSW": true, "NT": true, "QLD": true,
	"SA": true, "TAS": true, "VIC": true, "WA": true,
}

// StateCode maps a stored state name like "QLD (Queensland)" to the
// registry's address code.
func StateCode(stateName string) string {
	code := strings.ToUpper(strings.TrimSpace(stateName))
	if i := strings.IndexAny(code, " ("); i > 0 {
		code = code[:i]
	}
	if stateCodes[code] {
		return code
	}
	return fallbackStateCode
}

// Vacancy is the registry's nested submission schema.
type Vacancy struct {
	VacancyStatus  string           `json:"vacancyStatus"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	CreationDate   string           `json:"creationDate"`
	ExpiryDate     string           `json:"expiryDate"`
	PositionsCount int              `json:"positionsCount"`
	SalaryMin      float64          `json:"salaryMin"`
	SalaryMax      float64          `json:"salaryMax"`
	Agent          VacancyAgent     `json:"vacancyAgent"`
	Address        VacancyAddress   `json:"vacancyAddress"`
	Licences       []VacancyLicence `json:"vacancyLicences"`
	SpecialGroups  []VacancySpecial `json:"vacancySpecialGroups"`
}

type VacancyAgent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type VacancyAddress struct {
	Line1    string `json:"line1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

type VacancyLicence struct {
	Code string `json:"code"`
}

type VacancySpecial struct {
	Code string `json:"code"`
}

// GovernmentAdapter submits jobs to the government vacancy registry.
// Unlike every other channel its failure is meant to reach the user:
// the registry enforces validation (a 31-day minimum expiry lead among
// others) that only the caller can correct.
type GovernmentAdapter struct {
	URL        string
	APIKey     string
	Timezone   *time.Location
	DB         *database.DB
	HTTPClient *http.Client
}

func NewGovernmentAdapter(url, apiKey string, db *database.DB, client *http.Client) *GovernmentAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	loc, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		loc = time.FixedZone("AEST", 10*3600)
	}
	return &GovernmentAdapter{URL: url, APIKey: apiKey, Timezone: loc, DB: db, HTTPClient: client}
}

func (g *GovernmentAdapter) Name() string { return "workforce" }

func (g *GovernmentAdapter) Publish(ctx context.Context, job *models.Job) error {
	if g.URL == "" {
		return fmt.Errorf("vacancy registry endpoint not configured")
	}

	payload := g.buildVacancy(job)
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("vacancy registry rejected the job: %s", apiErr.Message)
		}
		return fmt.Errorf("vacancy registry responded %d", resp.StatusCode)
	}

	var out struct {
		VacancyID json.Number `json:"vacancyId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("vacancy registry returned malformed response: %w", err)
	}

	return g.DB.SetExternalVacancyID(job.ID, out.VacancyID.String())
}

func (g *GovernmentAdapter) buildVacancy(job *models.Job) Vacancy {
	v := Vacancy{
		VacancyStatus:  "Open",
		Title:          job.Title,
		Description:    job.Description,
		CreationDate:   job.CreatedAt.In(g.Timezone).Format("2006-01-02T15:04:05-07:00"),
		ExpiryDate:     job.Deadline.In(g.Timezone).Format("2006-01-02T15:04:05-07:00"),
		PositionsCount: job.Vacancies,
		SalaryMin:      job.MinSalary,
		SalaryMax:      job.MaxSalary,
		Address: VacancyAddress{
			Line1: job.Address,
			City:  g.resolveCity(job),
			State: g.resolveStateCode(job),
		},
		Licences:      []VacancyLicence{},
		SpecialGroups: []VacancySpecial{},
	}
	v.Agent.Name = DisplayCompany(job)
	if job.Company != nil && job.Company.User != nil {
		v.Agent.Email = job.Company.User.Email
	}
	return v
}

// resolveCity checks the job's city against the city lookup table and
// falls back to the raw value when there is no match.
func (g *GovernmentAdapter) resolveCity(job *models.Job) string {
	if job.CityName == "" {
		return ""
	}
	var city models.City
	err := g.DB.Where("name = ?", job.CityName).First(&city).Error
	if err != nil {
		return job.CityName
	}
	return city.Name
}

func (g *GovernmentAdapter) resolveStateCode(job *models.Job) string {
	if job.StateID == nil {
		return fallbackStateCode
	}
	var state models.State
	if err := g.DB.First(&state, *job.StateID).Error; err != nil {
		return fallbackStateCode
	}
	return StateCode(state.Name)
}
