// Package models contains the domain models for the application,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Job statuses.
const (
	JobStatusPending = "pending"
	JobStatusActive  = "active"
	JobStatusExpired = "expired"
)

// Salary modes.
const (
	SalaryModeRange  = "range"
	SalaryModeCustom = "custom"
)

// Job is the canonical job-posting entity. A job either belongs to a
// Company (CompanyID set) or carries only a free-text CompanyName for
// externally sourced postings; exactly one of the two drives display.
type Job struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index" json:"title"`
	Description string `json:"description"`
	Status      string `gorm:"index;default:pending" json:"status"`

	CompanyID   *uint    `gorm:"index" json:"company_id"`
	Company     *Company `json:"company,omitempty"`
	CompanyName string   `json:"company_name"`

	CategoryID   *uint `gorm:"index" json:"category_id"`
	RoleID       *uint `json:"role_id"`
	EducationID  *uint `json:"education_id"`
	ExperienceID *uint `json:"experience_id"`
	JobTypeID    *uint `json:"job_type_id"`

	SalaryMode   string  `gorm:"default:range" json:"salary_mode"`
	MinSalary    float64 `json:"min_salary"`
	MaxSalary    float64 `json:"max_salary"`
	CustomSalary string  `json:"custom_salary"`

	// A job with IsOngoing set never expires; otherwise Deadline rules.
	Deadline  time.Time `json:"deadline"`
	IsOngoing bool      `json:"is_ongoing"`
	Vacancies int       `json:"vacancies"`

	Country  string  `json:"country"`
	Region   string  `json:"region"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	IsRemote bool    `json:"is_remote"`
	StateID  *uint   `gorm:"index" json:"state_id"`
	CityName string  `json:"city_name"`

	Featured         bool       `gorm:"index" json:"featured"`
	FeaturedUntil    *time.Time `json:"featured_until"`
	Highlighted      bool       `json:"highlighted"`
	HighlightedUntil *time.Time `json:"highlighted_until"`

	// Identifier returned by the government vacancy registry on a
	// successful submission.
	ExternalVacancyID string `json:"external_vacancy_id"`

	Tags     []Tag     `gorm:"many2many:job_tags" json:"tags"`
	Skills   []Skill   `gorm:"many2many:job_skills" json:"skills"`
	Benefits []Benefit `gorm:"many2many:job_benefits" json:"benefits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobRevision is a draft edit of a published job awaiting approval.
// Revisions live in their own table so public listings can never pick
// one up by accident; approving a revision merges its fields into the
// parent job and deletes the revision.
type JobRevision struct {
	ID    uint `gorm:"primaryKey" json:"id"`
	JobID uint `gorm:"index" json:"job_id"`

	Title        string         `json:"title"`
	Description  string         `json:"description"`
	CategoryID   *uint          `json:"category_id"`
	RoleID       *uint          `json:"role_id"`
	SalaryMode   string         `json:"salary_mode"`
	MinSalary    float64        `json:"min_salary"`
	MaxSalary    float64        `json:"max_salary"`
	CustomSalary string         `json:"custom_salary"`
	Deadline     time.Time      `json:"deadline"`
	IsOngoing    bool           `json:"is_ongoing"`
	Vacancies    int            `json:"vacancies"`
	Country      string         `json:"country"`
	Region       string         `json:"region"`
	Address      string         `json:"address"`
	IsRemote     bool           `json:"is_remote"`
	Extra        datatypes.JSON `json:"extra"`

	CreatedAt time.Time `json:"created_at"`
}

// RevisionExtra is the JSON shape stored in JobRevision.Extra: the
// relation ids that have no flat column on the revision row. A nil
// slice means "leave the job's current relations alone".
type RevisionExtra struct {
	TagIDs     []uint `json:"tag_ids,omitempty"`
	SkillIDs   []uint `json:"skill_ids,omitempty"`
	BenefitIDs []uint `json:"benefit_ids,omitempty"`
}

// Company profile. Lifecycle is tied 1:1 to its owning User: deleting
// a company also deletes the user account and associated media rows.
type Company struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"uniqueIndex" json:"user_id"`
	User       *User      `json:"user,omitempty"`
	LogoURL    string     `json:"logo_url"`
	BannerURL  string     `json:"banner_url"`
	Bio        string     `json:"bio"`
	Address    string     `json:"address"`
	Website    string     `json:"website"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index" json:"name"`
	Username  string    `gorm:"uniqueIndex" json:"username"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Media struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"index" json:"company_id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Lookup tables. Filter parameters arrive as human-readable names or
// slugs and are resolved against these before querying.

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
	Slug string `gorm:"uniqueIndex" json:"slug"`
}

type JobRole struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Skill struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Benefit struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type Education struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type Experience struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type JobType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type State struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type City struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `json:"name"`
	StateID uint   `gorm:"index" json:"state_id"`
}

// Bookmark and Application rows feed per-viewer listing counts.

type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_bookmark_user_job" json:"user_id"`
	JobID     uint      `gorm:"index:idx_bookmark_user_job" json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Application struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index:idx_application_user_job" json:"user_id"`
	JobID       uint      `gorm:"index:idx_application_user_job" json:"job_id"`
	CoverLetter string    `json:"cover_letter"`
	Status      string    `gorm:"default:applied" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Setting is the single row holding per-channel OAuth tokens. Version
// guards concurrent token refreshes: an update only applies when the
// version it read is still current.
type Setting struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FacebookToken   string    `json:"facebook_token"`
	LinkedInToken   string    `json:"linkedin_token"`
	FacebookPageIDs string    `json:"facebook_page_ids"`
	LinkedInPageIDs string    `json:"linkedin_page_ids"`
	Version         uint      `json:"version"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ImportBatch records the outcome of one bulk XLSX import.
type ImportBatch struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Filename  string         `json:"filename"`
	Created   int            `json:"created"`
	Merged    int            `json:"merged"`
	Skipped   int            `json:"skipped"`
	Errors    datatypes.JSON `json:"errors"`
	CreatedAt time.Time      `json:"created_at"`
}
