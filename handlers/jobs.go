package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/models"
	"github.com/umarijaz5156/jobpilot-sub000/search"
	"github.com/umarijaz5156/jobpilot-sub000/syndication"
)

// viewerID extracts the acting user from the request. Authentication
// itself is handled upstream; an absent or malformed header means an
// anonymous viewer, which deterministically matches no bookmarks or
// applications.
func viewerID(c *fiber.Ctx) uint {
	v := c.Get("X-User-ID")
	if v == "" {
		return 0
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func JobsHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	criteria, err := search.ParseCriteria(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	now := time.Now()
	q := search.Compose(db.DB, criteria, now)
	page, err := search.Paginate(db.DB, q, criteria.Page, search.PerPageMain, viewerID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching jobs"})
	}

	featured, err := search.FeaturedSubset(db.DB, criteria, now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching featured jobs"})
	}

	return c.JSON(fiber.Map{
		"jobs":     page.Jobs,
		"total":    page.Total,
		"page":     page.Page,
		"per_page": page.PerPage,
		"featured": featured,
	})
}

func CategoryJobsHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	criteria, err := search.ParseCriteria(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	criteria.CategorySlug = c.Params("slug")

	q := search.Compose(db.DB, criteria, time.Now())
	page, err := search.Paginate(db.DB, q, criteria.Page, search.PerPageCategory, viewerID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching jobs"})
	}
	return c.JSON(page)
}

// MoreJobsHandler serves the endless-scroll slice: a small page keyed
// by an id cursor rather than an offset.
func MoreJobsHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	criteria, err := search.ParseCriteria(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	criteria.Sort = search.SortLatest

	q := search.Compose(db.DB, criteria, time.Now())
	page, err := search.Paginate(db.DB, q, 1, search.PerPageMore, viewerID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching jobs"})
	}
	return c.JSON(page)
}

func JobDetailHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job id"})
	}

	job, err := db.GetJobByID(uint(id))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
	}

	listing, err := search.Decorate(db.DB, *job, viewerID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error loading job"})
	}
	return c.JSON(listing)
}

// JobRequest is the create/update form. Channels carries the
// per-destination syndication toggles; only channels set to true are
// dispatched after the job is committed.
type JobRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	CompanyID    *uint   `json:"company_id"`
	CompanyName  string  `json:"company_name"`
	CategoryID   *uint   `json:"category_id"`
	RoleID       *uint   `json:"role_id"`
	EducationID  *uint   `json:"education_id"`
	ExperienceID *uint   `json:"experience_id"`
	JobTypeID    *uint   `json:"job_type_id"`
	SalaryMode   string  `json:"salary_mode"`
	MinSalary    float64 `json:"min_salary"`
	MaxSalary    float64 `json:"max_salary"`
	CustomSalary string  `json:"custom_salary"`
	Deadline     string  `json:"deadline"`
	IsOngoing    bool    `json:"is_ongoing"`
	Vacancies    int     `json:"vacancies"`
	Country      string  `json:"country"`
	Region       string  `json:"region"`
	Address      string  `json:"address"`
	IsRemote     bool    `json:"is_remote"`
	StateID      *uint   `json:"state_id"`
	CityName     string  `json:"city_name"`

	TagIDs     []uint `json:"tag_ids"`
	SkillIDs   []uint `json:"skill_ids"`
	BenefitIDs []uint `json:"benefit_ids"`

	Channels map[string]bool `json:"channels"`
}

func (r *JobRequest) validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if (r.CompanyID == nil) == (r.CompanyName == "") {
		return errors.New("exactly one of company_id and company_name is required")
	}
	if !r.IsOngoing && r.Deadline == "" {
		return errors.New("deadline is required unless the job is ongoing")
	}
	if r.SalaryMode != "" && r.SalaryMode != models.SalaryModeRange && r.SalaryMode != models.SalaryModeCustom {
		return errors.New("salary_mode must be range or custom")
	}
	return nil
}

func (r *JobRequest) apply(job *models.Job) error {
	job.Title = r.Title
	job.Description = r.Description
	job.CompanyID = r.CompanyID
	job.CompanyName = r.CompanyName
	job.CategoryID = r.CategoryID
	job.RoleID = r.RoleID
	job.EducationID = r.EducationID
	job.ExperienceID = r.ExperienceID
	job.JobTypeID = r.JobTypeID
	job.SalaryMode = r.SalaryMode
	if job.SalaryMode == "" {
		job.SalaryMode = models.SalaryModeRange
	}
	job.MinSalary = r.MinSalary
	job.MaxSalary = r.MaxSalary
	job.CustomSalary = r.CustomSalary
	job.IsOngoing = r.IsOngoing
	job.Vacancies = r.Vacancies
	job.Country = r.Country
	job.Region = r.Region
	job.Address = r.Address
	job.IsRemote = r.IsRemote
	job.StateID = r.StateID
	job.CityName = r.CityName

	if r.Deadline != "" {
		deadline, err := time.Parse("2006-01-02", r.Deadline)
		if err != nil {
			return errors.New("deadline must be YYYY-MM-DD")
		}
		job.Deadline = deadline
	}
	return nil
}

func (r *JobRequest) enabledChannels() []string {
	var enabled []string
	for name, on := range r.Channels {
		if on {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

func CreateJobHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)
	dispatcher := c.Locals("dispatcher").(*syndication.Dispatcher)

	var req JobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job data"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	job := models.Job{Status: models.JobStatusActive}
	if err := req.apply(&job); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err := attachRelations(db.DB, &job, &req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	// The job commits before any syndication runs; downstream failures
	// can never unwind the posting itself.
	if err := db.SaveJob(&job); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save job"})
	}

	return syndicate(c, db, dispatcher, &job, req.enabledChannels())
}

func UpdateJobHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)
	dispatcher := c.Locals("dispatcher").(*syndication.Dispatcher)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job id"})
	}

	job, err := db.GetJobByID(uint(id))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
	}

	var req JobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job data"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.apply(job); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err := attachRelations(db.DB, job, &req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if err := db.SaveJob(job); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save job"})
	}

	return syndicate(c, db, dispatcher, job, req.enabledChannels())
}

// syndicate dispatches and shapes the response. Partner and social
// failures are reported in the outcome list but do not change the
// status; the government registry is the one channel whose failure is
// surfaced as an error, because it needs user correction.
func syndicate(c *fiber.Ctx, db *database.DB, dispatcher *syndication.Dispatcher, job *models.Job, enabled []string) error {
	var outcomes []syndication.Outcome
	if len(enabled) > 0 {
		outcomes = dispatcher.Dispatch(c.Context(), job, enabled)
	}

	// Re-read so the response carries the external vacancy id when the
	// registry accepted the job.
	fresh, err := db.GetJobByID(job.ID)
	if err == nil {
		job = fresh
	}

	for _, out := range outcomes {
		if out.Channel == "workforce" && out.Err() != nil {
			return c.Status(422).JSON(fiber.Map{
				"job":      job,
				"outcomes": outcomes,
				"error":    out.Error,
			})
		}
	}

	return c.JSON(fiber.Map{"job": job, "outcomes": outcomes})
}

func attachRelations(db *gorm.DB, job *models.Job, req *JobRequest) error {
	if req.TagIDs != nil {
		var tags []models.Tag
		if err := db.Find(&tags, req.TagIDs).Error; err != nil {
			return err
		}
		job.Tags = tags
	}
	if req.SkillIDs != nil {
		var skills []models.Skill
		if err := db.Find(&skills, req.SkillIDs).Error; err != nil {
			return err
		}
		job.Skills = skills
	}
	if req.BenefitIDs != nil {
		var benefits []models.Benefit
		if err := db.Find(&benefits, req.BenefitIDs).Error; err != nil {
			return err
		}
		job.Benefits = benefits
	}
	return nil
}

func DeleteJobHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job id"})
	}
	if err := db.DeleteJob(uint(id)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete job"})
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func BookmarkHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	uid := viewerID(c)
	if uid == 0 {
		return c.Status(401).JSON(fiber.Map{"error": "Sign in to bookmark jobs"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job id"})
	}
	if err := db.BookmarkJob(uid, uint(id)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to bookmark job"})
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func ApplyHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	uid := viewerID(c)
	if uid == 0 {
		return c.Status(401).JSON(fiber.Map{"error": "Sign in to apply"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job id"})
	}

	if err := db.ApplyToJob(uid, uint(id), c.FormValue("cover_letter")); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success"})
}
