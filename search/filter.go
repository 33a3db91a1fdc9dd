package search

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// Compose translates the criteria into a single unexecuted query over
// active jobs. Independent filters combine with AND; the location and
// keyword filters are each one grouped OR term (country/address, and
// title/company-name respectively). A lookup that does not resolve
// (unknown category slug, tag, skill or named level) disables that
// filter instead of erroring.
func Compose(db *gorm.DB, c Criteria, now time.Time) *gorm.DB {
	q := db.Model(&models.Job{}).Where("jobs.status = ?", models.JobStatusActive)

	// Deadline pruning. A deadline exactly equal to now is still open;
	// ongoing jobs bypass the check entirely.
	q = q.Where(db.Where("jobs.is_ongoing = ?", true).Or("jobs.deadline >= ?", now))

	if c.CompanyUsername != "" {
		q = q.Where("jobs.company_id IN (?)",
			db.Model(&models.Company{}).Select("companies.id").
				Joins("JOIN users ON users.id = companies.user_id").
				Where("users.username = ?", c.CompanyUsername))
	}

	if c.StateID != 0 {
		q = q.Where("jobs.state_id = ?", c.StateID)
	}

	if c.CategorySlug != "" {
		if id, ok := lookupID(db, &models.Category{}, "slug", c.CategorySlug); ok {
			q = q.Where("jobs.category_id = ?", id)
		}
	}

	if c.RoleID != 0 {
		q = q.Where("jobs.role_id = ?", c.RoleID)
	}

	if c.MinSalary > 0 {
		q = q.Where("jobs.min_salary >= ?", c.MinSalary)
	}
	if c.MaxSalary > 0 {
		q = q.Where("jobs.max_salary <= ?", c.MaxSalary)
	}

	if c.Tag != "" {
		if id, ok := lookupID(db, &models.Tag{}, "name", c.Tag); ok {
			q = q.Where("jobs.id IN (?)",
				db.Table("job_tags").Select("job_id").Where("tag_id = ?", id))
		}
	}

	if c.Skill != "" {
		if id, ok := lookupID(db, &models.Skill{}, "name", c.Skill); ok {
			q = q.Where("jobs.id IN (?)",
				db.Table("job_skills").Select("job_id").Where("skill_id = ?", id))
		}
	}

	if c.Remote != nil {
		q = q.Where("jobs.is_remote = ?", *c.Remote)
	}

	if c.Education != "" {
		if id, ok := lookupID(db, &models.Education{}, "name", c.Education); ok {
			q = q.Where("jobs.education_id = ?", id)
		}
	}
	if c.Experience != "" {
		if id, ok := lookupID(db, &models.Experience{}, "name", c.Experience); ok {
			q = q.Where("jobs.experience_id = ?", id)
		}
	}
	if c.JobType != "" {
		if id, ok := lookupID(db, &models.JobType{}, "name", c.JobType); ok {
			q = q.Where("jobs.job_type_id = ?", id)
		}
	}

	if c.Location != "" {
		// Loose heuristic carried over from the original behavior: the
		// raw text is matched against the country field, and a slug of
		// the first two words against the address field.
		frag := Slugify(firstWords(c.Location, 2))
		q = q.Where(db.
			Where("jobs.country LIKE ?", "%"+c.Location+"%").
			Or("jobs.address LIKE ?", "%"+frag+"%"))
	}

	if c.Keyword != "" {
		ids := companyJobIDs(db, c.Keyword, c.StateID)
		kw := db.Where("jobs.title LIKE ?", "%"+c.Keyword+"%")
		if len(ids) > 0 {
			kw = kw.Or("jobs.id IN ?", ids)
		}
		q = q.Where(kw)
	}

	if c.BeforeID != 0 {
		q = q.Where("jobs.id < ?", c.BeforeID)
	}

	switch c.Sort {
	case SortLatest:
		q = q.Order("jobs.id DESC")
	case SortFeatured:
		q = q.Where("jobs.featured = ?", true).Order("jobs.created_at DESC")
	default:
		q = q.Order("jobs.created_at DESC, jobs.id DESC")
	}

	return q
}

// FeaturedSubset applies the same criteria restricted to featured jobs,
// capped at the main page size.
func FeaturedSubset(db *gorm.DB, c Criteria, now time.Time) ([]models.Job, error) {
	var jobs []models.Job
	c.Sort = ""
	err := Compose(db, c, now).
		Where("jobs.featured = ?", true).
		Limit(PerPageMain).
		Find(&jobs).Error
	return jobs, err
}

// companyJobIDs is the keyword fan-out: every job belonging to a
// company whose owner's name matches the keyword, so a search for
// "Jane" surfaces Jane Doe's postings even when the titles don't
// mention her. StateID re-filters the expansion when present.
func companyJobIDs(db *gorm.DB, keyword string, stateID uint) []uint {
	var ids []uint
	q := db.Model(&models.Job{}).Select("jobs.id").
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Joins("JOIN users ON users.id = companies.user_id").
		Where("users.name LIKE ?", "%"+keyword+"%")
	if stateID != 0 {
		q = q.Where("jobs.state_id = ?", stateID)
	}
	if err := q.Pluck("jobs.id", &ids).Error; err != nil {
		return nil
	}
	return ids
}

func lookupID(db *gorm.DB, model interface{}, column, value string) (uint, bool) {
	var ids []uint
	err := db.Model(model).Where(column+" = ?", value).Limit(1).Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
