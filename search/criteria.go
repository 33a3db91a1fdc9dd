// Package search builds job-listing queries from request parameters
// and slices the results into pages with per-viewer counts.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Page sizes used by the public listings.
const (
	PerPageMain     = 18
	PerPageCategory = 20
	PerPageMore     = 10
)

// Sort keys accepted by the listing endpoints.
const (
	SortLatest   = "latest"
	SortFeatured = "featured"
)

// Criteria is the typed set of optional search constraints derived
// from a listing request. Zero values mean "filter not supplied".
type Criteria struct {
	Keyword         string
	Location        string
	CategorySlug    string
	CompanyUsername string
	Tag             string
	Skill           string
	Education       string
	Experience      string
	JobType         string
	Sort            string

	StateID   uint
	RoleID    uint
	MinSalary float64
	MaxSalary float64
	BeforeID  uint

	// Remote is tri-state: nil means the filter was not supplied.
	Remote *bool

	Page int
}

// ParseCriteria validates listing query parameters at the boundary.
// Malformed numeric values are rejected rather than silently ignored;
// an unknown sort key falls back to the default ordering.
func ParseCriteria(c *fiber.Ctx) (Criteria, error) {
	crit := Criteria{
		Keyword:         strings.TrimSpace(c.Query("keyword")),
		Location:        strings.TrimSpace(c.Query("location")),
		CategorySlug:    strings.TrimSpace(c.Query("category")),
		CompanyUsername: strings.TrimSpace(c.Query("company")),
		Tag:             strings.TrimSpace(c.Query("tag")),
		Skill:           strings.TrimSpace(c.Query("skill")),
		Education:       strings.TrimSpace(c.Query("education")),
		Experience:      strings.TrimSpace(c.Query("experience")),
		JobType:         strings.TrimSpace(c.Query("job_type")),
		Sort:            c.Query("sort"),
		Page:            1,
	}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return crit, fmt.Errorf("invalid page %q", v)
		}
		crit.Page = page
	}
	if v := c.Query("state_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return crit, fmt.Errorf("invalid state_id %q", v)
		}
		crit.StateID = uint(id)
	}
	if v := c.Query("role_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return crit, fmt.Errorf("invalid role_id %q", v)
		}
		crit.RoleID = uint(id)
	}
	if v := c.Query("before_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return crit, fmt.Errorf("invalid before_id %q", v)
		}
		crit.BeforeID = uint(id)
	}
	if v := c.Query("min_salary"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return crit, fmt.Errorf("invalid min_salary %q", v)
		}
		crit.MinSalary = f
	}
	if v := c.Query("max_salary"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return crit, fmt.Errorf("invalid max_salary %q", v)
		}
		crit.MaxSalary = f
	}
	if v := c.Query("remote"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return crit, fmt.Errorf("invalid remote %q", v)
		}
		crit.Remote = &b
	}

	switch crit.Sort {
	case "", SortLatest, SortFeatured:
	default:
		crit.Sort = ""
	}

	return crit, nil
}

// Slugify lowercases a string and collapses non-alphanumeric runs into
// single hyphens, mirroring how job addresses are slug-matched.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
