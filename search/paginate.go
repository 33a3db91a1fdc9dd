package search

import (
	"gorm.io/gorm"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// JobListing is one job row enriched with aggregate counts and the
// current viewer's bookmark/application state.
type JobListing struct {
	models.Job
	BookmarkCount    int64 `json:"bookmark_count"`
	ApplicationCount int64 `json:"application_count"`
	Bookmarked       bool  `json:"bookmarked"`
	Applied          bool  `json:"applied"`
}

// JobPage is one page of listings plus the total match count, which is
// the same on every page of the same query.
type JobPage struct {
	Jobs    []JobListing `json:"jobs"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// Paginate executes the composed query for one page and decorates each
// row with counts. Counts come from aggregate queries per job rather
// than loaded relation collections, so memory stays bounded no matter
// how many bookmarks a job has. viewerID 0 (anonymous) matches no rows
// and yields bookmarked=false, applied=false deterministically.
func Paginate(db *gorm.DB, q *gorm.DB, page, perPage int, viewerID uint) (*JobPage, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	// Both queries run on detached sessions so the composed query can be
	// reused for further pages without picking up a stale LIMIT/OFFSET.
	var jobs []models.Job
	err := q.Session(&gorm.Session{}).
		Limit(perPage).Offset((page - 1) * perPage).Find(&jobs).Error
	if err != nil {
		return nil, err
	}

	listings := make([]JobListing, len(jobs))
	for i, job := range jobs {
		listing, err := Decorate(db, job, viewerID)
		if err != nil {
			return nil, err
		}
		listings[i] = *listing
	}

	return &JobPage{Jobs: listings, Total: total, Page: page, PerPage: perPage}, nil
}

// Decorate attaches counts and viewer state to a single job.
func Decorate(db *gorm.DB, job models.Job, viewerID uint) (*JobListing, error) {
	listing := JobListing{Job: job}

	err := db.Model(&models.Bookmark{}).Where("job_id = ?", job.ID).
		Count(&listing.BookmarkCount).Error
	if err != nil {
		return nil, err
	}
	err = db.Model(&models.Application{}).Where("job_id = ?", job.ID).
		Count(&listing.ApplicationCount).Error
	if err != nil {
		return nil, err
	}

	if viewerID != 0 {
		var n int64
		err = db.Model(&models.Bookmark{}).
			Where("job_id = ? AND user_id = ?", job.ID, viewerID).Count(&n).Error
		if err != nil {
			return nil, err
		}
		listing.Bookmarked = n > 0

		err = db.Model(&models.Application{}).
			Where("job_id = ? AND user_id = ?", job.ID, viewerID).Count(&n).Error
		if err != nil {
			return nil, err
		}
		listing.Applied = n > 0
	}

	return &listing, nil
}
