package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

var ErrNotFound = gorm.ErrRecordNotFound

func (db *DB) SaveJob(job *models.Job) error {
	if err := db.Save(job).Error; err != nil {
		log.Printf("Error saving job %q: %v", job.Title, err)
		return err
	}
	return nil
}

func (db *DB) GetJobByID(id uint) (*models.Job, error) {
	var job models.Job
	err := db.Preload("Company").Preload("Company.User").
		Preload("Tags").Preload("Skills").Preload("Benefits").
		First(&job, id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (db *DB) DeleteJob(id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.JobRevision{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Job{}, id).Error
	})
}

// SetExternalVacancyID records the id handed back by the government
// vacancy registry after a successful submission.
func (db *DB) SetExternalVacancyID(jobID uint, externalID string) error {
	return db.Model(&models.Job{}).Where("id = ?", jobID).
		Update("external_vacancy_id", externalID).Error
}

// SubmitRevision stages a draft edit of a published job. The job itself
// is untouched until the revision is approved.
func (db *DB) SubmitRevision(rev *models.JobRevision) error {
	var count int64
	if err := db.Model(&models.Job{}).Where("id = ?", rev.JobID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("job %d not found", rev.JobID)
	}
	return db.Create(rev).Error
}

// ApproveRevision merges a pending revision into its parent job and
// deletes the revision, in one transaction.
func (db *DB) ApproveRevision(revisionID uint) (*models.Job, error) {
	var job models.Job
	err := db.Transaction(func(tx *gorm.DB) error {
		var rev models.JobRevision
		if err := tx.First(&rev, revisionID).Error; err != nil {
			return err
		}
		if err := tx.First(&job, rev.JobID).Error; err != nil {
			return err
		}

		job.Title = rev.Title
		job.Description = rev.Description
		job.CategoryID = rev.CategoryID
		job.RoleID = rev.RoleID
		job.SalaryMode = rev.SalaryMode
		job.MinSalary = rev.MinSalary
		job.MaxSalary = rev.MaxSalary
		job.CustomSalary = rev.CustomSalary
		job.Deadline = rev.Deadline
		job.IsOngoing = rev.IsOngoing
		job.Vacancies = rev.Vacancies
		job.Country = rev.Country
		job.Region = rev.Region
		job.Address = rev.Address
		job.IsRemote = rev.IsRemote

		if err := tx.Save(&job).Error; err != nil {
			return err
		}
		if err := applyRevisionExtra(tx, &job, rev.Extra); err != nil {
			return err
		}
		return tx.Delete(&models.JobRevision{}, rev.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// applyRevisionExtra replaces the job's relation rows with the ids the
// revision carried. A nil slice leaves that relation untouched.
func applyRevisionExtra(tx *gorm.DB, job *models.Job, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var extra models.RevisionExtra
	if err := json.Unmarshal(raw, &extra); err != nil {
		return fmt.Errorf("revision extra is malformed: %v", err)
	}

	if extra.TagIDs != nil {
		var tags []models.Tag
		if len(extra.TagIDs) > 0 {
			if err := tx.Find(&tags, extra.TagIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(job).Association("Tags").Replace(&tags); err != nil {
			return err
		}
	}
	if extra.SkillIDs != nil {
		var skills []models.Skill
		if len(extra.SkillIDs) > 0 {
			if err := tx.Find(&skills, extra.SkillIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(job).Association("Skills").Replace(&skills); err != nil {
			return err
		}
	}
	if extra.BenefitIDs != nil {
		var benefits []models.Benefit
		if len(extra.BenefitIDs) > 0 {
			if err := tx.Find(&benefits, extra.BenefitIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(job).Association("Benefits").Replace(&benefits); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCompany removes a company together with its owning user and
// media rows. Jobs keep their rows but fall back to the free-text
// company name for display.
func (db *DB) DeleteCompany(companyID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.First(&company, companyID).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", companyID).Delete(&models.Media{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Job{}).Where("company_id = ?", companyID).
			Update("company_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Company{}, companyID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, company.UserID).Error
	})
}

// ExpireOverdueJobs flips active jobs whose deadline has passed to
// expired. Ongoing jobs never expire.
func (db *DB) ExpireOverdueJobs(now time.Time) (int64, error) {
	res := db.Model(&models.Job{}).
		Where("status = ?", models.JobStatusActive).
		Where("is_ongoing = ?", false).
		Where("deadline < ?", now).
		Update("status", models.JobStatusExpired)
	return res.RowsAffected, res.Error
}

// ClearExpiredPromotions drops featured/highlighted flags whose paid
// window has lapsed.
func (db *DB) ClearExpiredPromotions(now time.Time) error {
	err := db.Model(&models.Job{}).
		Where("featured = ? AND featured_until IS NOT NULL AND featured_until < ?", true, now).
		Update("featured", false).Error
	if err != nil {
		return err
	}
	return db.Model(&models.Job{}).
		Where("highlighted = ? AND highlighted_until IS NOT NULL AND highlighted_until < ?", true, now).
		Update("highlighted", false).Error
}

func (db *DB) BookmarkJob(userID, jobID uint) error {
	bookmark := models.Bookmark{UserID: userID, JobID: jobID}
	return db.FirstOrCreate(&bookmark, models.Bookmark{UserID: userID, JobID: jobID}).Error
}

func (db *DB) ApplyToJob(userID, jobID uint, coverLetter string) error {
	var existing models.Application
	err := db.Where("user_id = ? AND job_id = ?", userID, jobID).First(&existing).Error
	if err == nil {
		return errors.New("already applied")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	app := models.Application{UserID: userID, JobID: jobID, CoverLetter: coverLetter}
	return db.Create(&app).Error
}
