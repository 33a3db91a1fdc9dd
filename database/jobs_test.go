package database_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreate(t *testing.T, db *database.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func TestApproveRevision_MergesAndDeletesDraft(t *testing.T) {
	db := newTestDB(t)

	job := &models.Job{
		Title:       "Carpenter",
		Description: "Original description",
		Status:      models.JobStatusActive,
		MinSalary:   60000,
		MaxSalary:   80000,
		Deadline:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Vacancies:   1,
	}
	mustCreate(t, db, job)

	rev := &models.JobRevision{
		JobID:       job.ID,
		Title:       "Senior Carpenter",
		Description: "Updated description",
		SalaryMode:  models.SalaryModeRange,
		MinSalary:   75000,
		MaxSalary:   95000,
		Deadline:    time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Vacancies:   2,
	}
	if err := db.SubmitRevision(rev); err != nil {
		t.Fatalf("SubmitRevision failed: %v", err)
	}

	// The draft must not leak into the published row before approval.
	var untouched models.Job
	if err := db.First(&untouched, job.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if untouched.Title != "Carpenter" {
		t.Errorf("Title = %q before approval, want Carpenter", untouched.Title)
	}

	merged, err := db.ApproveRevision(rev.ID)
	if err != nil {
		t.Fatalf("ApproveRevision failed: %v", err)
	}
	if merged.Title != "Senior Carpenter" || merged.MinSalary != 75000 || merged.Vacancies != 2 {
		t.Errorf("merged job = %+v, want the revision's fields", merged)
	}
	if merged.Status != models.JobStatusActive {
		t.Errorf("Status = %q, approval must not change publication status", merged.Status)
	}

	var count int64
	if err := db.Model(&models.JobRevision{}).Where("job_id = ?", job.ID).Count(&count).Error; err != nil {
		t.Fatalf("count revisions: %v", err)
	}
	if count != 0 {
		t.Errorf("found %d revisions after approval, want 0", count)
	}
}

func TestApproveRevision_ReplacesRelations(t *testing.T) {
	db := newTestDB(t)

	oldTag := models.Tag{Name: "fifo"}
	newTag := models.Tag{Name: "shutdown"}
	skill := models.Skill{Name: "rigging"}
	benefit := models.Benefit{Name: "site allowance"}
	for _, v := range []interface{}{&oldTag, &newTag, &skill, &benefit} {
		mustCreate(t, db, v)
	}

	job := &models.Job{
		Title:     "Scaffolder",
		Status:    models.JobStatusActive,
		IsOngoing: true,
		Tags:      []models.Tag{oldTag},
		Benefits:  []models.Benefit{benefit},
	}
	mustCreate(t, db, job)

	extra, _ := json.Marshal(models.RevisionExtra{
		TagIDs:   []uint{newTag.ID},
		SkillIDs: []uint{skill.ID},
	})
	rev := &models.JobRevision{
		JobID:     job.ID,
		Title:     "Scaffolder",
		IsOngoing: true,
		Extra:     datatypes.JSON(extra),
	}
	if err := db.SubmitRevision(rev); err != nil {
		t.Fatalf("SubmitRevision failed: %v", err)
	}

	if _, err := db.ApproveRevision(rev.ID); err != nil {
		t.Fatalf("ApproveRevision failed: %v", err)
	}

	merged, err := db.GetJobByID(job.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if len(merged.Tags) != 1 || merged.Tags[0].Name != "shutdown" {
		t.Errorf("Tags = %v, want the revision's tag to replace the old one", merged.Tags)
	}
	if len(merged.Skills) != 1 || merged.Skills[0].Name != "rigging" {
		t.Errorf("Skills = %v, want the revision's skill attached", merged.Skills)
	}
	if len(merged.Benefits) != 1 || merged.Benefits[0].Name != "site allowance" {
		t.Errorf("Benefits = %v, an absent slice must leave existing relations alone", merged.Benefits)
	}
}

func TestApproveRevision_MissingRevision(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.ApproveRevision(999); err == nil {
		t.Error("expected error for unknown revision")
	}
}

func TestSubmitRevision_RequiresExistingJob(t *testing.T) {
	db := newTestDB(t)
	err := db.SubmitRevision(&models.JobRevision{JobID: 42, Title: "Orphan"})
	if err == nil {
		t.Error("expected error when the parent job does not exist")
	}
}

func TestDeleteCompany_CascadesButKeepsJobs(t *testing.T) {
	db := newTestDB(t)

	user := &models.User{Name: "Owner", Username: "owner", Email: "owner@example.com"}
	mustCreate(t, db, user)
	company := &models.Company{UserID: user.ID, LogoURL: "logo.png"}
	mustCreate(t, db, company)
	mustCreate(t, db, &models.Media{CompanyID: company.ID, Kind: "gallery", Path: "a.png"})

	job := &models.Job{
		Title:       "Welder",
		Status:      models.JobStatusActive,
		CompanyID:   &company.ID,
		CompanyName: "Weld Works",
		IsOngoing:   true,
	}
	mustCreate(t, db, job)

	if err := db.DeleteCompany(company.ID); err != nil {
		t.Fatalf("DeleteCompany failed: %v", err)
	}

	var companies, users, media int64
	db.Model(&models.Company{}).Count(&companies)
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Media{}).Count(&media)
	if companies != 0 || users != 0 || media != 0 {
		t.Errorf("leftovers after delete: %d companies, %d users, %d media", companies, users, media)
	}

	var fresh models.Job
	if err := db.First(&fresh, job.ID).Error; err != nil {
		t.Fatalf("job should survive company deletion: %v", err)
	}
	if fresh.CompanyID != nil {
		t.Error("CompanyID should be cleared, not kept pointing at a deleted row")
	}
	if fresh.CompanyName != "Weld Works" {
		t.Errorf("CompanyName = %q, the free-text name must remain for display", fresh.CompanyName)
	}
}

func TestDeleteJob_RemovesDependents(t *testing.T) {
	db := newTestDB(t)

	job := &models.Job{Title: "Fitter", Status: models.JobStatusActive, IsOngoing: true}
	mustCreate(t, db, job)
	mustCreate(t, db, &models.JobRevision{JobID: job.ID, Title: "Fitter v2"})
	if err := db.BookmarkJob(1, job.ID); err != nil {
		t.Fatalf("BookmarkJob failed: %v", err)
	}
	if err := db.ApplyToJob(1, job.ID, "hi"); err != nil {
		t.Fatalf("ApplyToJob failed: %v", err)
	}

	if err := db.DeleteJob(job.ID); err != nil {
		t.Fatalf("DeleteJob failed: %v", err)
	}

	var revisions, bookmarks, applications int64
	db.Model(&models.JobRevision{}).Where("job_id = ?", job.ID).Count(&revisions)
	db.Model(&models.Bookmark{}).Where("job_id = ?", job.ID).Count(&bookmarks)
	db.Model(&models.Application{}).Where("job_id = ?", job.ID).Count(&applications)
	if revisions != 0 || bookmarks != 0 || applications != 0 {
		t.Errorf("leftovers after delete: %d revisions, %d bookmarks, %d applications",
			revisions, bookmarks, applications)
	}
}

func TestExpireOverdueJobs_Boundary(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	overdue := &models.Job{Title: "Overdue", Status: models.JobStatusActive, Deadline: now.Add(-time.Second)}
	atNow := &models.Job{Title: "At now", Status: models.JobStatusActive, Deadline: now}
	future := &models.Job{Title: "Future", Status: models.JobStatusActive, Deadline: now.Add(time.Hour)}
	ongoing := &models.Job{Title: "Ongoing", Status: models.JobStatusActive, IsOngoing: true, Deadline: now.Add(-time.Hour)}
	pending := &models.Job{Title: "Pending", Status: models.JobStatusPending, Deadline: now.Add(-time.Hour)}
	for _, j := range []*models.Job{overdue, atNow, future, ongoing, pending} {
		mustCreate(t, db, j)
	}

	n, err := db.ExpireOverdueJobs(now)
	if err != nil {
		t.Fatalf("ExpireOverdueJobs failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d jobs, want 1", n)
	}

	status := func(id uint) string {
		var j models.Job
		if err := db.First(&j, id).Error; err != nil {
			t.Fatalf("reload %d: %v", id, err)
		}
		return j.Status
	}
	if status(overdue.ID) != models.JobStatusExpired {
		t.Error("job past its deadline should be expired")
	}
	if status(atNow.ID) != models.JobStatusActive {
		t.Error("a deadline equal to now is still live")
	}
	if status(future.ID) != models.JobStatusActive {
		t.Error("future deadline should stay active")
	}
	if status(ongoing.ID) != models.JobStatusActive {
		t.Error("ongoing jobs never expire")
	}
	if status(pending.ID) != models.JobStatusPending {
		t.Error("the sweep only touches active jobs")
	}
}

func TestClearExpiredPromotions(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	lapsed := &models.Job{Title: "Lapsed", Status: models.JobStatusActive, IsOngoing: true,
		Featured: true, FeaturedUntil: &past, Highlighted: true, HighlightedUntil: &past}
	paid := &models.Job{Title: "Paid", Status: models.JobStatusActive, IsOngoing: true,
		Featured: true, FeaturedUntil: &future}
	openEnded := &models.Job{Title: "Open-ended", Status: models.JobStatusActive, IsOngoing: true,
		Featured: true}
	for _, j := range []*models.Job{lapsed, paid, openEnded} {
		mustCreate(t, db, j)
	}

	if err := db.ClearExpiredPromotions(now); err != nil {
		t.Fatalf("ClearExpiredPromotions failed: %v", err)
	}

	// A fresh struct per reload: reusing one would carry the previous
	// primary key into the next query's conditions.
	reload := func(id uint) models.Job {
		var j models.Job
		if err := db.First(&j, id).Error; err != nil {
			t.Fatalf("reload %d: %v", id, err)
		}
		return j
	}
	if j := reload(lapsed.ID); j.Featured || j.Highlighted {
		t.Error("lapsed promotion flags should be cleared")
	}
	if j := reload(paid.ID); !j.Featured {
		t.Error("promotion inside its paid window must survive")
	}
	if j := reload(openEnded.ID); !j.Featured {
		t.Error("a promotion with no end date must survive")
	}
}

func TestApplyToJob_RejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	job := &models.Job{Title: "Driver", Status: models.JobStatusActive, IsOngoing: true}
	mustCreate(t, db, job)

	if err := db.ApplyToJob(7, job.ID, "first"); err != nil {
		t.Fatalf("first application failed: %v", err)
	}
	if err := db.ApplyToJob(7, job.ID, "second"); err == nil {
		t.Error("second application by the same user should fail")
	}
	if err := db.ApplyToJob(8, job.ID, "other user"); err != nil {
		t.Errorf("a different user should still be able to apply: %v", err)
	}
}

func TestBookmarkJob_Idempotent(t *testing.T) {
	db := newTestDB(t)
	job := &models.Job{Title: "Cleaner", Status: models.JobStatusActive, IsOngoing: true}
	mustCreate(t, db, job)

	if err := db.BookmarkJob(3, job.ID); err != nil {
		t.Fatalf("BookmarkJob failed: %v", err)
	}
	if err := db.BookmarkJob(3, job.ID); err != nil {
		t.Fatalf("repeat BookmarkJob failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Bookmark{}).Where("user_id = ? AND job_id = ?", 3, job.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("found %d bookmarks, want 1", count)
	}
}

func TestSetExternalVacancyID(t *testing.T) {
	db := newTestDB(t)
	job := &models.Job{Title: "Baker", Status: models.JobStatusActive, IsOngoing: true}
	mustCreate(t, db, job)

	if err := db.SetExternalVacancyID(job.ID, "555001"); err != nil {
		t.Fatalf("SetExternalVacancyID failed: %v", err)
	}
	var fresh models.Job
	if err := db.First(&fresh, job.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.ExternalVacancyID != "555001" {
		t.Errorf("ExternalVacancyID = %q, want 555001", fresh.ExternalVacancyID)
	}
}
