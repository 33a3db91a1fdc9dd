package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/importer"
	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// SubmitRevisionHandler stages a draft edit of a published job. The
// live posting is untouched until an admin approves the revision.
func SubmitRevisionHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job id"})
	}

	var req JobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid revision data"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}
	if !req.IsOngoing && req.Deadline == "" {
		return c.Status(400).JSON(fiber.Map{"error": "deadline is required unless the job is ongoing"})
	}

	rev := models.JobRevision{
		JobID:        uint(id),
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		RoleID:       req.RoleID,
		SalaryMode:   req.SalaryMode,
		MinSalary:    req.MinSalary,
		MaxSalary:    req.MaxSalary,
		CustomSalary: req.CustomSalary,
		IsOngoing:    req.IsOngoing,
		Vacancies:    req.Vacancies,
		Country:      req.Country,
		Region:       req.Region,
		Address:      req.Address,
		IsRemote:     req.IsRemote,
	}
	if req.Deadline != "" {
		deadline, err := time.Parse("2006-01-02", req.Deadline)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "deadline must be YYYY-MM-DD"})
		}
		rev.Deadline = deadline
	}

	// Relation ids ride along as JSON and are applied on approval.
	if req.TagIDs != nil || req.SkillIDs != nil || req.BenefitIDs != nil {
		raw, err := json.Marshal(models.RevisionExtra{
			TagIDs:     req.TagIDs,
			SkillIDs:   req.SkillIDs,
			BenefitIDs: req.BenefitIDs,
		})
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid revision data"})
		}
		rev.Extra = datatypes.JSON(raw)
	}

	if err := db.SubmitRevision(&rev); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "revision_id": rev.ID})
}

// ApproveRevisionHandler merges a pending revision into its parent job
// and removes the revision.
func ApproveRevisionHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid revision id"})
	}

	job, err := db.ApproveRevision(uint(id))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Revision not found"})
	}
	return c.JSON(fiber.Map{"status": "success", "job": job})
}

// DeleteCompanyHandler removes a company, its owning user account, and
// its media. The company's jobs survive with their free-text name.
func DeleteCompanyHandler(c *fiber.Ctx) error {
	db := c.Locals("db").(*database.DB)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company id"})
	}
	if err := db.DeleteCompany(uint(id)); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Company not found"})
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// ImportJobsHandler runs a bulk XLSX import from a multipart upload.
func ImportJobsHandler(c *fiber.Ctx) error {
	im := c.Locals("importer").(*importer.Importer)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Missing file upload"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Could not read upload"})
	}
	defer file.Close()

	batch, err := im.ImportXLSX(file, fileHeader.Filename)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(batch)
}
