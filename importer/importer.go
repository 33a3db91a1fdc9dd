// Package importer ingests bulk job postings from XLSX uploads. State
// and category names in the sheet rarely match the lookup tables
// exactly, so both are resolved with a fuzzy string-similarity pass.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// Names closer than this are considered the same state/category.
const similarityThreshold = 0.7

type Importer struct {
	db *database.DB
}

func New(db *database.DB) *Importer {
	return &Importer{db: db}
}

// ImportXLSX reads the first sheet of an uploaded workbook and creates
// or merges one job per row. A row that cannot be parsed is recorded
// and skipped; the batch always runs to completion.
func (im *Importer) ImportXLSX(r io.Reader, filename string) (*models.ImportBatch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %v", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	columns := headerIndex(rows[0])
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("sheet %q is missing a title column", sheet)
	}

	batch := &models.ImportBatch{ID: uuid.New(), Filename: filename}
	var rowErrors []string

	states := im.loadStates()
	categories := im.loadCategories()

	for i, row := range rows[1:] {
		job, err := im.rowToJob(row, columns, states, categories)
		if err != nil {
			batch.Skipped++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		merged, err := im.upsert(job)
		if err != nil {
			batch.Skipped++
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		if merged {
			batch.Merged++
		} else {
			batch.Created++
		}
	}

	if len(rowErrors) > 0 {
		raw, _ := json.Marshal(rowErrors)
		batch.Errors = datatypes.JSON(raw)
	}
	if err := im.db.Create(batch).Error; err != nil {
		return nil, err
	}

	log.Printf("Import %s completed: %d created, %d merged, %d skipped",
		filename, batch.Created, batch.Merged, batch.Skipped)
	return batch, nil
}

func (im *Importer) rowToJob(row []string, columns map[string]int, states []models.State, categories []models.Category) (*models.Job, error) {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	title := get("title")
	if title == "" {
		return nil, fmt.Errorf("empty title")
	}

	job := &models.Job{
		Title:       title,
		Description: get("description"),
		CompanyName: get("company"),
		Country:     get("country"),
		Region:      get("region"),
		Address:     get("address"),
		CityName:    get("city"),
		SalaryMode:  models.SalaryModeRange,
		Status:      models.JobStatusPending,
	}

	if v := get("min_salary"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("bad min_salary %q", v)
		}
		job.MinSalary = f
	}
	if v := get("max_salary"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("bad max_salary %q", v)
		}
		job.MaxSalary = f
	}
	if v := get("vacancies"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bad vacancies %q", v)
		}
		job.Vacancies = n
	}

	if v := get("deadline"); v != "" {
		deadline, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("bad deadline %q", v)
		}
		job.Deadline = deadline
	} else {
		job.IsOngoing = true
	}

	if v := get("state"); v != "" {
		if id, ok := matchState(v, states); ok {
			job.StateID = &id
		}
	}
	if v := get("category"); v != "" {
		if id, ok := matchCategory(v, categories); ok {
			job.CategoryID = &id
		}
	}

	return job, nil
}

// upsert merges into an existing job with the same title and company
// name instead of duplicating it. Returns true when merged.
func (im *Importer) upsert(job *models.Job) (bool, error) {
	var existing models.Job
	err := im.db.Where("title = ? AND company_name = ? AND company_id IS NULL",
		job.Title, job.CompanyName).First(&existing).Error
	if err == nil {
		job.ID = existing.ID
		job.Status = existing.Status
		job.CreatedAt = existing.CreatedAt
		return true, im.db.Save(job).Error
	}
	if err != database.ErrNotFound {
		return false, err
	}
	return false, im.db.Create(job).Error
}

// matchState fuzzy-resolves a state name from the sheet against the
// seeded state table, so "Queensland" still lands on
// "QLD (Queensland)".
func matchState(name string, states []models.State) (uint, bool) {
	var bestID uint
	best := 0.0
	for _, s := range states {
		score := similarity(name, s.Name)
		if score > best {
			best = score
			bestID = s.ID
		}
	}
	return bestID, best >= similarityThreshold
}

func matchCategory(name string, categories []models.Category) (uint, bool) {
	var bestID uint
	best := 0.0
	for _, c := range categories {
		score := similarity(name, c.Name)
		if score > best {
			best = score
			bestID = c.ID
		}
	}
	return bestID, best >= similarityThreshold
}

// similarity compares normalized names, also checking the bare
// parenthesized portion of names like "QLD (Queensland)".
func similarity(input, candidate string) float64 {
	input = strings.ToLower(strings.TrimSpace(input))
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	if input == "" || candidate == "" {
		return 0
	}

	best := levenshtein.Similarity(input, candidate, levenshtein.NewParams())
	if open := strings.Index(candidate, "("); open >= 0 {
		inner := strings.Trim(candidate[open:], "()")
		if score := levenshtein.Similarity(input, inner, levenshtein.NewParams()); score > best {
			best = score
		}
		prefix := strings.TrimSpace(candidate[:open])
		if score := levenshtein.Similarity(input, prefix, levenshtein.NewParams()); score > best {
			best = score
		}
	}
	return best
}

func (im *Importer) loadStates() []models.State {
	var states []models.State
	if err := im.db.Find(&states).Error; err != nil {
		log.Printf("Error loading states: %v", err)
	}
	return states
}

func (im *Importer) loadCategories() []models.Category {
	var categories []models.Category
	if err := im.db.Find(&categories).Error; err != nil {
		log.Printf("Error loading categories: %v", err)
	}
	return categories
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			columns[key] = i
		}
	}
	return columns
}
