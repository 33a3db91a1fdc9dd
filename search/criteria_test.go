package search_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/umarijaz5156/jobpilot-sub000/search"
)

// parseVia runs ParseCriteria through a real fiber request so query
// parsing behaves exactly as it does in the handlers.
func parseVia(t *testing.T, target string) (search.Criteria, error) {
	t.Helper()

	var crit search.Criteria
	var parseErr error
	app := fiber.New()
	app.Get("/jobs", func(c *fiber.Ctx) error {
		crit, parseErr = search.ParseCriteria(c)
		return nil
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	resp.Body.Close()
	return crit, parseErr
}

func TestParseCriteria_Defaults(t *testing.T) {
	crit, err := parseVia(t, "/jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crit.Page != 1 {
		t.Errorf("Page = %d, want 1", crit.Page)
	}
	if crit.Remote != nil {
		t.Error("Remote should be nil when not supplied")
	}
}

func TestParseCriteria_AllFields(t *testing.T) {
	crit, err := parseVia(t,
		"/jobs?keyword=planner&location=Sydney&category=engineering&state_id=4"+
			"&min_salary=50000&max_salary=90000&remote=true&sort=latest&page=3&tag=fifo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crit.Keyword != "planner" || crit.Location != "Sydney" || crit.CategorySlug != "engineering" {
		t.Errorf("string fields parsed wrong: %+v", crit)
	}
	if crit.StateID != 4 || crit.Page != 3 || crit.Tag != "fifo" {
		t.Errorf("numeric fields parsed wrong: %+v", crit)
	}
	if crit.MinSalary != 50000 || crit.MaxSalary != 90000 {
		t.Errorf("salary bounds parsed wrong: %+v", crit)
	}
	if crit.Remote == nil || !*crit.Remote {
		t.Errorf("Remote = %v, want true", crit.Remote)
	}
	if crit.Sort != search.SortLatest {
		t.Errorf("Sort = %q, want %q", crit.Sort, search.SortLatest)
	}
}

func TestParseCriteria_RejectsMalformedNumbers(t *testing.T) {
	for _, target := range []string{
		"/jobs?page=zero",
		"/jobs?page=0",
		"/jobs?state_id=abc",
		"/jobs?min_salary=lots",
		"/jobs?remote=maybe",
	} {
		if _, err := parseVia(t, target); err == nil {
			t.Errorf("%s: expected error, got nil", target)
		}
	}
}

func TestParseCriteria_UnknownSortFallsBack(t *testing.T) {
	crit, err := parseVia(t, "/jobs?sort=bogus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crit.Sort != "" {
		t.Errorf("Sort = %q, want default ordering", crit.Sort)
	}
}
