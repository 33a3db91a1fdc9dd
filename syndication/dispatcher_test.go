package syndication_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/models"
	"github.com/umarijaz5156/jobpilot-sub000/syndication"
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

// fakeAdapter records whether it ran and fails on demand.
type fakeAdapter struct {
	name string
	fail bool

	mu  sync.Mutex
	ran bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Publish(ctx context.Context, job *models.Job) error {
	f.mu.Lock()
	f.ran = true
	f.mu.Unlock()
	if f.fail {
		return errors.New("boom")
	}
	return nil
}

func TestDispatch_FailureDoesNotBlockSiblings(t *testing.T) {
	first := &fakeAdapter{name: "partner:a"}
	second := &fakeAdapter{name: "partner:b", fail: true}
	third := &fakeAdapter{name: "partner:c"}

	d := syndication.NewDispatcher(first, second, third)
	job := &models.Job{ID: 1, Title: "Job"}

	outcomes := d.Dispatch(context.Background(), job, []string{"partner:a", "partner:b", "partner:c"})

	if !first.ran || !second.ran || !third.ran {
		t.Errorf("all adapters should run: a=%v b=%v c=%v", first.ran, second.ran, third.ran)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}

	failures := 0
	for _, out := range outcomes {
		if out.Err() != nil {
			failures++
			if out.Channel != "partner:b" {
				t.Errorf("unexpected failing channel %s", out.Channel)
			}
		}
	}
	if failures != 1 {
		t.Errorf("got %d failures, want 1", failures)
	}
}

func TestDispatch_OnlyEnabledChannelsRun(t *testing.T) {
	enabled := &fakeAdapter{name: "partner:a"}
	disabled := &fakeAdapter{name: "partner:b"}

	d := syndication.NewDispatcher(enabled, disabled)
	outcomes := d.Dispatch(context.Background(), &models.Job{ID: 1}, []string{"partner:a"})

	if !enabled.ran {
		t.Error("enabled adapter should run")
	}
	if disabled.ran {
		t.Error("disabled adapter should not run")
	}
	if len(outcomes) != 1 {
		t.Errorf("got %d outcomes, want 1", len(outcomes))
	}
}

func TestDispatch_UnknownChannelSkipped(t *testing.T) {
	d := syndication.NewDispatcher(&fakeAdapter{name: "partner:a"})
	outcomes := d.Dispatch(context.Background(), &models.Job{ID: 1}, []string{"partner:zzz"})
	if len(outcomes) != 0 {
		t.Errorf("unknown channel produced %d outcomes, want 0", len(outcomes))
	}
}

func TestTruncateWords(t *testing.T) {
	cases := []struct {
		text  string
		limit int
		want  string
	}{
		{"one two three four", 2, "one two…"},
		{"one two", 5, "one two"},
		{"one two", 0, "one two"},
		{"", 3, ""},
	}
	for _, c := range cases {
		if got := syndication.TruncateWords(c.text, c.limit); got != c.want {
			t.Errorf("TruncateWords(%q, %d) = %q, want %q", c.text, c.limit, got, c.want)
		}
	}
}
