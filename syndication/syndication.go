// Package syndication replicates persisted job postings to external
// destinations: partner job boards, a government vacancy registry, and
// social/professional network pages. Channels are independent of each
// other; one failing never stops the rest.
package syndication

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// Adapter publishes one job to one external destination.
type Adapter interface {
	Name() string
	Publish(ctx context.Context, job *models.Job) error
}

// Outcome is the per-channel result of one dispatch.
type Outcome struct {
	Channel string `json:"channel"`
	Error   string `json:"error,omitempty"`

	err error
}

func (o Outcome) Err() error { return o.err }

// Dispatcher fans a job out to the channels enabled on the request.
type Dispatcher struct {
	adapters map[string]Adapter
}

func NewDispatcher(adapters ...Adapter) *Dispatcher {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Dispatcher{adapters: m}
}

// Channels returns the registered channel names.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.adapters))
	for name := range d.adapters {
		names = append(names, name)
	}
	return names
}

// Dispatch publishes the job to every enabled channel and returns one
// outcome per channel. Channels run concurrently; every enabled channel
// is always attempted regardless of sibling failures. The job record
// itself is already committed before Dispatch is called.
func (d *Dispatcher) Dispatch(ctx context.Context, job *models.Job, enabled []string) []Outcome {
	outcomes := make([]Outcome, 0, len(enabled))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range enabled {
		adapter, ok := d.adapters[name]
		if !ok {
			log.Printf("syndication: unknown channel %q, skipping", name)
			continue
		}

		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			out := Outcome{Channel: a.Name()}
			if err := a.Publish(ctx, job); err != nil {
				log.Printf("syndication: %s failed for job %d: %v", a.Name(), job.ID, err)
				out.err = err
				out.Error = err.Error()
			}
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
		}(adapter)
	}

	wg.Wait()
	return outcomes
}

// TruncateWords cuts text down to at most limit words, appending an
// ellipsis when anything was dropped.
func TruncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if limit <= 0 || len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "…"
}

// DisplayCompany picks the display name: the owning company's account
// name when the job has one, otherwise the free-text company name
// carried by externally sourced postings.
func DisplayCompany(job *models.Job) string {
	if job.Company != nil && job.Company.User != nil && job.Company.User.Name != "" {
		return job.Company.User.Name
	}
	return job.CompanyName
}
