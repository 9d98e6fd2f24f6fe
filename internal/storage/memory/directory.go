package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"interview-analyzer/internal/storage"
)

// Directory хранит вакансии и отклики в памяти
type Directory struct {
	mu           sync.RWMutex
	jobs         map[string]*storage.Job
	applications map[string]*storage.Application
}

var _ storage.Directory = (*Directory)(nil)

// NewDirectory создает пустой справочник
func NewDirectory() *Directory {
	return &Directory{
		jobs:         make(map[string]*storage.Job),
		applications: make(map[string]*storage.Application),
	}
}

func (d *Directory) Job(ctx context.Context, id string) (*storage.Job, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	job, ok := d.jobs[id]
	if !ok {
		return nil, fmt.Errorf("вакансия %s: %w", id, storage.ErrNotFound)
	}
	c := *job
	c.InterviewQuestions = append([]string(nil), job.InterviewQuestions...)
	return &c, nil
}

func (d *Directory) Application(ctx context.Context, id string) (*storage.Application, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	app, ok := d.applications[id]
	if !ok {
		return nil, fmt.Errorf("отклик %s: %w", id, storage.ErrNotFound)
	}
	c := *app
	return &c, nil
}

// ListJobs возвращает копии всех вакансий по id
func (d *Directory) ListJobs(ctx context.Context) ([]*storage.Job, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*storage.Job, 0, len(d.jobs))
	for _, job := range d.jobs {
		c := *job
		c.InterviewQuestions = append([]string(nil), job.InterviewQuestions...)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListApplications возвращает копии всех откликов по id
func (d *Directory) ListApplications(ctx context.Context) ([]*storage.Application, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*storage.Application, 0, len(d.applications))
	for _, app := range d.applications {
		c := *app
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *Directory) AddJob(ctx context.Context, job *storage.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.jobs[job.ID]; exists {
		return fmt.Errorf("вакансия %s уже существует", job.ID)
	}
	c := *job
	c.InterviewQuestions = append([]string(nil), job.InterviewQuestions...)
	d.jobs[job.ID] = &c
	return nil
}

func (d *Directory) AddApplication(ctx context.Context, app *storage.Application) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.applications[app.ID]; exists {
		return fmt.Errorf("отклик %s уже существует", app.ID)
	}
	if _, ok := d.jobs[app.JobID]; !ok {
		return fmt.Errorf("вакансия %s: %w", app.JobID, storage.ErrNotFound)
	}
	c := *app
	if c.Status == "" {
		c.Status = storage.ApplicationApplied
	}
	d.applications[app.ID] = &c
	return nil
}

func (d *Directory) MarkInterviewCompleted(ctx context.Context, applicationID string, score float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	app, ok := d.applications[applicationID]
	if !ok {
		return fmt.Errorf("отклик %s: %w", applicationID, storage.ErrNotFound)
	}
	app.InterviewCompleted = true
	app.InterviewScore = score
	app.Status = storage.ApplicationCompleted
	return nil
}

func (d *Directory) Shortlist(ctx context.Context, applicationID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	app, ok := d.applications[applicationID]
	if !ok {
		return fmt.Errorf("отклик %s: %w", applicationID, storage.ErrNotFound)
	}
	app.Status = storage.ApplicationShortlisted
	return nil
}
