package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/TobiSchelling/scholarfetch/internal/config"
	"github.com/TobiSchelling/scholarfetch/internal/database"
	"github.com/TobiSchelling/scholarfetch/internal/fetch"
	"github.com/TobiSchelling/scholarfetch/internal/output"
	"github.com/TobiSchelling/scholarfetch/internal/scholar"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a pipeline run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	Steps      []StepResult
	Page       *fetch.Page
	Data       *scholar.FetchResult
	OutputPath string
}

// Err returns the error of the step that stopped the run, if any.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// Fetcher retrieves the raw profile page.
type Fetcher interface {
	Fetch(ctx context.Context) (*fetch.Page, error)
	URL() string
}

// Pipeline runs fetch -> extract -> normalize -> write for one profile.
type Pipeline struct {
	cfg       *config.Config
	db        *database.DB
	fetcher   Fetcher
	extractor *scholar.Extractor
	now       func() time.Time
}

// New creates a pipeline from config. db may be nil to skip run history.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	fetcher := fetch.NewProfileFetcher(cfg.ProfileURL(), cfg.Profile.UserAgent, cfg.Timeout(), cfg.DebugPath())
	return NewWithFetcher(cfg, db, fetcher)
}

// NewWithFetcher creates a pipeline with a custom page source.
func NewWithFetcher(cfg *config.Config, db *database.DB, fetcher Fetcher) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		fetcher:   fetcher,
		extractor: scholar.NewExtractor(cfg.Profile.BaseURL),
		now:       time.Now,
	}
}

// Run executes the pipeline once. The first failing step stops the run,
// so the output file is never written after a fetch or extraction error.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &Result{RunID: uuid.NewString(), StartedAt: p.now()}
	defer p.record(r)

	// Step 1: Fetch
	step := p.runFetch(ctx, r)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Extract
	profile, step := p.runExtract(r.Page)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 3: Normalize
	step = p.runNormalize(profile, r)
	r.Steps = append(r.Steps, step)

	// Step 4: Write
	step = p.runWrite(r)
	r.Steps = append(r.Steps, step)

	return r
}

func (p *Pipeline) runFetch(ctx context.Context, r *Result) StepResult {
	log.Println("Step 1/4: Fetching profile page...")
	page, err := p.fetcher.Fetch(ctx)
	r.Page = page
	if err != nil {
		return StepResult{Name: "Fetch", Err: err}
	}
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d bytes (HTTP %d)", len(page.Body), page.StatusCode),
	}
}

func (p *Pipeline) runExtract(page *fetch.Page) (*scholar.Profile, StepResult) {
	log.Println("Step 2/4: Extracting profile data...")
	profile, err := p.extractor.Extract(page.Body)
	if err != nil {
		return nil, StepResult{Name: "Extract", Err: err}
	}
	return profile, StepResult{
		Name:    "Extract",
		Summary: fmt.Sprintf("Found %d publication rows, %d metrics", len(profile.Publications), len(profile.Metrics)),
	}
}

func (p *Pipeline) runNormalize(profile *scholar.Profile, r *Result) StepResult {
	log.Println("Step 3/4: Normalizing...")
	scholar.Normalize(profile)
	r.Data = scholar.NewFetchResult(profile, p.now())
	return StepResult{
		Name:    "Normalize",
		Summary: fmt.Sprintf("Sorted %d publications by year", len(profile.Publications)),
	}
}

func (p *Pipeline) runWrite(r *Result) StepResult {
	log.Println("Step 4/4: Writing JSON...")
	path := p.cfg.OutputPath()
	if err := output.WriteJSON(path, r.Data); err != nil {
		return StepResult{Name: "Write", Err: fmt.Errorf("writing %s: %w", path, err)}
	}
	r.OutputPath = path
	return StepResult{Name: "Write", Summary: fmt.Sprintf("Wrote %s", path)}
}

// record stores the run in the history database. Failures here are
// logged only; they never change the outcome of the run.
func (p *Pipeline) record(r *Result) {
	if p.db == nil {
		return
	}

	run := database.Run{
		ID:         r.RunID,
		ProfileURL: p.fetcher.URL(),
		StartedAt:  database.FormatTime(r.StartedAt),
		FinishedAt: database.FormatTime(p.now()),
		Status:     database.StatusOK,
	}
	if r.Page != nil {
		run.HTTPStatus = r.Page.StatusCode
	}

	if err := r.Err(); err != nil {
		msg := err.Error()
		run.Status = database.StatusFailed
		run.Error = &msg
	} else if r.Data != nil {
		run.PublicationCount = len(r.Data.Publications)
		path := r.OutputPath
		run.OutputPath = &path
		data, err := output.Marshal(r.Data)
		if err != nil {
			log.Printf("Failed to encode run result: %v", err)
		} else {
			s := string(data)
			run.ResultJSON = &s
		}
	}

	if err := p.db.InsertRun(run); err != nil {
		log.Printf("Failed to record run %s: %v", r.RunID, err)
	}
}
