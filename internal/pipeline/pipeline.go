package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/collect"
	"github.com/TobiSchelling/TennisDigest/internal/config"
	"github.com/TobiSchelling/TennisDigest/internal/database"
	"github.com/TobiSchelling/TennisDigest/internal/fetch"
	"github.com/TobiSchelling/TennisDigest/internal/report"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunID  string
	Path   string
	Report *report.Report
	Steps  []StepResult
}

// Pipeline builds, writes and records one daily report.
type Pipeline struct {
	cfg       *config.Config
	db        *database.DB
	builder   *report.Builder
	outputDir string
}

// New creates a pipeline using the configured news sources. db may be nil,
// in which case the run is not recorded. Searches and page fetches share
// one pacer, so the request delay applies to every outbound call.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	pacer := collect.NewPacer(cfg.RequestDelay())
	searcher := collect.NewPacedSearcher(cfg, pacer)
	summarizer := fetch.NewContentFetcher(cfg.Timeout(), cfg.Sources.UserAgent)
	summarizer.SetPacer(pacer)
	return NewWithBuilder(cfg, db, report.NewBuilder(cfg, searcher, summarizer))
}

// NewWithBuilder creates a pipeline around an existing builder.
func NewWithBuilder(cfg *config.Config, db *database.DB, builder *report.Builder) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		builder:   builder,
		outputDir: cfg.Output.ReportsDir,
	}
}

// SetOutputDir overrides the reports directory from config.
func (p *Pipeline) SetOutputDir(dir string) {
	if dir != "" {
		p.outputDir = dir
	}
}

// Run executes the five steps in order.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &Result{RunID: uuid.NewString()}
	logger := log.WithField("run_id", r.RunID)

	var sections []report.Section
	builders := []struct {
		name  string
		build func(context.Context) report.Section
	}{
		{"Stars", p.builder.StarsSection},
		{"Gear", p.builder.GearSection},
		{"Improvement", p.builder.ImprovementSection},
	}
	for i, b := range builders {
		logger.Infof("Step %d/5: Building %s section...", i+1, b.name)
		sec := b.build(ctx)
		sections = append(sections, sec)
		r.Steps = append(r.Steps, StepResult{
			Name:    b.name,
			Summary: sectionSummary(sec),
		})
	}

	r.Report = p.builder.Assemble(sections)

	// Step 4: Write
	logger.Info("Step 4/5: Writing report...")
	path, err := report.Write(p.outputDir, r.Report)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Write", Err: err})
		return r
	}
	r.Path = path
	r.Steps = append(r.Steps, StepResult{Name: "Write", Summary: "Report written to " + path})

	// Step 5: Record
	logger.Info("Step 5/5: Recording run...")
	r.Steps = append(r.Steps, p.record(r))

	return r
}

// DryRun lists what would be queried without touching the network.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}
	s := p.cfg.Sections

	r.Steps = append(r.Steps, StepResult{
		Name: "Stars",
		Summary: fmt.Sprintf("[dry-run] strict query (%d records, %dh), fallback query (%d records, %dh)",
			s.Stars.Strict.MaxRecords, s.Stars.Strict.Hours, s.Stars.Fallback.MaxRecords, s.Stars.Fallback.Hours),
	})
	for _, ls := range []struct {
		name string
		cfg  config.ListSection
	}{{"Gear", s.Gear}, {"Improvement", s.Improvement}} {
		r.Steps = append(r.Steps, StepResult{
			Name: ls.name,
			Summary: fmt.Sprintf("[dry-run] %d queries, broaden below %d items, show %d",
				len(ls.cfg.Queries), ls.cfg.MinItems, ls.cfg.ShowItems),
		})
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Write",
		Summary: "[dry-run] Would write " + filepath.Join(p.outputDir, report.FileName(p.builder.Now())),
	})

	summary := "[dry-run] History disabled"
	if p.db != nil {
		summary = "[dry-run] Would record run in " + p.db.Path()
	}
	r.Steps = append(r.Steps, StepResult{Name: "Record", Summary: summary})

	return r
}

func (p *Pipeline) record(r *Result) StepResult {
	if p.db == nil {
		return StepResult{Name: "Record", Summary: "History disabled, run not recorded"}
	}

	var stars report.Section
	var items []database.ReportItem
	for _, sec := range r.Report.Sections {
		if sec.Name == "stars" {
			stars = sec
		}
		for i, it := range sec.Items {
			items = append(items, database.ReportItem{
				Section:  sec.Name,
				Position: i + 1,
				Title:    it.Title,
				URL:      it.Identity(),
			})
		}
	}

	err := p.db.RecordRun(database.ReportRecord{
		RunID:        r.RunID,
		GeneratedAt:  r.Report.GeneratedAt,
		Region:       r.Report.Region,
		Path:         r.Path,
		BodyMarkdown: r.Report.Markdown,
		ItemCount:    len(items),
		Entities:     stars.Entities,
	}, items)
	if err != nil {
		return StepResult{Name: "Record", Err: err}
	}
	return StepResult{
		Name:    "Record",
		Summary: fmt.Sprintf("Recorded run %s with %d items", r.RunID, len(items)),
	}
}

func sectionSummary(sec report.Section) string {
	if len(sec.Items) == 0 {
		return "No items, placeholder rendered"
	}
	return fmt.Sprintf("%d items", len(sec.Items))
}
