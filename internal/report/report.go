// Package report builds the daily tennis digest in markdown.
package report

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/collect"
	"github.com/TobiSchelling/TennisDigest/internal/config"
	"github.com/TobiSchelling/TennisDigest/internal/curate"
	"github.com/TobiSchelling/TennisDigest/internal/fetch"
)

// StatusOK is the status line of a completed run.
const StatusOK = "Pipeline ran successfully"

// Section is one rendered part of the report.
type Section struct {
	Name     string
	Title    string
	Markdown string
	Items    []curate.Article
	Entities curate.EntityBundle
}

// Report is a fully rendered digest.
type Report struct {
	GeneratedAt time.Time
	Region      string
	Sections    []Section
	Markdown    string
}

// ItemCount returns the number of articles listed across all sections.
func (r *Report) ItemCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Items)
	}
	return n
}

// Builder renders report sections from search results.
type Builder struct {
	cfg        *config.Config
	searcher   collect.Searcher
	summarizer fetch.Summarizer
	now        func() time.Time
}

// NewBuilder creates a new report builder.
func NewBuilder(cfg *config.Config, searcher collect.Searcher, summarizer fetch.Summarizer) *Builder {
	return &Builder{
		cfg:        cfg,
		searcher:   searcher,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// SetClock overrides the time source used for the header.
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

// Now returns the builder's current time in UTC.
func (b *Builder) Now() time.Time {
	return b.now().UTC()
}

// Build renders every section and assembles the document.
func (b *Builder) Build(ctx context.Context) *Report {
	sections := []Section{
		b.StarsSection(ctx),
		b.GearSection(ctx),
		b.ImprovementSection(ctx),
	}
	return b.Assemble(sections)
}

// Assemble renders the header and joins already built sections.
func (b *Builder) Assemble(sections []Section) *Report {
	r := &Report{
		GeneratedAt: b.Now(),
		Region:      b.cfg.GetRegion(),
		Sections:    sections,
	}
	r.Markdown = Assemble(Header(r.GeneratedAt, r.Region, StatusOK), sections)
	log.WithFields(log.Fields{
		"sections": len(sections),
		"items":    r.ItemCount(),
	}).Info("Report assembled")
	return r
}
