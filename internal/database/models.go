package database

import (
	"time"

	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

// ReportRecord is a generated report as stored in the run history.
type ReportRecord struct {
	ID           int64
	RunID        string
	GeneratedAt  time.Time
	Region       string
	Path         string
	BodyMarkdown string
	ItemCount    int
	Entities     curate.EntityBundle
}

// ReportItem is one article listed in a report section.
type ReportItem struct {
	ID       int64
	RunID    string
	Section  string
	Position int
	Title    string
	URL      string
}

// Stats contains aggregate database statistics.
type Stats struct {
	Reports      int
	Items        int
	DistinctURLs int
	Regions      int
}
