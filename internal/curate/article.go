// Package curate filters, deduplicates and broadens search results and
// extracts entities from their titles.
package curate

import "time"

// Article is a single search result.
type Article struct {
	Title     string
	URL       string
	Link      string // alternate link, used when URL is empty
	Source    string
	SourceURL string // publisher site, set when the link is an aggregator's
	SeenAt    time.Time
	Summary   string
}

// Identity returns the key used for deduplication.
func (a Article) Identity() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Link
}

// Query is a search expression plus its parameters.
type Query struct {
	Expression string
	MaxRecords int
	Hours      int
}

// Titles returns the titles of articles in order.
func Titles(articles []Article) []string {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	return titles
}

// Truncate returns at most n articles.
func Truncate(articles []Article, n int) []Article {
	if n < 0 {
		n = 0
	}
	if len(articles) <= n {
		return articles
	}
	return articles[:n]
}
