// Package collect queries news sources for tennis articles.
package collect

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/config"
	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

// Searcher runs one query against a news source. Failures are logged and
// yield an empty result.
type Searcher interface {
	Search(ctx context.Context, q curate.Query) []curate.Article
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q curate.Query) []curate.Article

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, q curate.Query) []curate.Article {
	return f(ctx, q)
}

// NewSearcher builds the configured source stack with its own pacer.
func NewSearcher(cfg *config.Config) Searcher {
	return NewPacedSearcher(cfg, NewPacer(cfg.RequestDelay()))
}

// NewPacedSearcher builds the configured source stack: GDELT first, Google
// News when GDELT has nothing. Every request to either source waits on
// pacer, so a fallback request is spaced from the GDELT one before it.
func NewPacedSearcher(cfg *config.Config, pacer *Pacer) Searcher {
	var primary, fallback Searcher

	if cfg.Sources.GDELT.Enabled {
		primary = Paced(NewGDELTClient(cfg.Sources.GDELT.BaseURL, cfg.Sources.UserAgent, cfg.Timeout()), pacer)
	}
	if cfg.Sources.GoogleNews.Enabled {
		region := LookupRegion(cfg.GetRegion())
		fallback = Paced(NewGoogleNewsClient(cfg.Sources.GoogleNews.BaseURL, region,
			cfg.Sources.GoogleNews.MaxEntries, cfg.Sources.UserAgent, cfg.Timeout()), pacer)
	}

	switch {
	case primary != nil && fallback != nil:
		return WithFallback(primary, fallback)
	case primary != nil:
		return primary
	case fallback != nil:
		return fallback
	default:
		log.Warn("No news sources enabled")
		return SearcherFunc(func(context.Context, curate.Query) []curate.Article { return nil })
	}
}

// WithFallback queries fallback only when primary returns nothing.
func WithFallback(primary, fallback Searcher) Searcher {
	return SearcherFunc(func(ctx context.Context, q curate.Query) []curate.Article {
		articles := primary.Search(ctx, q)
		if len(articles) > 0 {
			return articles
		}
		log.WithField("query", q.Expression).Debug("Primary source empty, trying fallback")
		return fallback.Search(ctx, q)
	})
}

// Pacer spaces outbound requests: every request but the first waits a
// fixed delay. One Pacer is shared by all network clients of a run.
type Pacer struct {
	mu      sync.Mutex
	delay   time.Duration
	started bool
}

// NewPacer creates a pacer with the given delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Wait blocks for the delay unless this is the first request. It returns
// the context error if ctx ends first.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	p.started = true
	return nil
}

// Throttled forwards queries once its pacer allows.
type Throttled struct {
	next  Searcher
	pacer *Pacer
}

// NewThrottled wraps s with a politeness delay of its own.
func NewThrottled(s Searcher, delay time.Duration) *Throttled {
	return Paced(s, NewPacer(delay))
}

// Paced wraps s with a shared pacer.
func Paced(s Searcher, pacer *Pacer) *Throttled {
	return &Throttled{next: s, pacer: pacer}
}

// Search waits on the pacer, then forwards the query.
func (t *Throttled) Search(ctx context.Context, q curate.Query) []curate.Article {
	if err := t.pacer.Wait(ctx); err != nil {
		return nil
	}
	return t.next.Search(ctx, q)
}

// SearchAll runs queries one after another and concatenates the results.
func SearchAll(ctx context.Context, s Searcher, queries []curate.Query) []curate.Article {
	var all []curate.Article
	for _, q := range queries {
		if ctx.Err() != nil {
			break
		}
		all = append(all, s.Search(ctx, q)...)
	}
	return all
}
