package report

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

const starsTitle = "1) Tennis Stars Brief (ATP/WTA 500+ only)"

// StarsSection covers elite-tier news. The strict query keeps only
// English, allow-listed, non low-tier headlines whose page summary is
// English too; when nothing survives a broader query runs without the tier
// filter.
func (b *Builder) StarsSection(ctx context.Context) Section {
	cfg := b.cfg.Sections.Stars
	rules := b.cfg.FilterRules()

	strict := curate.Chain{
		curate.HasTitleAndURL,
		curate.NotLowTier(rules.LowTierTerms),
		curate.LooksEnglish(rules.EnglishHints),
		curate.FromAllowedSource(rules.AllowedDomains),
	}
	raw := b.searcher.Search(ctx, cfg.Strict.ToQuery())
	items := b.summarized(ctx, strict.Apply(raw), cfg.MaxItems, rules.EnglishHints)

	if len(items) == 0 {
		log.Info("Strict elite query returned nothing usable, trying fallback")
		fallback := curate.Chain{
			curate.HasTitleAndURL,
			curate.LooksEnglish(rules.EnglishHints),
			curate.FromAllowedSource(rules.AllowedDomains),
		}
		raw = b.searcher.Search(ctx, cfg.Fallback.ToQuery())
		items = b.summarized(ctx, fallback.Apply(raw), cfg.FallbackMaxItems, rules.EnglishHints)
	}

	entities := curate.ExtractEntities(curate.Titles(items), b.cfg.Keywords())
	return Section{
		Name:     "stars",
		Title:    starsTitle,
		Markdown: renderStars(items, entities),
		Items:    items,
		Entities: entities,
	}
}

// summarized attaches page summaries, keeping up to limit articles whose
// summary passes the language check.
func (b *Builder) summarized(ctx context.Context, candidates []curate.Article, limit int, hints []string) []curate.Article {
	candidates = curate.Dedupe(candidates, len(candidates))

	var out []curate.Article
	for _, a := range candidates {
		if len(out) >= limit || ctx.Err() != nil {
			break
		}
		summary := b.summaryFor(ctx, a)
		if !curate.IsEnglish(summary, hints) {
			continue
		}
		a.Summary = summary
		out = append(out, a)
	}
	return out
}

// summaryFor fetches the article page. Aggregator links lead to a redirect
// page rather than the story, so those keep the description their feed
// supplied.
func (b *Builder) summaryFor(ctx context.Context, a curate.Article) string {
	if a.ViaAggregator() {
		return a.Summary
	}
	return b.summarizer.Summarize(ctx, a.Identity())
}

func renderStars(items []curate.Article, entities curate.EntityBundle) string {
	var b strings.Builder
	heading(&b, 2, starsTitle)

	heading(&b, 3, "What’s happening")
	if len(items) == 0 {
		b.WriteString("- Elite tennis news volume is unusually low today.\n")
		b.WriteString("  - This typically occurs between major match days or before late-round play.\n\n")
	}
	for _, it := range items {
		b.WriteString("- **" + it.Title + "**\n")
		b.WriteString("  - " + it.Summary + "\n\n")
	}

	heading(&b, 3, "Analysis")
	var analysis []string
	if len(entities.Players) > 0 {
		analysis = append(analysis, "Key players in focus: "+strings.Join(entities.Players, ", "))
	} else {
		analysis = append(analysis, "Coverage is currently player-neutral (no single dominant storyline).")
	}
	if len(entities.Tournaments) > 0 {
		analysis = append(analysis, "Tournaments driving coverage: "+strings.Join(entities.Tournaments, ", "))
	} else {
		analysis = append(analysis, "Coverage is spread across the broader tour rather than one event.")
	}
	if len(entities.Tags) > 0 {
		analysis = append(analysis, "Recurring themes: "+strings.Join(entities.Tags, ", "))
	}
	bullets(&b, analysis)

	heading(&b, 3, "Why this matters")
	bullets(&b, []string{
		"This brief filters out all lower-tier noise (250s, Challengers, ITFs).",
		"On quiet news days, the absence of headlines usually signals **stable draws and expected results**.",
		"As tournaments reach quarterfinal and semifinal stages, narrative intensity typically increases sharply.",
		"Use this section to decide **which matches to prioritise watching** and **which players’ form to monitor**.",
	})
	return b.String()
}
