package report

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/TennisDigest/internal/collect"
	"github.com/TobiSchelling/TennisDigest/internal/config"
	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

// NotEnoughData is rendered when a section has no articles.
const NotEnoughData = "Not enough data today."

type prose struct {
	heading string
	lines   []string
}

// listTemplate is the fixed text around a curated link list.
type listTemplate struct {
	name        string
	title       string
	intro       string
	listHeading string
	after       []prose
}

var gearTemplate = listTemplate{
	name:        "gear",
	title:       "2) Tennis Accessories Radar (best on the market)",
	intro:       "Sources: recent articles/reviews (last 48h). Goal: shortlist what’s worth researching/buying.",
	listHeading: "Recent “best / review” signals",
	after: []prose{
		{"Analysis (how to use this)", []string{
			"Focus on **repeat-buy accessories** first (overgrips, strings). They drive recurring revenue and quick testing cycles.",
			"Treat shoes/bags as **higher-friction** purchases. Buy only if multiple reputable sources converge.",
			"Build a shortlist of 2–3 candidates per category and test one variable at a time (e.g., overgrip tackiness vs durability).",
		}},
		{"Today’s recommendation", []string{
			"Pick **one** category to research (e.g., overgrips). Open the top 2 links, extract the exact product names, and compare price/availability locally.",
		}},
	},
}

var improvementTemplate = listTemplate{
	name:        "improvement",
	title:       "3) Tennis Improvement Tips (practical, actionable)",
	intro:       "Sources: recent coaching/tactics/conditioning articles (last 7 days). Goal: one theme/day.",
	listHeading: "Recent coaching signals",
	after: []prose{
		{"Analysis (how to convert tips into progress)", []string{
			"Don’t collect tips. Convert them into a **single daily focus**.",
			"Use a tight loop: **Read 2 mins → pick 1 cue → do 15 mins reps → stop**.",
			"Track only one metric: e.g., first-serve % in practice sets, or return depth on 10 consecutive returns.",
		}},
		{"Today’s execution template", []string{
			"Choose one area: **Serve / Return / Footwork / Tactics / Conditioning**",
			"Write 1 sentence: “Today I will focus on ________.”",
			"Do 15 minutes of reps. End.",
		}},
	},
}

// GearSection lists recent accessory reviews.
func (b *Builder) GearSection(ctx context.Context) Section {
	return b.listSection(ctx, gearTemplate, b.cfg.Sections.Gear)
}

// ImprovementSection lists recent coaching and tactics articles.
func (b *Builder) ImprovementSection(ctx context.Context) Section {
	return b.listSection(ctx, improvementTemplate, b.cfg.Sections.Improvement)
}

// listSection runs every query, dedupes, and broadens with the section's
// broad query when fewer than MinItems remain.
func (b *Builder) listSection(ctx context.Context, tmpl listTemplate, cfg config.ListSection) Section {
	queries := make([]curate.Query, 0, len(cfg.Queries))
	for _, q := range cfg.Queries {
		queries = append(queries, q.ToQuery())
	}

	items := collect.SearchAll(ctx, b.searcher, queries)
	items = curate.Dedupe(items, cfg.DedupeLimit)

	broad := curate.SupplierFunc(func() []curate.Article {
		log.WithField("section", tmpl.name).Infof("Only %d items, broadening query", len(items))
		return b.searcher.Search(ctx, cfg.Broad.ToQuery())
	})
	items = curate.Broaden(items, cfg.MinItems, broad)
	items = curate.Truncate(items, cfg.ShowItems)

	return Section{
		Name:     tmpl.name,
		Title:    tmpl.title,
		Markdown: renderList(tmpl, items),
		Items:    items,
	}
}

func renderList(tmpl listTemplate, items []curate.Article) string {
	var b strings.Builder
	heading(&b, 2, tmpl.title)
	b.WriteString(tmpl.intro + "\n\n")

	heading(&b, 3, tmpl.listHeading)
	if len(items) == 0 {
		bullets(&b, []string{NotEnoughData})
	} else {
		links := make([]string, 0, len(items))
		for _, it := range items {
			links = append(links, MarkdownLink(it.Title, it.Identity()))
		}
		bullets(&b, links)
	}

	for _, p := range tmpl.after {
		heading(&b, 3, p.heading)
		bullets(&b, p.lines)
	}
	return b.String()
}
