package report

import (
	"strings"
	"time"
)

// MarkdownLink renders a markdown link, replacing square brackets in the
// title so they cannot break the link syntax.
func MarkdownLink(title, url string) string {
	title = strings.NewReplacer("[", "(", "]", ")").Replace(title)
	return "[" + title + "](" + url + ")"
}

// FormatTimestamp formats t as UTC to minute precision, e.g.
// 2026-02-14T09:30+00:00.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04-07:00")
}

// Header renders the report title block.
func Header(generatedAt time.Time, region, status string) string {
	var b strings.Builder
	b.WriteString("# 🎾 Daily Tennis Intelligence Report\n\n")
	b.WriteString("- Date (UTC): " + FormatTimestamp(generatedAt) + "\n")
	b.WriteString("- Region: " + region + "\n")
	b.WriteString("- Status: " + status + "\n")
	return b.String()
}

// Assemble joins the header and section bodies into one document.
func Assemble(header string, sections []Section) string {
	parts := []string{header}
	for _, s := range sections {
		parts = append(parts, s.Markdown)
	}
	return strings.Join(parts, "\n")
}

// bullets renders lines as a markdown list followed by a blank line.
func bullets(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString("- " + l + "\n")
	}
	b.WriteString("\n")
}

func heading(b *strings.Builder, level int, text string) {
	b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
}
