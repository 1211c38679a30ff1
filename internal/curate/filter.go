package curate

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Predicate decides whether an article is kept.
type Predicate func(Article) bool

// Chain is a sequence of predicates combined with logical AND.
type Chain []Predicate

// Apply returns the articles that pass every predicate, in input order.
func (c Chain) Apply(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if c.Keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Keep reports whether a passes all predicates, stopping at the first failure.
func (c Chain) Keep(a Article) bool {
	for _, p := range c {
		if !p(a) {
			return false
		}
	}
	return true
}

// HasTitleAndURL drops articles missing a title or any link.
func HasTitleAndURL(a Article) bool {
	return strings.TrimSpace(a.Title) != "" && a.Identity() != ""
}

// LooksEnglish keeps articles whose title passes IsEnglish.
func LooksEnglish(hints []string) Predicate {
	return func(a Article) bool {
		return IsEnglish(a.Title, hints)
	}
}

// IsEnglish is a cheap language heuristic: more than 90% of the runes are
// ASCII and the lowercased text contains at least one hint.
func IsEnglish(text string, hints []string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)

	total := utf8.RuneCountInString(t)
	ascii := 0
	for _, r := range t {
		if r < utf8.RuneSelf {
			ascii++
		}
	}
	if float64(ascii)/float64(total) <= 0.9 {
		return false
	}
	return containsAny(t, hints)
}

// aggregatorHosts link to their own redirect pages rather than to the
// publisher.
var aggregatorHosts = []string{"news.google.com"}

// FromAllowedSource keeps articles whose URL host contains one of domains.
// For aggregator links the publisher's SourceURL host is checked instead.
func FromAllowedSource(domains []string) Predicate {
	return func(a Article) bool {
		host := PublisherHost(a)
		if host == "" {
			return false
		}
		return containsAny(host, domains)
	}
}

// PublisherHost returns the lowercased host of the site that published a.
func PublisherHost(a Article) string {
	host := hostOf(a.Identity())
	if IsAggregator(host) && a.SourceURL != "" {
		return hostOf(a.SourceURL)
	}
	return host
}

// ViaAggregator reports whether a's link points at an aggregator.
func (a Article) ViaAggregator() bool {
	return IsAggregator(hostOf(a.Identity()))
}

// IsAggregator reports whether host serves aggregator redirect links.
func IsAggregator(host string) bool {
	for _, h := range aggregatorHosts {
		if host == h {
			return true
		}
	}
	return false
}

// NotLowTier drops articles whose title mentions a low-tier event, and
// articles with no title at all. Terms are matched as plain substrings, so
// a bare "125" also hits scores and dates.
func NotLowTier(terms []string) Predicate {
	return func(a Article) bool {
		if strings.TrimSpace(a.Title) == "" {
			return false
		}
		return !IsLowTier(a.Title, terms)
	}
}

// IsLowTier reports whether title contains any of terms, ignoring case.
func IsLowTier(title string, terms []string) bool {
	return containsAny(strings.ToLower(title), terms)
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// containsAny expects text to be lowercased already.
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
