package curate

import "strings"

// EntityBundle holds the keyword matches found in a batch of titles.
type EntityBundle struct {
	Players     []string
	Tournaments []string
	Tags        []string
}

// Empty reports whether no category matched.
func (b EntityBundle) Empty() bool {
	return len(b.Players) == 0 && len(b.Tournaments) == 0 && len(b.Tags) == 0
}

// ExtractEntities scans titles for the configured keywords. Matching is
// case-insensitive substring containment; each category keeps the
// configured display form in first-seen order, capped at kw.Cap.
func ExtractEntities(titles []string, kw Keywords) EntityBundle {
	players := newOrderedSet(kw.Cap)
	tournaments := newOrderedSet(kw.Cap)
	tags := newOrderedSet(kw.Cap)

	for _, t := range titles {
		tl := strings.ToLower(t)
		players.addMatches(tl, kw.Players)
		tournaments.addMatches(tl, kw.Tournaments)
		tags.addMatches(tl, kw.Tags)
	}

	return EntityBundle{
		Players:     players.items,
		Tournaments: tournaments.items,
		Tags:        tags.items,
	}
}

type orderedSet struct {
	limit int
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(limit int) *orderedSet {
	return &orderedSet{limit: limit, seen: make(map[string]struct{})}
}

func (s *orderedSet) addMatches(lowerTitle string, keywords []string) {
	for _, k := range keywords {
		if s.limit > 0 && len(s.items) >= s.limit {
			return
		}
		if k == "" || !strings.Contains(lowerTitle, strings.ToLower(k)) {
			continue
		}
		if _, ok := s.seen[k]; ok {
			continue
		}
		s.seen[k] = struct{}{}
		s.items = append(s.items, k)
	}
}
