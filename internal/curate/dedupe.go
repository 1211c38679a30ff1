package curate

// Dedupe keeps the first occurrence of each identity, in input order, and
// stops once limit articles are kept. Articles without an identity are
// dropped.
func Dedupe(articles []Article, limit int) []Article {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, min(limit, len(articles)))
	for _, a := range articles {
		key := a.Identity()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
		if len(out) >= limit {
			break
		}
	}
	return out
}
