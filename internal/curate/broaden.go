package curate

// minBroadenLimit is the smallest dedupe limit applied after broadening.
const minBroadenLimit = 15

// Supplier produces a broader candidate list on demand.
type Supplier interface {
	Candidates() []Article
}

// SupplierFunc adapts a function to Supplier.
type SupplierFunc func() []Article

// Candidates calls f.
func (f SupplierFunc) Candidates() []Article {
	return f()
}

// Broaden returns curated unchanged when it already holds threshold
// articles. Otherwise it asks supplier once for more and dedupes the merged
// list with a limit of max(threshold, 15).
func Broaden(curated []Article, threshold int, supplier Supplier) []Article {
	if len(curated) >= threshold || supplier == nil {
		return curated
	}

	extra := supplier.Candidates()
	merged := make([]Article, 0, len(curated)+len(extra))
	merged = append(merged, curated...)
	merged = append(merged, extra...)

	return Dedupe(merged, max(threshold, minBroadenLimit))
}
