package dataset

// Dedup collapses records sharing an identity key. Input must already be
// in page-index order; the last occurrence wins, but the winner is
// placed at the position of the first occurrence so output order is
// stable. Records with an empty identity are kept as-is. Dedup is
// idempotent.
func Dedup(recs []CanonicalRecord) []CanonicalRecord {
	out := make([]CanonicalRecord, 0, len(recs))
	index := make(map[string]int, len(recs))

	for _, rec := range recs {
		id := rec.Identity()
		if id == "" {
			out = append(out, rec)
			continue
		}
		if at, seen := index[id]; seen {
			out[at] = rec
			continue
		}
		index[id] = len(out)
		out = append(out, rec)
	}
	return out
}
