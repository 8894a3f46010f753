package dataset

// SourceResult is one source's deduplicated contribution to a run.
type SourceResult struct {
	Source  Source
	Records []CanonicalRecord
}

// Combine concatenates per-source results into the master table in the
// fixed Sources() order, regardless of the order results arrive in.
// Sources missing from results (failed or empty) contribute nothing;
// combining never fails because one source did.
func Combine(results []SourceResult) []CanonicalRecord {
	bySource := make(map[Source][]CanonicalRecord, len(results))
	total := 0
	for _, res := range results {
		bySource[res.Source] = append(bySource[res.Source], res.Records...)
		total += len(res.Records)
	}

	out := make([]CanonicalRecord, 0, total)
	for _, src := range Sources() {
		out = append(out, bySource[src]...)
	}
	return out
}
