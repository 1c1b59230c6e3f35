package analyses

// HighRisk keeps the records that carry at least one outlier whose severity
// meets threshold. Input order is preserved.
func HighRisk(records []*AnalysisRecord, threshold Severity) []*AnalysisRecord {
	out := make([]*AnalysisRecord, 0)
	for _, rec := range records {
		for _, o := range rec.SemanticAnalysis.Outliers {
			if o.Severity.AtLeast(threshold) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// Recent walks records from the end and returns at most limit of them.
// This is a reversal of the enumeration order the records came in, not a sort
// by timestamp.
func Recent(records []*AnalysisRecord, limit int) []*AnalysisRecord {
	if limit <= 0 {
		return []*AnalysisRecord{}
	}
	if limit > len(records) {
		limit = len(records)
	}
	out := make([]*AnalysisRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out
}
