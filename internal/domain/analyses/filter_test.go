package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func recordWith(id string, sevs ...Severity) *AnalysisRecord {
	rec := &AnalysisRecord{ID: AnalysisID(id)}
	for _, s := range sevs {
		rec.SemanticAnalysis.Outliers = append(rec.SemanticAnalysis.Outliers, SemanticOutlier{Severity: s})
	}
	return rec
}

func ids(records []*AnalysisRecord) []AnalysisID {
	out := make([]AnalysisID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestHighRisk_Threshold(t *testing.T) {
	records := []*AnalysisRecord{
		recordWith("low", SeverityLow),
		recordWith("medium", SeverityMedium),
		recordWith("critical", SeverityCritical),
	}

	assert.Equal(t, []AnalysisID{"low", "medium", "critical"}, ids(HighRisk(records, SeverityLow)))
	assert.Equal(t, []AnalysisID{"medium", "critical"}, ids(HighRisk(records, SeverityMedium)))
	assert.Equal(t, []AnalysisID{"critical"}, ids(HighRisk(records, SeverityHigh)))
	assert.Equal(t, []AnalysisID{"critical"}, ids(HighRisk(records, SeverityCritical)))
}

func TestHighRisk_AnyOutlierQualifies(t *testing.T) {
	records := []*AnalysisRecord{
		recordWith("mixed", SeverityLow, SeverityHigh),
		recordWith("none"),
	}
	got := HighRisk(records, SeverityHigh)
	assert.Equal(t, []AnalysisID{"mixed"}, ids(got))
}

func TestHighRisk_EmptyIsNotNil(t *testing.T) {
	got := HighRisk(nil, SeverityLow)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecent(t *testing.T) {
	records := []*AnalysisRecord{recordWith("a"), recordWith("b"), recordWith("c")}

	assert.Equal(t, []AnalysisID{"c", "b"}, ids(Recent(records, 2)))
	assert.Equal(t, []AnalysisID{"c", "b", "a"}, ids(Recent(records, 10)))

	zero := Recent(records, 0)
	assert.NotNil(t, zero)
	assert.Empty(t, zero)

	assert.Empty(t, Recent(nil, 5))
}
