package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Order(t *testing.T) {
	for i := 1; i < len(Severities); i++ {
		assert.Less(t, Severities[i-1].Rank(), Severities[i].Rank())
	}
	assert.Equal(t, 0, Severity("Severe").Rank())
	assert.False(t, Severity("").Valid())
}

func TestSeverity_AtLeast(t *testing.T) {
	tests := []struct {
		sev       Severity
		threshold Severity
		want      bool
	}{
		{SeverityLow, SeverityLow, true},
		{SeverityLow, SeverityMedium, false},
		{SeverityHigh, SeverityMedium, true},
		{SeverityCritical, SeverityCritical, true},
		{SeverityHigh, SeverityCritical, false},
		{Severity("bogus"), SeverityLow, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.sev)+">="+string(tt.threshold), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sev.AtLeast(tt.threshold))
		})
	}
}

func TestParseSeverity(t *testing.T) {
	for _, raw := range []string{"high", "HIGH", " High "} {
		sev, err := ParseSeverity(raw)
		require.NoError(t, err)
		assert.Equal(t, SeverityHigh, sev)
	}

	_, err := ParseSeverity("extreme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed: Low, Medium, High, Critical")

	_, err = ParseSeverity("")
	assert.Error(t, err)
}

func TestAnalysisRecord_MaxSeverity(t *testing.T) {
	rec := &AnalysisRecord{}
	_, ok := rec.MaxSeverity()
	assert.False(t, ok)

	rec.SemanticAnalysis.Outliers = []SemanticOutlier{
		{Severity: SeverityMedium},
		{Severity: SeverityCritical},
		{Severity: SeverityLow},
	}
	sev, ok := rec.MaxSeverity()
	assert.True(t, ok)
	assert.Equal(t, SeverityCritical, sev)
}
