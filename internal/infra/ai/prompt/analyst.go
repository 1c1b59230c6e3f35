package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// maxOutliers caps how many outliers are rendered into the user prompt.
const maxOutliers = 20

// GetSystemPrompt provides directions for the risk narrative.
func GetSystemPrompt() string {
	return `You are a reviewer of semantic search integrity reports. You receive a search query, the results that were returned, and a list of outliers that an upstream analysis flagged because they sit semantically far from the rest of the result set.

Requirements:
- Answer in plain text, at most 6 short sentences. No markdown, no code fences.
- Start with the overall risk level, using the most severe outlier (Low, Medium, High or Critical).
- Name the outlying results and say briefly why each looks suspicious, using the given reasons and distances.
- Do not invent results, scores or distances that are not in the report.
- If there are no outliers, say the result set looks consistent.`
}

// GetUserPrompt renders the record into a compact report.
func GetUserPrompt(rec *analyses.AnalysisRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\n", rec.Query)
	fmt.Fprintf(&b, "Center of gravity: %s\n", rec.SemanticAnalysis.CenterOfGravity)
	fmt.Fprintf(&b, "Distance threshold: %.3f, consensus score: %.3f\n",
		rec.SemanticAnalysis.ThresholdUsed, rec.SemanticAnalysis.ConsensusScore)

	b.WriteString("Results:\n")
	for _, r := range rec.Results {
		fmt.Fprintf(&b, "- [%s] #%d %s (%s) trust=%.2f\n", r.ID, r.Rank, r.Title, r.SourceType, r.TrustworthinessScore)
	}

	outliers := sortedOutliers(rec.SemanticAnalysis.Outliers)
	if len(outliers) == 0 {
		b.WriteString("Outliers: none\n")
		return b.String()
	}
	b.WriteString("Outliers:\n")
	for i, o := range outliers {
		if i == maxOutliers {
			fmt.Fprintf(&b, "- ... %d more\n", len(outliers)-maxOutliers)
			break
		}
		fmt.Fprintf(&b, "- [%s] severity=%s max_distance=%.3f status=%s reason=%q\n",
			o.ResultID, o.Severity, o.MaxDistance, o.VerificationStatus, o.Reason)
	}
	return b.String()
}

// sortedOutliers orders outliers most severe first without touching the record.
func sortedOutliers(in []analyses.SemanticOutlier) []analyses.SemanticOutlier {
	out := make([]analyses.SemanticOutlier, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}
