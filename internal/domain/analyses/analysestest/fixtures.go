// Package analysestest provides fully populated records for repository and
// service tests.
package analysestest

import "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"

// FullRecord returns a record with every nested field set, so a lossy
// encode/decode in a backend shows up as a diff.
func FullRecord(id analyses.AnalysisID) *analyses.AnalysisRecord {
	return &analyses.AnalysisRecord{
		ID:    id,
		Query: "is the \"moon\" made of cheese? é中",
		Results: []analyses.SearchResult{
			{ID: "r1", Title: "Lunar geology", Snippet: "basalt", URL: "https://example.org/moon", Rank: 1, SourceType: "web", SemanticHash: "h1", TrustworthinessScore: 0.91},
			{ID: "r2", Title: "Cheese facts", Snippet: "<b>brie</b> & co", URL: "https://example.org/cheese?x=1&y=2", Rank: 2, SourceType: "forum", SemanticHash: "h2", TrustworthinessScore: 0.125},
		},
		SemanticAnalysis: analyses.SemanticAnalysisResult{
			CenterOfGravity: "r1",
			Outliers: []analyses.SemanticOutlier{{
				ResultID:           "r2",
				Reason:             "off topic",
				Severity:           analyses.SeverityCritical,
				MaxDistance:        0.8731,
				SourceType:         "forum",
				VerificationStatus: analyses.VerificationFlagged,
				OutlierDistances: []analyses.OutlierDistance{
					{ToResult: "r1", Distance: 0.8731, ThresholdExceededBy: 0.1231},
				},
			}},
			DistanceMatrix: map[string]float64{"r1:r2": 0.8731, "r2:r1": 0.8731},
			Embeddings: []analyses.MessageEmbedding{
				{Vector: []float64{0.1, -0.25, 3.5e-7}, ModelName: "mini-lm", EmbeddingHash: "e1", SemanticHash: "h1", Timestamp: 1700000000000000001},
				{Vector: []float64{0.2, 0.75, -1}, ModelName: "mini-lm", EmbeddingHash: "e2", SemanticHash: "h2", Timestamp: 1700000000000000002},
			},
			ThresholdUsed:    0.75,
			ProcessingTimeMS: 42,
			ConsensusScore:   0.66,
		},
		Submitter:   "alice.testnet",
		Timestamp:   1700000000000000000,
		BlockHeight: 1,
		Metadata: analyses.AnalysisMetadata{
			ModelVersion:      "m-2",
			AlgorithmVersion:  "1.3",
			ProcessingNode:    "node-7",
			VerificationCount: 3,
			DisputeCount:      1,
			ConsensusReached:  true,
		},
	}
}
