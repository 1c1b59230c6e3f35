package analyses

// DemoKey builds the storage key used by demo submissions.
func DemoKey(prefix, seed string) AnalysisID {
	return AnalysisID(prefix + "_" + seed + "_demo")
}

// NewDemoRecord fills a record with the fixed placeholder analysis used for demos.
// BlockHeight is left for the repository to assign.
func NewDemoRecord(key AnalysisID, submitter string, timestamp uint64) *AnalysisRecord {
	return &AnalysisRecord{
		ID:      key,
		Query:   "Demo Query",
		Results: []SearchResult{},
		SemanticAnalysis: SemanticAnalysisResult{
			CenterOfGravity:  "A",
			Outliers:         []SemanticOutlier{},
			DistanceMatrix:   map[string]float64{},
			Embeddings:       []MessageEmbedding{},
			ThresholdUsed:    0.75,
			ProcessingTimeMS: 100,
			ConsensusScore:   0.95,
		},
		Submitter: submitter,
		Timestamp: timestamp,
		Metadata: AnalysisMetadata{
			ModelVersion:      "demo",
			AlgorithmVersion:  "1.0",
			ProcessingNode:    "demo_node",
			VerificationCount: 0,
			DisputeCount:      0,
			ConsensusReached:  true,
		},
	}
}
