package analyses

// AnalysisID identifier untuk record analisis
type AnalysisID string

// VerificationStatus enum (tidak punya urutan)
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "Pending"
	VerificationVerified VerificationStatus = "Verified"
	VerificationDisputed VerificationStatus = "Disputed"
	VerificationFlagged  VerificationStatus = "Flagged"
)

// SearchResult is one search hit that was part of the analysed result set.
type SearchResult struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	Snippet              string  `json:"snippet"`
	URL                  string  `json:"url"`
	Rank                 uint32  `json:"rank"`
	SourceType           string  `json:"source_type"`
	SemanticHash         string  `json:"semantic_hash"`
	TrustworthinessScore float64 `json:"trustworthiness_score"`
}

// MessageEmbedding value object
type MessageEmbedding struct {
	Vector        []float64 `json:"vector"`
	ModelName     string    `json:"model_name"`
	EmbeddingHash string    `json:"embedding_hash"`
	SemanticHash  string    `json:"semantic_hash"`
	Timestamp     uint64    `json:"timestamp"`
}

// OutlierDistance records how far an outlier sits from one other result.
type OutlierDistance struct {
	ToResult            string  `json:"to_result"`
	Distance            float64 `json:"distance"`
	ThresholdExceededBy float64 `json:"threshold_exceeded_by"`
}

// SemanticOutlier is a result flagged by the upstream analysis.
type SemanticOutlier struct {
	ResultID           string             `json:"result_id"`
	Reason             string             `json:"reason"`
	Severity           Severity           `json:"severity"`
	MaxDistance        float64            `json:"max_distance"`
	SourceType         string             `json:"source_type"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	OutlierDistances   []OutlierDistance  `json:"outlier_distances"`
}

// SemanticAnalysisResult is carried opaquely; nothing here is validated.
type SemanticAnalysisResult struct {
	CenterOfGravity  string             `json:"center_of_gravity"`
	Outliers         []SemanticOutlier  `json:"outliers"`
	DistanceMatrix   map[string]float64 `json:"distance_matrix"`
	Embeddings       []MessageEmbedding `json:"embeddings"`
	ThresholdUsed    float64            `json:"threshold_used"`
	ProcessingTimeMS uint64             `json:"processing_time_ms"`
	ConsensusScore   float64            `json:"consensus_score"`
}

// AnalysisMetadata describes who produced the analysis.
type AnalysisMetadata struct {
	ModelVersion      string `json:"model_version"`
	AlgorithmVersion  string `json:"algorithm_version"`
	ProcessingNode    string `json:"processing_node"`
	VerificationCount uint32 `json:"verification_count"`
	DisputeCount      uint32 `json:"dispute_count"`
	ConsensusReached  bool   `json:"consensus_reached"`
}

// Aggregate Root: AnalysisRecord
//
// Timestamp is nanoseconds since the Unix epoch; it is the same value that was
// fed into GenerateID, so stored ids can be recomputed from the record.
type AnalysisRecord struct {
	ID               AnalysisID             `json:"id"`
	Query            string                 `json:"query"`
	Results          []SearchResult         `json:"results"`
	SemanticAnalysis SemanticAnalysisResult `json:"semantic_analysis"`
	Submitter        string                 `json:"submitter"`
	Timestamp        uint64                 `json:"timestamp"`
	BlockHeight      uint64                 `json:"block_height"`
	Metadata         AnalysisMetadata       `json:"metadata"`
}

// MaxSeverity returns the most severe outlier of the record and false when the
// record has no outliers.
func (r *AnalysisRecord) MaxSeverity() (Severity, bool) {
	var best Severity
	found := false
	for _, o := range r.SemanticAnalysis.Outliers {
		if !found || o.Severity.Rank() > best.Rank() {
			best = o.Severity
			found = true
		}
	}
	return best, found
}

// Clone returns a deep copy; nothing in the copy aliases r.
func (r *AnalysisRecord) Clone() *AnalysisRecord {
	cp := *r
	cp.Results = cloneSlice(r.Results)
	cp.SemanticAnalysis.Outliers = cloneSlice(r.SemanticAnalysis.Outliers)
	for i := range cp.SemanticAnalysis.Outliers {
		o := &cp.SemanticAnalysis.Outliers[i]
		o.OutlierDistances = cloneSlice(o.OutlierDistances)
	}
	if r.SemanticAnalysis.DistanceMatrix != nil {
		m := make(map[string]float64, len(r.SemanticAnalysis.DistanceMatrix))
		for k, v := range r.SemanticAnalysis.DistanceMatrix {
			m[k] = v
		}
		cp.SemanticAnalysis.DistanceMatrix = m
	}
	cp.SemanticAnalysis.Embeddings = cloneSlice(r.SemanticAnalysis.Embeddings)
	for i := range cp.SemanticAnalysis.Embeddings {
		e := &cp.SemanticAnalysis.Embeddings[i]
		e.Vector = cloneSlice(e.Vector)
	}
	return &cp
}

// cloneSlice keeps nil as nil so JSON output does not change.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
