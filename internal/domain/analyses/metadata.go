package analyses

const (
	DefaultVersion            = "1.0.0"
	DefaultConsensusThreshold = 0.75
)

// AggregateMetadata is the single service-wide stats value.
// TotalStaked is carried for compatibility and never changed here.
type AggregateMetadata struct {
	Version            string  `json:"version"`
	TotalAnalyses      uint64  `json:"total_analyses"`
	TotalStaked        uint64  `json:"total_staked"`
	ConsensusThreshold float64 `json:"consensus_threshold"`
}

// DefaultMetadata returns the values a fresh store starts with.
func DefaultMetadata() AggregateMetadata {
	return AggregateMetadata{
		Version:            DefaultVersion,
		TotalAnalyses:      0,
		TotalStaked:        0,
		ConsensusThreshold: DefaultConsensusThreshold,
	}
}

// IncrementTotal counts one submission.
func (m *AggregateMetadata) IncrementTotal() { m.TotalAnalyses++ }

// Snapshot returns a copy.
func (m AggregateMetadata) Snapshot() AggregateMetadata { return m }

// Total returns the submission counter.
func (m AggregateMetadata) Total() uint64 { return m.TotalAnalyses }
