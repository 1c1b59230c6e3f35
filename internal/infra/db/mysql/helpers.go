package mysql

import (
	"crypto/sha256"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func decodeRecord(raw []byte) (*domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// idHash is the unique-key value for id.
func idHash(id domain.AnalysisID) []byte {
	sum := sha256.Sum256([]byte(id))
	return sum[:]
}
