package postgres

import (
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

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
