package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "analyses/abc.json", ObjectKey("abc"))
	assert.Equal(t, "analyses/p_s_demo.json", ObjectKey(domain.DemoKey("p", "s")))
}

func TestEncode(t *testing.T) {
	rec := &domain.AnalysisRecord{ID: "abc", Query: "q", BlockHeight: 9}
	body, digest, err := Encode(rec)
	require.NoError(t, err)

	sum := sha256.Sum256(body)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)

	var back domain.AnalysisRecord
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, *rec, back)
}
