package analyses

import (
	"crypto/sha256"
	"strconv"

	"github.com/mr-tron/base58"
)

// GenerateID derives the record identifier from the submission inputs:
// base58(sha256(query + decimal(timestamp) + submitter)).
//
// There is no salt, so identical inputs always collide.
func GenerateID(query string, timestamp uint64, submitter string) AnalysisID {
	buf := make([]byte, 0, len(query)+20+len(submitter))
	buf = append(buf, query...)
	buf = strconv.AppendUint(buf, timestamp, 10)
	buf = append(buf, submitter...)
	sum := sha256.Sum256(buf)
	return AnalysisID(base58.Encode(sum[:]))
}
