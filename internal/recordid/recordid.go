// Package recordid generates stable identifiers for audit rows.
package recordid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RecordID returns a deterministic identifier for an assessment of fileName
// at ts. The same file assessed at the same instant maps to the same row, so
// replayed saves stay idempotent.
func RecordID(fileName string, ts time.Time) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", fileName, ts.UnixNano())))
	return "doc:" + hex.EncodeToString(h[:16])
}
