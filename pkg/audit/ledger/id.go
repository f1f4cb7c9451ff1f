package ledger

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 9

// newAuditID returns audit_<epoch-ms>_<9 base36 chars>. The suffix takes
// its entropy from a random UUID.
func newAuditID(t time.Time) string {
	u := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return fmt.Sprintf("audit_%d_%s", t.UnixMilli(), s[len(s)-suffixLen:])
}
