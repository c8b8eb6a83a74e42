package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewNumber produces a globally unique, human-readable order number,
// e.g. ORD-20260301-7F3A9C2B.
func NewNumber(now time.Time) string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), frag)
}
