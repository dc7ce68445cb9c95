// Package reference generates externally visible booking references.
// References are shown to customers and printed on confirmations, so they are
// short, unambiguous and safe to expose, unlike raw row IDs.
package reference

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefixes by resource kind
const (
	PrefixCharter = "CH"
	PrefixFlight  = "FL"
)

// New generates a reference like CH-20250115-a1b2c3. The date part makes
// references sortable at a glance; the random part comes from a fresh UUID so
// collisions within a day are practically impossible.
func New(prefix string) string {
	datePart := time.Now().Format("20060102")
	randomPart := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, datePart, randomPart)
}
