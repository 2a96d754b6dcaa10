package checkpoint

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is the number of hex characters in a record ID.
const idLength = 8

// newID returns a short random identifier.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}
