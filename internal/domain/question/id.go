package question

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// GenerateID builds a fallback id for questions submitted without one:
// q_<unix seconds>_<fnv-1a of text>_<random suffix>.
// The random suffix keeps identical texts indexed in the same second apart.
func GenerateID(text string, now time.Time) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("q_%d_%08x_%s", now.Unix(), h.Sum32(), suffix)
}
