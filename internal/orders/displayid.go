package orders

import (
	"fmt"
	"time"
)

// DisplayID derives the human-facing order code from the prefix, the year of
// the persisted creation timestamp, and the numeric primary key. It is never
// stored; the year must come from created_at (not wall clock at read time) so
// the code stays stable across year boundaries.
func DisplayID(prefix string, createdAt time.Time, id int64) string {
	return fmt.Sprintf("%s-%d-%d", prefix, createdAt.Year(), id)
}
