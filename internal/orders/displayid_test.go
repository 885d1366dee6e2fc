package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayID(t *testing.T) {
	created := time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)
	for _, id := range []int64{1, 42, 123456} {
		assert.Equal(t, "ANA-2024-"+itoa(id), DisplayID("ANA", created, id))
	}
}

// The year comes from the persisted creation timestamp, never wall clock, so
// the code is stable when read after a year boundary.
func TestDisplayIDYearFromCreatedAt(t *testing.T) {
	created := time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "ANA-2023-7", DisplayID("ANA", created, 7))
}

func itoa(n int64) string {
	return string(PartitionKey(n))
}
