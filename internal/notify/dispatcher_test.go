package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExecutesHooksInOrder(t *testing.T) {
	var got []int
	hooks := []Hook{
		func(context.Context) { got = append(got, 1) },
		func(context.Context) { got = append(got, 2) },
		func(context.Context) { got = append(got, 3) },
	}
	Run(context.Background(), hooks)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestRunWithNoHooks(t *testing.T) {
	Run(context.Background(), nil) // must not panic
	Go(nil)                        // no goroutine to spawn
}
