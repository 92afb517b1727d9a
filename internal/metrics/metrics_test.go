package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMetricsListsEveryCounter(t *testing.T) {
	before := GetMetrics()
	IncrLLMCalls()
	IncrPagesRendered(3)

	after := GetMetrics()
	assert.Equal(t, before["llm_calls"]+1, after["llm_calls"])
	assert.Equal(t, before["pages_rendered"]+3, after["pages_rendered"])

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(keys))
	for i, k := range keys {
		assert.True(t, strings.HasPrefix(lines[i], k+" "), lines[i])
	}
}

func TestTrackOperationReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := TrackOperation(context.Background(), "op", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
