package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/eventrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategies(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultQueryConfig()
	question := "Show me all critical fire alarms in Building B this week"

	t.Run("Hybrid strategy delegates to the engine", func(t *testing.T) {
		index := &fakeIndex{candidates: testCandidates()}
		engine := NewEngine(constEmbed([]float32{1, 0}), index, WithClock(func() time.Time { return testNow }))

		var strategy Strategy = NewHybridStrategy(engine)
		result, err := strategy.Retrieve(ctx, question, nil, cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"EVT-A", "EVT-D"}, eventIDs(result.Candidates))
	})

	t.Run("Vector-only strategy ignores the question intent", func(t *testing.T) {
		index := &fakeIndex{candidates: testCandidates()}
		engine := NewEngine(constEmbed([]float32{1, 0}), index)

		var strategy Strategy = NewVectorOnlyStrategy(engine)
		result, err := strategy.Retrieve(ctx, question, nil, cfg)
		require.NoError(t, err)

		assert.Nil(t, index.lastWhere)
		assert.Equal(t, 2*cfg.TopK, index.lastLimit)
		assert.False(t, result.Filters.HasAny())
		// EVT-E is orthogonal to the query and falls below the threshold
		assert.Equal(t, []string{"EVT-A", "EVT-C", "EVT-F", "EVT-B", "EVT-D"}, eventIDs(result.Candidates))
	})
}
