package scan

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/provider"
	"github.com/sells-group/visibility-cli/internal/scorer"
)

func testQueries(n int) []model.Query {
	queries := make([]model.Query, n)
	for i := range queries {
		queries[i] = model.Query{
			Type:   model.QueryBrandRecall,
			Prompt: "Have you heard of Acme Plumbing?",
			Entity: "Acme Plumbing",
			Domain: "acmeplumbing.com",
		}
	}
	return queries
}

func TestExecutorResultCountAndOrder(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(echoProvider("alpha", "Yes, Acme Plumbing is a well-known local plumber."))
	registry.Register(echoProvider("beta", "Yes, Acme Plumbing is widely recognized."))

	exec := NewExecutor(registry, scorer.New(scorer.DefaultHeuristics()), nil, ExecutorConfig{})
	queries := testQueries(3)

	results := exec.Run(context.Background(), queries)
	require.Len(t, results, 6)

	// Results come back grouped by query index, providers in
	// registration order within each block.
	for i := 0; i < 3; i++ {
		block := results[i*2 : i*2+2]
		assert.Equal(t, i, block[0].QueryIndex)
		assert.Equal(t, i, block[1].QueryIndex)
		assert.Equal(t, "alpha", block[0].Provider)
		assert.Equal(t, "beta", block[1].Provider)
	}
}

func TestExecutorFailureContained(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(echoProvider("healthy", "Acme Plumbing is a recognized plumbing company."))
	registry.Register(failingProvider("broken", errors.New("429 rate limit exceeded")))

	exec := NewExecutor(registry, scorer.New(scorer.DefaultHeuristics()), nil, ExecutorConfig{})
	results := exec.Run(context.Background(), testQueries(2))
	require.Len(t, results, 4)

	for _, r := range results {
		switch r.Provider {
		case "healthy":
			assert.True(t, r.Recognized)
			assert.False(t, r.Failed())
		case "broken":
			assert.True(t, r.Failed())
			assert.False(t, r.Recognized)
			assert.Equal(t, 0, r.Confidence)
			assert.Equal(t, model.FailureRateLimit, r.FailureKind)
			assert.Contains(t, r.Response, "rate limit")
		}
	}
}

func TestExecutorProgressMonotonic(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(echoProvider("alpha", "Acme Plumbing, yes."))
	registry.Register(echoProvider("beta", "Acme Plumbing, yes."))

	var (
		mu    sync.Mutex
		seen  []int
		total int
	)
	exec := NewExecutor(registry, scorer.New(scorer.DefaultHeuristics()), nil, ExecutorConfig{}).
		WithProgress(func(completed, t int) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, completed)
			total = t
		})

	exec.Run(context.Background(), testQueries(5))

	require.Len(t, seen, 10)
	assert.Equal(t, 10, total)
	// The counter itself is monotonic even though callback ordering
	// under concurrency is not; every count 1..10 appears exactly once.
	counts := make(map[int]int)
	for _, c := range seen {
		counts[c]++
	}
	for i := 1; i <= 10; i++ {
		assert.Equal(t, 1, counts[i], "count %d", i)
	}
}

func TestExecutorRecordsSuccessesOnly(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(echoProvider("alpha", "Acme Plumbing is recognized."))
	registry.Register(failingProvider("broken", errors.New("connection refused")))

	rec := &countingRecorder{}
	exec := NewExecutor(registry, scorer.New(scorer.DefaultHeuristics()), rec, ExecutorConfig{})
	exec.Run(context.Background(), testQueries(3))

	assert.Equal(t, 3, rec.count())
}

func TestExecutorEmptyInputs(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(echoProvider("alpha", "yes"))
	exec := NewExecutor(registry, scorer.New(scorer.DefaultHeuristics()), nil, ExecutorConfig{})

	assert.Nil(t, exec.Run(context.Background(), nil))

	empty := NewExecutor(provider.NewRegistry(), scorer.New(scorer.DefaultHeuristics()), nil, ExecutorConfig{})
	assert.Nil(t, empty.Run(context.Background(), testQueries(2)))
}

func TestExecutorCallTimeout(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(&blockingProvider{id: "slow"})

	exec := NewExecutor(registry, scorer.New(scorer.DefaultHeuristics()), nil, ExecutorConfig{
		CallTimeout: 1, // nanosecond-scale, expires immediately
	})
	results := exec.Run(context.Background(), testQueries(1))
	require.Len(t, results, 1)
	assert.Equal(t, model.FailureTimeout, results[0].FailureKind)
}

// blockingProvider waits for context cancellation.
type blockingProvider struct{ id string }

func (b *blockingProvider) ID() string    { return b.id }
func (b *blockingProvider) Model() string { return b.id + "-model" }

func (b *blockingProvider) Generate(ctx context.Context, _ string, _ int) (*provider.Generation, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
