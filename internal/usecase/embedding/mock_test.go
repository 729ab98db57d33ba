package embedding

import (
	"context"
	"sync"

	"github.com/kailas-cloud/mathdex/internal/domain"
)

// mockEmbedder counts calls; embedFn overrides the default fixed result.
type mockEmbedder struct {
	mu      sync.Mutex
	calls   int
	texts   []string
	result  domain.EmbeddingResult
	err     error
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	healthy error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, text)
	fn := m.embedFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthy }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// vec returns a dim-long vector filled with v.
func vec(dim int, v float32) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = v
	}
	return out
}
