package azureopenai

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/markaz/report-assistant/internal/entity"
	"go.uber.org/zap"
)

const mockDimension = 64

// MockConnector is an offline stand-in for the Azure OpenAI API, used when
// ENABLE_MOCKS=true and in tests. Embeddings are deterministic per input
// text so similarity search behaves consistently across runs.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] computing embeddings", zap.Int("text_count", len(texts)))

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = mockEmbedding(text)
	}
	return vectors, nil
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage, _ float64, _ int) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting chat completion", zap.Int("message_count", len(messages)))

	question := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == entity.RoleUser {
			question = messages[i].Content
			break
		}
	}

	return fmt.Sprintf("This is a mock answer to: %s", question), nil
}

func (m *MockConnector) CompleteStream(ctx context.Context, messages []entity.ChatMessage, temperature float64, maxTokens int, onDelta func(string) error) error {
	answer, err := m.Complete(ctx, messages, temperature, maxTokens)
	if err != nil {
		return err
	}
	return onDelta(answer)
}

// mockEmbedding derives a unit vector from the text so that identical texts
// embed identically and distinct texts rarely collide.
func mockEmbedding(text string) []float32 {
	v := make([]float32, mockDimension)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range v {
		seed = seed*6364136223846793005 + 1442695040888963407
		v[i] = float32(int64(seed>>32)) / float32(math.MaxInt32)
		norm += float64(v[i]) * float64(v[i])
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] = float32(float64(v[i]) / norm)
		}
	}
	return v
}
