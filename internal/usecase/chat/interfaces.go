package chat

import (
	"context"

	"github.com/markaz/report-assistant/internal/entity"
)

// ModelConnector is the upstream language-model API surface the composer
// depends on.
type ModelConnector interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Complete(ctx context.Context, messages []entity.ChatMessage, temperature float64, maxTokens int) (string, error)
	CompleteStream(ctx context.Context, messages []entity.ChatMessage, temperature float64, maxTokens int, onDelta func(string) error) error
}

// PassageRepository is the read path of the passage index.
type PassageRepository interface {
	SearchSimilar(ctx context.Context, query []float32, limit int) ([]entity.Passage, error)
}

// SessionRepository owns per-session conversation state.
type SessionRepository interface {
	CreateSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	AppendMessages(ctx context.Context, sessionID string, messages ...entity.Message) (*entity.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
