package chat

import (
	"context"

	"github.com/markaz/report-assistant/internal/entity"
	usecasechat "github.com/markaz/report-assistant/internal/usecase/chat"
)

// ChatUsecase is the pipeline surface the handler drives.
type ChatUsecase interface {
	StartSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	ClearSession(ctx context.Context, sessionID string) error
	Ask(ctx context.Context, sessionID string, req *entity.AskRequest) (*entity.Answer, error)
	AskStream(ctx context.Context, sessionID string, req *entity.AskRequest, handler usecasechat.StreamHandler) (*entity.Answer, error)
}
