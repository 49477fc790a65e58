package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/markaz/report-assistant/internal/config"
	"github.com/markaz/report-assistant/internal/entity"
	"github.com/markaz/report-assistant/internal/pkg/validator"
	"go.uber.org/zap"
)

// Usecase implements the question-answering pipeline: validate, retrieve,
// compose, append to history. One user message triggers one sequential run.
type Usecase struct {
	sessionRepo SessionRepository
	passageRepo PassageRepository
	model       ModelConnector
	validator   *validator.Validator
	cfg         config.RetrievalConfig
	logger      *zap.Logger
}

func NewUsecase(
	sessionRepo SessionRepository,
	passageRepo PassageRepository,
	model ModelConnector,
	validator *validator.Validator,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		sessionRepo: sessionRepo,
		passageRepo: passageRepo,
		model:       model,
		validator:   validator,
		cfg:         cfg,
		logger:      logger,
	}
}

// StartSession creates an empty session.
func (uc *Usecase) StartSession(ctx context.Context) (*entity.Session, error) {
	session, err := uc.sessionRepo.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session created", zap.String("session_id", session.ID))
	return session, nil
}

// GetSession returns a session with its transcript.
func (uc *Usecase) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	return uc.sessionRepo.GetSession(ctx, sessionID)
}

// ClearSession destroys a session and its history.
func (uc *Usecase) ClearSession(ctx context.Context, sessionID string) error {
	if err := uc.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	ctxzap.Info(ctx, "session cleared", zap.String("session_id", sessionID))
	return nil
}

// Ask runs the full pipeline for one question and appends the exchange to
// the session history.
func (uc *Usecase) Ask(ctx context.Context, sessionID string, req *entity.AskRequest) (*entity.Answer, error) {
	if err := uc.validator.ValidateAsk(req); err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	passages, err := uc.retrieve(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	answer, err := uc.compose(ctx, session, req.Question, passages)
	if err != nil {
		return nil, err
	}

	if _, err := uc.sessionRepo.AppendMessages(ctx, sessionID,
		entity.Message{Role: entity.RoleUser, Content: req.Question},
		entity.Message{Role: entity.RoleAssistant, Content: answer.Text},
	); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	return answer, nil
}

// StreamHandler receives pipeline milestones during a streaming ask.
type StreamHandler struct {
	// OnPassages fires once, after retrieval.
	OnPassages func(passages []entity.Passage) error
	// OnDelta fires per answer fragment; never fires on the chart branch.
	OnDelta func(delta string) error
}

// AskStream runs the pipeline with incremental answer delivery. The chart
// branch produces no deltas; the complete answer is returned either way and
// appended to history.
func (uc *Usecase) AskStream(ctx context.Context, sessionID string, req *entity.AskRequest, handler StreamHandler) (*entity.Answer, error) {
	if err := uc.validator.ValidateAsk(req); err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	passages, err := uc.retrieve(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	if handler.OnPassages != nil {
		if err := handler.OnPassages(passages); err != nil {
			return nil, err
		}
	}

	var answer *entity.Answer
	if DetectVisualizationRequest(req.Question) {
		answer = uc.composeChart(ctx, req.Question, passages)
	} else {
		prompt := buildPrompt(passages, session.Messages, req.Question, uc.cfg.HistoryTokenBudget)

		var b strings.Builder
		err := uc.model.CompleteStream(ctx, prompt, uc.cfg.Temperature, uc.cfg.MaxAnswerTokens, func(delta string) error {
			b.WriteString(delta)
			if handler.OnDelta != nil {
				return handler.OnDelta(delta)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		text := b.String()
		if detectDefinitionRequest(req.Question) {
			text = formatDefinitionResponse(text)
		}
		answer = &entity.Answer{Text: text, Passages: passages}
	}

	if _, err := uc.sessionRepo.AppendMessages(ctx, sessionID,
		entity.Message{Role: entity.RoleUser, Content: req.Question},
		entity.Message{Role: entity.RoleAssistant, Content: answer.Text},
	); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	return answer, nil
}

// retrieve embeds the question and ranks the passage index. An empty index
// or zero matches is not an error; the composer handles the empty list.
func (uc *Usecase) retrieve(ctx context.Context, question string) ([]entity.Passage, error) {
	vectors, err := uc.model.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	passages, err := uc.passageRepo.SearchSimilar(ctx, vectors[0], uc.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}

	ctxzap.Debug(ctx, "context retrieved",
		zap.Int("passage_count", len(passages)),
	)

	return passages, nil
}

func (uc *Usecase) compose(ctx context.Context, session *entity.Session, question string, passages []entity.Passage) (*entity.Answer, error) {
	if DetectVisualizationRequest(question) {
		return uc.composeChart(ctx, question, passages), nil
	}

	prompt := buildPrompt(passages, session.Messages, question, uc.cfg.HistoryTokenBudget)

	text, err := uc.model.Complete(ctx, prompt, uc.cfg.Temperature, uc.cfg.MaxAnswerTokens)
	if err != nil {
		return nil, err
	}

	if detectDefinitionRequest(question) {
		text = formatDefinitionResponse(text)
	}

	return &entity.Answer{Text: text, Passages: passages}, nil
}

// composeChart extracts numeric data from the retrieved context instead of
// calling the model. No extractable data yields a warning answer, not an
// error.
func (uc *Usecase) composeChart(ctx context.Context, question string, passages []entity.Passage) *entity.Answer {
	chartType := DetectChartType(question)
	spec := ExtractChartData(contextBlock(passages), chartType)
	if spec == nil {
		ctxzap.Info(ctx, "no numerical data found for visualization")
		return &entity.Answer{
			Text: "No numerical data found in the context for visualization. " +
				"Try asking about specific numbers, percentages, or values from the report.",
			Passages: passages,
		}
	}

	ctxzap.Info(ctx, "chart generated",
		zap.String("chart_type", spec.Type),
		zap.Int("data_points", len(spec.Categories)),
	)

	return &entity.Answer{
		Text:     fmt.Sprintf("Generated %s chart with %d data points", spec.Type, len(spec.Categories)),
		Passages: passages,
		Chart:    spec,
	}
}
