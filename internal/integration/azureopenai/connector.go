package azureopenai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/markaz/report-assistant/internal/config"
	"github.com/markaz/report-assistant/internal/entity"
	"github.com/markaz/report-assistant/internal/integration/common"
	pkghttp "github.com/markaz/report-assistant/pkg/http"
	"go.uber.org/zap"
)

// Connector talks to the Azure OpenAI REST API. Requests are routed by
// deployment name and authenticated with the "api-key" header.
type Connector struct {
	config    config.AzureOpenAIConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.AzureOpenAIConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, strings.TrimRight(cfg.Endpoint, "/"), "api-key", cfg.APIKey, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) embeddingsEndpoint() string {
	return fmt.Sprintf("/openai/deployments/%s/embeddings?api-version=%s",
		c.config.EmbeddingDeployment, c.config.APIVersion)
}

func (c *Connector) completionsEndpoint() string {
	return fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s",
		c.config.DeploymentName, c.config.APIVersion)
}

// Embed computes embedding vectors for the given texts, in input order.
func (c *Connector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "computing embeddings", zap.Int("text_count", len(texts)))

	var resp entity.EmbeddingResponse
	err := retry.Do(func() error {
		resp = entity.EmbeddingResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.embeddingsEndpoint(),
			&entity.EmbeddingRequest{Input: texts}, &resp)
	}, c.retryOptions(ctx)...)
	if err != nil {
		return nil, classifyUpstreamError(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", entity.ErrMalformedResponse, len(texts), len(resp.Data))
	}

	// The API does not guarantee input order
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", entity.ErrMalformedResponse, d.Index)
		}
		vectors[i] = d.Embedding
	}

	ctxzap.Debug(ctx, "embeddings computed",
		zap.Int("vector_count", len(vectors)),
		zap.Int("dimension", len(vectors[0])),
	)

	return vectors, nil
}

// Complete runs a chat completion and returns the assistant message.
func (c *Connector) Complete(ctx context.Context, messages []entity.ChatMessage, temperature float64, maxTokens int) (string, error) {
	ctxzap.Info(ctx, "requesting chat completion", zap.Int("message_count", len(messages)))

	req := &entity.ChatCompletionRequest{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var resp entity.ChatCompletionResponse
	err := retry.Do(func() error {
		resp = entity.ChatCompletionResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.completionsEndpoint(), req, &resp)
	}, c.retryOptions(ctx)...)
	if err != nil {
		return "", classifyUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", entity.ErrMalformedResponse)
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "chat completion received",
		zap.Int("answer_length", len(answer)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return answer, nil
}

// CompleteStream runs a streaming chat completion and invokes onDelta for
// each content fragment. The stream is not retried; a failure after the
// first delta would duplicate output.
func (c *Connector) CompleteStream(ctx context.Context, messages []entity.ChatMessage, temperature float64, maxTokens int, onDelta func(string) error) error {
	ctxzap.Info(ctx, "requesting streaming chat completion", zap.Int("message_count", len(messages)))

	req := &entity.ChatCompletionRequest{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	}

	body, err := c.connector.DoStreamRequest(ctx, http.MethodPost, c.completionsEndpoint(), req)
	if err != nil {
		return classifyUpstreamError(err)
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk entity.ChatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read completion stream: %w", err)
	}

	ctxzap.Info(ctx, "streaming chat completion finished")
	return nil
}

func (c *Connector) retryOptions(ctx context.Context) []retry.Option {
	opts := c.config.Retry.ToRetryOptions()
	return append(opts,
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			ctxzap.Warn(ctx, "retrying upstream model call",
				zap.Uint("attempt", attempt),
				zap.Error(err),
			)
		}),
	)
}

// isRetryable reports whether the upstream call is worth repeating:
// connection failures, throttling and server-side errors are; client
// errors are not.
func isRetryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}

// classifyUpstreamError maps transport failures onto the named failure
// categories the gateway reports to users.
func classifyUpstreamError(err error) error {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", entity.ErrUpstreamQuota, err)
		}
		if httpErr.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
		}
		return err
	}
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
	}
	return err
}
