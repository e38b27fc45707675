package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/erossel/convo/config"
	"github.com/erossel/convo/content"
	"github.com/erossel/convo/core"
)

// OpenAI implements Completer on the official SDK against the OpenAI API or
// any compatible endpoint.
type OpenAI struct {
	client        openai.Client
	requestLogger *RequestLogger
}

func NewOpenAI(cfg config.Config) *OpenAI {
	var opts []option.RequestOption

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout() > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout()))
	}

	provider := &OpenAI{client: openai.NewClient(opts...)}

	if cfg.Debug.LogRequests || cfg.Debug.LogResponses {
		provider.requestLogger = NewRequestLogger(
			cfg.Debug.LogDirectory,
			cfg.Debug.LogRequests,
			cfg.Debug.LogResponses,
			slog.Default(),
		)
	}

	return provider
}

// Complete sends one synchronous chat-completion request. There is no retry
// or backoff here; failures surface to the caller as *core.RemoteError.
func (p *OpenAI) Complete(ctx context.Context, model string, messages []core.Message) (core.Completion, error) {
	requestID := core.NewRequestID()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toMessageParams(messages),
	}

	if p.requestLogger != nil {
		p.requestLogger.LogRequest(requestID, model, messages)
	}

	startTime := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)

	if err != nil {
		remoteErr := &core.RemoteError{Err: err}

		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			remoteErr.StatusCode = apiErr.StatusCode
		}

		if p.requestLogger != nil {
			p.requestLogger.LogError(requestID, remoteErr.StatusCode, err, messages)
		}

		return core.Completion{}, remoteErr
	}

	if len(resp.Choices) == 0 {
		return core.Completion{}, &core.RemoteError{Err: fmt.Errorf("no choices in response (request_id=%s)", requestID)}
	}

	completion := core.Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: core.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	if p.requestLogger != nil {
		p.requestLogger.LogResponse(requestID, completion, duration)
	}

	return completion, nil
}

func toMessageParams(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, message := range messages {
		switch message.Role {
		case core.RoleSystem:
			params = append(params, openai.SystemMessage(message.Text()))
		case core.RoleAssistant:
			params = append(params, openai.AssistantMessage(message.Text()))
		default:
			if message.TextOnly() {
				params = append(params, openai.UserMessage(message.Parts[0].Text))
				continue
			}
			params = append(params, openai.UserMessage(toContentParts(message.Parts)))
		}
	}

	return params
}

func toContentParts(parts []content.Part) []openai.ChatCompletionContentPartUnionParam {
	unions := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))

	for _, part := range parts {
		switch part.Kind {
		case content.KindImage:
			unions = append(unions, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    part.URL(),
				Detail: string(part.Detail),
			}))
		default:
			unions = append(unions, openai.TextContentPart(part.Text))
		}
	}

	return unions
}
