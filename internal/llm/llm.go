// Package llm builds the chat model used to answer questions.
package llm

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"ragtex/internal/logger"
	"ragtex/internal/types"
)

// NewChatModel creates an OpenAI-compatible chat model from cfg. Any
// endpoint speaking the OpenAI chat API works, including Ollama's /v1.
func NewChatModel(ctx context.Context, cfg *types.Config) (*openai.ChatModel, error) {
	if cfg == nil {
		return nil, types.NewAppError(types.ErrConfig, "config is nil", nil)
	}
	modelName := strings.TrimSpace(cfg.OpenAIModel)
	if modelName == "" {
		return nil, types.NewAppError(types.ErrConfig, "chat model name is not configured", nil)
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: cfg.OpenAIAPIKey,
	}
	if cfg.OpenAIBaseURL != "" {
		chatModelConfig.BaseURL = cfg.OpenAIBaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}

	logger.Debug("chat model created",
		logger.String("model", modelName),
		logger.String("baseURL", cfg.OpenAIBaseURL),
		logger.Bool("hasAPIKey", cfg.OpenAIAPIKey != ""))
	return chatModel, nil
}
