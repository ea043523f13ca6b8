package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/eliswilliam/CINEHOME/internal/config"
)

// ChatModel is the seam between the orchestrator and the LLM provider.
// Satisfied by every eino chat model.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// NewChatModel builds the configured LLM client. Groq is served through
// the OpenAI-compatible adapter with a custom base URL.
func NewChatModel(ctx context.Context, cfg *config.Config) (ChatModel, error) {
	provider := cfg.Chat.Provider
	if provider == "" {
		provider = "groq"
	}
	provCfg := cfg.Providers[provider]
	modelName := cfg.Chat.Model
	if modelName == "" {
		modelName = provCfg.Model
	}
	apiKey := provCfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(strings.ToUpper(provider) + "_API_KEY")
	}

	switch provider {
	case "groq":
		baseURL := provCfg.BaseURL
		if baseURL == "" {
			baseURL = defaultGroqBaseURL
		}
		if modelName == "" {
			modelName = defaultGroqModel
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: baseURL,
			Model:   modelName,
			APIKey:  apiKey,
		})
	case "openai":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   modelName,
			APIKey:  apiKey,
		})
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("new gemini client: %w", err)
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    apiKey,
			Model:     modelName,
			BaseURL:   baseURLPtr,
			MaxTokens: 3000,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
