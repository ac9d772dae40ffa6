package generator

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"blog_ai_editor/transform"
)

// OpenAILLM completes prompts through the chat completions API. Any
// OpenAI-compatible endpoint works through LLMSettings.BaseURL.
type OpenAILLM struct {
	model  string
	client openai.Client
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key or BLOG_AI_LLM_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Temperature: openai.Float(temperature(prompt.Action)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// temperature keeps corrective actions close to the input and lets the
// generative ones vary.
func temperature(action transform.ActionID) float64 {
	switch action {
	case transform.FixGrammar, transform.TranslateCaToEs, transform.TranslateEsToCa:
		return 0.2
	case transform.GenerateTitle, transform.SuggestTags, transform.GenerateArticle, transform.GenerateOutline:
		return 0.8
	default:
		return 0.5
	}
}
