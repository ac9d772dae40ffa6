package generator

import "errors"

// ErrInvalidRequest marks requests the endpoint refuses before calling a model.
var ErrInvalidRequest = errors.New("invalid transformation request")

// ErrEmptyOutput is returned when the model answers with nothing usable.
var ErrEmptyOutput = errors.New("model returned no usable output")

// Limits applied to list results.
const (
	MaxTitles = 5
	MaxTags   = 8
)

// Provider names accepted in LLMSettings.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"
)
