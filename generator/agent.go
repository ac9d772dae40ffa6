package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"blog_ai_editor/transform"
)

// Agent answers transformation requests with an LLM.
type Agent struct {
	llm    LLMClient
	logger *zap.Logger
}

func NewAgent(llm LLMClient, logger *zap.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, logger: logger.Named("generator")}, nil
}

// Transform validates the request, prompts the model and shapes its answer.
// Errors wrapping ErrInvalidRequest are the caller's fault; anything else is
// a model failure.
func (a *Agent) Transform(ctx context.Context, req transform.Request) (any, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, req.Action)
	}
	if strings.TrimSpace(req.Input) == "" {
		return nil, fmt.Errorf("%w: input is required", ErrInvalidRequest)
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("llm completion failed", zap.String("action", string(req.Action)), zap.Error(err))
		return nil, fmt.Errorf("llm completion: %w", err)
	}
	a.logger.Debug("llm completion",
		zap.String("action", string(req.Action)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(raw)))

	return PostProcess(req.Action, raw)
}
