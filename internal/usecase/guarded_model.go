package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maison-core/internal/domain/entity"
	"maison-core/internal/domain/repository"
)

// GuardedModel bounds every model call with a timeout and rejects blank
// completions. It makes exactly one attempt.
type GuardedModel struct {
	model   repository.LanguageModel
	timeout time.Duration
}

func NewGuardedModel(model repository.LanguageModel, timeout time.Duration) *GuardedModel {
	return &GuardedModel{
		model:   model,
		timeout: timeout,
	}
}

func (g *GuardedModel) Complete(ctx context.Context, req entity.ModelRequest) (string, error) {
	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.model.Complete(callCtx, req)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", entity.ErrEmptyCompletion
	}
	return out, nil
}
