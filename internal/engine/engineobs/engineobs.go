// Package engineobs wraps an Engine with logging and tracing middleware.
package engineobs

import (
	"context"
	"time"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/trace"
	"mt5-bands-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: eng}
}

func (oe *observableEngine) Step(ctx context.Context) (*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	result, err := oe.engine.Step(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Strategy iteration failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	if result == nil {
		logger.DebugSkip(ctx, 1, "Strategy iteration produced no signal",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil
	}

	logger.DebugSkip(ctx, 1, "Strategy iteration completed",
		"symbol", result.Symbol,
		"close", result.Close,
		"action", result.Action,
		"orders", len(result.Orders),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (oe *observableEngine) Flatten(ctx context.Context) (*types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Flatten")
	defer span.End()

	result, err := oe.engine.Flatten(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Flatten failed", err)
		return nil, err
	}
	return result, nil
}
