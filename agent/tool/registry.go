// Package tool implements the executable side of the loan flow: one handler
// per registered tool name, behind an executor that normalizes panics and
// errors into ToolResult envelopes.
package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

// HandlerFunc runs one tool against already-validated arguments.
type HandlerFunc func(ctx context.Context, data map[string]any) (contractx.ToolResult, error)

// Registry maps tool names to handlers and implements contract.ToolExecutor.
type Registry struct {
	handlers map[string]HandlerFunc
}

var _ contractx.ToolExecutor = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

func (r *Registry) Register(name string, h HandlerFunc) {
	r.handlers[name] = h
}

// Execute runs the named handler. Failures of any shape (missing handler,
// returned error, panic) come back as unsuccessful ToolResults; the turn
// keeps going either way.
func (r *Registry) Execute(ctx context.Context, tool string, data map[string]any) (result contractx.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("tool", tool).Any("panic", rec).Msg("tool handler panicked")
			result = contractx.ToolResult{
				Success: false,
				Error:   fmt.Sprintf("tool %s failed unexpectedly", tool),
			}
		}
		log.Info().
			Str("tool", tool).
			Bool("success", result.Success).
			Str("error", result.Error).
			Msg("tool executed")
	}()

	h, ok := r.handlers[tool]
	if !ok {
		return contractx.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("no handler registered for tool %s", tool),
		}
	}

	res, err := h(ctx, data)
	if err != nil {
		return contractx.ToolResult{
			Success: false,
			Error:   err.Error(),
		}
	}
	return res
}

func stringArg(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func numberArg(data map[string]any, key string) (float64, bool) {
	switch n := data[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
