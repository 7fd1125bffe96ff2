package contract

import "context"

// Planner turns one user utterance plus session context into a Plan. The
// implementation is expected to tolerate sloppy model output and surface
// ErrPlannerUnavailable / ErrPlanParse for the two recoverable failure modes.
type Planner interface {
	Plan(ctx context.Context, req PlannerRequest) (Plan, error)
}

// ToolExecutor runs a named tool against already-validated data and
// normalizes the outcome. Implementations must never panic across this
// boundary.
type ToolExecutor interface {
	Execute(ctx context.Context, tool string, data map[string]any) ToolResult
}
