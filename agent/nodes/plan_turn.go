package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

// PlanTurn asks the planner for a proposal. Planner transport and parse
// errors propagate as node errors and fail the turn hard.
func PlanTurn(ctx context.Context, in *GraphState, planner contractx.Planner) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	plan, err := planner.Plan(ctx, contractx.PlannerRequest{
		UserText:     in.Text,
		Session:      in.Session,
		Step:         string(in.Step.Name),
		NextStep:     string(in.Step.Next),
		Component:    in.Step.Component,
		AllowedTools: in.Step.AllowedTools,
	})
	if err != nil {
		return nil, err
	}

	in.Plan = plan
	return in, nil
}
