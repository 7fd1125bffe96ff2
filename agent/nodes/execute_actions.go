package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	schemax "github.com/vahanlabs/loanflow/agent/schema"
)

// ExecuteActions validates and runs every proposed tool call in plan order.
// An invalid or failed call records the first failure and never reaches a
// handler; calls that do pass validation still run, and their state updates
// merge into the session. The step transition is decided later from
// in.Failure alone.
func ExecuteActions(ctx context.Context, in *GraphState, schemas *schemax.Registry, tools contractx.ToolExecutor) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	for _, action := range in.Plan.Actions {
		if err := schemas.Validate(action.Action, action.Data, in.Step); err != nil {
			if in.Failure == nil {
				in.Failure = err
			}
			continue
		}

		res := tools.Execute(ctx, action.Action, action.Data)
		if !res.Success {
			if in.Failure == nil {
				reason := res.Error
				if reason == "" {
					reason = "action failed"
				}
				in.Failure = fmt.Errorf("%w: %s: %s", contractx.ErrToolExecution, action.Action, reason)
			}
			continue
		}

		in.Executed++
		if len(res.StateUpdates) > 0 {
			in.Session.ApplyToolUpdates(res.StateUpdates)
		}
		if res.Data != nil {
			in.Data = res.Data
		}
	}

	return in, nil
}
