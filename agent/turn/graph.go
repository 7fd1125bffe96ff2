package turn

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	turnnode "github.com/vahanlabs/loanflow/agent/nodes"
)

func (o *Orchestrator) compileProcessTurnGraph(
	ctx context.Context,
) (compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput], error) {
	graph := compose.NewGraph[turnnode.GraphInput, turnnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in turnnode.GraphInput) (*turnnode.GraphState, error) {
			return turnnode.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_state",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.LoadOrCreateState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_state: %w", err)
	}

	if err := graph.AddLambdaNode("extract_input",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ExtractInput(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_input: %w", err)
	}

	if err := graph.AddLambdaNode("plan_turn",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.PlanTurn(ctx, in, o.planner)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan_turn: %w", err)
	}

	if err := graph.AddLambdaNode("execute_actions",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ExecuteActions(ctx, in, o.schemas, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_actions: %w", err)
	}

	if err := graph.AddLambdaNode("compose_response",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ComposeResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_response: %w", err)
	}

	if err := graph.AddLambdaNode("compose_greeting",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ComposeGreeting(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_greeting: %w", err)
	}

	if err := graph.AddLambdaNode("save_state",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.SaveState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_state: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_turn",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (turnnode.GraphOutput, error) {
			return turnnode.FinalizeTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_turn: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *turnnode.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if in.Greeting {
				return "compose_greeting", nil
			}
			return "plan_turn", nil
		},
		map[string]bool{
			"compose_greeting": true,
			"plan_turn":        true,
		},
	)
	if err := graph.AddBranch("extract_input", branch); err != nil {
		return nil, fmt.Errorf("add greeting branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_state"},
		{"load_or_create_state", "extract_input"},
		{"plan_turn", "execute_actions"},
		{"execute_actions", "compose_response"},
		{"compose_response", "save_state"},
		{"compose_greeting", "save_state"},
		{"save_state", "finalize_turn"},
		{"finalize_turn", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("turn.process_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
