// Package planner adapts an eino chat model into the step-aware Planner
// used by the turn orchestrator.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	schemax "github.com/vahanlabs/loanflow/agent/schema"
	statex "github.com/vahanlabs/loanflow/agent/state"
	retryx "github.com/vahanlabs/loanflow/pkg/retry"
)

type invoker interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*einoschema.Message, error)
}

// Adapter invokes the model through a compiled prompt+model graph, retries
// transport failures, and parses the reply into a Plan.
type Adapter struct {
	runner  invoker
	schemas *schemax.Registry
	retry   retryx.Policy
}

var _ contractx.Planner = (*Adapter)(nil)

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, schemas *schemax.Registry, policy retryx.Policy) (*Adapter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", contractx.ErrValidation)
	}
	if schemas == nil {
		return nil, fmt.Errorf("%w: schema registry is nil", contractx.ErrValidation)
	}

	runner, err := compilePlanGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}
	return &Adapter{runner: runner, schemas: schemas, retry: policy}, nil
}

func compilePlanGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *einoschema.Message], error) {
	template := einoprompt.FromMessages(
		einoschema.FString,
		einoschema.SystemMessage(systemPrompt),
		einoschema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *einoschema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add plan prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add plan model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add plan edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add plan edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add plan edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("planner.plan_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile plan graph: %w", err)
	}
	return runner, nil
}

func (a *Adapter) Plan(ctx context.Context, req contractx.PlannerRequest) (contractx.Plan, error) {
	input, err := buildPrompt(req, a.schemas)
	if err != nil {
		return contractx.Plan{}, err
	}

	var msg *einoschema.Message
	invokeErr := a.retry.Do(ctx, func() error {
		var err error
		msg, err = a.runner.Invoke(ctx, map[string]any{"input": input})
		return err
	})
	if invokeErr != nil {
		return contractx.Plan{}, fmt.Errorf("%w: %v", contractx.ErrPlannerUnavailable, invokeErr)
	}
	if msg == nil {
		return contractx.Plan{}, fmt.Errorf("%w: nil message", contractx.ErrPlannerUnavailable)
	}

	plan, err := ParsePlan(msg.Content)
	if err != nil {
		log.Debug().Str("raw", msg.Content).Msg("plan parse failed")
		return contractx.Plan{}, err
	}
	return plan, nil
}

// buildPrompt embeds the turn context the model needs: the user message,
// a state summary, the current step with its component and successor, and
// the schemas of only the tools this step allows.
func buildPrompt(req contractx.PlannerRequest, schemas *schemax.Registry) (string, error) {
	stateJSON, err := json.Marshal(summarizeSession(req.Session))
	if err != nil {
		return "", fmt.Errorf("%w: marshal session summary: %v", contractx.ErrValidation, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User message: %s\n\n", req.UserText)
	fmt.Fprintf(&sb, "Session state: %s\n\n", stateJSON)
	fmt.Fprintf(&sb, "Current step: %s\n", req.Step)
	fmt.Fprintf(&sb, "Current component: %s\n", req.Component)
	fmt.Fprintf(&sb, "Step after completion: %s\n\n", req.NextStep)
	sb.WriteString(schemas.PromptBlock(req.AllowedTools))
	return sb.String(), nil
}

func summarizeSession(st *statex.SessionState) map[string]any {
	if st == nil {
		return map[string]any{}
	}

	summary := map[string]any{
		"session_id":      st.SessionID,
		"current_step":    st.CurrentStep,
		"otp_verified":    st.OTPVerified,
		"pan_captured":    st.PANCaptured,
		"user_info_saved": st.UserInfoSaved,
	}
	if st.MobileNumber != "" {
		summary["mobile_number"] = st.MobileNumber
	}
	if st.ApplicationID != "" {
		summary["application_id"] = st.ApplicationID
	}
	if len(st.UserInfo) > 0 {
		summary["user_info"] = st.UserInfo
	}
	if v := st.CurrentVehicle(); v != nil && len(v.Condition) > 0 {
		summary["vehicle"] = v.Condition
	}
	return summary
}
