package turnnode

import (
	"fmt"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	flowx "github.com/vahanlabs/loanflow/agent/flow"
)

const (
	fallbackMessage = "Processing your request..."

	greetingMessage = "Hello! I'm your Vehicle Loan Assistant. I'll help you get a vehicle loan step by step.\n\n" +
		"To begin, please provide your 10-digit mobile number. I'll send you an OTP for verification to ensure your security."
)

// ComposeResponse commits the step transition and assembles the outward
// payload. The step advances only when at least one action executed
// successfully and none failed; a plan that proposes no actions keeps the
// session where it is, so the planner cannot move the flow past a step
// whose data was never captured. The component and next_step always come
// from the flow table, and the plan contributes only its message.
func ComposeResponse(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	message := in.Plan.Message
	if message == "" {
		message = fallbackMessage
	}

	if in.Failure != nil {
		step := flowx.MustLookup(in.Session.CurrentStep)
		in.Response = contractx.Response{
			Message:      message,
			Component:    step.Component,
			NextStep:     string(step.Name),
			Success:      false,
			ErrorMessage: in.Failure.Error(),
			Data:         in.Data,
		}
		return in, nil
	}

	if in.Executed > 0 {
		in.Session.Advance(in.Now)
	}
	step := flowx.MustLookup(in.Session.CurrentStep)
	in.Response = contractx.Response{
		Message:   message,
		Component: step.Component,
		NextStep:  string(step.Name),
		Success:   true,
		Data:      in.Data,
	}
	return in, nil
}

// ComposeGreeting answers conversation openers from the flow table alone.
// The session stays exactly where it was.
func ComposeGreeting(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	step := flowx.MustLookup(in.Session.CurrentStep)
	in.Response = contractx.Response{
		Message:   greetingMessage,
		Component: step.Component,
		NextStep:  string(step.Name),
		Success:   true,
		Data: map[string]any{
			"instruction": "Please enter your 10-digit mobile number",
			"examples":    []string{"9876543210", "987-654-3210", "+91 9876543210"},
		},
	}
	return in, nil
}
