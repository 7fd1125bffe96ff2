package contract

import (
	statex "github.com/vahanlabs/loanflow/agent/state"
)

// Plan is the structured proposal recovered from one planner turn. It is
// transient and advisory: Component and NextStep are hints that the response
// composer cross-checks against the flow table before use.
type Plan struct {
	Message   string       `json:"message"`
	Component string       `json:"component,omitempty"`
	NextStep  string       `json:"next_step,omitempty"`
	Actions   []PlanAction `json:"actions,omitempty"`
}

// PlanAction is one proposed tool invocation. Data keys are lowercased by the
// plan parser before validation.
type PlanAction struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data,omitempty"`
}

// ToolResult is the normalized envelope every tool handler resolves to.
type ToolResult struct {
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	Message      string         `json:"message,omitempty"`
	StateUpdates map[string]any `json:"state_updates,omitempty"`
	Data         any            `json:"data,omitempty"`
}

// PlannerRequest carries everything the planner prompt embeds for one turn.
type PlannerRequest struct {
	UserText  string
	Session   *statex.SessionState
	Step      string
	NextStep  string
	Component string

	// AllowedTools limits which tool schemas the prompt serializes.
	AllowedTools []string
}

// Response is the per-turn payload handed back to the transport layer.
// Component and NextStep always come from the flow table, never from the
// planner alone.
type Response struct {
	Message      string `json:"message"`
	Component    string `json:"component"`
	NextStep     string `json:"next_step"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	Data         any    `json:"data,omitempty"`
}

const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// TurnResult wraps a Response with the turn outcome and the persisted state
// snapshot. Status is "fail" only for turn-level hard failures (empty input,
// planner/plan-parse/store errors); dispatch and execution failures stay
// "ok" with Details.Success=false.
type TurnResult struct {
	Status  string               `json:"status"`
	Details Response             `json:"details"`
	State   *statex.SessionState `json:"state,omitempty"`
}
