// Package turnnode holds the lambda nodes of the per-turn pipeline graph.
// Each node takes the shared GraphState, does one thing, and hands it on.
package turnnode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	flowx "github.com/vahanlabs/loanflow/agent/flow"
	statex "github.com/vahanlabs/loanflow/agent/state"
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Response contractx.Response
	Session  *statex.SessionState
}

// GraphState is the turn's working memory. Failure records the first soft
// failure (dispatch or execution); hard failures abort the graph as node
// errors instead, so nothing downstream of them runs.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.SessionState
	// Step is the flow entry the session sat in when the turn started.
	// Transitions are decided against it, never against planner output.
	Step flowx.Step

	Greeting bool
	Plan     contractx.Plan

	// Executed counts the plan actions that validated and ran successfully.
	// The step advances only when it is positive and Failure is nil.
	Executed int

	Failure error
	Data    any

	Response contractx.Response
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, contractx.ErrInputEmpty
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      strings.TrimSpace(in.Text),
		Now:       nowFn().UTC(),
	}, nil
}
