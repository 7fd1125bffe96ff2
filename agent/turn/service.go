// Package turn runs one conversation turn end to end: load state, extract,
// plan, validate, execute, compose, persist.
package turn

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	turnnode "github.com/vahanlabs/loanflow/agent/nodes"
	schemax "github.com/vahanlabs/loanflow/agent/schema"
	statex "github.com/vahanlabs/loanflow/agent/state"
)

const (
	emptyInputMessage  = "Hi! I'm your Vehicle Loan Assistant. How can I help you?"
	plannerDownMessage = "I'm having trouble reaching my planning service. Please try again in a moment."
	planParseMessage   = "I couldn't work out what to do with that. Could you rephrase?"
	storeDownMessage   = "Unable to access your session right now. Please try again."
)

type Orchestrator struct {
	store   statex.Store
	planner contractx.Planner
	schemas *schemax.Registry
	tools   contractx.ToolExecutor
	locks   *statex.Locks

	graphRunner compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	planner contractx.Planner,
	schemas *schemax.Registry,
	tools contractx.ToolExecutor,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if schemas == nil {
		return nil, errors.New("schema registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool executor is required")
	}

	o := &Orchestrator{
		store:   store,
		planner: planner,
		schemas: schemas,
		tools:   tools,
		locks:   statex.NewLocks(),
		now:     time.Now,
	}

	graphRunner, err := o.compileProcessTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// ProcessTurn handles one user message for one session. Turns for the same
// session serialize; the result is always well-formed, with hard failures
// mapped to status "fail" and a user-facing retry message.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID, text string) contractx.TurnResult {
	release := o.locks.Acquire(sessionID)
	defer release()

	out, err := o.graphRunner.Invoke(ctx, turnnode.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("turn failed")
		return failResult(err)
	}

	log.Info().
		Str("session_id", sessionID).
		Str("step", string(out.Session.CurrentStep)).
		Bool("success", out.Response.Success).
		Msg("turn processed")

	return contractx.TurnResult{
		Status:  contractx.StatusOK,
		Details: out.Response,
		State:   out.Session,
	}
}

// failResult maps a hard failure to its user-facing retry message. No state
// was committed, so the client stays on whatever it was showing.
func failResult(err error) contractx.TurnResult {
	message := storeDownMessage
	switch {
	case errors.Is(err, contractx.ErrInputEmpty):
		message = emptyInputMessage
	case errors.Is(err, contractx.ErrPlannerUnavailable):
		message = plannerDownMessage
	case errors.Is(err, contractx.ErrPlanParse):
		message = planParseMessage
	}

	return contractx.TurnResult{
		Status: contractx.StatusFail,
		Details: contractx.Response{
			Message:      message,
			Success:      false,
			ErrorMessage: err.Error(),
		},
	}
}
