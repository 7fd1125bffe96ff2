package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	statex "github.com/vahanlabs/loanflow/agent/state"
)

// SaveState persists the session. This is the only write of the turn, so an
// aborted graph leaves the stored document untouched.
func SaveState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, fmt.Errorf("%w: save session %s: %v", contractx.ErrStoreUnavailable, in.SessionID, err)
	}

	return in, nil
}

// FinalizeTurn snapshots the response and session for the caller.
func FinalizeTurn(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	return GraphOutput{Response: in.Response, Session: in.Session}, nil
}
