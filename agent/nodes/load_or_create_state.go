package turnnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	flowx "github.com/vahanlabs/loanflow/agent/flow"
	statex "github.com/vahanlabs/loanflow/agent/state"
)

// LoadOrCreateState pulls the session document, creating a fresh one at the
// entry step for unknown ids. Store failures are hard: the turn aborts
// before anything could mutate.
func LoadOrCreateState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
	case errors.Is(err, statex.ErrStateNotFound):
		st = statex.NewSessionState(in.SessionID, in.Now)
	default:
		return nil, fmt.Errorf("%w: load session %s: %v", contractx.ErrStoreUnavailable, in.SessionID, err)
	}

	st.EnsureMaps()
	in.Session = st
	in.Step = flowx.MustLookup(st.CurrentStep)
	return in, nil
}
