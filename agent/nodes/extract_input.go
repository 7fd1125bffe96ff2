package turnnode

import (
	"fmt"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	extractx "github.com/vahanlabs/loanflow/agent/extract"
)

// ExtractInput merges whatever the raw text obviously carries (mobile
// number, labeled OTP, profile fields) into the session before planning,
// and flags greetings so the graph can answer them without the model.
func ExtractInput(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Greeting = extractx.IsGreeting(in.Text)
	if in.Greeting {
		return in, nil
	}

	upd := extractx.Extract(in.Text, in.Session)
	extractx.Apply(in.Session, upd)
	return in, nil
}
