package contract

import "errors"

// Turn-level hard failures: the turn returns status "fail", no state mutation
// is committed, and the user gets a generic retry message.
var (
	ErrInputEmpty         = errors.New("user input is empty")
	ErrPlannerUnavailable = errors.New("planner unavailable")
	ErrPlanParse          = errors.New("no valid plan in planner output")
	ErrStoreUnavailable   = errors.New("state store unavailable")
)

// Soft failures: the turn still returns status "ok"; current_step stays put
// and the specific reason drives the next prompt.
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrStepViolation   = errors.New("tool not allowed in current step")
	ErrMissingField    = errors.New("missing required field")
	ErrFormatViolation = errors.New("field format violation")
	ErrToolExecution   = errors.New("tool execution failed")
)

var ErrValidation = errors.New("validation failed")
