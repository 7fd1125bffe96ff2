// Package flow holds the static step table for the loan application
// conversation. The table is the single source of truth for step order,
// the UI component attached to each step, and which tools may execute
// while a session sits in that step.
package flow

type StepName string

const (
	StepMobileNumber    StepName = "MOBILE_NUMBER"
	StepOTPVerification StepName = "OTP_VERIFICATION"
	StepPANDetails      StepName = "PAN_DETAILS"
	StepBrandSelection  StepName = "BRAND_SELECTION"
	StepModelSelection  StepName = "MODEL_SELECTION"
	StepUserDetails     StepName = "USER_DETAILS"
	StepOffers          StepName = "OFFERS"
	StepCompleted       StepName = "COMPLETED"
)

// Step describes one stage of the flow. Steps are immutable after startup.
type Step struct {
	Name         StepName
	Next         StepName
	Component    string
	AllowedTools []string
}

var steps = map[StepName]Step{
	StepMobileNumber:    {Name: StepMobileNumber, Next: StepOTPVerification, Component: "mobile-input", AllowedTools: []string{"send_otp"}},
	StepOTPVerification: {Name: StepOTPVerification, Next: StepPANDetails, Component: "otp-input", AllowedTools: []string{"verify_otp"}},
	StepPANDetails:      {Name: StepPANDetails, Next: StepBrandSelection, Component: "pan-upload", AllowedTools: []string{"request_pan_details"}},
	StepBrandSelection:  {Name: StepBrandSelection, Next: StepModelSelection, Component: "brand-selection", AllowedTools: []string{"search_brands"}},
	StepModelSelection:  {Name: StepModelSelection, Next: StepUserDetails, Component: "model-selection", AllowedTools: []string{"search_models"}},
	StepUserDetails:     {Name: StepUserDetails, Next: StepOffers, Component: "user-info-form", AllowedTools: []string{"save_user"}},
	StepOffers:          {Name: StepOffers, Next: StepCompleted, Component: "offers", AllowedTools: []string{"fetch_offers"}},
	StepCompleted:       {Name: StepCompleted, Next: StepCompleted, Component: "done", AllowedTools: nil},
}

// Order lists the steps in flow order, terminal step last.
var Order = []StepName{
	StepMobileNumber,
	StepOTPVerification,
	StepPANDetails,
	StepBrandSelection,
	StepModelSelection,
	StepUserDetails,
	StepOffers,
	StepCompleted,
}

// Entry is the step every new session starts in.
func Entry() StepName {
	return StepMobileNumber
}

// Lookup returns the step definition for name.
func Lookup(name StepName) (Step, bool) {
	s, ok := steps[name]
	return s, ok
}

// MustLookup is Lookup for step names already known to be valid; unknown
// names fall back to the entry step so a corrupt persisted value can never
// take the session off the table.
func MustLookup(name StepName) Step {
	if s, ok := steps[name]; ok {
		return s
	}
	return steps[Entry()]
}

// Valid reports whether name is a declared step.
func Valid(name StepName) bool {
	_, ok := steps[name]
	return ok
}

// Allows reports whether the named tool may execute while in this step.
func (s Step) Allows(tool string) bool {
	for _, t := range s.AllowedTools {
		if t == tool {
			return true
		}
	}
	return false
}

// Terminal reports whether the step loops onto itself.
func (s Step) Terminal() bool {
	return s.Next == s.Name
}
