package flow

import "testing"

func TestOrderWalksEveryStepToCompleted(t *testing.T) {
	t.Parallel()

	current := Entry()
	for i, want := range Order {
		if current != want {
			t.Fatalf("position %d: walking the table reached %s, Order says %s", i, current, want)
		}
		step, ok := Lookup(current)
		if !ok {
			t.Fatalf("step %s missing from table", current)
		}
		if step.Terminal() {
			break
		}
		current = step.Next
	}
	if current != StepCompleted {
		t.Fatalf("flow does not end at COMPLETED, stopped at %s", current)
	}
}

func TestStepDefinitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      StepName
		next      StepName
		component string
		tool      string
	}{
		{StepMobileNumber, StepOTPVerification, "mobile-input", "send_otp"},
		{StepOTPVerification, StepPANDetails, "otp-input", "verify_otp"},
		{StepPANDetails, StepBrandSelection, "pan-upload", "request_pan_details"},
		{StepBrandSelection, StepModelSelection, "brand-selection", "search_brands"},
		{StepModelSelection, StepUserDetails, "model-selection", "search_models"},
		{StepUserDetails, StepOffers, "user-info-form", "save_user"},
		{StepOffers, StepCompleted, "offers", "fetch_offers"},
	}
	for _, tc := range cases {
		step, ok := Lookup(tc.name)
		if !ok {
			t.Fatalf("step %s missing", tc.name)
		}
		if step.Next != tc.next {
			t.Fatalf("%s.Next = %s, want %s", tc.name, step.Next, tc.next)
		}
		if step.Component != tc.component {
			t.Fatalf("%s.Component = %s, want %s", tc.name, step.Component, tc.component)
		}
		if !step.Allows(tc.tool) {
			t.Fatalf("%s should allow %s", tc.name, tc.tool)
		}
		if len(step.AllowedTools) != 1 {
			t.Fatalf("%s allows %d tools, want exactly 1", tc.name, len(step.AllowedTools))
		}
	}
}

func TestCompletedIsTerminalAndToolless(t *testing.T) {
	t.Parallel()

	step := MustLookup(StepCompleted)
	if !step.Terminal() {
		t.Fatal("COMPLETED must self-loop")
	}
	if len(step.AllowedTools) != 0 {
		t.Fatalf("COMPLETED allows tools: %v", step.AllowedTools)
	}
	if step.Allows("fetch_offers") {
		t.Fatal("no tool may run after completion")
	}
}

func TestMustLookupFallsBackToEntry(t *testing.T) {
	t.Parallel()

	step := MustLookup(StepName("NOT_A_STEP"))
	if step.Name != Entry() {
		t.Fatalf("fallback step = %s", step.Name)
	}
	if Valid(StepName("NOT_A_STEP")) {
		t.Fatal("unknown step must not validate")
	}
}
