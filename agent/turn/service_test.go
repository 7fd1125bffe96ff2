package turn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	flowx "github.com/vahanlabs/loanflow/agent/flow"
	schemax "github.com/vahanlabs/loanflow/agent/schema"
	statex "github.com/vahanlabs/loanflow/agent/state"
	toolx "github.com/vahanlabs/loanflow/agent/tool"
)

// scriptedPlanner replays queued plans (or errors) in order. When the queue
// is exhausted it keeps returning the last entry.
type scriptedPlanner struct {
	mu    sync.Mutex
	plans []contractx.Plan
	errs  []error
	calls int
}

func (p *scriptedPlanner) Plan(_ context.Context, _ contractx.PlannerRequest) (contractx.Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i >= len(p.plans) && len(p.plans) > 0 {
		i = len(p.plans) - 1
	}
	if i < len(p.errs) && p.errs[i] != nil {
		return contractx.Plan{}, p.errs[i]
	}
	if i < len(p.plans) {
		return p.plans[i], nil
	}
	return contractx.Plan{}, contractx.ErrPlanParse
}

func (p *scriptedPlanner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// countingExecutor records every dispatched call and replays canned results.
type countingExecutor struct {
	mu      sync.Mutex
	results map[string]contractx.ToolResult
	calls   map[string]int
}

func newCountingExecutor(results map[string]contractx.ToolResult) *countingExecutor {
	return &countingExecutor{results: results, calls: make(map[string]int)}
}

func (e *countingExecutor) Execute(_ context.Context, tool string, _ map[string]any) contractx.ToolResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls[tool]++
	if res, ok := e.results[tool]; ok {
		return res
	}
	return contractx.ToolResult{Success: true}
}

func (e *countingExecutor) callCount(tool string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[tool]
}

func newOrchestrator(t *testing.T, store statex.Store, planner contractx.Planner, tools contractx.ToolExecutor) *Orchestrator {
	t.Helper()
	o, err := New(store, planner, schemax.DefaultRegistry(), tools)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

func sendOTPPlan() contractx.Plan {
	return contractx.Plan{
		Message:  "Sending your verification code now.",
		NextStep: "OTP_VERIFICATION",
		Actions: []contractx.PlanAction{
			{Action: "send_otp", Data: map[string]any{"mobile_number": "9876543210"}},
		},
	}
}

func TestSuccessfulTurnAdvancesStep(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{plans: []contractx.Plan{sendOTPPlan()}}
	exec := newCountingExecutor(map[string]contractx.ToolResult{
		"send_otp": {Success: true, StateUpdates: map[string]any{"mobile_number": "9876543210"}},
	})
	o := newOrchestrator(t, store, planner, exec)

	res := o.ProcessTurn(context.Background(), "sess-1", "My number is 9876543210")
	if res.Status != contractx.StatusOK {
		t.Fatalf("status = %s: %+v", res.Status, res.Details)
	}
	if !res.Details.Success {
		t.Fatalf("details = %+v", res.Details)
	}
	if res.Details.NextStep != "OTP_VERIFICATION" || res.Details.Component != "otp-input" {
		t.Fatalf("response step/component = %s/%s", res.Details.NextStep, res.Details.Component)
	}
	if exec.callCount("send_otp") != 1 {
		t.Fatalf("send_otp calls = %d", exec.callCount("send_otp"))
	}

	st, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.CurrentStep != flowx.StepOTPVerification {
		t.Fatalf("persisted step = %s", st.CurrentStep)
	}
	if st.MobileNumber != "9876543210" {
		t.Fatalf("persisted mobile = %q", st.MobileNumber)
	}
}

func TestOutOfStepToolIsRejectedWithoutSideEffects(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	// Planner jumps ahead to PAN capture while the session is still at the
	// entry step.
	planner := &scriptedPlanner{plans: []contractx.Plan{{
		Message: "Let me grab your PAN details.",
		Actions: []contractx.PlanAction{
			{Action: "request_pan_details", Data: map[string]any{
				"name": "Priya Sharma", "dob": "14-03-1992", "pan_number": "ABCDE1234F",
			}},
		},
	}}}
	exec := newCountingExecutor(nil)
	o := newOrchestrator(t, store, planner, exec)

	res := o.ProcessTurn(context.Background(), "sess-1", "here are my pan details")
	if res.Status != contractx.StatusOK {
		t.Fatalf("dispatch failures are not turn failures, got %s", res.Status)
	}
	if res.Details.Success {
		t.Fatal("rejected action must not report success")
	}
	if !strings.Contains(res.Details.ErrorMessage, "not permitted") {
		t.Fatalf("error_message = %q", res.Details.ErrorMessage)
	}
	// UI stays on the current step's component.
	if res.Details.Component != "mobile-input" || res.Details.NextStep != "MOBILE_NUMBER" {
		t.Fatalf("response step/component = %s/%s", res.Details.NextStep, res.Details.Component)
	}
	if exec.callCount("request_pan_details") != 0 {
		t.Fatal("handler must not run for a rejected action")
	}

	st, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.CurrentStep != flowx.StepMobileNumber {
		t.Fatalf("step moved to %s", st.CurrentStep)
	}
}

func TestMissingFieldKeepsStep(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{plans: []contractx.Plan{{
		Message: "Sending a code.",
		Actions: []contractx.PlanAction{{Action: "send_otp", Data: map[string]any{}}},
	}}}
	exec := newCountingExecutor(nil)
	o := newOrchestrator(t, store, planner, exec)

	res := o.ProcessTurn(context.Background(), "sess-1", "send me the otp please")
	if res.Status != contractx.StatusOK || res.Details.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Details.ErrorMessage, "mobile_number") {
		t.Fatalf("error_message = %q", res.Details.ErrorMessage)
	}
	if exec.callCount("send_otp") != 0 {
		t.Fatal("handler must not run without required fields")
	}
}

func TestPlannerUnavailableFailsTurnWithoutCommit(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{
		plans: []contractx.Plan{{}},
		errs:  []error{contractx.ErrPlannerUnavailable},
	}
	o := newOrchestrator(t, store, planner, newCountingExecutor(nil))

	res := o.ProcessTurn(context.Background(), "sess-1", "my number is 9876543210")
	if res.Status != contractx.StatusFail {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Details.Message != plannerDownMessage {
		t.Fatalf("message = %q", res.Details.Message)
	}
	// Nothing was persisted, not even the extracted mobile number.
	if _, err := store.Load(context.Background(), "sess-1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("want no persisted session, got %v", err)
	}
}

func TestPlanParseFailureFailsTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{
		plans: []contractx.Plan{{}},
		errs:  []error{contractx.ErrPlanParse},
	}
	o := newOrchestrator(t, store, planner, newCountingExecutor(nil))

	res := o.ProcessTurn(context.Background(), "sess-1", "9876543210")
	if res.Status != contractx.StatusFail {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Details.Message != planParseMessage {
		t.Fatalf("message = %q", res.Details.Message)
	}
}

func TestEmptyInputFailsWithoutTouchingStore(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{}
	o := newOrchestrator(t, store, planner, newCountingExecutor(nil))

	res := o.ProcessTurn(context.Background(), "sess-1", "   ")
	if res.Status != contractx.StatusFail {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Details.Message != emptyInputMessage {
		t.Fatalf("message = %q", res.Details.Message)
	}
	if planner.callCount() != 0 {
		t.Fatal("planner must not run for empty input")
	}
	if _, err := store.Load(context.Background(), "sess-1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("want no persisted session, got %v", err)
	}
}

func TestGreetingShortCircuitsPlanner(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{}
	o := newOrchestrator(t, store, planner, newCountingExecutor(nil))

	res := o.ProcessTurn(context.Background(), "sess-1", "hello")
	if res.Status != contractx.StatusOK || !res.Details.Success {
		t.Fatalf("result = %+v", res)
	}
	if planner.callCount() != 0 {
		t.Fatal("greetings are answered without the planner")
	}
	if res.Details.Component != "mobile-input" || res.Details.NextStep != "MOBILE_NUMBER" {
		t.Fatalf("response step/component = %s/%s", res.Details.NextStep, res.Details.Component)
	}

	st, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.CurrentStep != flowx.StepMobileNumber {
		t.Fatalf("greeting advanced the step to %s", st.CurrentStep)
	}
}

func TestZeroActionPlanKeepsStep(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{plans: []contractx.Plan{{
		Message: "Please share your 10-digit mobile number.",
	}}}
	exec := newCountingExecutor(nil)
	o := newOrchestrator(t, store, planner, exec)

	res := o.ProcessTurn(context.Background(), "sess-1", "I want a vehicle loan")
	if res.Status != contractx.StatusOK || !res.Details.Success {
		t.Fatalf("result = %+v", res)
	}
	// Asking again is not progress. The session must stay on the entry
	// step with nothing captured, so send_otp remains reachable.
	if res.Details.NextStep != "MOBILE_NUMBER" || res.Details.Component != "mobile-input" {
		t.Fatalf("response step/component = %s/%s", res.Details.NextStep, res.Details.Component)
	}
	st, _ := store.Load(context.Background(), "sess-1")
	if st.CurrentStep != flowx.StepMobileNumber {
		t.Fatalf("step moved to %s without any executed action", st.CurrentStep)
	}
	if st.MobileNumber != "" {
		t.Fatalf("mobile = %q", st.MobileNumber)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("no tool should run, got %v", exec.calls)
	}
}

func TestTerminalStepSelfLoops(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	done := statex.NewSessionState("sess-done", time.Now())
	done.CurrentStep = flowx.StepCompleted
	if err := store.Save(context.Background(), done); err != nil {
		t.Fatalf("seed: %v", err)
	}

	planner := &scriptedPlanner{plans: []contractx.Plan{{Message: "Your application is complete."}}}
	o := newOrchestrator(t, store, planner, newCountingExecutor(nil))

	res := o.ProcessTurn(context.Background(), "sess-done", "what happens next?")
	if res.Status != contractx.StatusOK || !res.Details.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Details.NextStep != "COMPLETED" || res.Details.Component != "done" {
		t.Fatalf("response step/component = %s/%s", res.Details.NextStep, res.Details.Component)
	}
	st, _ := store.Load(context.Background(), "sess-done")
	if st.CurrentStep != flowx.StepCompleted {
		t.Fatalf("step = %s", st.CurrentStep)
	}
}

func TestMultiActionPlanFailsIfAnyActionInvalid(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{plans: []contractx.Plan{{
		Message: "Doing two things.",
		Actions: []contractx.PlanAction{
			{Action: "send_otp", Data: map[string]any{"mobile_number": "9876543210"}},
			{Action: "send_otp", Data: map[string]any{"mobile_number": "12"}},
		},
	}}}
	exec := newCountingExecutor(map[string]contractx.ToolResult{
		"send_otp": {Success: true},
	})
	o := newOrchestrator(t, store, planner, exec)

	res := o.ProcessTurn(context.Background(), "sess-1", "9876543210")
	if res.Details.Success {
		t.Fatal("turn with an invalid action must not report success")
	}
	// The valid action still ran; only the invalid one was skipped.
	if exec.callCount("send_otp") != 1 {
		t.Fatalf("send_otp calls = %d", exec.callCount("send_otp"))
	}
	st, _ := store.Load(context.Background(), "sess-1")
	if st.CurrentStep != flowx.StepMobileNumber {
		t.Fatalf("step advanced to %s despite a failed action", st.CurrentStep)
	}
}

func TestConcurrentTurnsSerialize(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	planner := &scriptedPlanner{plans: []contractx.Plan{{Message: "noted"}, {Message: "noted"}}}
	o := newOrchestrator(t, store, planner, newCountingExecutor(nil))

	const turns = 8
	var wg sync.WaitGroup
	results := make([]contractx.TurnResult, turns)
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = o.ProcessTurn(context.Background(), "sess-1", "continue")
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if res.Status != contractx.StatusOK {
			t.Fatalf("turn %d failed: %+v", i, res.Details)
		}
	}
	st, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if int(st.Version) != turns {
		t.Fatalf("version = %d after %d serialized turns", st.Version, turns)
	}
}

func TestDefaultToolsEndToEndOTPFlow(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	otp := toolx.NewOTPService(nil, toolx.WithCodeSource(func() string { return "123456" }))
	tools := toolx.NewDefault(toolx.Deps{OTP: otp})

	planner := &scriptedPlanner{plans: []contractx.Plan{
		sendOTPPlan(),
		{
			Message: "Verifying your code.",
			Actions: []contractx.PlanAction{
				{Action: "verify_otp", Data: map[string]any{"mobile_number": "9876543210", "otp": "123456"}},
			},
		},
	}}
	o := newOrchestrator(t, store, planner, tools)

	if res := o.ProcessTurn(context.Background(), "sess-1", "my number is 9876543210"); !res.Details.Success {
		t.Fatalf("send turn: %+v", res.Details)
	}
	res := o.ProcessTurn(context.Background(), "sess-1", "otp 123456")
	if !res.Details.Success {
		t.Fatalf("verify turn: %+v", res.Details)
	}

	st, _ := store.Load(context.Background(), "sess-1")
	if !st.OTPVerified {
		t.Fatal("otp_verified not set after verify turn")
	}
	if st.CurrentStep != flowx.StepPANDetails {
		t.Fatalf("step = %s", st.CurrentStep)
	}
}
