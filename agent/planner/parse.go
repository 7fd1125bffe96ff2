package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParsePlan recovers a Plan from raw model output. Models wrap JSON in
// markdown fences or prose, so extraction runs in three stages: fenced
// block, whole-output parse, then a balanced-brace scan for the first
// embedded object. Action data keys are lowercased before the plan is
// returned.
func ParsePlan(raw string) (contractx.Plan, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return contractx.Plan{}, fmt.Errorf("%w: empty output", contractx.ErrPlanParse)
	}

	if m := fencedJSONPattern.FindStringSubmatch(trimmed); m != nil {
		if plan, ok := tryDecode(m[1]); ok {
			return plan, nil
		}
	}

	if plan, ok := tryDecode(trimmed); ok {
		return plan, nil
	}

	for _, candidate := range scanObjects(trimmed) {
		if plan, ok := tryDecode(candidate); ok {
			return plan, nil
		}
	}

	return contractx.Plan{}, fmt.Errorf("%w: %.120q", contractx.ErrPlanParse, trimmed)
}

func tryDecode(s string) (contractx.Plan, bool) {
	var plan contractx.Plan
	if err := json.Unmarshal([]byte(s), &plan); err != nil {
		return contractx.Plan{}, false
	}
	if plan.Message == "" && plan.NextStep == "" && len(plan.Actions) == 0 {
		return contractx.Plan{}, false
	}
	for i := range plan.Actions {
		plan.Actions[i].Data = lowercaseKeys(plan.Actions[i].Data)
	}
	return plan, true
}

// scanObjects yields every balanced top-level {...} span in s, tracking
// string literals and escapes so braces inside values do not split objects.
func scanObjects(s string) []string {
	var out []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					out = append(out, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return out
}

func lowercaseKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = lowercaseKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
