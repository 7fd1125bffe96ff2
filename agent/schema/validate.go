package schema

import (
	"encoding/json"
	"fmt"
	"math"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
	flowx "github.com/vahanlabs/loanflow/agent/flow"
)

// Validate checks one proposed tool call against the registry and the
// current step. Checks run in a fixed order so a call with several defects
// always reports the same one: unknown tool, then step gating, then missing
// required fields, then per-field format.
func (r *Registry) Validate(tool string, data map[string]any, step flowx.Step) error {
	schema, ok := r.tools[tool]
	if !ok {
		return fmt.Errorf("%w: %q", contractx.ErrUnknownTool, tool)
	}
	if !step.Allows(tool) {
		return fmt.Errorf("%w: %q is not permitted in step %s", contractx.ErrStepViolation, tool, step.Name)
	}
	return validateFields(tool, schema.Fields, data)
}

func validateFields(tool string, fields []Field, data map[string]any) error {
	for _, f := range fields {
		v, present := data[f.Name]
		if !present || v == nil {
			if f.Required {
				return fmt.Errorf("%w: %s requires %q", contractx.ErrMissingField, tool, f.Name)
			}
			continue
		}
		if err := validateValue(tool, f, v); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(tool string, f Field, v any) error {
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return formatErr(tool, f, "expected a string")
		}
		if s == "" && !f.Required {
			return nil
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			return formatErr(tool, f, fmt.Sprintf("%q does not match %s", s, f.Pattern))
		}
	case KindInteger:
		n, ok := asNumber(v)
		if !ok || n != math.Trunc(n) {
			return formatErr(tool, f, "expected an integer")
		}
		if err := checkRange(tool, f, n); err != nil {
			return err
		}
	case KindNumber:
		n, ok := asNumber(v)
		if !ok {
			return formatErr(tool, f, "expected a number")
		}
		if err := checkRange(tool, f, n); err != nil {
			return err
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return formatErr(tool, f, "expected a boolean")
		}
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return formatErr(tool, f, "expected a string")
		}
		for _, allowed := range f.Enum {
			if s == allowed {
				return nil
			}
		}
		return formatErr(tool, f, fmt.Sprintf("%q is not an allowed value", s))
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return formatErr(tool, f, "expected an object")
		}
		return validateFields(tool, f.Fields, m)
	}
	return nil
}

func checkRange(tool string, f Field, n float64) error {
	if f.Min != nil && n < *f.Min {
		return formatErr(tool, f, fmt.Sprintf("%v is below the minimum %v", n, *f.Min))
	}
	if f.Max != nil && n > *f.Max {
		return formatErr(tool, f, fmt.Sprintf("%v is above the maximum %v", n, *f.Max))
	}
	return nil
}

func formatErr(tool string, f Field, detail string) error {
	return fmt.Errorf("%w: %s field %q: %s", contractx.ErrFormatViolation, tool, f.Name, detail)
}

// asNumber accepts the numeric shapes a decoded JSON plan can carry.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
