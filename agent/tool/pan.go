package tool

import (
	"context"
	"regexp"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

var (
	panNamePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z .]*$`)
	panDOBPattern    = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	panNumberPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// CapturePANDetails records the identity fields from the PAN card. The values
// themselves are re-checked here so the handler stays safe even if invoked
// outside the validated path.
func CapturePANDetails(_ context.Context, data map[string]any) (contractx.ToolResult, error) {
	name := stringArg(data, "name")
	dob := stringArg(data, "dob")
	pan := stringArg(data, "pan_number")

	switch {
	case !panNamePattern.MatchString(name):
		return contractx.ToolResult{Success: false, Error: "Invalid name format."}, nil
	case !panDOBPattern.MatchString(dob):
		return contractx.ToolResult{Success: false, Error: "Invalid Date of Birth format. Please use DD-MM-YYYY."}, nil
	case !panNumberPattern.MatchString(pan):
		return contractx.ToolResult{Success: false, Error: "Invalid PAN number format."}, nil
	}

	return contractx.ToolResult{
		Success: true,
		Message: "PAN details captured successfully.",
		StateUpdates: map[string]any{
			"pan_details_entered": true,
			"pan":                 pan,
			"name":                name,
			"dob":                 dob,
		},
	}, nil
}
