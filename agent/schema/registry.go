package schema

import (
	"fmt"
	"strings"
)

// Registry is the static tool-name → schema mapping, populated once at
// startup.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, dup := r.tools[t.Name]; dup {
			continue
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// PromptBlock serializes the schemas of the named tools the way the planner
// prompt embeds them. Unknown names are skipped.
func (r *Registry) PromptBlock(names []string) string {
	var sb strings.Builder
	sb.WriteString("Available tools and schemas:\n")
	count := 0
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			continue
		}
		count++
		fmt.Fprintf(&sb, "**%s**: %s\n", t.Name, t.Desc)
		if len(t.Fields) > 0 {
			sb.WriteString("Fields:\n")
			for _, f := range t.Fields {
				sb.WriteString(f.Describe())
				sb.WriteByte('\n')
			}
		}
	}
	if count == 0 {
		return "No tools may be called in this step. Return actions: [].\n"
	}
	return sb.String()
}

const (
	mobilePattern = `^\d{10}$`
	otpPattern    = `^\d{6}$`
	panPattern    = `^[A-Z]{5}[0-9]{4}[A-Z]$`
	dobPattern    = `^\d{2}-\d{2}-\d{4}$`
	emailPattern  = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	namePattern   = `^[a-zA-Z][a-zA-Z .]*$`
)

// DefaultRegistry declares the schema of every tool the loan flow exposes.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTool("send_otp", "Send a one-time passcode to a mobile number for verification").
			String("mobile_number", Required(), Pattern(mobilePattern), Desc("10-digit mobile number")).
			Build(),

		NewTool("verify_otp", "Verify the one-time passcode for a mobile number").
			String("mobile_number", Required(), Pattern(mobilePattern), Desc("10-digit mobile number")).
			String("otp", Required(), Pattern(otpPattern), Desc("6-digit code")).
			Build(),

		NewTool("request_pan_details", "Capture PAN card details (name, date of birth, PAN number)").
			String("name", Required(), Pattern(namePattern), Desc("Full name as per PAN card")).
			String("dob", Required(), Pattern(dobPattern), Desc("Date of birth, DD-MM-YYYY")).
			String("pan_number", Required(), Pattern(panPattern), Desc("10-character PAN number")).
			Build(),

		NewTool("search_brands", "Search vehicle brands/makes").
			String("make", Required(), Desc("Search query; empty string lists all brands")).
			Build(),

		NewTool("search_models", "Search vehicle models for a brand").
			String("make", Required(), Desc("Vehicle make")).
			String("model", Required(), Desc("Model search query; empty string lists all models")).
			Build(),

		NewTool("save_user", "Save applicant details for the loan application").
			String("session_id", Required(), Desc("Conversation session id")).
			String("name", Required(), Pattern(namePattern), Desc("Applicant full name")).
			String("email", Required(), Pattern(emailPattern), Desc("Email address")).
			String("mobile_number", Required(), Pattern(mobilePattern), Desc("10-digit mobile number")).
			String("pan", Pattern(panPattern), Desc("PAN number, if captured")).
			Bool("otp_verified", Required(), Desc("Whether the mobile number was verified")).
			Build(),

		NewTool("fetch_offers", "Fetch loan offers for the selected vehicle and applicant").
			Integer("loan_amount", Required(), Min(1), Desc("Requested principal")).
			Integer("tenure_months", Required(), Min(6), Max(96), Desc("Repayment tenure in months")).
			Number("interest_rate", Desc("Preferred annual interest rate, percent")).
			Integer("credit_score", Min(300), Max(900), Desc("Applicant credit score, when known")).
			String("user_id", Required(), Desc("Saved application id")).
			Object("vehicle_details", NewTool("", "").
				String("make").
				String("model"),
				Desc("Selected vehicle")).
			Build(),
	)
}
