// Package extract derives candidate state updates from raw user text.
// Extraction is pure and idempotent: it never mutates the session, never
// sets a verification flag, and the same text against the same state always
// yields the same update.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	statex "github.com/vahanlabs/loanflow/agent/state"
)

// mobilePatterns are tried in priority order; the first candidate that
// normalizes to exactly 10 digits wins.
var mobilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{10})\b`),
	regexp.MustCompile(`\b(\d{3}[-.\s]?\d{3}[-.\s]?\d{4})\b`),
	regexp.MustCompile(`\b\+?91[-.\s]?(\d{10})\b`),
	regexp.MustCompile(`\b(\d{5}[-.\s]?\d{5})\b`),
}

var (
	otpPattern         = regexp.MustCompile(`(?i)\botp[:\s-]*([0-9]{6})\b`)
	namePattern        = regexp.MustCompile(`(?i)\bname[:\s-]+([a-zA-Z][a-zA-Z ]*)`)
	emailPattern       = regexp.MustCompile(`(?i)\bemail[:\s-]*([^\s,]+@[^\s,]+)`)
	incomePattern      = regexp.MustCompile(`(?i)\bincome[:\s-]*([0-9][0-9,]*)`)
	downPaymentPattern = regexp.MustCompile(`(?i)\bdown.?payment[:\s-]*([0-9][0-9,]*)`)
	correctionPattern  = regexp.MustCompile(`(?i)\b(change|correct|update|wrong)\b.*\b(number|mobile|phone)\b`)
	newVehiclePattern  = regexp.MustCompile(`(?i)\b(new|another|different|more)\s+(vehicle|car|bike|loan)\b`)
	nonDigits          = regexp.MustCompile(`[^0-9]`)
)

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(hi|hello|hey|good morning|good afternoon|good evening)$`),
	regexp.MustCompile(`(?i)^(how are you|how's it going|what's up)$`),
	regexp.MustCompile(`(?i)^(start|begin|help|guide)$`),
	regexp.MustCompile(`(?i)^(vehicle loan|car loan|bike loan)$`),
}

// Update is the partial state change derived from one utterance. Zero-value
// fields mean "nothing found"; callers merge non-zero fields into the
// session before building the planner prompt.
type Update struct {
	MobileNumber string
	OTPSubmitted string
	UserInfo     map[string]any
	NewVehicle   bool
}

func (u Update) Empty() bool {
	return u.MobileNumber == "" && u.OTPSubmitted == "" && len(u.UserInfo) == 0 && !u.NewVehicle
}

// Extract scans text for the fields the flow can capture from free input.
// An already-set mobile number is only replaced when the text carries
// explicit correction phrasing, so a digit string mentioned in passing can
// never clobber a captured value.
func Extract(text string, current *statex.SessionState) Update {
	upd := Update{}
	if strings.TrimSpace(text) == "" {
		return upd
	}

	mobileSet := current != nil && current.MobileNumber != ""
	if !mobileSet || correctionPattern.MatchString(text) {
		if mobile := findMobile(text); mobile != "" && (!mobileSet || mobile != current.MobileNumber) {
			upd.MobileNumber = mobile
		}
	}

	if m := otpPattern.FindStringSubmatch(text); m != nil {
		upd.OTPSubmitted = m[1]
	}

	info := map[string]any{}
	if m := namePattern.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			info["name"] = name
		}
	}
	if m := emailPattern.FindStringSubmatch(text); m != nil {
		info["email"] = strings.TrimSpace(m[1])
	}
	if m := incomePattern.FindStringSubmatch(text); m != nil {
		if n, err := parseAmount(m[1]); err == nil {
			info["income"] = n
		}
	}
	if m := downPaymentPattern.FindStringSubmatch(text); m != nil {
		if n, err := parseAmount(m[1]); err == nil {
			info["down_payment"] = n
		}
	}
	if len(info) > 0 {
		upd.UserInfo = info
	}

	upd.NewVehicle = newVehiclePattern.MatchString(text)
	return upd
}

// Apply merges the update into st. Verification flags are untouched by
// design: otp_verified and pan_captured only ever come from tool results.
func Apply(st *statex.SessionState, upd Update) {
	if st == nil || upd.Empty() {
		return
	}
	if upd.MobileNumber != "" {
		st.MobileNumber = upd.MobileNumber
	}
	if upd.OTPSubmitted != "" {
		st.OTPSubmitted = upd.OTPSubmitted
	}
	for k, v := range upd.UserInfo {
		st.SetUserInfo(k, v)
	}
	if upd.NewVehicle {
		st.AddVehicle()
	}
}

// IsGreeting reports whether the whole utterance is a greeting or a bare
// conversation opener.
func IsGreeting(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range greetingPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func findMobile(text string) string {
	for _, p := range mobilePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			digits := nonDigits.ReplaceAllString(m[1], "")
			if len(digits) == 10 {
				return digits
			}
		}
	}
	return ""
}

func parseAmount(raw string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
}

// cleanName cuts the capture at the next labeled field so "name: Ravi Kumar
// and email ..." keeps only the name part.
func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	lower := strings.ToLower(name)
	for _, stop := range []string{" and ", " email", " income", " mobile", " phone", " otp"} {
		if idx := strings.Index(lower, stop); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
			lower = lower[:idx]
		}
	}
	return name
}
