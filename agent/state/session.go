package state

import (
	"errors"
	"fmt"
	"time"

	flowx "github.com/vahanlabs/loanflow/agent/flow"
)

var (
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// Vehicle is one product-selection record. Condition carries the free-form
// attributes the conversation accumulates for it (make, model, variant, ...).
type Vehicle struct {
	Condition map[string]any `json:"condition"`
}

// SessionState is the persisted source of truth for one conversation. The
// current step only ever moves forward along the flow table; the verified /
// captured flags are set exclusively by successful tool results, never by
// free-text extraction.
type SessionState struct {
	SessionID string `json:"session_id"`

	CurrentStep flowx.StepName `json:"current_step"`

	MobileNumber string `json:"mobile_number,omitempty"`
	OTPSubmitted string `json:"otp_submitted,omitempty"`
	OTPVerified  bool   `json:"otp_verified"`
	PANCaptured  bool   `json:"pan_captured"`

	UserInfo      map[string]any `json:"user_info,omitempty"`
	UserInfoSaved bool           `json:"user_info_saved"`
	ApplicationID string         `json:"application_id,omitempty"`

	Vehicles            []Vehicle `json:"vehicles,omitempty"`
	CurrentVehicleIndex int       `json:"current_vehicle_index"`

	// Version increments on every committed save; stores that support it use
	// the pre-save value as an optimistic write guard.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:   sessionID,
		CurrentStep: flowx.Entry(),
		UserInfo:    make(map[string]any, 8),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureMaps makes sure the mutable containers are initialized after a load.
func (s *SessionState) EnsureMaps() {
	if s.UserInfo == nil {
		s.UserInfo = make(map[string]any, 8)
	}
}

// Advance moves the session one edge forward along the flow table. Any other
// target is rejected; the step never skips or regresses.
func (s *SessionState) Advance(now time.Time) {
	step := flowx.MustLookup(s.CurrentStep)
	s.CurrentStep = step.Next
	s.Touch(now)
}

// SetUserInfo merges one profile field.
func (s *SessionState) SetUserInfo(key string, val any) {
	s.EnsureMaps()
	s.UserInfo[key] = val
}

// CurrentVehicle returns the record CurrentVehicleIndex points at, creating
// the first one on demand.
func (s *SessionState) CurrentVehicle() *Vehicle {
	if len(s.Vehicles) == 0 {
		s.Vehicles = []Vehicle{{Condition: make(map[string]any, 4)}}
		s.CurrentVehicleIndex = 0
	}
	if s.CurrentVehicleIndex < 0 || s.CurrentVehicleIndex >= len(s.Vehicles) {
		s.CurrentVehicleIndex = len(s.Vehicles) - 1
	}
	v := &s.Vehicles[s.CurrentVehicleIndex]
	if v.Condition == nil {
		v.Condition = make(map[string]any, 4)
	}
	return v
}

// AddVehicle appends a fresh record and points CurrentVehicleIndex at it.
// Used when the user asks about another vehicle mid-conversation.
func (s *SessionState) AddVehicle() *Vehicle {
	s.Vehicles = append(s.Vehicles, Vehicle{Condition: make(map[string]any, 4)})
	s.CurrentVehicleIndex = len(s.Vehicles) - 1
	return &s.Vehicles[s.CurrentVehicleIndex]
}

// ApplyToolUpdates merges the state_updates mapping a successful tool result
// carries. Known fields land on their typed counterparts; anything else is
// kept as profile data so nothing a tool reports is silently dropped.
func (s *SessionState) ApplyToolUpdates(updates map[string]any) {
	for k, v := range updates {
		switch k {
		case "otp_verified", "mobile_verified":
			if b, ok := v.(bool); ok && b {
				s.OTPVerified = true
			}
		case "pan_captured", "pan_details_entered":
			if b, ok := v.(bool); ok && b {
				s.PANCaptured = true
			}
		case "user_info_saved":
			if b, ok := v.(bool); ok && b {
				s.UserInfoSaved = true
			}
		case "application_id":
			if id, ok := v.(string); ok {
				s.ApplicationID = id
			}
		case "mobile_number":
			if m, ok := v.(string); ok && m != "" {
				s.MobileNumber = m
			}
		default:
			s.SetUserInfo(k, v)
		}
	}
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	if !flowx.Valid(s.CurrentStep) {
		return fmt.Errorf("unknown step %q in session %s", s.CurrentStep, s.SessionID)
	}
	if s.CurrentVehicleIndex < 0 || (len(s.Vehicles) > 0 && s.CurrentVehicleIndex >= len(s.Vehicles)) {
		return fmt.Errorf("vehicle index %d out of range for session %s", s.CurrentVehicleIndex, s.SessionID)
	}
	return nil
}
