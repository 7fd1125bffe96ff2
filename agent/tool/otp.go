package tool

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

// Notifier delivers the generated code out of band (SMS gateway queue).
type Notifier interface {
	Publish(ctx context.Context, topic string, payload any) error
}

const (
	otpTTL   = 5 * time.Minute
	otpTopic = "otp-sms"
)

type otpRecord struct {
	code      string
	expiresAt time.Time
	verified  bool
}

// OTPService issues and checks one-time passcodes per mobile number. A new
// send replaces any outstanding code for that number.
type OTPService struct {
	mu       sync.Mutex
	records  map[string]otpRecord
	notifier Notifier
	now      func() time.Time
	randCode func() string
}

type OTPOption func(*OTPService)

func WithClock(now func() time.Time) OTPOption {
	return func(s *OTPService) { s.now = now }
}

func WithCodeSource(gen func() string) OTPOption {
	return func(s *OTPService) { s.randCode = gen }
}

func NewOTPService(notifier Notifier, opts ...OTPOption) *OTPService {
	s := &OTPService{
		records:  make(map[string]otpRecord),
		notifier: notifier,
		now:      time.Now,
		randCode: func() string {
			return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendOTP generates a code, stores it with its expiry, and queues delivery.
// Delivery failure is reported to the user but the code stays valid; the
// gateway may retry on its own.
func (s *OTPService) SendOTP(ctx context.Context, data map[string]any) (contractx.ToolResult, error) {
	mobile := stringArg(data, "mobile_number")
	code := s.randCode()

	s.mu.Lock()
	s.records[mobile] = otpRecord{
		code:      code,
		expiresAt: s.now().Add(otpTTL),
	}
	s.mu.Unlock()

	if s.notifier != nil {
		err := s.notifier.Publish(ctx, otpTopic, map[string]any{
			"mobile_number": mobile,
			"otp":           code,
		})
		if err != nil {
			log.Warn().Err(err).Str("mobile", mobile).Msg("otp delivery publish failed")
			return contractx.ToolResult{
				Success: false,
				Error:   "Could not send the verification code right now. Please try again.",
			}, nil
		}
	}

	return contractx.ToolResult{
		Success: true,
		Message: "OTP sent successfully to " + mobile,
		Data: map[string]any{
			"expires_in": "5 minutes",
		},
		StateUpdates: map[string]any{
			"mobile_number": mobile,
		},
	}, nil
}

// VerifyOTP checks the submitted code against the outstanding record.
func (s *OTPService) VerifyOTP(ctx context.Context, data map[string]any) (contractx.ToolResult, error) {
	mobile := stringArg(data, "mobile_number")
	code := stringArg(data, "otp")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[mobile]
	if !ok || rec.verified || rec.code != code {
		return contractx.ToolResult{
			Success: false,
			Error:   "Invalid or expired OTP",
		}, nil
	}
	if s.now().After(rec.expiresAt) {
		delete(s.records, mobile)
		return contractx.ToolResult{
			Success: false,
			Error:   "OTP has expired. Please request a new one.",
		}, nil
	}

	rec.verified = true
	s.records[mobile] = rec

	return contractx.ToolResult{
		Success: true,
		Message: "OTP verified successfully",
		StateUpdates: map[string]any{
			"otp_verified":    true,
			"mobile_verified": true,
		},
	}, nil
}
