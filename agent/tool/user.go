package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

// UserDirectory stores saved loan applications in memory and issues
// application ids.
type UserDirectory struct {
	mu   sync.Mutex
	seq  int
	apps map[string]map[string]any
	now  func() time.Time
}

func NewUserDirectory(opts ...func(*UserDirectory)) *UserDirectory {
	d := &UserDirectory{
		apps: make(map[string]map[string]any),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func WithDirectoryClock(now func() time.Time) func(*UserDirectory) {
	return func(d *UserDirectory) { d.now = now }
}

// SaveUser persists the applicant record and reports the new application id.
func (d *UserDirectory) SaveUser(_ context.Context, data map[string]any) (contractx.ToolResult, error) {
	verified, _ := data["otp_verified"].(bool)
	if !verified {
		return contractx.ToolResult{
			Success: false,
			Error:   "Mobile number must be verified before saving user information",
		}, nil
	}

	d.mu.Lock()
	d.seq++
	appID := fmt.Sprintf("APP-%06d", d.seq)

	record := make(map[string]any, len(data)+3)
	for k, v := range data {
		record[k] = v
	}
	ts := d.now().UTC().Format(time.RFC3339)
	record["application_id"] = appID
	record["created_at"] = ts
	record["updated_at"] = ts
	d.apps[appID] = record
	d.mu.Unlock()

	return contractx.ToolResult{
		Success: true,
		Message: "User information saved successfully",
		Data: map[string]any{
			"application_id": appID,
		},
		StateUpdates: map[string]any{
			"user_info_saved": true,
			"application_id":  appID,
		},
	}, nil
}

// Lookup returns the stored application record, mainly for tests.
func (d *UserDirectory) Lookup(appID string) (map[string]any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.apps[appID]
	return rec, ok
}
