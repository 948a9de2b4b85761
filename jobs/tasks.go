package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/equiseed/equiseed/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRoundAutoclose closes active rounds whose window has lapsed.
	TaskRoundAutoclose = "funding:round_autoclose"
	// TaskGraceExpiry settles commitments past their grace period.
	TaskGraceExpiry = "funding:grace_expiry"
	// TaskAuditCleanup prunes aged audit log entries.
	TaskAuditCleanup = "audit:cleanup"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// RoundAutoclosePayload configures a round autoclose scan.
type RoundAutoclosePayload struct {
	// Limit caps how many rounds a single run will close. Zero means no cap.
	Limit int `json:"limit"`
}

// NewRoundAutocloseTask constructs an autoclose scan task.
func NewRoundAutocloseTask(payload RoundAutoclosePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoundAutoclose, data), nil
}

// NewGraceExpiryTask constructs a grace period settlement task.
func NewGraceExpiryTask() *asynq.Task {
	return asynq.NewTask(TaskGraceExpiry, nil)
}

// AuditCleanupPayload configures the audit retention sweep.
type AuditCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewAuditCleanupTask constructs an audit cleanup task.
func NewAuditCleanupTask(payload AuditCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditCleanup, data), nil
}
