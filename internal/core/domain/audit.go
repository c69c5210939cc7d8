package domain

import "time"

type AuditOperation string

const (
	AuditLogin          AuditOperation = "login"
	AuditUnauthorized   AuditOperation = "unauthorized_access"
	AuditDeleteUser     AuditOperation = "delete_user"
	AuditChangePassword AuditOperation = "change_password"
)

type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailure AuditOutcome = "failure"
	OutcomeDenied  AuditOutcome = "denied"
)

// AuditEntry is an append-only record of a security relevant event.
// ActorID and TargetID are zero when unknown.
type AuditEntry struct {
	ID        string         `json:"id"`
	Operation AuditOperation `json:"operation"`
	Outcome   AuditOutcome   `json:"outcome"`
	ActorID   int64          `json:"actor_id,omitempty"`
	TargetID  int64          `json:"target_id,omitempty"`
	Username  string         `json:"username,omitempty"`
	Origin    string         `json:"origin,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
