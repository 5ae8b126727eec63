package domain

import "time"

// AuditEventType names a security-relevant action.
type AuditEventType string

const (
	AuditUserRegistered AuditEventType = "user.registered"
	AuditUserCreated    AuditEventType = "user.created"
	AuditUserUpdated    AuditEventType = "user.updated"
	AuditUserDeleted    AuditEventType = "user.deleted"
	AuditLoginSucceeded AuditEventType = "login.succeeded"
	AuditLoginFailed    AuditEventType = "login.failed"
	AuditRoleCreated    AuditEventType = "role.created"
	AuditRoleUpdated    AuditEventType = "role.updated"
	AuditRoleDeleted    AuditEventType = "role.deleted"
)

// AuditEvent records who did what to which subject.
type AuditEvent struct {
	Type       AuditEventType    `json:"type"`
	Subject    string            `json:"subject"`
	Actor      string            `json:"actor,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
