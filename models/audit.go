package models

import "time"

// Audit actions recorded by the engine.
const (
	AuditTemplateUpdated   = "template_updated"
	AuditOwnershipViolated = "ownership_violation"
)

// AuditEntry is one append-only record of an availability mutation or a
// detected ownership violation. Entries are never updated or deleted by the
// application.
type AuditEntry struct {
	ID         string      `bson:"id" json:"id"`
	ProviderID string      `bson:"provider_id" json:"providerId"`
	Action     string      `bson:"action" json:"action"`
	OldData    interface{} `bson:"old_data,omitempty" json:"oldData,omitempty"`
	NewData    interface{} `bson:"new_data,omitempty" json:"newData,omitempty"`
	ActorID    string      `bson:"actor_id" json:"actorId"`
	Timestamp  time.Time   `bson:"timestamp" json:"timestamp"`
	ClientIP   string      `bson:"client_ip,omitempty" json:"clientIp,omitempty"`
	UserAgent  string      `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
}

// RequestMeta carries client metadata from the transport layer into audit records.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
}
