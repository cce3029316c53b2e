package entities

import "time"

type AuditAction string

const (
	AuditStatementValidated AuditAction = "statement_validated"
	AuditStatementDeleted   AuditAction = "statement_deleted"
	AuditBanksCleaned       AuditAction = "banks_cleaned"
	AuditInvoiceDuplicate   AuditAction = "invoice_duplicate"
	AuditInvoiceDeleted     AuditAction = "invoice_deleted"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// Entity types referenced by audit events.
const (
	AuditEntityStatement = "bank_statement"
	AuditEntityBank      = "bank"
	AuditEntityInvoice   = "invoice"
)

// AuditEvent records a ledger operation worth keeping a trail of.
type AuditEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Action      AuditAction `gorm:"index;size:50;not null" json:"action"`
	EntityType  string      `gorm:"index;size:50" json:"entity_type"`
	EntityID    *uint       `gorm:"index" json:"entity_id,omitempty"`
	Description string      `gorm:"size:500" json:"description"`
	Metadata    string      `gorm:"type:text" json:"metadata,omitempty"` // JSON
	Source      string      `gorm:"size:20" json:"source"`               // "api", "cli", "scheduler"
	RequestID   string      `gorm:"size:128" json:"request_id,omitempty"`
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
