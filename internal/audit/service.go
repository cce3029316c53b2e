// Package audit keeps a trail of ledger operations: statement validations,
// deletions and orphaned bank cleanups.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/ledger/internal/entities"
)

// Sources of audit events.
const (
	SourceAPI       = "api"
	SourceCLI       = "cli"
	SourceScheduler = "scheduler"
)

const maxTextLen = 500

// Store persists audit events.
type Store interface {
	Record(ctx context.Context, event *entities.AuditEvent) error
}

// Recorder writes audit events on behalf of one source. Failures are logged
// and never reach the caller. A nil Recorder discards events.
type Recorder struct {
	store  Store
	source string
}

func NewRecorder(store Store, source string) *Recorder {
	return &Recorder{store: store, source: source}
}

// Record saves a generic audit event.
func (r *Recorder) Record(ctx context.Context, event *entities.AuditEvent) {
	if r == nil || r.store == nil {
		return
	}
	if event.Status == "" {
		event.Status = entities.AuditStatusSuccess
	}
	if event.Source == "" {
		event.Source = r.source
	}
	event.Description = truncate(event.Description, maxTextLen)
	event.ErrorMsg = truncate(event.ErrorMsg, maxTextLen)

	if err := r.store.Record(ctx, event); err != nil {
		log.Error().Err(err).
			Str("action", string(event.Action)).
			Str("request_id", event.RequestID).
			Msg("Failed to record audit event")
	}
}

// StatementValidated records the outcome of a balance check.
func (r *Recorder) StatementValidated(ctx context.Context, requestID string, statementID uint, status entities.ValidationStatus, notes string) {
	event := &entities.AuditEvent{
		Action:      entities.AuditStatementValidated,
		EntityType:  entities.AuditEntityStatement,
		EntityID:    &statementID,
		Description: notes,
		Metadata:    encodeMetadata(map[string]any{"validation_status": status}),
		RequestID:   requestID,
	}
	if status == entities.ValidationStatusFailed {
		event.Status = entities.AuditStatusFailed
	}
	r.Record(ctx, event)
}

// StatementDeleted records a statement removal and whether its bank went with it.
func (r *Recorder) StatementDeleted(ctx context.Context, requestID string, statementID uint, bankRemoved bool) {
	r.Record(ctx, &entities.AuditEvent{
		Action:      entities.AuditStatementDeleted,
		EntityType:  entities.AuditEntityStatement,
		EntityID:    &statementID,
		Description: fmt.Sprintf("Deleted bank statement %d", statementID),
		Metadata:    encodeMetadata(map[string]any{"bank_removed": bankRemoved}),
		RequestID:   requestID,
	})
}

// BanksCleaned records an orphaned bank cleanup. Runs that removed nothing
// and did not fail are not recorded.
func (r *Recorder) BanksCleaned(ctx context.Context, requestID string, removed []string, err error) {
	if len(removed) == 0 && err == nil {
		return
	}
	event := &entities.AuditEvent{
		Action:      entities.AuditBanksCleaned,
		EntityType:  entities.AuditEntityBank,
		Description: fmt.Sprintf("Removed %d orphaned bank(s)", len(removed)),
		RequestID:   requestID,
	}
	if len(removed) > 0 {
		event.Metadata = encodeMetadata(map[string]any{"removed_banks": removed})
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = "Orphaned bank cleanup failed"
		event.ErrorMsg = err.Error()
	}
	r.Record(ctx, event)
}

// InvoiceDuplicate records an import skipped because the invoice already exists.
func (r *Recorder) InvoiceDuplicate(ctx context.Context, requestID string, existingID uint, invoiceNumber string) {
	r.Record(ctx, &entities.AuditEvent{
		Action:      entities.AuditInvoiceDuplicate,
		EntityType:  entities.AuditEntityInvoice,
		EntityID:    &existingID,
		Description: "Skipped duplicate invoice " + invoiceNumber,
		RequestID:   requestID,
	})
}

func (r *Recorder) InvoiceDeleted(ctx context.Context, requestID string, invoiceID uint) {
	r.Record(ctx, &entities.AuditEvent{
		Action:      entities.AuditInvoiceDeleted,
		EntityType:  entities.AuditEntityInvoice,
		EntityID:    &invoiceID,
		Description: fmt.Sprintf("Deleted invoice %d", invoiceID),
		RequestID:   requestID,
	})
}

func encodeMetadata(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to maxLen bytes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
