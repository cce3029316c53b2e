package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ledger/internal/database"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
	"github.com/mrlokans/ledger/internal/database/dbtest"
	"github.com/mrlokans/ledger/internal/entities"
)

type memoryStore struct {
	events []*entities.AuditEvent
	err    error
}

func (m *memoryStore) Record(_ context.Context, event *entities.AuditEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func TestRecorder_Defaults(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, SourceCLI)

	rec.Record(context.Background(), &entities.AuditEvent{
		Action:      entities.AuditBanksCleaned,
		Description: strings.Repeat("x", 600),
	})

	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.Equal(t, entities.AuditStatusSuccess, event.Status)
	assert.Equal(t, SourceCLI, event.Source)
	assert.Len(t, event.Description, maxTextLen)
	assert.True(t, strings.HasSuffix(event.Description, "..."))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	// Two-byte runes put the byte limit in the middle of a character.
	long := strings.Repeat("فاتورة ", 100)

	got := truncate(long, maxTextLen)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxTextLen)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))

	assert.Equal(t, "short", truncate("  short  ", maxTextLen))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.StatementDeleted(context.Background(), "req", 1, false)
	})
}

func TestRecorder_StoreFailureIsSwallowed(t *testing.T) {
	rec := NewRecorder(&memoryStore{err: errors.New("disk full")}, SourceAPI)
	assert.NotPanics(t, func() {
		rec.InvoiceDeleted(context.Background(), "req", 3)
	})
}

func TestRecorder_StatementValidated(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, SourceAPI)
	ctx := context.Background()

	rec.StatementValidated(ctx, "req-1", 7, entities.ValidationStatusPassed, "Validation passed.")
	rec.StatementValidated(ctx, "req-2", 7, entities.ValidationStatusFailed, "Validation failed.")

	require.Len(t, store.events, 2)
	assert.Equal(t, entities.AuditStatusSuccess, store.events[0].Status)
	assert.Equal(t, entities.AuditStatusFailed, store.events[1].Status)
	assert.Equal(t, uint(7), *store.events[1].EntityID)
	assert.Equal(t, "req-2", store.events[1].RequestID)
	assert.JSONEq(t, `{"validation_status":"failed"}`, store.events[1].Metadata)
}

func TestRecorder_BanksCleaned(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing removed is not recorded", func(t *testing.T) {
		store := &memoryStore{}
		NewRecorder(store, SourceScheduler).BanksCleaned(ctx, "", nil, nil)
		assert.Empty(t, store.events)
	})

	t.Run("removed banks", func(t *testing.T) {
		store := &memoryStore{}
		NewRecorder(store, SourceScheduler).BanksCleaned(ctx, "", []string{"CIB", "HSBC"}, nil)
		require.Len(t, store.events, 1)
		assert.Equal(t, "Removed 2 orphaned bank(s)", store.events[0].Description)
		assert.JSONEq(t, `{"removed_banks":["CIB","HSBC"]}`, store.events[0].Metadata)
		assert.Equal(t, SourceScheduler, store.events[0].Source)
	})

	t.Run("failure", func(t *testing.T) {
		store := &memoryStore{}
		NewRecorder(store, SourceScheduler).BanksCleaned(ctx, "", nil, errors.New("locked"))
		require.Len(t, store.events, 1)
		assert.Equal(t, entities.AuditStatusFailed, store.events[0].Status)
		assert.Equal(t, "locked", store.events[0].ErrorMsg)
	})
}

func TestRecorder_PersistsThroughRepository(t *testing.T) {
	repo := auditRepo.NewRepository(dbtest.OpenGorm(t))
	rec := NewRecorder(repo, SourceAPI)
	ctx := context.Background()

	rec.StatementDeleted(ctx, "req-9", 4, true)
	rec.InvoiceDuplicate(ctx, "req-10", 12, "INV-001")

	page, err := repo.List(ctx, auditRepo.Filter{EntityType: entities.AuditEntityInvoice}, database.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entities.AuditInvoiceDuplicate, page.Items[0].Action)
	assert.Equal(t, "Skipped duplicate invoice INV-001", page.Items[0].Description)

	page, err = repo.List(ctx, auditRepo.Filter{Action: entities.AuditStatementDeleted}, database.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.JSONEq(t, `{"bank_removed":true}`, page.Items[0].Metadata)
	assert.Equal(t, SourceAPI, page.Items[0].Source)
}
