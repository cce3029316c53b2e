package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/database/dbtest"
	"github.com/mrlokans/ledger/internal/entities"
)

var periodStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T) (*Repository, *gorm.DB, *entities.BankStatement) {
	t.Helper()
	db := dbtest.OpenGorm(t)

	bank := entities.Bank{Name: "Banque Misr"}
	require.NoError(t, db.Create(&bank).Error)
	stmt := entities.BankStatement{
		BankID:               bank.ID,
		BankName:             bank.Name,
		AccountCurrency:      "EGP",
		StatementPeriodStart: periodStart,
		StatementPeriodEnd:   periodStart.AddDate(0, 1, -1),
		ValidationStatus:     entities.ValidationStatusPending,
	}
	require.NoError(t, db.Omit("Bank").Create(&stmt).Error)
	return NewRepository(db), db, &stmt
}

func TestRepository_Create(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	txn := &entities.Transaction{BankStatementID: stmt.ID, CreditAmount: amount("100.50")}
	require.NoError(t, repo.Create(ctx, txn))
	assert.NotZero(t, txn.ID)
	assert.Equal(t, "EGP", txn.Currency)
	assert.True(t, txn.TransactionDate.Equal(periodStart))

	usd := &entities.Transaction{BankStatementID: stmt.ID, Currency: "USD", TransactionDate: periodStart.AddDate(0, 0, 3)}
	require.NoError(t, repo.Create(ctx, usd))
	assert.Equal(t, "USD", usd.Currency)

	err := repo.Create(ctx, &entities.Transaction{BankStatementID: stmt.ID + 100})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_GetAndList(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	late := &entities.Transaction{BankStatementID: stmt.ID, TransactionDate: periodStart.AddDate(0, 0, 10), Description: "late"}
	early := &entities.Transaction{BankStatementID: stmt.ID, TransactionDate: periodStart.AddDate(0, 0, 1), Description: "early"}
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))

	got, err := repo.GetByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, "late", got.Description)
	assert.False(t, got.CreditAmount.Valid)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)

	lines, err := repo.ListForStatement(ctx, stmt.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "early", lines[0].Description)
	assert.Equal(t, "late", lines[1].Description)

	lines, err = repo.ListForStatement(ctx, stmt.ID+1)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRepository_Update(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	txn := &entities.Transaction{BankStatementID: stmt.ID, DebitAmount: amount("20.00")}
	require.NoError(t, repo.Create(ctx, txn))

	txn.DebitAmount = decimal.NullDecimal{}
	txn.CreditAmount = amount("35.25")
	txn.EntityName = "Acme"
	require.NoError(t, repo.Update(ctx, txn))

	got, err := repo.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, got.DebitAmount.Valid)
	require.True(t, got.CreditAmount.Valid)
	assert.True(t, got.CreditAmount.Decimal.Equal(dec("35.25")))
	assert.Equal(t, "Acme", got.EntityName)

	wrongStatement := *txn
	wrongStatement.BankStatementID = stmt.ID + 1
	assert.ErrorIs(t, repo.Update(ctx, &wrongStatement), database.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	txn := &entities.Transaction{BankStatementID: stmt.ID}
	require.NoError(t, repo.Create(ctx, txn))

	assert.ErrorIs(t, repo.Delete(ctx, stmt.ID+1, txn.ID), database.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, stmt.ID, txn.ID))
	assert.ErrorIs(t, repo.Delete(ctx, stmt.ID, txn.ID), database.ErrNotFound)
}

func TestRepository_Aggregate(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	empty, err := repo.Aggregate(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.Net.IsZero())

	for _, txn := range []*entities.Transaction{
		{BankStatementID: stmt.ID, CreditAmount: amount("100.50"), EntityName: "Acme"},
		{BankStatementID: stmt.ID, CreditAmount: amount("200.25"), EntityName: "Acme"},
		{BankStatementID: stmt.ID, DebitAmount: amount("50.75"), EntityName: "Globex"},
		{BankStatementID: stmt.ID, Description: "opening note"},
	} {
		require.NoError(t, repo.Create(ctx, txn))
	}

	summary, err := repo.Aggregate(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.Count)
	assert.True(t, summary.TotalCredits.Equal(dec("300.75")), "credits %s", summary.TotalCredits)
	assert.True(t, summary.TotalDebits.Equal(dec("50.75")), "debits %s", summary.TotalDebits)
	assert.True(t, summary.Net.Equal(dec("250")), "net %s", summary.Net)
}

func TestRepository_GroupByEntity(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	for _, txn := range []*entities.Transaction{
		{BankStatementID: stmt.ID, CreditAmount: amount("100.50"), EntityName: "Acme"},
		{BankStatementID: stmt.ID, CreditAmount: amount("200.25"), EntityName: "Acme"},
		{BankStatementID: stmt.ID, DebitAmount: amount("50.75"), EntityName: "Globex"},
	} {
		require.NoError(t, repo.Create(ctx, txn))
	}

	totals, err := repo.GroupByEntity(ctx, stmt.ID)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "Acme", totals[0].EntityName)
	assert.Equal(t, int64(2), totals[0].Count)
	assert.True(t, totals[0].TotalCredits.Equal(dec("300.75")))
	assert.True(t, totals[0].TotalDebits.IsZero())

	assert.Equal(t, "Globex", totals[1].EntityName)
	assert.True(t, totals[1].TotalDebits.Equal(dec("50.75")))
}

func TestRepository_SumsAreExactCents(t *testing.T) {
	repo, _, stmt := setup(t)
	ctx := context.Background()

	for _, txn := range []*entities.Transaction{
		{BankStatementID: stmt.ID, CreditAmount: amount("0.10"), DebitAmount: amount("0.20"), EntityName: "Acme"},
		{BankStatementID: stmt.ID, CreditAmount: amount("0.20"), DebitAmount: amount("0.10"), EntityName: "Acme"},
	} {
		require.NoError(t, repo.Create(ctx, txn))
	}

	summary, err := repo.Aggregate(ctx, stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.3", summary.TotalCredits.String())
	assert.Equal(t, "0.3", summary.TotalDebits.String())
	assert.True(t, summary.Net.IsZero(), "net %s", summary.Net)

	totals, err := repo.GroupByEntity(ctx, stmt.ID)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "0.3", totals[0].TotalCredits.String())
	assert.Equal(t, "0.3", totals[0].TotalDebits.String())
}
