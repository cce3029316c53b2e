package customers

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/database/dbtest"
	"github.com/mrlokans/ledger/internal/entities"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(dbtest.OpenGorm(t))
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	customer := &entities.Customer{Name: "Acme Trading", Country: "EG", PaymentTerms: "Net 30"}
	require.NoError(t, repo.Create(ctx, customer))
	assert.NotZero(t, customer.ID)

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Trading", got.Name)
	assert.Equal(t, "Net 30", got.PaymentTerms)
	assert.Empty(t, got.Invoices)

	byName, err := repo.GetByName(ctx, "acme trading")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, byName.ID)
}

func TestRepository_GetByID_PreloadsInvoices(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	customer := &entities.Customer{Name: "Acme"}
	require.NoError(t, repo.Create(ctx, customer))

	older := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, date := range []time.Time{older, newer} {
		require.NoError(t, repo.db.Create(&entities.Invoice{
			InvoiceNumber: []string{"A-1", "A-2"}[i],
			InvoiceDate:   date,
			Total:         decimal.NewFromInt(100),
			CustomerID:    &customer.ID,
		}).Error)
	}

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, got.Invoices, 2)
	assert.Equal(t, "A-2", got.Invoices[0].InvoiceNumber)
}

func TestRepository_GetNotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = repo.GetByName(ctx, "nobody")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Delta", "Alpha", "Charlie", "Bravo"} {
		require.NoError(t, repo.Create(ctx, &entities.Customer{Name: name}))
	}

	page, err := repo.List(ctx, "", database.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Alpha", page.Items[0].Name)
	assert.Equal(t, "Bravo", page.Items[1].Name)

	page, err = repo.List(ctx, "ha", database.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Alpha", page.Items[0].Name)
	assert.Equal(t, "Charlie", page.Items[1].Name)
}

func TestRepository_Update(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	customer := &entities.Customer{Name: "Acme", Country: "EG", PaymentTerms: "Net 30"}
	require.NoError(t, repo.Create(ctx, customer))

	require.NoError(t, repo.Update(ctx, &entities.Customer{ID: customer.ID, Name: "Acme Ltd", Country: "AE"}))

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Name)
	assert.Equal(t, "AE", got.Country)
	assert.Empty(t, got.PaymentTerms, "update overwrites every editable field")

	err = repo.Update(ctx, &entities.Customer{ID: 999, Name: "Ghost"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	customer := &entities.Customer{Name: "Acme"}
	require.NoError(t, repo.Create(ctx, customer))
	invoice := &entities.Invoice{InvoiceNumber: "A-1", Total: decimal.NewFromInt(10), CustomerID: &customer.ID}
	require.NoError(t, repo.db.Create(invoice).Error)

	require.NoError(t, repo.Delete(ctx, customer.ID))

	_, err := repo.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var kept entities.Invoice
	require.NoError(t, repo.db.First(&kept, invoice.ID).Error)
	assert.Nil(t, kept.CustomerID)

	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), database.ErrNotFound)
}

func TestRepository_Upsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first, created, err := repo.Upsert(ctx, &entities.Customer{Name: "Acme", Country: "EG", PaymentTerms: "Net 30"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.Upsert(ctx, &entities.Customer{Name: "ACME", EtaID: "123456789"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "EG", got.Country, "empty fields do not overwrite stored ones")
	assert.Equal(t, "Net 30", got.PaymentTerms)
	assert.Equal(t, "123456789", got.EtaID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
