package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/testutil"
)

func TestFindByID_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	result, err := db.Exec(
		`INSERT INTO Product (name, onHand, managesStock, backordersAllowed, stockStatus)
		 VALUES (?, ?, ?, ?, ?)`,
		"gadget", 8, 1, 0, "IN_STOCK",
	)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	repo := NewMySQLCatalogRepository(db)

	product, err := repo.FindByID(context.Background(), int(id))
	require.NoError(t, err)
	assert.Equal(t, "gadget", product.Name)
	assert.Equal(t, 8, product.OnHand)
	assert.True(t, product.StockGuarded())
}

func TestFindByID_NotFound_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLCatalogRepository(db)

	_, err := repo.FindByID(context.Background(), 424242)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %v", err)
}
