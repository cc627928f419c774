package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockwarden/internal/domain"
	"stockwarden/internal/errors"
)

// MySQLCatalogRepository reads the catalog's product table. This core never
// writes to it; on-hand corrections belong to the catalog system.
type MySQLCatalogRepository struct {
	db *sql.DB
}

func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}

func (r *MySQLCatalogRepository) FindByID(ctx context.Context, productID int) (*domain.Product, error) {
	query := `
		SELECT id, name, onHand, managesStock, backordersAllowed, stockStatus, createdAt, updatedAt
		FROM Product
		WHERE id = ?
	`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.OnHand, &p.ManagesStock, &p.BackordersAllowed, &p.StockStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}
	if err != nil {
		return nil, errors.NewUnavailableError("querying product", err)
	}

	return &p, nil
}
