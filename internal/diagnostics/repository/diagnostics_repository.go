package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockwarden/internal/domain"
)

type MySQLDiagnosticsRepository struct {
	db *sql.DB
}

func NewMySQLDiagnosticsRepository(db *sql.DB) *MySQLDiagnosticsRepository {
	return &MySQLDiagnosticsRepository{db: db}
}

func (r *MySQLDiagnosticsRepository) Record(ctx context.Context, rec domain.DiagnosticRecord) error {
	query := `
		INSERT INTO StockDiagnostics (kind, productId, orderId, requested, available, recordedAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		string(rec.Kind), rec.ProductID, rec.OrderID, rec.Requested, rec.Available, rec.At,
	)
	if err != nil {
		return fmt.Errorf("inserting stock diagnostic: %w", err)
	}

	return nil
}
