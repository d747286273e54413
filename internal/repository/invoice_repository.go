package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrInvoiceExists is returned by Create when the order already has an
// invoice. The unique constraint on order_id decides races between concurrent
// generations; the loser re-reads the winner's row.
var ErrInvoiceExists = errors.New("invoice already exists for order")

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// invoiceRepository implements the InvoiceRepository interface using PostgreSQL.
type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInvoiceRepository creates a new PostgreSQL-backed invoice repository.
func NewInvoiceRepository(pool *pgxpool.Pool, logger zerolog.Logger) InvoiceRepository {
	return &invoiceRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "invoice").Logger(),
	}
}

// GetByOrderID retrieves the invoice for an order. Returns nil when none exists.
func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, invoice_number, order_id, user_id, total_amount, tax_amount, shipping_fee,
		       payment_method, billing_address, shipping_address, status, file_path, generated_at
		FROM invoices
		WHERE order_id = $1
	`

	var inv model.Invoice
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.UserID,
		&inv.TotalAmount, &inv.TaxAmount, &inv.ShippingFee,
		&inv.PaymentMethod, &inv.BillingAddress, &inv.ShippingAddress,
		&inv.Status, &inv.FilePath, &inv.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", orderID.String()).Msg("no invoice for order")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query invoice")
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}

	return &inv, nil
}

// Create inserts a new invoice. Returns ErrInvoiceExists when the order
// already has one.
func (r *invoiceRepository) Create(ctx context.Context, inv *model.Invoice) error {
	query := `
		INSERT INTO invoices (id, invoice_number, order_id, user_id, total_amount, tax_amount,
		                      shipping_fee, payment_method, billing_address, shipping_address,
		                      status, file_path, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.OrderID, inv.UserID,
		inv.TotalAmount, inv.TaxAmount, inv.ShippingFee,
		inv.PaymentMethod, inv.BillingAddress, inv.ShippingAddress,
		inv.Status, inv.FilePath, inv.GeneratedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().Str("order_id", inv.OrderID.String()).Msg("invoice already exists")
			return ErrInvoiceExists
		}
		r.logger.Error().Err(err).Str("order_id", inv.OrderID.String()).Msg("failed to create invoice")
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	r.logger.Debug().
		Str("invoice_number", inv.InvoiceNumber).
		Str("order_id", inv.OrderID.String()).
		Msg("invoice created successfully")

	return nil
}

// UpdateFilePath records where the rendered PDF was archived.
func (r *invoiceRepository) UpdateFilePath(ctx context.Context, id uuid.UUID, path string) error {
	_, err := r.pool.Exec(ctx, `UPDATE invoices SET file_path = $2 WHERE id = $1`, id, path)
	if err != nil {
		r.logger.Error().Err(err).Str("invoice_id", id.String()).Msg("failed to update invoice file path")
		return fmt.Errorf("failed to update invoice file path: %w", err)
	}
	return nil
}
