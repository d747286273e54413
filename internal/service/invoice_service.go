package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/document"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// taxRate is applied to the order total when the invoice is generated.
	taxRate = 0.18

	// shippingFee is a flat per-invoice charge.
	shippingFee = 50.0
)

// invoiceService implements InvoiceService.
type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	archiver    document.Archiver
	logger      zerolog.Logger
}

// NewInvoiceService creates a new invoice service. archiver may be nil, in
// which case rendered PDFs are returned to the caller but not stored.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	archiver document.Archiver,
	logger zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		archiver:    archiver,
		logger:      logger.With().Str("service", "invoice").Logger(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// invoiceNumber derives the human-readable identifier, e.g.
// INV-20260828-6f1c....
func invoiceNumber(orderID uuid.UUID, at time.Time) string {
	return "INV-" + at.Format("20060102") + "-" + orderID.String()
}

// GetOrCreateInvoice returns the order's invoice, generating it on first call.
// The unique constraint on order_id arbitrates concurrent first calls: the
// loser re-reads the winner's row, so both callers see the same invoice.
func (s *invoiceService) GetOrCreateInvoice(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	existing, err := s.invoiceRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("order", orderID.String())
	}

	now := time.Now()
	total := round2(order.TotalAmount)
	inv := &model.Invoice{
		ID:              uuid.New(),
		InvoiceNumber:   invoiceNumber(orderID, now),
		OrderID:         order.ID,
		UserID:          order.UserID,
		TotalAmount:     total,
		TaxAmount:       round2(total * taxRate),
		ShippingFee:     shippingFee,
		PaymentMethod:   order.PaymentMethod,
		BillingAddress:  order.BillingAddress,
		ShippingAddress: order.ShippingAddress,
		Status:          model.InvoiceStatusGenerated,
		GeneratedAt:     now,
	}

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, repository.ErrInvoiceExists) {
			winner, rdErr := s.invoiceRepo.GetByOrderID(ctx, orderID)
			if rdErr != nil {
				return nil, fmt.Errorf("failed to get invoice: %w", rdErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Float64("total_amount", inv.TotalAmount).
		Float64("tax_amount", inv.TaxAmount).
		Msg("invoice generated")

	return inv, nil
}

// RenderPDF produces the invoice document for an order, generating the
// invoice first if needed. Archiving is best-effort: a failed upload is
// logged and the document is still returned.
func (s *invoiceService) RenderPDF(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	inv, err := s.GetOrCreateInvoice(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("order", orderID.String())
	}

	customerName := ""
	user, err := s.userRepo.GetByID(ctx, inv.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	if user != nil {
		customerName = user.Name
	}

	pdf, err := document.RenderInvoicePDF(inv, order, customerName)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	if s.archiver != nil && inv.FilePath == nil {
		path, archErr := s.archiver.Archive(ctx, inv.InvoiceNumber+".pdf", pdf)
		if archErr != nil {
			s.logger.Warn().Err(archErr).Str("invoice_number", inv.InvoiceNumber).Msg("failed to archive invoice pdf")
		} else if updErr := s.invoiceRepo.UpdateFilePath(ctx, inv.ID, path); updErr != nil {
			s.logger.Warn().Err(updErr).Str("invoice_number", inv.InvoiceNumber).Msg("failed to record invoice file path")
		}
	}

	return pdf, nil
}
