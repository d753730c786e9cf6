package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/clock"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	"github.com/smallbiznis/bizledger/internal/money"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	PaidTrigger paymentdomain.PaidTrigger `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	paidTrigger paymentdomain.PaidTrigger

	paymentrepo repository.Repository[paymentdomain.Payment]
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		paidTrigger: p.PaidTrigger,

		paymentrepo: repository.ProvideStore[paymentdomain.Payment](p.DB),
	}
}

func (s *Service) Apply(ctx context.Context, req paymentdomain.ApplyPaymentRequest) (paymentdomain.Payment, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return paymentdomain.Payment{}, invoicedomain.ErrInvalidTenant
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil {
		return paymentdomain.Payment{}, invoicedomain.ErrInvalidInvoiceID
	}
	if req.Amount <= 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	if !paymentdomain.ValidMethod(req.Method) {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidMethod
	}

	now := s.clock.Now()
	paymentDate := now
	if req.PaymentDate != nil {
		paymentDate = req.PaymentDate.UTC()
	}
	amount := money.Round2(req.Amount)

	var (
		payment    paymentdomain.Payment
		becamePaid bool
		customerID *snowflake.ID
	)

	apply := func() error {
		becamePaid = false
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			invoice, err := s.loadTenantInvoice(ctx, tx, tenantID, invoiceID)
			if err != nil {
				return err
			}
			// Drafts must be submitted before they can take money;
			// cancelled invoices are terminal.
			if invoice.Status == invoicedomain.InvoiceStatusDraft ||
				invoice.Status == invoicedomain.InvoiceStatusCancelled {
				return paymentdomain.ErrInvoiceNotPayable
			}

			// Overpayment is accepted: outstanding goes negative and the
			// invoice still lands on paid. Credit notes are out of scope.
			newPaid := money.Round2(invoice.PaidAmount + amount)
			newStatus := invoicedomain.PaymentStatus(newPaid, invoice.TotalAmount)

			updated, err := s.updateInvoicePayment(ctx, tx, invoice, newPaid, newStatus, now)
			if err != nil {
				return err
			}
			if !updated {
				return paymentdomain.ErrConcurrencyConflict
			}

			payment = paymentdomain.Payment{
				ID:            s.genID.Generate(),
				InvoiceID:     invoice.ID,
				TenantID:      invoice.TenantID,
				BranchID:      invoice.BranchID,
				InvoiceNumber: invoice.InvoiceNumber,
				CustomerID:    invoice.CustomerID,
				CustomerName:  invoice.CustomerName,
				Amount:        amount,
				Method:        req.Method,
				Reference:     strings.TrimSpace(req.Reference),
				Notes:         req.Notes,
				PaymentDate:   paymentDate,
				CreatedAt:     now,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}

			becamePaid = invoice.Status != invoicedomain.InvoiceStatusPaid && newStatus == invoicedomain.InvoiceStatusPaid
			customerID = invoice.CustomerID
			return nil
		})
	}

	err = apply()
	if err == paymentdomain.ErrConcurrencyConflict {
		// Optimistic check lost a race with a concurrent payment:
		// retry once against the fresh row, then surface.
		s.log.Warn("payment apply conflict, retrying", zap.String("invoice_id", invoiceID.String()))
		err = apply()
	}
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	s.notifyPaid(ctx, becamePaid, tenantID, customerID)
	return payment, nil
}

func (s *Service) Reverse(ctx context.Context, paymentID string) error {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return invoicedomain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(strings.TrimSpace(paymentID))
	if err != nil {
		return paymentdomain.ErrInvalidPaymentID
	}

	now := s.clock.Now()
	reverse := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var payment paymentdomain.Payment
			if err := tx.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return paymentdomain.ErrPaymentNotFound
				}
				return err
			}
			if payment.TenantID != tenantID {
				s.log.Debug("cross-tenant payment access",
					zap.String("payment_id", id.String()),
					zap.String("tenant_id", tenantID.String()),
				)
				return paymentdomain.ErrPaymentNotFound
			}

			invoice, err := s.loadTenantInvoice(ctx, tx, tenantID, payment.InvoiceID)
			if err != nil {
				return err
			}

			newPaid := money.Round2(invoice.PaidAmount - payment.Amount)
			if newPaid < 0 {
				newPaid = 0
			}
			// Reversal never lands on draft or overdue; those are
			// creation-time and read-time states respectively.
			newStatus := invoicedomain.PaymentStatus(newPaid, invoice.TotalAmount)
			if invoice.Status == invoicedomain.InvoiceStatusCancelled {
				newStatus = invoicedomain.InvoiceStatusCancelled
			}

			updated, err := s.updateInvoicePayment(ctx, tx, invoice, newPaid, newStatus, now)
			if err != nil {
				return err
			}
			if !updated {
				return paymentdomain.ErrConcurrencyConflict
			}

			return tx.Exec(`DELETE FROM payments WHERE id = ?`, payment.ID).Error
		})
	}

	err = reverse()
	if err == paymentdomain.ErrConcurrencyConflict {
		s.log.Warn("payment reverse conflict, retrying", zap.String("payment_id", id.String()))
		err = reverse()
	}
	return err
}

// updateInvoicePayment persists the new paid/outstanding/status triple
// with an optimistic check on the previously read paid amount. A lost
// race returns updated=false.
func (s *Service) updateInvoicePayment(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice, newPaid float64, newStatus invoicedomain.InvoiceStatus, now time.Time) (bool, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET paid_amount = ?, outstanding_amount = ?, status = ?, updated_at = ?
		 WHERE id = ? AND paid_amount = ?`,
		newPaid,
		money.Round2(invoice.TotalAmount-newPaid),
		newStatus,
		now,
		invoice.ID,
		invoice.PaidAmount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Service) notifyPaid(ctx context.Context, becamePaid bool, tenantID snowflake.ID, customerID *snowflake.ID) {
	if !becamePaid || customerID == nil || s.paidTrigger == nil {
		return
	}
	if err := s.paidTrigger.OnInvoicePaid(ctx, tenantID, *customerID); err != nil {
		s.log.Warn("customer metrics recompute failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListPaymentRequest) (paymentdomain.ListPaymentResponse, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return paymentdomain.ListPaymentResponse{}, invoicedomain.ErrInvalidTenant
	}

	filter := &paymentdomain.Payment{TenantID: tenantID}
	if branchID, ok := tenantctx.BranchID(ctx); ok {
		filter.BranchID = branchID
	}
	if req.InvoiceID != nil {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.InvoiceID))
		if err != nil {
			return paymentdomain.ListPaymentResponse{}, invoicedomain.ErrInvalidInvoiceID
		}
		filter.InvoiceID = parsed
	}
	if req.Method != nil {
		filter.Method = *req.Method
	}

	options := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{
			Allow: map[string]bool{"created_at": true, "payment_date": true},
			Desc:  true,
		}),
	}
	if req.StartDate != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "payment_date",
			Operator: option.GTE,
			Value:    *req.StartDate,
		}))
	}
	if req.EndDate != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "payment_date",
			Operator: option.LTE,
			Value:    *req.EndDate,
		}))
	}
	options = append(options, option.ApplyPagination(req.Pagination))

	items, err := s.paymentrepo.Find(ctx, filter, options...)
	if err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, req.Pagination.Limit(), func(p *paymentdomain.Payment) string {
		return p.ID.String()
	})

	payments := make([]paymentdomain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}

	return paymentdomain.ListPaymentResponse{PageInfo: pageInfo, Payments: payments}, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID string) ([]paymentdomain.Payment, error) {
	id := strings.TrimSpace(invoiceID)
	resp, err := s.List(ctx, paymentdomain.ListPaymentRequest{
		Pagination: pagination.Pagination{PageSize: 250},
		InvoiceID:  &id,
	})
	if err != nil {
		return nil, err
	}
	return resp.Payments, nil
}

func (s *Service) loadTenantInvoice(ctx context.Context, tx *gorm.DB, tenantID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := tx.WithContext(ctx).Where("id = ?", invoiceID).First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.TenantID != tenantID {
		s.log.Debug("cross-tenant invoice access",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("tenant_id", tenantID.String()),
		)
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return &invoice, nil
}
