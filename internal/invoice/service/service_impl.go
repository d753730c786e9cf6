package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/inventory"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	"github.com/smallbiznis/bizledger/internal/money"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDueDays = 30

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	GenID       *snowflake.Node
	Clock       clock.Clock
	Inventory   inventory.StockDecrementer `optional:"true"`
	PaidTrigger paymentdomain.PaidTrigger  `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	cfg         config.Config
	genID       *snowflake.Node
	clock       clock.Clock
	inventory   inventory.StockDecrementer
	paidTrigger paymentdomain.PaidTrigger

	invoicerepo repository.Repository[invoicedomain.Invoice]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		cfg:         p.Cfg,
		genID:       p.GenID,
		clock:       p.Clock,
		inventory:   p.Inventory,
		paidTrigger: p.PaidTrigger,

		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	branchID, ok := tenantctx.BranchID(ctx)
	if !ok {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidBranch
	}

	items, err := validateItems(req.Items)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrMissingCustomerName
	}
	if err := validateDiscount(req.DiscountType, req.DiscountValue); err != nil {
		return invoicedomain.Invoice{}, err
	}
	if req.TaxRate < 0 || req.TaxRate > 100 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTaxRate
	}

	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusPending
	}
	if status != invoicedomain.InvoiceStatusDraft && status != invoicedomain.InvoiceStatusPending {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	if req.IsRecurring && !invoicedomain.ValidFrequency(req.RecurringFrequency) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidFrequency
	}

	var customerID *snowflake.ID
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
		}
		customerID = &parsed
	}

	now := s.clock.Now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = req.IssueDate.UTC()
	}
	dueDate := issueDate.AddDate(0, 0, defaultDueDays)
	if req.DueDate != nil {
		dueDate = req.DueDate.UTC()
	}

	amounts := make([]float64, 0, len(items))
	for i := range items {
		items[i].Amount = money.LineAmount(items[i].Quantity, items[i].Rate)
		amounts = append(amounts, items[i].Amount)
	}
	totals := money.Compute(amounts, req.DiscountType, req.DiscountValue, req.TaxRate)

	encodedItems, err := invoicedomain.EncodeLineItems(items)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	encodedTags, err := invoicedomain.EncodeTags(req.Tags)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice := invoicedomain.Invoice{
		ID:                 s.genID.Generate(),
		TenantID:           tenantID,
		BranchID:           branchID,
		CustomerID:         customerID,
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerEmail:      strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:      strings.TrimSpace(req.CustomerPhone),
		CustomerAddress:    strings.TrimSpace(req.CustomerAddress),
		IssueDate:          issueDate,
		DueDate:            dueDate,
		LineItems:          encodedItems,
		Tags:               encodedTags,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
		TaxRate:            req.TaxRate,
		Subtotal:           totals.Subtotal,
		DiscountAmount:     totals.DiscountAmount,
		TaxAmount:          totals.TaxAmount,
		TotalAmount:        totals.TotalAmount,
		PaidAmount:         0,
		OutstandingAmount:  totals.TotalAmount,
		Status:             status,
		Notes:              req.Notes,
		Terms:              req.Terms,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: req.RecurringFrequency,
		RecurringEndDate:   req.RecurringEndDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.insertWithNumber(ctx, &invoice, now); err != nil {
		return invoicedomain.Invoice{}, err
	}

	if s.inventory != nil {
		if err := s.inventory.Decrement(ctx, tenantID, branchID, items); err != nil {
			s.log.Warn("stock decrement failed",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err),
			)
		}
	}

	return invoice, nil
}

// insertWithNumber allocates the tenant-scoped invoice number and claims
// it in the same transaction. A duplicate-key race is retried once, then
// surfaced as a conflict.
func (s *Service) insertWithNumber(ctx context.Context, invoice *invoicedomain.Invoice, now time.Time) error {
	attempt := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := invoicedomain.NextInvoiceNumber(ctx, tx, invoice.TenantID, s.cfg.InvoicePrefix, now)
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = number
			return tx.Create(invoice).Error
		})
	}

	err := attempt()
	if err != nil && db.IsDuplicateKeyErr(err) {
		s.log.Warn("invoice number conflict, retrying",
			zap.String("tenant_id", invoice.TenantID.String()),
			zap.String("invoice_number", invoice.InvoiceNumber),
		)
		err = attempt()
		if err != nil && db.IsDuplicateKeyErr(err) {
			return invoicedomain.ErrNumberConflict
		}
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	item, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	if item.TenantID != tenantID {
		// Indistinguishable from not-found for the caller so tenants
		// cannot probe each other's ID space.
		s.log.Debug("cross-tenant invoice access",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("tenant_id", tenantID.String()),
		)
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	now := s.clock.Now()
	item.Status = invoicedomain.EffectiveStatus(item.Status, item.PaidAmount, item.DueDate, now)
	item.IsPastDue = invoicedomain.PastDue(item.Status, item.DueDate, now)
	return *item, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	now := s.clock.Now()
	filter := &invoicedomain.Invoice{TenantID: tenantID}
	if branchID, ok := tenantctx.BranchID(ctx); ok {
		filter.BranchID = branchID
	}
	if req.CustomerID != nil {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.CustomerID))
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidInvoiceID
		}
		filter.CustomerID = &parsed
	}

	options := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{
			Allow: map[string]bool{"created_at": true, "due_date": true, "issue_date": true},
			Desc:  true,
		}),
	}
	if req.StartDate != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "issue_date",
			Operator: option.GTE,
			Value:    *req.StartDate,
		}))
	}
	if req.EndDate != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "issue_date",
			Operator: option.LTE,
			Value:    *req.EndDate,
		}))
	}
	options = append(options, statusFilterOptions(req.Status, filter, now)...)
	options = append(options, option.ApplyPagination(req.Pagination))

	items, err := s.invoicerepo.Find(ctx, filter, options...)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, req.Pagination.Limit(), func(inv *invoicedomain.Invoice) string {
		return inv.ID.String()
	})

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		item.Status = invoicedomain.EffectiveStatus(item.Status, item.PaidAmount, item.DueDate, now)
		item.IsPastDue = invoicedomain.PastDue(item.Status, item.DueDate, now)
		invoices = append(invoices, *item)
	}

	return invoicedomain.ListInvoiceResponse{PageInfo: pageInfo, Invoices: invoices}, nil
}

// statusFilterOptions translates a status filter into storage terms.
// Overdue is derived, so filtering by it (or by pending) has to encode
// the due-date condition rather than match the stored column alone.
func statusFilterOptions(status *invoicedomain.InvoiceStatus, filter *invoicedomain.Invoice, now time.Time) []option.QueryOption {
	if status == nil {
		return nil
	}

	switch *status {
	case invoicedomain.InvoiceStatusOverdue:
		filter.Status = invoicedomain.InvoiceStatusPending
		return []option.QueryOption{
			option.ApplyOperator(option.Condition{Field: "paid_amount", Operator: option.EQ, Value: 0}),
			option.ApplyOperator(option.Condition{Field: "due_date", Operator: option.LT, Value: now}),
		}
	case invoicedomain.InvoiceStatusPending:
		filter.Status = invoicedomain.InvoiceStatusPending
		return []option.QueryOption{
			option.ApplyOperator(option.Condition{Field: "due_date", Operator: option.GTE, Value: now}),
		}
	default:
		filter.Status = *status
		return nil
	}
}

func (s *Service) Update(ctx context.Context, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.Invoice, error) {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceID, err := parseID(req.ID)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	var (
		updated    invoicedomain.Invoice
		becamePaid bool
		customerID *snowflake.ID
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadTenantInvoice(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == invoicedomain.InvoiceStatusPaid || invoice.Status == invoicedomain.InvoiceStatusCancelled {
			return invoicedomain.ErrInvoiceImmutable
		}
		oldStatus := invoice.Status

		if req.CustomerName != nil {
			if strings.TrimSpace(*req.CustomerName) == "" {
				return invoicedomain.ErrMissingCustomerName
			}
			invoice.CustomerName = strings.TrimSpace(*req.CustomerName)
		}
		if req.CustomerEmail != nil {
			invoice.CustomerEmail = strings.TrimSpace(*req.CustomerEmail)
		}
		if req.CustomerPhone != nil {
			invoice.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
		}
		if req.CustomerAddress != nil {
			invoice.CustomerAddress = strings.TrimSpace(*req.CustomerAddress)
		}
		if req.DueDate != nil {
			invoice.DueDate = req.DueDate.UTC()
		}
		if req.Notes != nil {
			invoice.Notes = *req.Notes
		}
		if req.Terms != nil {
			invoice.Terms = *req.Terms
		}
		if req.RecurringEndDate != nil {
			invoice.RecurringEndDate = req.RecurringEndDate
		}
		if req.Tags != nil {
			encoded, err := invoicedomain.EncodeTags(req.Tags)
			if err != nil {
				return err
			}
			invoice.Tags = encoded
		}

		moneyChanged := req.Items != nil || req.DiscountType != nil || req.DiscountValue != nil || req.TaxRate != nil
		if moneyChanged {
			if req.DiscountType != nil {
				invoice.DiscountType = *req.DiscountType
			}
			if req.DiscountValue != nil {
				invoice.DiscountValue = *req.DiscountValue
			}
			if err := validateDiscount(invoice.DiscountType, invoice.DiscountValue); err != nil {
				return err
			}
			if req.TaxRate != nil {
				if *req.TaxRate < 0 || *req.TaxRate > 100 {
					return invoicedomain.ErrInvalidTaxRate
				}
				invoice.TaxRate = *req.TaxRate
			}

			items := invoice.Items()
			if req.Items != nil {
				items, err = validateItems(req.Items)
				if err != nil {
					return err
				}
			}
			amounts := make([]float64, 0, len(items))
			for i := range items {
				items[i].Amount = money.LineAmount(items[i].Quantity, items[i].Rate)
				amounts = append(amounts, items[i].Amount)
			}
			encoded, err := invoicedomain.EncodeLineItems(items)
			if err != nil {
				return err
			}
			invoice.LineItems = encoded

			totals := money.Compute(amounts, invoice.DiscountType, invoice.DiscountValue, invoice.TaxRate)
			invoice.Subtotal = totals.Subtotal
			invoice.DiscountAmount = totals.DiscountAmount
			invoice.TaxAmount = totals.TaxAmount
			invoice.TotalAmount = totals.TotalAmount
			invoice.OutstandingAmount = money.Round2(totals.TotalAmount - invoice.PaidAmount)

			if invoice.Status != invoicedomain.InvoiceStatusDraft {
				invoice.Status = invoicedomain.PaymentStatus(invoice.PaidAmount, invoice.TotalAmount)
			}
		}

		// Shrinking the total below the paid amount settles the invoice,
		// so the paid hook fires here the same as it does for payments.
		becamePaid = oldStatus != invoicedomain.InvoiceStatusPaid && invoice.Status == invoicedomain.InvoiceStatusPaid
		customerID = invoice.CustomerID

		invoice.UpdatedAt = s.clock.Now()
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}
		updated = *invoice
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if becamePaid && customerID != nil && s.paidTrigger != nil {
		if err := s.paidTrigger.OnInvoicePaid(ctx, tenantID, *customerID); err != nil {
			s.log.Warn("customer metrics recompute failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		}
	}
	return updated, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, target invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	switch target {
	case invoicedomain.InvoiceStatusPending, invoicedomain.InvoiceStatusCancelled:
	default:
		// paid/partial/overdue are computed from payment state, draft
		// is creation-only.
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTransition
	}

	var updated invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadTenantInvoice(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		effective := invoicedomain.EffectiveStatus(invoice.Status, invoice.PaidAmount, invoice.DueDate, now)
		if !invoicedomain.CanTransition(effective, target) {
			return invoicedomain.ErrInvalidTransition
		}

		invoice.Status = target
		invoice.UpdatedAt = now
		if err := tx.Model(&invoicedomain.Invoice{}).
			Where("id = ?", invoice.ID).
			Updates(map[string]any{"status": target, "updated_at": now}).Error; err != nil {
			return err
		}
		updated = *invoice
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.ErrInvalidInvoiceID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadTenantInvoice(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		// Payments never outlive their invoice.
		if err := tx.Exec(`DELETE FROM payments WHERE invoice_id = ?`, invoice.ID).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM invoices WHERE id = ?`, invoice.ID).Error
	})
}

type statsRow struct {
	TotalCount       int64
	PaidCount        int64
	PendingCount     int64
	PartialCount     int64
	OverdueCount     int64
	DraftCount       int64
	TotalAmount      float64
	TotalPaid        float64
	TotalOutstanding float64
}

func (s *Service) Stats(ctx context.Context, req invoicedomain.StatsRequest) (invoicedomain.InvoiceStats, error) {
	tenantID, err := s.tenantFromContext(ctx)
	if err != nil {
		return invoicedomain.InvoiceStats{}, err
	}

	now := s.clock.Now()
	query := `SELECT
		COUNT(1) AS total_count,
		COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END), 0) AS paid_count,
		COALESCE(SUM(CASE WHEN status = 'pending' AND NOT (paid_amount = 0 AND due_date < @now) THEN 1 ELSE 0 END), 0) AS pending_count,
		COALESCE(SUM(CASE WHEN status = 'partial' THEN 1 ELSE 0 END), 0) AS partial_count,
		COALESCE(SUM(CASE WHEN status = 'overdue' OR (status = 'pending' AND paid_amount = 0 AND due_date < @now) THEN 1 ELSE 0 END), 0) AS overdue_count,
		COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0) AS draft_count,
		COALESCE(SUM(CASE WHEN status <> 'cancelled' THEN total_amount ELSE 0 END), 0) AS total_amount,
		COALESCE(SUM(CASE WHEN status <> 'cancelled' THEN paid_amount ELSE 0 END), 0) AS total_paid,
		COALESCE(SUM(CASE WHEN status <> 'cancelled' THEN outstanding_amount ELSE 0 END), 0) AS total_outstanding
	FROM invoices
	WHERE tenant_id = @tenant`
	args := map[string]any{"tenant": tenantID, "now": now}

	if branchID, ok := tenantctx.BranchID(ctx); ok {
		query += ` AND branch_id = @branch`
		args["branch"] = branchID
	}
	if req.StartDate != nil {
		query += ` AND issue_date >= @start`
		args["start"] = *req.StartDate
	}
	if req.EndDate != nil {
		query += ` AND issue_date <= @end`
		args["end"] = *req.EndDate
	}

	var row statsRow
	if err := s.db.WithContext(ctx).Raw(query, args).Scan(&row).Error; err != nil {
		return invoicedomain.InvoiceStats{}, err
	}

	stats := invoicedomain.InvoiceStats{
		TotalCount:       row.TotalCount,
		PaidCount:        row.PaidCount,
		PendingCount:     row.PendingCount,
		PartialCount:     row.PartialCount,
		OverdueCount:     row.OverdueCount,
		DraftCount:       row.DraftCount,
		TotalAmount:      money.Round2(row.TotalAmount),
		TotalPaid:        money.Round2(row.TotalPaid),
		TotalOutstanding: money.Round2(row.TotalOutstanding),
	}
	if stats.TotalCount > 0 {
		stats.AverageInvoiceAmount = money.Round2(stats.TotalAmount / float64(stats.TotalCount))
	}
	return stats, nil
}

// loadTenantInvoice loads an invoice inside tx and enforces tenant
// scope. Cross-tenant hits surface as not-found.
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

func (s *Service) tenantFromContext(ctx context.Context) (snowflake.ID, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return 0, invoicedomain.ErrInvalidTenant
	}
	return tenantID, nil
}

func validateItems(inputs []invoicedomain.LineItemInput) ([]invoicedomain.LineItem, error) {
	if len(inputs) == 0 {
		return nil, invoicedomain.ErrEmptyLineItems
	}
	items := make([]invoicedomain.LineItem, 0, len(inputs))
	for _, input := range inputs {
		if input.Quantity <= 0 || input.Rate < 0 {
			return nil, invoicedomain.ErrInvalidLineItem
		}
		items = append(items, invoicedomain.LineItem{
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			Rate:        input.Rate,
		})
	}
	return items, nil
}

func validateDiscount(discountType money.DiscountType, value float64) error {
	switch discountType {
	case money.DiscountNone:
		if value != 0 {
			return invoicedomain.ErrInvalidDiscount
		}
	case money.DiscountPercentage:
		if value < 0 || value > 100 {
			return invoicedomain.ErrInvalidDiscount
		}
	case money.DiscountFixed:
		if value < 0 {
			return invoicedomain.ErrInvalidDiscount
		}
	default:
		return invoicedomain.ErrInvalidDiscount
	}
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
