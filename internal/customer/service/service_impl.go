package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/clock"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	"github.com/smallbiznis/bizledger/internal/money"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  customerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  customerdomain.Repository
}

func NewService(p ServiceParam) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (customerdomain.Customer, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return customerdomain.Customer{}, invoicedomain.ErrInvalidTenant
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return customerdomain.Customer{}, customerdomain.ErrInvalidCustomerID
	}

	customer, err := s.repo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if customer == nil {
		return customerdomain.Customer{}, customerdomain.ErrCustomerNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context) ([]customerdomain.Customer, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return nil, invoicedomain.ErrInvalidTenant
	}

	items, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	customers := make([]customerdomain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return customers, nil
}

type spendRow struct {
	TotalOrders int64
	TotalSpent  float64
}

// OnInvoicePaid recomputes spend metrics from the full paid-invoice set
// for the customer. Partial invoices do not count.
func (s *Service) OnInvoicePaid(ctx context.Context, tenantID, customerID snowflake.ID) error {
	var row spendRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_spent
		 FROM invoices
		 WHERE tenant_id = ? AND customer_id = ? AND status = 'paid'`,
		tenantID,
		customerID,
	).Scan(&row).Error
	if err != nil {
		return err
	}

	metrics := customerdomain.Metrics{
		TotalSpent:  money.Round2(row.TotalSpent),
		TotalOrders: row.TotalOrders,
	}
	if row.TotalOrders > 0 {
		metrics.AverageOrderValue = money.Round2(row.TotalSpent / float64(row.TotalOrders))

		var last invoicedomain.Invoice
		err = s.db.WithContext(ctx).
			Where("tenant_id = ? AND customer_id = ? AND status = ?", tenantID, customerID, invoicedomain.InvoiceStatusPaid).
			Order("issue_date desc").
			First(&last).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == nil {
			issue := last.IssueDate
			metrics.LastOrderDate = &issue
		}
	}

	s.log.Debug("customer metrics recomputed",
		zap.String("customer_id", customerID.String()),
		zap.Int64("total_orders", metrics.TotalOrders),
		zap.Float64("total_spent", metrics.TotalSpent),
	)

	return s.repo.UpdateMetrics(ctx, tenantID, customerID, metrics, s.clock.Now())
}
