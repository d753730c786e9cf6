package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizledger/internal/clock"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	customerrepo "github.com/smallbiznis/bizledger/internal/customer/repository"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func setupCustomerService(t *testing.T, clk clock.Clock) (customerdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&invoicedomain.Invoice{}, &customerdomain.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  customerrepo.Provide(db),
	})
	return svc, db
}

func seedCustomer(t *testing.T, db *gorm.DB, tenantID, customerID snowflake.ID) {
	t.Helper()
	customer := customerdomain.Customer{
		ID:        customerID,
		TenantID:  tenantID,
		Name:      "Acme Traders",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID, customerID snowflake.ID, status invoicedomain.InvoiceStatus, total float64, issueDate time.Time) {
	t.Helper()

	items, err := invoicedomain.EncodeLineItems(nil)
	if err != nil {
		t.Fatalf("encode items: %v", err)
	}
	tags, err := invoicedomain.EncodeTags(nil)
	if err != nil {
		t.Fatalf("encode tags: %v", err)
	}

	paid := 0.0
	if status == invoicedomain.InvoiceStatusPaid {
		paid = total
	}
	invoice := invoicedomain.Invoice{
		ID:                node.Generate(),
		TenantID:          tenantID,
		BranchID:          node.Generate(),
		InvoiceNumber:     fmt.Sprintf("INV-%s-%s", issueDate.Format("200601"), node.Generate()),
		CustomerID:        &customerID,
		CustomerName:      "Acme Traders",
		IssueDate:         issueDate,
		DueDate:           issueDate.AddDate(0, 0, 30),
		LineItems:         items,
		Tags:              tags,
		Subtotal:          total,
		TotalAmount:       total,
		PaidAmount:        paid,
		OutstandingAmount: total - paid,
		Status:            status,
		CreatedAt:         issueDate,
		UpdatedAt:         issueDate,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
}

func TestOnInvoicePaidRecomputesFromPaidInvoicesOnly(t *testing.T) {
	node := mustNode(t)
	svc, db := setupCustomerService(t, clock.NewFakeClock(testNow))

	tenantID := node.Generate()
	customerID := node.Generate()
	seedCustomer(t, db, tenantID, customerID)

	older := testNow.AddDate(0, -2, 0)
	latest := testNow.AddDate(0, -1, 0)
	seedInvoice(t, db, node, tenantID, customerID, invoicedomain.InvoiceStatusPaid, 236, older)
	seedInvoice(t, db, node, tenantID, customerID, invoicedomain.InvoiceStatusPaid, 100, latest)

	// Open and cancelled invoices never count toward spend.
	seedInvoice(t, db, node, tenantID, customerID, invoicedomain.InvoiceStatusPartial, 500, testNow)
	seedInvoice(t, db, node, tenantID, customerID, invoicedomain.InvoiceStatusCancelled, 900, testNow)

	if err := svc.OnInvoicePaid(context.Background(), tenantID, customerID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	customer, err := svc.GetByID(ctx, customerID.String())
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}

	if customer.TotalOrders != 2 {
		t.Fatalf("expected 2 orders, got %d", customer.TotalOrders)
	}
	if customer.TotalSpent != 336 {
		t.Fatalf("expected spent 336, got %v", customer.TotalSpent)
	}
	if customer.AverageOrderValue != 168 {
		t.Fatalf("expected average 168, got %v", customer.AverageOrderValue)
	}
	if customer.LastOrderDate == nil || !customer.LastOrderDate.Equal(latest) {
		t.Fatalf("expected last order %v, got %v", latest, customer.LastOrderDate)
	}
}

func TestOnInvoicePaidIsIdempotent(t *testing.T) {
	node := mustNode(t)
	svc, db := setupCustomerService(t, clock.NewFakeClock(testNow))

	tenantID := node.Generate()
	customerID := node.Generate()
	seedCustomer(t, db, tenantID, customerID)
	seedInvoice(t, db, node, tenantID, customerID, invoicedomain.InvoiceStatusPaid, 236, testNow.AddDate(0, -1, 0))

	// Recomputation reads from the invoice set, so double-firing the
	// trigger cannot double-count.
	for i := 0; i < 3; i++ {
		if err := svc.OnInvoicePaid(context.Background(), tenantID, customerID); err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
	}

	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	customer, err := svc.GetByID(ctx, customerID.String())
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if customer.TotalOrders != 1 || customer.TotalSpent != 236 {
		t.Fatalf("expected stable metrics, got orders=%d spent=%v", customer.TotalOrders, customer.TotalSpent)
	}
}

func TestOnInvoicePaidResetsWhenNothingPaid(t *testing.T) {
	node := mustNode(t)
	svc, db := setupCustomerService(t, clock.NewFakeClock(testNow))

	tenantID := node.Generate()
	customerID := node.Generate()
	seedCustomer(t, db, tenantID, customerID)
	if err := db.Exec(
		`UPDATE customers SET total_spent = 999, total_orders = 9 WHERE id = ?`,
		customerID,
	).Error; err != nil {
		t.Fatalf("seed stale metrics: %v", err)
	}

	if err := svc.OnInvoicePaid(context.Background(), tenantID, customerID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	customer, err := svc.GetByID(ctx, customerID.String())
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if customer.TotalOrders != 0 || customer.TotalSpent != 0 || customer.AverageOrderValue != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", customer)
	}
}

func TestGetByIDTenantScoped(t *testing.T) {
	node := mustNode(t)
	svc, db := setupCustomerService(t, clock.NewFakeClock(testNow))

	tenantID := node.Generate()
	customerID := node.Generate()
	seedCustomer(t, db, tenantID, customerID)

	other := tenantctx.WithTenantID(context.Background(), node.Generate())
	if _, err := svc.GetByID(other, customerID.String()); err != customerdomain.ErrCustomerNotFound {
		t.Fatalf("expected not found across tenants, got %v", err)
	}

	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	if _, err := svc.GetByID(ctx, "not-a-number"); err != customerdomain.ErrInvalidCustomerID {
		t.Fatalf("expected invalid id, got %v", err)
	}
}

func TestListCustomers(t *testing.T) {
	node := mustNode(t)
	svc, db := setupCustomerService(t, clock.NewFakeClock(testNow))

	tenantID := node.Generate()
	seedCustomer(t, db, tenantID, node.Generate())
	seedCustomer(t, db, tenantID, node.Generate())
	seedCustomer(t, db, node.Generate(), node.Generate())

	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	customers, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("expected 2 tenant customers, got %d", len(customers))
	}
}
