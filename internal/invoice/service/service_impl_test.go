package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	"github.com/smallbiznis/bizledger/internal/money"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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

func openTestDB(t *testing.T) *gorm.DB {
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

	if err := db.AutoMigrate(&invoicedomain.Invoice{}, &paymentdomain.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupInvoiceService(t *testing.T, clk clock.Clock, node *snowflake.Node) (invoicedomain.Service, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{InvoicePrefix: "INV"},
		GenID: node,
		Clock: clk,
	})
	return svc, db
}

func testCtx(tenantID, branchID snowflake.ID) context.Context {
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	return tenantctx.WithBranchID(ctx, branchID)
}

func twoLineRequest() invoicedomain.CreateInvoiceRequest {
	return invoicedomain.CreateInvoiceRequest{
		CustomerName: "Acme Traders",
		Items: []invoicedomain.LineItemInput{
			{Description: "Design work", Quantity: 2, Rate: 50},
			{Description: "Hosting", Quantity: 1, Rate: 100},
		},
		TaxRate: 18,
	}
}

func TestCreateInvoiceDerivesAmounts(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	invoice, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if invoice.Subtotal != 200 {
		t.Fatalf("expected subtotal 200, got %v", invoice.Subtotal)
	}
	if invoice.TaxAmount != 36 {
		t.Fatalf("expected tax 36, got %v", invoice.TaxAmount)
	}
	if invoice.TotalAmount != 236 {
		t.Fatalf("expected total 236, got %v", invoice.TotalAmount)
	}
	if invoice.PaidAmount != 0 || invoice.OutstandingAmount != 236 {
		t.Fatalf("expected untouched payment state, got paid=%v outstanding=%v", invoice.PaidAmount, invoice.OutstandingAmount)
	}
	if invoice.Status != invoicedomain.InvoiceStatusPending {
		t.Fatalf("expected pending, got %s", invoice.Status)
	}
	if invoice.InvoiceNumber != "INV-202503-0001" {
		t.Fatalf("unexpected invoice number %q", invoice.InvoiceNumber)
	}

	items := invoice.Items()
	if len(items) != 2 || items[0].Amount != 100 || items[1].Amount != 100 {
		t.Fatalf("unexpected line items %+v", items)
	}

	// Default due date is 30 days after issue.
	if want := testNow.AddDate(0, 0, 30); !invoice.DueDate.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, invoice.DueDate)
	}
}

func TestCreateInvoiceNumbersAreSequential(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	first, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if first.InvoiceNumber != "INV-202503-0001" || second.InvoiceNumber != "INV-202503-0002" {
		t.Fatalf("expected sequential numbers, got %q then %q", first.InvoiceNumber, second.InvoiceNumber)
	}
}

func TestCreateInvoiceNumbersAdvancePastFourDigits(t *testing.T) {
	node := mustNode(t)
	svc, db := setupInvoiceService(t, clock.NewFakeClock(testNow), node)

	tenantID := node.Generate()
	ctx := testCtx(tenantID, node.Generate())

	// "INV-202503-9999" sorts above "INV-202503-10000" lexically; the
	// allocator must compare suffixes numerically to keep advancing.
	for _, number := range []string{"INV-202503-9999", "INV-202503-10000"} {
		seed := invoicedomain.Invoice{
			ID:            node.Generate(),
			TenantID:      tenantID,
			BranchID:      node.Generate(),
			InvoiceNumber: number,
			CustomerName:  "Acme Traders",
			IssueDate:     testNow,
			DueDate:       testNow.AddDate(0, 0, 30),
			LineItems:     datatypes.JSON("[]"),
			Tags:          datatypes.JSON("[]"),
			Status:        invoicedomain.InvoiceStatusPending,
			CreatedAt:     testNow,
			UpdatedAt:     testNow,
		}
		if err := db.Create(&seed).Error; err != nil {
			t.Fatalf("seed %s: %v", number, err)
		}
	}

	invoice, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if invoice.InvoiceNumber != "INV-202503-10001" {
		t.Fatalf("expected INV-202503-10001, got %q", invoice.InvoiceNumber)
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	cases := []struct {
		name    string
		mutate  func(*invoicedomain.CreateInvoiceRequest)
		wantErr error
	}{
		{"empty items", func(r *invoicedomain.CreateInvoiceRequest) { r.Items = nil }, invoicedomain.ErrEmptyLineItems},
		{"zero quantity", func(r *invoicedomain.CreateInvoiceRequest) { r.Items[0].Quantity = 0 }, invoicedomain.ErrInvalidLineItem},
		{"negative rate", func(r *invoicedomain.CreateInvoiceRequest) { r.Items[0].Rate = -1 }, invoicedomain.ErrInvalidLineItem},
		{"missing customer name", func(r *invoicedomain.CreateInvoiceRequest) { r.CustomerName = "  " }, invoicedomain.ErrMissingCustomerName},
		{"tax above 100", func(r *invoicedomain.CreateInvoiceRequest) { r.TaxRate = 101 }, invoicedomain.ErrInvalidTaxRate},
		{"negative tax", func(r *invoicedomain.CreateInvoiceRequest) { r.TaxRate = -1 }, invoicedomain.ErrInvalidTaxRate},
		{"percentage discount above 100", func(r *invoicedomain.CreateInvoiceRequest) {
			r.DiscountType = money.DiscountPercentage
			r.DiscountValue = 120
		}, invoicedomain.ErrInvalidDiscount},
		{"negative fixed discount", func(r *invoicedomain.CreateInvoiceRequest) {
			r.DiscountType = money.DiscountFixed
			r.DiscountValue = -5
		}, invoicedomain.ErrInvalidDiscount},
		{"status beyond draft or pending", func(r *invoicedomain.CreateInvoiceRequest) { r.Status = invoicedomain.InvoiceStatusPaid }, invoicedomain.ErrInvalidStatus},
		{"recurring without valid frequency", func(r *invoicedomain.CreateInvoiceRequest) {
			r.IsRecurring = true
			r.RecurringFrequency = "daily"
		}, invoicedomain.ErrInvalidFrequency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := twoLineRequest()
			tc.mutate(&req)
			if _, err := svc.Create(ctx, req); err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateInvoiceRequiresTenantAndBranch(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)

	if _, err := svc.Create(context.Background(), twoLineRequest()); err != invoicedomain.ErrInvalidTenant {
		t.Fatalf("expected invalid tenant, got %v", err)
	}

	noBranch := tenantctx.WithTenantID(context.Background(), node.Generate())
	if _, err := svc.Create(noBranch, twoLineRequest()); err != invoicedomain.ErrInvalidBranch {
		t.Fatalf("expected invalid branch, got %v", err)
	}
}

func TestGetByIDTenantIsolation(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	invoice, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherTenant := testCtx(node.Generate(), node.Generate())
	if _, err := svc.GetByID(otherTenant, invoice.ID.String()); err != invoicedomain.ErrInvoiceNotFound {
		t.Fatalf("expected not found across tenants, got %v", err)
	}

	got, err := svc.GetByID(ctx, invoice.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != invoice.ID {
		t.Fatalf("expected %s, got %s", invoice.ID, got.ID)
	}
}

func TestGetByIDDerivesOverdue(t *testing.T) {
	node := mustNode(t)
	clk := clock.NewFakeClock(testNow)
	svc, db := setupInvoiceService(t, clk, node)
	ctx := testCtx(node.Generate(), node.Generate())

	req := twoLineRequest()
	due := testNow.AddDate(0, 0, 5)
	req.DueDate = &due

	invoice, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clk.Advance(6 * 24 * time.Hour)
	got, err := svc.GetByID(ctx, invoice.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != invoicedomain.InvoiceStatusOverdue {
		t.Fatalf("expected overdue on read, got %s", got.Status)
	}
	if !got.IsPastDue {
		t.Fatalf("expected past-due flag set")
	}

	// The stored status stays pending; overdue is derived at read time.
	var stored string
	if err := db.Raw(`SELECT status FROM invoices WHERE id = ?`, invoice.ID).Scan(&stored).Error; err != nil {
		t.Fatalf("read stored status: %v", err)
	}
	if stored != string(invoicedomain.InvoiceStatusPending) {
		t.Fatalf("expected stored pending, got %s", stored)
	}

	// A partial payment keeps the ledger status; lateness shows only
	// through the flag.
	if err := db.Exec(
		`UPDATE invoices SET status = 'partial', paid_amount = 100, outstanding_amount = total_amount - 100 WHERE id = ?`,
		invoice.ID,
	).Error; err != nil {
		t.Fatalf("mark partial: %v", err)
	}
	got, err = svc.GetByID(ctx, invoice.ID.String())
	if err != nil {
		t.Fatalf("get partial: %v", err)
	}
	if got.Status != invoicedomain.InvoiceStatusPartial || !got.IsPastDue {
		t.Fatalf("expected past-due partial, got status=%s pastDue=%v", got.Status, got.IsPastDue)
	}
}

func TestUpdateRecomputesTotals(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	invoice, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTax := 10.0
	updated, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{
		ID: invoice.ID.String(),
		Items: []invoicedomain.LineItemInput{
			{Description: "Design work", Quantity: 3, Rate: 100},
		},
		TaxRate: &newTax,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Subtotal != 300 || updated.TaxAmount != 30 || updated.TotalAmount != 330 {
		t.Fatalf("unexpected totals %v/%v/%v", updated.Subtotal, updated.TaxAmount, updated.TotalAmount)
	}
	if updated.OutstandingAmount != 330 {
		t.Fatalf("expected outstanding 330, got %v", updated.OutstandingAmount)
	}

	// Non-money updates leave the totals alone.
	notes := "net 15"
	touched, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Notes: &notes})
	if err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if touched.TotalAmount != 330 || touched.Notes != "net 15" {
		t.Fatalf("unexpected state after notes update: total=%v notes=%q", touched.TotalAmount, touched.Notes)
	}
}

type paidTriggerStub struct {
	calls []snowflake.ID
}

func (p *paidTriggerStub) OnInvoicePaid(ctx context.Context, tenantID, customerID snowflake.ID) error {
	p.calls = append(p.calls, customerID)
	return nil
}

func TestUpdateSettlingEditFiresPaidTrigger(t *testing.T) {
	node := mustNode(t)
	trigger := &paidTriggerStub{}
	db := openTestDB(t)
	svc := NewService(ServiceParam{
		DB:          db,
		Log:         zap.NewNop(),
		Cfg:         config.Config{InvoicePrefix: "INV"},
		GenID:       node,
		Clock:       clock.NewFakeClock(testNow),
		PaidTrigger: trigger,
	})
	ctx := testCtx(node.Generate(), node.Generate())

	customerID := node.Generate()
	req := twoLineRequest()
	req.CustomerID = customerID.String()
	invoice, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Exec(
		`UPDATE invoices SET status = 'partial', paid_amount = 100, outstanding_amount = total_amount - 100 WHERE id = ?`,
		invoice.ID,
	).Error; err != nil {
		t.Fatalf("mark partial: %v", err)
	}

	// Dropping the total below the paid amount settles the invoice.
	updated, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{
		ID: invoice.ID.String(),
		Items: []invoicedomain.LineItemInput{
			{Description: "Design work", Quantity: 1, Rate: 50},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("expected paid after settling edit, got %s", updated.Status)
	}
	if len(trigger.calls) != 1 || trigger.calls[0] != customerID {
		t.Fatalf("expected one paid trigger call for %s, got %v", customerID, trigger.calls)
	}
}

func TestUpdatePaidInvoiceIsImmutable(t *testing.T) {
	node := mustNode(t)
	svc, db := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	invoice, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Exec(
		`UPDATE invoices SET status = 'paid', paid_amount = total_amount, outstanding_amount = 0 WHERE id = ?`,
		invoice.ID,
	).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	notes := "late edit"
	if _, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Notes: &notes}); err != invoicedomain.ErrInvoiceImmutable {
		t.Fatalf("expected immutable, got %v", err)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	node := mustNode(t)
	svc, db := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	req := twoLineRequest()
	req.Status = invoicedomain.InvoiceStatusDraft
	draft, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	finalized, err := svc.SetStatus(ctx, draft.ID.String(), invoicedomain.InvoiceStatusPending)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized.Status != invoicedomain.InvoiceStatusPending {
		t.Fatalf("expected pending, got %s", finalized.Status)
	}

	cancelled, err := svc.SetStatus(ctx, draft.ID.String(), invoicedomain.InvoiceStatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != invoicedomain.InvoiceStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// Cancelled is terminal.
	if _, err := svc.SetStatus(ctx, draft.ID.String(), invoicedomain.InvoiceStatusPending); err != invoicedomain.ErrInvalidTransition {
		t.Fatalf("expected invalid transition from cancelled, got %v", err)
	}

	// Payment-derived states cannot be requested.
	other, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(ctx, other.ID.String(), invoicedomain.InvoiceStatusPaid); err != invoicedomain.ErrInvalidTransition {
		t.Fatalf("expected invalid transition to paid, got %v", err)
	}

	// A fully paid invoice cannot be cancelled.
	if err := db.Exec(
		`UPDATE invoices SET status = 'paid', paid_amount = total_amount, outstanding_amount = 0 WHERE id = ?`,
		other.ID,
	).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := svc.SetStatus(ctx, other.ID.String(), invoicedomain.InvoiceStatusCancelled); err != invoicedomain.ErrInvalidTransition {
		t.Fatalf("expected invalid transition from paid, got %v", err)
	}
}

func TestDeleteRemovesInvoiceAndPayments(t *testing.T) {
	node := mustNode(t)
	svc, db := setupInvoiceService(t, clock.NewFakeClock(testNow), node)
	ctx := testCtx(node.Generate(), node.Generate())

	invoice, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payment := paymentdomain.Payment{
		ID:            node.Generate(),
		InvoiceID:     invoice.ID,
		TenantID:      invoice.TenantID,
		BranchID:      invoice.BranchID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerName:  invoice.CustomerName,
		Amount:        100,
		Method:        paymentdomain.MethodCash,
		PaymentDate:   testNow,
		CreatedAt:     testNow,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	if err := svc.Delete(ctx, invoice.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var invoices, payments int64
	if err := db.Raw(`SELECT COUNT(1) FROM invoices`).Scan(&invoices).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if err := db.Raw(`SELECT COUNT(1) FROM payments`).Scan(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if invoices != 0 || payments != 0 {
		t.Fatalf("expected empty ledger, got invoices=%d payments=%d", invoices, payments)
	}
}

func TestListStatusFilters(t *testing.T) {
	node := mustNode(t)
	clk := clock.NewFakeClock(testNow)
	svc, _ := setupInvoiceService(t, clk, node)
	ctx := testCtx(node.Generate(), node.Generate())

	pastDue := testNow.AddDate(0, 0, -1)
	futureDue := testNow.AddDate(0, 0, 10)

	overdueReq := twoLineRequest()
	overdueReq.DueDate = &pastDue
	overdueInv, err := svc.Create(ctx, overdueReq)
	if err != nil {
		t.Fatalf("create overdue: %v", err)
	}

	pendingReq := twoLineRequest()
	pendingReq.DueDate = &futureDue
	pendingInv, err := svc.Create(ctx, pendingReq)
	if err != nil {
		t.Fatalf("create pending: %v", err)
	}

	overdue := invoicedomain.InvoiceStatusOverdue
	resp, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{Status: &overdue})
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(resp.Invoices) != 1 || resp.Invoices[0].ID != overdueInv.ID {
		t.Fatalf("expected only the past-due invoice, got %d rows", len(resp.Invoices))
	}
	if resp.Invoices[0].Status != invoicedomain.InvoiceStatusOverdue {
		t.Fatalf("expected derived overdue status, got %s", resp.Invoices[0].Status)
	}

	pending := invoicedomain.InvoiceStatusPending
	resp, err = svc.List(ctx, invoicedomain.ListInvoiceRequest{Status: &pending})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(resp.Invoices) != 1 || resp.Invoices[0].ID != pendingInv.ID {
		t.Fatalf("expected only the future-due invoice, got %d rows", len(resp.Invoices))
	}
}

func TestListScopedToBranch(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupInvoiceService(t, clock.NewFakeClock(testNow), node)

	tenantID := node.Generate()
	branchA := testCtx(tenantID, node.Generate())
	branchB := testCtx(tenantID, node.Generate())

	if _, err := svc.Create(branchA, twoLineRequest()); err != nil {
		t.Fatalf("create branch A: %v", err)
	}
	if _, err := svc.Create(branchB, twoLineRequest()); err != nil {
		t.Fatalf("create branch B: %v", err)
	}

	resp, err := svc.List(branchA, invoicedomain.ListInvoiceRequest{})
	if err != nil {
		t.Fatalf("list branch A: %v", err)
	}
	if len(resp.Invoices) != 1 {
		t.Fatalf("expected 1 branch-scoped invoice, got %d", len(resp.Invoices))
	}

	// All-branches mode sees both.
	all := tenantctx.WithTenantID(context.Background(), tenantID)
	resp, err = svc.List(all, invoicedomain.ListInvoiceRequest{})
	if err != nil {
		t.Fatalf("list all branches: %v", err)
	}
	if len(resp.Invoices) != 2 {
		t.Fatalf("expected 2 invoices tenant-wide, got %d", len(resp.Invoices))
	}
}

func TestStatsAggregates(t *testing.T) {
	node := mustNode(t)
	clk := clock.NewFakeClock(testNow)
	svc, db := setupInvoiceService(t, clk, node)
	ctx := testCtx(node.Generate(), node.Generate())

	// Each invoice totals 236.
	paid, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create paid: %v", err)
	}
	if err := db.Exec(
		`UPDATE invoices SET status = 'paid', paid_amount = total_amount, outstanding_amount = 0 WHERE id = ?`,
		paid.ID,
	).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if _, err := svc.Create(ctx, twoLineRequest()); err != nil {
		t.Fatalf("create pending: %v", err)
	}

	pastDue := testNow.AddDate(0, 0, -1)
	overdueReq := twoLineRequest()
	overdueReq.DueDate = &pastDue
	if _, err := svc.Create(ctx, overdueReq); err != nil {
		t.Fatalf("create overdue: %v", err)
	}

	draftReq := twoLineRequest()
	draftReq.Status = invoicedomain.InvoiceStatusDraft
	if _, err := svc.Create(ctx, draftReq); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	cancelled, err := svc.Create(ctx, twoLineRequest())
	if err != nil {
		t.Fatalf("create cancelled: %v", err)
	}
	if _, err := svc.SetStatus(ctx, cancelled.ID.String(), invoicedomain.InvoiceStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stats, err := svc.Stats(ctx, invoicedomain.StatsRequest{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalCount != 5 {
		t.Fatalf("expected 5 invoices, got %d", stats.TotalCount)
	}
	if stats.PaidCount != 1 || stats.PendingCount != 1 || stats.OverdueCount != 1 || stats.DraftCount != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}

	// Cancelled invoices never contribute to the money sums.
	if stats.TotalAmount != 944 {
		t.Fatalf("expected total 944, got %v", stats.TotalAmount)
	}
	if stats.TotalPaid != 236 || stats.TotalOutstanding != 708 {
		t.Fatalf("unexpected paid/outstanding %v/%v", stats.TotalPaid, stats.TotalOutstanding)
	}
	if stats.AverageInvoiceAmount != 188.8 {
		t.Fatalf("expected average 188.8, got %v", stats.AverageInvoiceAmount)
	}
}
