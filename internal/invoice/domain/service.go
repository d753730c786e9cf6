package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/bizledger/internal/money"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

// LineItemInput is a caller-supplied line; the amount is derived.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

type CreateInvoiceRequest struct {
	CustomerID      string             `json:"customerId"`
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone"`
	CustomerAddress string             `json:"customerAddress"`
	IssueDate       *time.Time         `json:"issueDate"`
	DueDate         *time.Time         `json:"dueDate"`
	Items           []LineItemInput    `json:"items"`
	Tags            []string           `json:"tags"`
	DiscountType    money.DiscountType `json:"discountType"`
	DiscountValue   float64            `json:"discountValue"`
	TaxRate         float64            `json:"taxRate"`
	Status          InvoiceStatus      `json:"status"`
	Notes           string             `json:"notes"`
	Terms           string             `json:"terms"`

	IsRecurring        bool               `json:"isRecurring"`
	RecurringFrequency RecurringFrequency `json:"recurringFrequency"`
	RecurringEndDate   *time.Time         `json:"recurringEndDate"`
}

// UpdateInvoiceRequest carries partial updates. Nil fields are left
// untouched; money fields are recomputed when items, discount or tax
// change.
type UpdateInvoiceRequest struct {
	ID string `json:"-"`

	CustomerName    *string    `json:"customerName"`
	CustomerEmail   *string    `json:"customerEmail"`
	CustomerPhone   *string    `json:"customerPhone"`
	CustomerAddress *string    `json:"customerAddress"`
	DueDate         *time.Time `json:"dueDate"`

	Items         []LineItemInput     `json:"items"`
	Tags          []string            `json:"tags"`
	DiscountType  *money.DiscountType `json:"discountType"`
	DiscountValue *float64            `json:"discountValue"`
	TaxRate       *float64            `json:"taxRate"`

	Notes *string `json:"notes"`
	Terms *string `json:"terms"`

	RecurringEndDate *time.Time `json:"recurringEndDate"`
}

type ListInvoiceRequest struct {
	pagination.Pagination

	Status     *InvoiceStatus
	CustomerID *string
	StartDate  *time.Time
	EndDate    *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// InvoiceStats aggregates a tenant's (optionally branch-scoped) ledger.
type InvoiceStats struct {
	TotalCount           int64   `json:"totalCount"`
	PaidCount            int64   `json:"paidCount"`
	PendingCount         int64   `json:"pendingCount"`
	PartialCount         int64   `json:"partialCount"`
	OverdueCount         int64   `json:"overdueCount"`
	DraftCount           int64   `json:"draftCount"`
	TotalAmount          float64 `json:"totalAmount"`
	TotalPaid            float64 `json:"totalPaid"`
	TotalOutstanding     float64 `json:"totalOutstanding"`
	AverageInvoiceAmount float64 `json:"averageInvoiceAmount"`
}

type StatsRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (Invoice, error)
	SetStatus(ctx context.Context, id string, target InvoiceStatus) (Invoice, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, req StatsRequest) (InvoiceStats, error)
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidBranch       = errors.New("invalid_branch")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrEmptyLineItems      = errors.New("empty_line_items")
	ErrInvalidLineItem     = errors.New("invalid_line_item")
	ErrMissingCustomerName = errors.New("missing_customer_name")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrInvalidDiscount     = errors.New("invalid_discount")
	ErrInvalidTaxRate      = errors.New("invalid_tax_rate")
	ErrInvalidFrequency    = errors.New("invalid_recurring_frequency")
	ErrInvoiceImmutable    = errors.New("invoice_immutable")
	ErrNumberConflict      = errors.New("invoice_number_conflict")
)
