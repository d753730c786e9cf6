// Package domain contains the payment ledger models and contracts.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

// Method is the payment instrument used.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
	MethodUPI          Method = "upi"
	MethodCheque       Method = "cheque"
	MethodOnline       Method = "online"
)

// ValidMethod reports whether m is a supported payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodUPI, MethodCheque, MethodOnline:
		return true
	}
	return false
}

// Payment is an applied payment. Invoice number and customer fields are
// snapshots taken at payment time for reporting; they are not re-synced
// when the invoice changes.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoiceId"`
	TenantID  snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenantId"`
	BranchID  snowflake.ID `gorm:"column:branch_id;not null;index" json:"branchId"`

	InvoiceNumber string        `gorm:"column:invoice_number;type:text;not null" json:"invoiceNumber"`
	CustomerID    *snowflake.ID `gorm:"column:customer_id;index" json:"customerId,omitempty"`
	CustomerName  string        `gorm:"column:customer_name;type:text" json:"customerName"`

	Amount      float64   `gorm:"column:amount;not null" json:"amount"`
	Method      Method    `gorm:"column:method;type:text;not null" json:"method"`
	Reference   string    `gorm:"column:reference;type:text" json:"reference,omitempty"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	PaymentDate time.Time `gorm:"column:payment_date;not null" json:"paymentDate"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

type ApplyPaymentRequest struct {
	InvoiceID   string     `json:"-"`
	Amount      float64    `json:"amount"`
	Method      Method     `json:"method"`
	Reference   string     `json:"reference"`
	Notes       string     `json:"notes"`
	PaymentDate *time.Time `json:"paymentDate"`
}

type ListPaymentRequest struct {
	pagination.Pagination

	InvoiceID *string
	Method    *Method
	StartDate *time.Time
	EndDate   *time.Time
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type Service interface {
	Apply(ctx context.Context, req ApplyPaymentRequest) (Payment, error)
	Reverse(ctx context.Context, paymentID string) error
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
}

// PaidTrigger is the single trigger point notified when an invoice
// transitions into paid. The customer metrics aggregator implements it.
type PaidTrigger interface {
	OnInvoicePaid(ctx context.Context, tenantID, customerID snowflake.ID) error
}

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidMethod       = errors.New("invalid_method")
	ErrInvalidPaymentID    = errors.New("invalid_payment_id")
	ErrPaymentNotFound     = errors.New("payment_not_found")
	ErrInvoiceNotPayable   = errors.New("invoice_not_payable")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
)
