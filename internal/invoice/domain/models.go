// Package domain contains the invoice ledger models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/money"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// RecurringFrequency is the spawn cadence of a recurring invoice.
type RecurringFrequency string

const (
	FrequencyWeekly    RecurringFrequency = "weekly"
	FrequencyMonthly   RecurringFrequency = "monthly"
	FrequencyQuarterly RecurringFrequency = "quarterly"
	FrequencyYearly    RecurringFrequency = "yearly"
)

// ValidFrequency reports whether f is a supported cadence.
func ValidFrequency(f RecurringFrequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// LineItem is a single invoice line. Amount is always derived from
// quantity and rate, never taken from the caller.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Invoice represents an invoice scoped to a tenant and branch. Line
// items and tags cross the storage boundary as serialized JSON text.
type Invoice struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index;uniqueIndex:ux_invoices_tenant_number" json:"tenantId"`
	BranchID snowflake.ID `gorm:"column:branch_id;not null;index" json:"branchId"`

	InvoiceNumber string `gorm:"column:invoice_number;type:text;not null;uniqueIndex:ux_invoices_tenant_number" json:"invoiceNumber"`

	// CustomerID is nil for walk-in customers captured only by name/contact.
	CustomerID      *snowflake.ID `gorm:"column:customer_id;index" json:"customerId,omitempty"`
	CustomerName    string        `gorm:"column:customer_name;type:text;not null" json:"customerName"`
	CustomerEmail   string        `gorm:"column:customer_email;type:text" json:"customerEmail,omitempty"`
	CustomerPhone   string        `gorm:"column:customer_phone;type:text" json:"customerPhone,omitempty"`
	CustomerAddress string        `gorm:"column:customer_address;type:text" json:"customerAddress,omitempty"`

	IssueDate time.Time `gorm:"column:issue_date;not null" json:"issueDate"`
	DueDate   time.Time `gorm:"column:due_date;not null;index" json:"dueDate"`

	LineItems datatypes.JSON `gorm:"column:line_items;not null;default:'[]'" json:"lineItems"`
	Tags      datatypes.JSON `gorm:"column:tags;not null;default:'[]'" json:"tags"`

	DiscountType  money.DiscountType `gorm:"column:discount_type;type:text" json:"discountType,omitempty"`
	DiscountValue float64            `gorm:"column:discount_value;not null;default:0" json:"discountValue"`
	TaxRate       float64            `gorm:"column:tax_rate;not null;default:0" json:"taxRate"`

	Subtotal          float64 `gorm:"column:subtotal;not null;default:0" json:"subtotal"`
	DiscountAmount    float64 `gorm:"column:discount_amount;not null;default:0" json:"discountAmount"`
	TaxAmount         float64 `gorm:"column:tax_amount;not null;default:0" json:"taxAmount"`
	TotalAmount       float64 `gorm:"column:total_amount;not null;default:0" json:"totalAmount"`
	PaidAmount        float64 `gorm:"column:paid_amount;not null;default:0" json:"paidAmount"`
	OutstandingAmount float64 `gorm:"column:outstanding_amount;not null;default:0" json:"outstandingAmount"`

	Status InvoiceStatus `gorm:"column:status;type:text;not null;default:'draft';index" json:"status"`

	// IsPastDue is derived on read; partially paid invoices keep their
	// ledger status and surface lateness through this flag instead.
	IsPastDue bool `gorm:"-" json:"isPastDue"`

	Notes string `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Terms string `gorm:"column:terms;type:text" json:"terms,omitempty"`

	IsRecurring        bool               `gorm:"column:is_recurring;not null;default:false;index" json:"isRecurring"`
	RecurringFrequency RecurringFrequency `gorm:"column:recurring_frequency;type:text" json:"recurringFrequency,omitempty"`
	RecurringEndDate   *time.Time         `gorm:"column:recurring_end_date" json:"recurringEndDate,omitempty"`
	ParentInvoiceID    *snowflake.ID      `gorm:"column:parent_invoice_id;index" json:"parentInvoiceId,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Items decodes the serialized line items. Malformed or empty text
// decodes to an empty slice, never an error.
func (i Invoice) Items() []LineItem {
	return DecodeLineItems(i.LineItems)
}

// TagList decodes the serialized tags with the same defensive policy.
func (i Invoice) TagList() []string {
	return DecodeTags(i.Tags)
}
