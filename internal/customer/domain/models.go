// Package domain contains the customer spend-metrics models. Customer
// records are owned by the surrounding CRM; the ledger only recomputes
// their derived spend metrics when invoices are paid.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenantId"`
	BranchID snowflake.ID `gorm:"column:branch_id;index" json:"branchId"`

	Name    string `gorm:"column:name;type:text;not null" json:"name"`
	Email   string `gorm:"column:email;type:text" json:"email,omitempty"`
	Phone   string `gorm:"column:phone;type:text" json:"phone,omitempty"`
	Address string `gorm:"column:address;type:text" json:"address,omitempty"`

	// Derived exclusively from invoices with status paid.
	TotalSpent        float64    `gorm:"column:total_spent;not null;default:0" json:"totalSpent"`
	TotalOrders       int64      `gorm:"column:total_orders;not null;default:0" json:"totalOrders"`
	AverageOrderValue float64    `gorm:"column:average_order_value;not null;default:0" json:"averageOrderValue"`
	LastOrderDate     *time.Time `gorm:"column:last_order_date" json:"lastOrderDate,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// Metrics is the recomputed spend summary persisted onto the customer.
type Metrics struct {
	TotalSpent        float64
	TotalOrders       int64
	AverageOrderValue float64
	LastOrderDate     *time.Time
}

type Repository interface {
	FindByID(ctx context.Context, tenantID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, tenantID snowflake.ID) ([]*Customer, error)
	UpdateMetrics(ctx context.Context, tenantID, id snowflake.ID, metrics Metrics, now time.Time) error
}

type Service interface {
	GetByID(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)

	// OnInvoicePaid recomputes the customer's spend metrics from the
	// full paid-invoice set. Recomputation from source of truth keeps
	// the operation idempotent; double-firing cannot double-count.
	OnInvoicePaid(ctx context.Context, tenantID, customerID snowflake.ID) error
}

var (
	ErrInvalidCustomerID = errors.New("invalid_customer_id")
	ErrCustomerNotFound  = errors.New("customer_not_found")
)
