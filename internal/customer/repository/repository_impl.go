package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, branch_id, name, email, phone, address,
		        total_spent, total_orders, average_order_value, last_order_date,
		        created_at, updated_at
		 FROM customers WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, tenantID snowflake.ID) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc, id desc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) UpdateMetrics(ctx context.Context, tenantID, id snowflake.ID, metrics domain.Metrics, now time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET total_spent = ?, total_orders = ?, average_order_value = ?, last_order_date = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		metrics.TotalSpent,
		metrics.TotalOrders,
		metrics.AverageOrderValue,
		metrics.LastOrderDate,
		now,
		tenantID,
		id,
	).Error
}
