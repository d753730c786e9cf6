// Package inventory declares the external stock-keeping collaborator.
// The ledger only triggers quantity decrements on invoice creation;
// stock ownership lives outside this service.
package inventory

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// StockDecrementer is invoked after an invoice is created. Failures are
// logged, never propagated into the invoice operation.
type StockDecrementer interface {
	Decrement(ctx context.Context, tenantID, branchID snowflake.ID, items []invoicedomain.LineItem) error
}

type noop struct {
	log *zap.Logger
}

func (n noop) Decrement(ctx context.Context, tenantID, branchID snowflake.ID, items []invoicedomain.LineItem) error {
	_ = ctx
	n.log.Debug("stock decrement skipped",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", branchID.String()),
		zap.Int("items", len(items)),
	)
	return nil
}

// NewNoop returns the default no-op decrementer used when no inventory
// integration is configured.
func NewNoop(log *zap.Logger) StockDecrementer {
	return noop{log: log.Named("inventory")}
}

// Module provides the default inventory collaborator.
var Module = fx.Module("inventory",
	fx.Provide(NewNoop),
)
