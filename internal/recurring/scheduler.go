// Package recurring materializes child invoices from recurring parents.
// The sweep runs poll-on-access through the HTTP surface and, when
// configured, on a background interval.
package recurring

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepError reports a single parent that failed to regenerate.
type SweepError struct {
	ParentInvoiceID snowflake.ID `json:"parentInvoiceId"`
	Reason          string       `json:"reason"`
}

// SweepResult is the outcome of one sweep. Per-item failures never
// abort the sweep for the remaining parents.
type SweepResult struct {
	Created []invoicedomain.Invoice `json:"created"`
	Errors  []SweepError            `json:"errors"`
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *obsmetrics.SweepMetrics `optional:"true"`
}

type Scheduler struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     config.Config
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *obsmetrics.SweepMetrics
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:      p.DB,
		log:     p.Log.Named("recurring.scheduler"),
		cfg:     p.Cfg,
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// Sweep regenerates due recurring invoices for the tenant in context.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok || tenantID == 0 {
		return SweepResult{}, invoicedomain.ErrInvalidTenant
	}
	return s.sweepTenant(ctx, tenantID)
}

func (s *Scheduler) sweepTenant(ctx context.Context, tenantID snowflake.ID) (SweepResult, error) {
	now := s.clock.Now()
	if s.metrics != nil {
		s.metrics.Runs.Inc()
	}

	var parentIDs []snowflake.ID
	err := s.db.WithContext(ctx).Raw(
		`SELECT id
		 FROM invoices
		 WHERE tenant_id = ?
		   AND is_recurring = ?
		   AND status <> 'cancelled'
		   AND due_date <= ?
		   AND (recurring_end_date IS NULL OR recurring_end_date >= ?)
		 ORDER BY due_date`,
		tenantID,
		true,
		now,
		now,
	).Scan(&parentIDs).Error
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Created: []invoicedomain.Invoice{}, Errors: []SweepError{}}
	for _, parentID := range parentIDs {
		child, err := s.spawnChild(ctx, parentID, now)
		if err != nil {
			if s.metrics != nil {
				s.metrics.Failures.Inc()
			}
			s.log.Warn("recurring regeneration failed",
				zap.String("parent_invoice_id", parentID.String()),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, SweepError{
				ParentInvoiceID: parentID,
				Reason:          err.Error(),
			})
			continue
		}
		if child != nil {
			if s.metrics != nil {
				s.metrics.Spawned.Inc()
			}
			result.Created = append(result.Created, *child)
		}
	}

	s.log.Info("recurring sweep finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", len(result.Created)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// spawnChild clones one recurring parent. The parent's own due date is
// advanced in the same transaction, so a second sweep inside the same
// period re-reads the moved trigger point and is a no-op.
func (s *Scheduler) spawnChild(ctx context.Context, parentID snowflake.ID, now time.Time) (*invoicedomain.Invoice, error) {
	var child *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent invoicedomain.Invoice
		if err := tx.WithContext(ctx).Where("id = ?", parentID).First(&parent).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return invoicedomain.ErrInvoiceNotFound
			}
			return err
		}

		// Re-check due state inside the transaction.
		if !parent.IsRecurring || parent.Status == invoicedomain.InvoiceStatusCancelled || parent.DueDate.After(now) {
			return nil
		}
		if parent.RecurringEndDate != nil && parent.RecurringEndDate.Before(now) {
			return nil
		}

		nextDue, err := Advance(parent.DueDate, parent.RecurringFrequency)
		if err != nil {
			return err
		}

		number, err := invoicedomain.NextInvoiceNumber(ctx, tx, parent.TenantID, s.cfg.InvoicePrefix, now)
		if err != nil {
			return err
		}

		clone := parent
		clone.ID = s.genID.Generate()
		clone.InvoiceNumber = number
		clone.Status = invoicedomain.InvoiceStatusPending
		clone.IssueDate = now
		clone.DueDate = nextDue
		clone.PaidAmount = 0
		clone.OutstandingAmount = parent.TotalAmount
		clone.IsRecurring = false
		clone.RecurringFrequency = ""
		clone.RecurringEndDate = nil
		parentRef := parent.ID
		clone.ParentInvoiceID = &parentRef
		clone.CreatedAt = now
		clone.UpdatedAt = now

		if err := tx.Create(&clone).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			`UPDATE invoices SET due_date = ?, updated_at = ? WHERE id = ?`,
			nextDue,
			now,
			parent.ID,
		).Error; err != nil {
			return err
		}

		child = &clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// RunOnce sweeps every tenant with due recurring invoices. Used by the
// optional background interval loop.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()

	var tenantIDs []snowflake.ID
	err := s.db.WithContext(ctx).Raw(
		`SELECT DISTINCT tenant_id
		 FROM invoices
		 WHERE is_recurring = ? AND status <> 'cancelled' AND due_date <= ?`,
		true,
		now,
	).Scan(&tenantIDs).Error
	if err != nil {
		return err
	}

	for _, tenantID := range tenantIDs {
		if _, err := s.sweepTenant(ctx, tenantID); err != nil {
			s.log.Warn("tenant sweep failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func runLoop(lc fx.Lifecycle, s *Scheduler) {
	if s.cfg.SweepInterval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(s.cfg.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := s.RunOnce(ctx); err != nil {
							s.log.Warn("recurring sweep run failed", zap.Error(err))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

// Module provides the recurring invoice scheduler.
var Module = fx.Module("recurring.scheduler",
	fx.Provide(New),
	fx.Invoke(runLoop),
)
