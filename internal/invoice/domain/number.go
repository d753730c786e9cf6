package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// NextInvoiceNumber allocates the next PREFIX-YYYYMM-NNNN number for a
// tenant. The sequence restarts each month and comes from the highest
// stored suffix, so it must run inside the same transaction as the
// insert that claims it. The suffix is compared numerically, not
// lexically, so sequences keep advancing past 9999. The tenant-scoped
// unique index on invoice_number backstops any race.
func NextInvoiceNumber(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, prefix string, now time.Time) (string, error) {
	period := now.UTC().Format("200601")
	base := fmt.Sprintf("%s-%s-", prefix, period)

	// SUBSTR positions are 1-based on sqlite, mysql and postgres alike.
	var latest int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(CAST(SUBSTR(invoice_number, ?) AS INTEGER)), 0)
		 FROM invoices
		 WHERE tenant_id = ? AND invoice_number LIKE ?`,
		len(base)+1,
		tenantID,
		base+"%",
	).Scan(&latest).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%04d", base, latest+1), nil
}
