package migration

import (
	"github.com/smallbiznis/bizledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DB.Type != "postgres" {
			// The embedded migrations target postgres. Other dialects
			// (sqlite for local experiments) fall back to AutoMigrate
			// driven by the caller.
			log.Warn("skipping embedded migrations", zap.String("db_type", cfg.DB.Type))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
