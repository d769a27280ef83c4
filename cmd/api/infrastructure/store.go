package infrastructure

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-service/internal/adapter/db/jsonfile"
	"user-admin-service/internal/adapter/db/postgres"
	"user-admin-service/internal/config"
	"user-admin-service/internal/usecase/user"
)

// Store is the selected record store and a probe for the health endpoint.
type Store struct {
	Repo  user.Repository
	Check func(ctx context.Context) error
}

// NewStore builds the record store for STORE_DRIVER. db is nil for the json driver.
func NewStore(cfg *config.Config, db *gorm.DB, l *zap.Logger) Store {
	if cfg.Store.Driver == config.StoreDriverJSON {
		s := jsonfile.NewUserStore(cfg.Store.JSONPath, l)
		l.Info("using JSON document store", zap.String("path", cfg.Store.JSONPath))
		return Store{
			Repo: s,
			Check: func(ctx context.Context) error {
				_, err := s.ListAll(ctx)
				return err
			},
		}
	}

	return Store{
		Repo: postgres.NewUserRepoPG(db, l),
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}
