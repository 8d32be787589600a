package db_client

import (
	"context"
	"fmt"
	"time"

	"github.com/Strum355/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres, waiting for the server to accept connections, and migrates the
// play history table
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for range 10 {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.PingContext(ctx); err == nil {
					break
				}
			} else {
				err = dbErr
			}
		}

		log.Info("Waiting for Postgres to be ready...")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&PlayRecord{}); err != nil {
		return nil, fmt.Errorf("migrating play history: %w", err)
	}
	return db, nil
}
