package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/schema"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Open creates the store selected by driver.
func Open(ctx context.Context, driver, dsn string, capacity int, v *schema.Validator, log *zap.SugaredLogger) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(capacity, v)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres store requires a dsn")
		}
		return NewPostgresStore(ctx, dsn, v, log)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}
