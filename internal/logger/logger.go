// Package logger wraps a process-wide zap SugaredLogger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger. "production" selects the JSON encoder at
// info level; anything else gets the development console encoder.
func Init(env string) {
	once.Do(func() {
		var (
			base *zap.Logger
			err  error
		)
		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			base = zap.NewNop()
		default:
			base, err = zap.NewDevelopment()
		}
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar().With("service", "naijatax")
	})
}

// Get returns the global sugared logger, initialising a development logger
// on first use.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// ForCompany returns a child logger tagged with the company being processed.
func ForCompany(companyID string) *zap.SugaredLogger {
	return Get().With("company_id", companyID)
}

// Sync flushes any buffered log entries.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
