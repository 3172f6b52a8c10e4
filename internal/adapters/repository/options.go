// Package repository persists catalog, ranking and account data through gorm.
package repository

import (
	"time"

	"github.com/okian/pricewise/pkg/logger"
	gormlogger "gorm.io/gorm/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger routes gorm warnings and slow queries to the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSlowQueryThreshold sets the duration above which queries are logged as slow.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.slowThreshold = d
		}
	}
}

// WithLogLevel sets the gorm log level (silent, error, warn, info).
func WithLogLevel(level gormlogger.LogLevel) Option {
	return func(s *Store) {
		if level > 0 {
			s.logLevel = level
		}
	}
}

// WithMaxOpenConns caps the connection pool. SQLite is always capped at one.
func WithMaxOpenConns(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
