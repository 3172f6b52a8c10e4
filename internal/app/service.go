// Package service implements the use cases behind the HTTP API: search and
// ranking, accounts, search history, filter preferences and payments.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/pricewise/internal/adapters/auth"
	"github.com/okian/pricewise/internal/adapters/catalog"
	"github.com/okian/pricewise/internal/adapters/notify"
	"github.com/okian/pricewise/internal/adapters/repository"
	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/scoring"
	"github.com/okian/pricewise/pkg/logger"
)

// Default service configuration constants.
const (
	defaultDatabaseDSN  = "sqlite://pricewise.db"
	defaultTokenTTL     = 2 * time.Hour
	defaultResetCodeTTL = 10 * time.Minute
	defaultHistoryLimit = 50
	resetCodeLength     = 6
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store     *repository.Store
	ownsStore bool
	source    catalog.Source
	ranker    *scoring.Ranker
	hasher    *auth.Hasher
	tokens    *auth.Tokens
	notifier  notify.Notifier

	// Configuration
	dsn          string
	jwtSecret    string
	tokenTTL     time.Duration
	resetCodeTTL time.Duration
	bcryptCost   int
	historyLimit int
	now          func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses an already opened store. The service does not close it.
func WithStore(store *repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDatabaseDSN sets the DSN the service opens on Start when no store is given.
func WithDatabaseDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.dsn = dsn
		}
	}
}

// WithSource sets the catalog source searched for listings.
func WithSource(src catalog.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithRanker sets the ranking engine.
func WithRanker(r *scoring.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithJWTSecret sets the secret access tokens are signed with.
func WithJWTSecret(secret string) Option {
	return func(s *Service) {
		s.jwtSecret = secret
	}
}

// WithTokenTTL sets the lifetime of access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithResetCodeTTL sets how long password reset codes stay valid.
func WithResetCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetCodeTTL = ttl
		}
	}
}

// WithBcryptCost sets the bcrypt work factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithNotifier sets where password reset codes are delivered.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithHistoryLimit caps the number of search history entries returned.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dsn:          defaultDatabaseDSN,
		tokenTTL:     defaultTokenTTL,
		resetCodeTTL: defaultResetCodeTTL,
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store when none was injected and prepares credentials.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting pricewise service...")

	tokens, err := auth.NewTokens(s.jwtSecret, auth.WithTTL(s.tokenTTL), auth.WithClock(s.now))
	if err != nil {
		return errs.WrapKind("service.Start", errs.ErrInternal, err)
	}
	s.tokens = tokens

	if s.hasher == nil {
		s.hasher = auth.NewHasher(s.bcryptCost)
	}
	if s.source == nil {
		s.source = catalog.NewSimulatedSource()
	}
	if s.ranker == nil {
		s.ranker = scoring.NewRanker()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger)
	}

	if s.store == nil {
		store, err := repository.Open(ctx, s.dsn, repository.WithLogger(s.logger.Named("repository")))
		if err != nil {
			return errs.WrapKind("service.Start", errs.ErrInternal, err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.started = true
	s.logger.Info(ctx, "pricewise service started",
		logger.String("dialect", s.store.Dialect()),
		logger.Duration("tokenTTL", s.tokenTTL),
	)
	return nil
}

// Stop releases the store when the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping pricewise service...")
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "close store failed", logger.Error(err))
		}
		s.store = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "pricewise service stopped")
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Ping checks the database.
func (s *Service) Ping(ctx context.Context) error {
	if !s.Started() {
		return errs.New("service.Ping", errs.ErrInternal, "service not started")
	}
	return errs.WrapKind("service.Ping", errs.ErrInternal, s.store.Ping(ctx))
}

// storeErr maps repository failures to error kinds.
func storeErr(op string, err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return errs.New(op, errs.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrConflict):
		return errs.WrapKind(op, errs.ErrConflict, err)
	default:
		return errs.WrapKind(op, errs.ErrInternal, err)
	}
}
