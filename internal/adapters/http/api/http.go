// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/pricewise/internal/adapters/ratelimit"
	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/pkg/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Authenticator
	SearchDependencies
	AccountDependencies
	HistoryDependencies
	PaymentDependencies
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger handlers report internal failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLoginLimiter throttles POST /login per client address.
func WithLoginLimiter(l ratelimit.Limiter) Option {
	return func(s *Server) {
		if l != nil {
			s.loginLimiter = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	log          logger.Logger
	loginLimiter ratelimit.Limiter

	healthHandler  *HealthHandler
	searchHandler  *SearchHandler
	accountHandler *AccountHandler
	historyHandler *HistoryHandler
	paymentHandler *PaymentHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.searchHandler = NewSearchHandler(deps, s.log)
	s.accountHandler = NewAccountHandler(deps, s.log)
	s.historyHandler = NewHistoryHandler(deps, s.log)
	s.paymentHandler = NewPaymentHandler(deps, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	auth := func(h http.HandlerFunc) http.HandlerFunc { return RequireAuth(s.deps, h) }

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))

	mux.HandleFunc("/search", MetricsMiddleware(OptionalAuth(s.deps, s.searchHandler.HandleSearch), "search"))

	login := s.accountHandler.HandleLogin
	if s.loginLimiter != nil {
		login = RateLimit(s.loginLimiter, "login", s.log, login)
	}
	mux.HandleFunc("/register", MetricsMiddleware(s.accountHandler.HandleRegister, "register"))
	mux.HandleFunc("/login", MetricsMiddleware(login, "login"))
	mux.HandleFunc("/update-profile", MetricsMiddleware(auth(s.accountHandler.HandleUpdateProfile), "update_profile"))
	mux.HandleFunc("/request-password-reset", MetricsMiddleware(s.accountHandler.HandleRequestPasswordReset, "request_password_reset"))
	mux.HandleFunc("/reset-password", MetricsMiddleware(s.accountHandler.HandleResetPassword, "reset_password"))

	mux.HandleFunc("/save-search-history", MetricsMiddleware(auth(s.historyHandler.HandleSaveSearchHistory), "save_search_history"))
	mux.HandleFunc("/get-search-history", MetricsMiddleware(auth(s.historyHandler.HandleGetSearchHistory), "get_search_history"))
	mux.HandleFunc("/set-preference", MetricsMiddleware(auth(s.historyHandler.HandleSetPreference), "set_preference"))
	mux.HandleFunc("/apply-filters", MetricsMiddleware(auth(s.historyHandler.HandleApplyFilters), "apply_filters"))

	mux.HandleFunc("/calculate-total-cost", MetricsMiddleware(auth(s.paymentHandler.HandleCalculateTotalCost), "calculate_total_cost"))
	mux.HandleFunc("/process-payment", MetricsMiddleware(auth(s.paymentHandler.HandleProcessPayment), "process_payment"))
	mux.HandleFunc("/price-history", MetricsMiddleware(s.paymentHandler.HandlePriceHistory, "price_history"))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Message: msg})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrValidation, errs.ErrConflict:
		return http.StatusBadRequest
	case errs.ErrNotFound:
		return http.StatusNotFound
	case errs.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Internal details are
// logged and replaced with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, errs.Message(err))
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const op = "api.decode"
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.New(op, errs.ErrValidation, "Request body is required")
		}
		return errs.New(op, errs.ErrValidation, "Request body must be valid JSON")
	}
	return nil
}
