package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pricewise/pkg/logger"
)

// Runner configuration constants.
const (
	loginAttempts   = 10
	loginRetryDelay = time.Second
	smokePassword   = "smoke-pa55word"
)

// ErrFailed is returned when any check of the run failed.
var ErrFailed = errors.New("smoke run failed")

// Run executes the complete smoke run and returns its statistics.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("searches", cfg.Searches),
		logger.Int("workers", cfg.Workers),
	)

	if _, err := client.Do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	runID := uuid.NewString()[:8]
	jobs := make(chan int, cfg.Workers*2)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(fn func(*Stats)) {
		mu.Lock()
		defer mu.Unlock()
		fn(stats)
	}

	workers := max(cfg.Workers, 1)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				u := &user{
					client:   client,
					log:      log,
					verbose:  cfg.Verbose,
					username: fmt.Sprintf("smoke-%s-%d", runID, i),
					email:    fmt.Sprintf("smoke-%s-%d@example.com", runID, i),
				}
				if err := u.run(ctx, cfg.Searches, record); err != nil {
					record(func(s *Stats) { s.Failures = append(s.Failures, u.username+": "+err.Error()) })
					log.Warn(ctx, "user flow failed", logger.String("user", u.username), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Users; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("smoke run interrupted: %w", err)
	}
	if len(stats.Failures) > 0 {
		return stats, fmt.Errorf("%w: %d failures, first: %s", ErrFailed, len(stats.Failures), stats.Failures[0])
	}
	log.Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// user walks one account through every endpoint.
type user struct {
	client   *Client
	log      logger.Logger
	verbose  bool
	username string
	email    string
	token    string
}

func (u *user) run(ctx context.Context, searches int, record func(func(*Stats))) error {
	register := map[string]string{"username": u.username, "email": u.email, "password": smokePassword}
	if _, err := u.client.Do(ctx, http.MethodPost, "/register", "", register, nil); err != nil {
		return err
	}
	if err := u.login(ctx); err != nil {
		return err
	}
	record(func(s *Stats) { s.UsersCreated++ })

	for i := 0; i < searches; i++ {
		var out []RankedProduct
		query := fmt.Sprintf("samsung %d", i)
		if _, err := u.client.Do(ctx, http.MethodGet, "/search?query="+strings.ReplaceAll(query, " ", "+"), u.token, nil, &out); err != nil {
			record(func(s *Stats) { s.SearchesFailed++ })
			return err
		}
		record(func(s *Stats) { s.SearchesOK++ })
		if err := VerifyRanking(out); err != nil {
			return fmt.Errorf("search %q: %w", query, err)
		}
		record(func(s *Stats) { s.RankingsVerified++ })
		if u.verbose {
			u.log.Debug(ctx, "search ranked", logger.String("user", u.username), logger.Int("results", len(out)))
		}
	}

	var history struct {
		SearchHistory []struct {
			SearchQuery string `json:"search_query"`
		} `json:"search_history"`
	}
	if _, err := u.client.Do(ctx, http.MethodGet, "/get-search-history", u.token, nil, &history); err != nil {
		return err
	}
	if len(history.SearchHistory) < searches {
		return fmt.Errorf("history has %d entries, want at least %d", len(history.SearchHistory), searches)
	}

	pref := map[string]string{"preference_key": "price", "preference_value": "descending"}
	if _, err := u.client.Do(ctx, http.MethodPost, "/set-preference", u.token, pref, nil); err != nil {
		return err
	}
	var filtered struct {
		Products []Product `json:"products"`
	}
	if _, err := u.client.Do(ctx, http.MethodGet, "/apply-filters", u.token, nil, &filtered); err != nil {
		return err
	}
	if err := VerifyPriceOrder(filtered.Products, true); err != nil {
		return err
	}
	if len(filtered.Products) == 0 {
		return nil
	}

	p := filtered.Products[0]
	var cost struct {
		TotalCost float64 `json:"total_cost"`
	}
	if _, err := u.client.Do(ctx, http.MethodPost, "/calculate-total-cost", u.token, map[string]uint{"product_id": p.ID}, &cost); err != nil {
		return err
	}
	if want := p.ProductPrice + p.DeliveryCost; cost.TotalCost != want {
		return fmt.Errorf("total cost %.2f, want %.2f", cost.TotalCost, want)
	}

	payment := map[string]any{"product_id": p.ID, "payment_mode": p.PaymentMode}
	if _, err := u.client.Do(ctx, http.MethodPost, "/process-payment", u.token, payment, nil); err != nil {
		return err
	}
	record(func(s *Stats) { s.PaymentsOK++ })
	return nil
}

// login retries while the server rate limits the attempt.
func (u *user) login(ctx context.Context) error {
	creds := map[string]string{"email": u.email, "password": smokePassword}
	var lastErr error
	for attempt := 0; attempt < loginAttempts; attempt++ {
		var resp struct {
			AccessToken string `json:"access_token"`
		}
		status, err := u.client.Do(ctx, http.MethodPost, "/login", "", creds, &resp)
		if err == nil {
			u.token = resp.AccessToken
			return nil
		}
		lastErr = err
		if status != http.StatusTooManyRequests {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(loginRetryDelay):
		}
	}
	return lastErr
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var searchesPerSecond float64
	if stats.Duration > 0 {
		searchesPerSecond = float64(stats.SearchesOK) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("usersCreated", stats.UsersCreated),
		logger.Int("searchesOK", stats.SearchesOK),
		logger.Int("searchesFailed", stats.SearchesFailed),
		logger.Int("rankingsVerified", stats.RankingsVerified),
		logger.Int("paymentsOK", stats.PaymentsOK),
		logger.Int("failures", len(stats.Failures)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("searchesPerSecond", searchesPerSecond),
	)
}
