// Package smoke drives a running pricewise server through its public API
// with concurrent simulated users and checks the responses.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Users    int           // Number of accounts to create
	Searches int           // Searches per user
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every step
}

// RankedProduct mirrors one /search result.
type RankedProduct struct {
	ProductName   string  `json:"product_name"`
	ProductPrice  float64 `json:"product_price"`
	ProductRating float64 `json:"product_rating"`
	ShopName      string  `json:"shop_name"`
	Rank          int     `json:"rank"`
	MBScore       float64 `json:"mb_score"`
	CBScore       float64 `json:"cb_score"`
}

// Product mirrors one /apply-filters entry.
type Product struct {
	ID            uint    `json:"id"`
	ProductName   string  `json:"product_name"`
	ProductPrice  float64 `json:"product_price"`
	ProductRating float64 `json:"product_rating"`
	ShopName      string  `json:"shop_name"`
	PaymentMode   string  `json:"payment_mode"`
	DeliveryCost  float64 `json:"delivery_cost"`
}

// Stats holds run statistics.
type Stats struct {
	UsersCreated     int
	SearchesOK       int
	SearchesFailed   int
	RankingsVerified int
	PaymentsOK       int
	Failures         []string
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
