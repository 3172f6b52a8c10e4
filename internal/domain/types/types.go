// Package types contains the read models returned by the service.
package types

import "time"

// RankedProduct is the flat record returned for one ranked search result.
type RankedProduct struct {
	ProductName   string  `json:"product_name"`
	ProductPrice  float64 `json:"product_price"`
	ProductRating float64 `json:"product_rating"`
	ShopName      string  `json:"shop_name"`
	Rank          int     `json:"rank"`
	MBScore       float64 `json:"mb_score"`
	CBScore       float64 `json:"cb_score"`
}

// Product is a catalog entry as exposed by filtering endpoints.
type Product struct {
	ID            uint      `json:"id"`
	ProductName   string    `json:"product_name"`
	ProductPrice  float64   `json:"product_price"`
	ProductRating float64   `json:"product_rating"`
	NumRatings    int       `json:"num_ratings"`
	DeliveryCost  float64   `json:"delivery_cost"`
	ShopName      string    `json:"shop_name"`
	PaymentMode   string    `json:"payment_mode"`
	ProductURL    string    `json:"product_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchHistoryEntry is one saved query of a user.
type SearchHistoryEntry struct {
	ID          uint      `json:"id"`
	SearchQuery string    `json:"search_query"`
	SearchDate  time.Time `json:"search_date"`
}

// TotalCost is the price breakdown of a product including delivery.
type TotalCost struct {
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	DeliveryCost float64 `json:"delivery_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// PaymentReceipt is the outcome of a simulated payment.
type PaymentReceipt struct {
	Message        string  `json:"message"`
	OrderReference string  `json:"order_reference"`
	ProductName    string  `json:"product_name"`
	ProductPrice   float64 `json:"product_price"`
	PaymentMode    string  `json:"payment_mode"`
}

// User is the public view of an account.
type User struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PriceChange is one recorded price movement of a product.
type PriceChange struct {
	OldPrice   float64   `json:"old_price"`
	NewPrice   float64   `json:"new_price"`
	ChangeDate time.Time `json:"change_date"`
}
