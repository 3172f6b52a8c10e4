package repository

import "time"

// User is a registered account.
type User struct {
	ID             uint      `gorm:"primaryKey"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email          string    `gorm:"type:varchar(120);uniqueIndex;not null"`
	PasswordHash   string    `gorm:"type:varchar(128);not null"`
	ProfilePicture string    `gorm:"type:varchar(256)"`
	CreatedAt      time.Time
}

// Product is a catalog entry, unique per (product_name, shop_name).
type Product struct {
	ID            uint    `gorm:"primaryKey"`
	ProductName   string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_product_shop"`
	ShopName      string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_shop"`
	ProductPrice  float64 `gorm:"not null"`
	ProductRating float64
	NumRatings    int     `gorm:"not null;default:0"`
	DeliveryCost  float64 `gorm:"not null"`
	PaymentMode   string  `gorm:"type:varchar(50);not null"`
	ProductURL    string  `gorm:"type:varchar(512);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceHistory records a price change observed on re-sighting a product.
type PriceHistory struct {
	ID         uint    `gorm:"primaryKey"`
	ProductID  uint    `gorm:"not null;index"`
	Product    Product `gorm:"constraint:OnDelete:CASCADE"`
	OldPrice   float64 `gorm:"not null"`
	NewPrice   float64 `gorm:"not null"`
	ChangeDate time.Time
}

// TableName keeps the plural-less legacy table name.
func (PriceHistory) TableName() string { return "price_history" }

// RankingRun groups the ranked rows produced by one search.
type RankingRun struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	SearchQuery string    `gorm:"type:varchar(255);not null"`
	Size        int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`

	Entries []RankedProduct `gorm:"foreignKey:RunID"`
}

// RankedProduct is one scored product inside a ranking run.
type RankedProduct struct {
	ID        uint    `gorm:"primaryKey"`
	RunID     string  `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_run_rank"`
	ProductID uint    `gorm:"not null;index"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE"`
	MBScore   float64 `gorm:"column:mb_score;not null"`
	CBScore   float64 `gorm:"column:cb_score;not null"`
	Rank      int     `gorm:"not null;uniqueIndex:idx_run_rank"`
}

// SearchHistory is a query saved for a user.
type SearchHistory struct {
	ID          uint   `gorm:"primaryKey"`
	SearchQuery string `gorm:"type:varchar(255);not null"`
	SearchDate  time.Time
	UserID      uint `gorm:"not null;index"`
	User        User `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the plural-less legacy table name.
func (SearchHistory) TableName() string { return "search_history" }

// FilterPreference stores one sorting preference of a user.
type FilterPreference struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          uint   `gorm:"not null;uniqueIndex:idx_user_pref"`
	PreferenceKey   string `gorm:"type:varchar(32);not null;uniqueIndex:idx_user_pref"`
	PreferenceValue string `gorm:"type:varchar(32);not null"`
	UpdatedAt       time.Time
}

// PasswordReset is a one-time code that lets a user set a new password.
type PasswordReset struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Code      string `gorm:"type:varchar(16);not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func allModels() []any {
	return []any{
		&User{},
		&Product{},
		&PriceHistory{},
		&RankingRun{},
		&RankedProduct{},
		&SearchHistory{},
		&FilterPreference{},
		&PasswordReset{},
	}
}
