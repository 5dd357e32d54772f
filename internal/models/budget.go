package models

import "github.com/shopspring/decimal"

// Budget is a spending target for one category. Several rows may exist for
// the same category; how they combine is decided by the report policy.
type Budget struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index:idx_budgets_user_category,priority:1" json:"user_id"`
	Category string          `gorm:"not null;index:idx_budgets_user_category,priority:2" json:"category"`
	Amount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}
