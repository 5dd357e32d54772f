package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is one recorded income or expense event. Rows are created once
// and never updated in place.
type Transaction struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Amount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Type     TransactionType `gorm:"not null" json:"type"`
	Category string          `gorm:"not null" json:"category"`
	Date     time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Notes    string          `json:"notes"`
}

// DateKey returns the calendar date of the transaction as YYYY-MM-DD.
func (t *Transaction) DateKey() string {
	return t.Date.UTC().Format(DateLayout)
}

// AmountScale is the number of decimal places amount columns store.
const AmountScale = 4

// FitsAmountScale reports whether d can be stored without rounding.
func FitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// DateLayout is the wire and bucketing format for calendar dates.
const DateLayout = "2006-01-02"
