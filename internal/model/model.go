package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the database.
//
// Password holds the bcrypt hash of the password plus salt; it and the
// salt never leave the process in responses.
type User struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DateCreated time.Time `json:"dateCreated"`
	StatusID    int       `json:"statusId"`
	Password    string    `json:"-"`
	Salt        string    `json:"-"`
}

// Currency represents a currency in the database.
type Currency struct {
	ID     int    `json:"id"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Position represents a user's holding of a single currency.
//
// At most one position row exists per (user, currency) pair.
type Position struct {
	ID         int             `json:"id"`
	UserID     int             `json:"userId"`
	CurrencyID int             `json:"currencyId"`
	Amount     decimal.Decimal `json:"amount"`
}

// Trade is one settled trade, denominated in the base currency.
// Trade rows are append-only.
type Trade struct {
	ID          int             `json:"id"`
	UserID      int             `json:"userId"`
	CurrencyID  int             `json:"currencyId"`
	TradeTime   time.Time       `json:"tradeTime"`
	Amount      decimal.Decimal `json:"amount"`
	TradeTypeID int             `json:"tradeTypeId"`
}

// TradeType is a closed enumeration: BUY or SELL.
type TradeType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TriggerType is a closed enumeration of strategy trigger kinds.
type TriggerType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Status is a closed enumeration of user statuses.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Indicator is a closed enumeration of strategy indicators.
type Indicator struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Strategy is a named set of triggers owned by a user.
type Strategy struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	UserID   int       `json:"userId"`
	Triggers []Trigger `json:"triggers"`
}

// Trigger fires a strategy when an indicator crosses a value.
type Trigger struct {
	ID             int             `json:"id"`
	StrategyID     int             `json:"strategyId"`
	IndicatorID    int             `json:"indicatorId"`
	IndicatorValue decimal.Decimal `json:"indicatorValue"`
	TriggerTypeID  int             `json:"triggerTypeId"`
}
