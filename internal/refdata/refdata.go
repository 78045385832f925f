// Package refdata reads the closed reference tables: currencies, trade
// types, trigger types, statuses, and indicators. The core consults
// these before trusting any foreign key supplied in a request; nothing
// here mutates them.
package refdata

import (
	"errors"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
)

var currencyQuery = `select id, ticker, name from crypto_currency `

func scanCurrency(row database.Row, currency *model.Currency) error {
	return row.Scan(&currency.ID, &currency.Ticker, &currency.Name)
}

// LoadCurrencyList loads all available currencies into a list.
func LoadCurrencyList(conn database.Queryable, currencyList *[]model.Currency) error {
	return model.LoadList(
		conn,
		currencyList,
		500,
		scanCurrency,
		currencyQuery+"order by name",
	)
}

// CurrencyByID loads a single currency by ID.
func CurrencyByID(conn database.Queryable, currencyID int) (model.Currency, error) {
	var currency model.Currency
	row := conn.QueryRow(currencyQuery+"where id = $1", currencyID)

	if err := scanCurrency(row, &currency); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return currency, apperror.NotFound("currency not found")
		}

		return currency, err
	}

	return currency, nil
}

// CurrencyByName loads a single currency by its full name.
func CurrencyByName(conn database.Queryable, name string) (model.Currency, error) {
	var currency model.Currency
	row := conn.QueryRow(currencyQuery+"where name = $1", name)

	if err := scanCurrency(row, &currency); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return currency, apperror.NotFound("currency not found")
		}

		return currency, err
	}

	return currency, nil
}

var tradeTypeQuery = `select id, name from crypto_trade_type `

func scanTradeType(row database.Row, tradeType *model.TradeType) error {
	return row.Scan(&tradeType.ID, &tradeType.Name)
}

// LoadTradeTypeList loads the BUY/SELL enumeration.
func LoadTradeTypeList(conn database.Queryable, tradeTypeList *[]model.TradeType) error {
	return model.LoadList(
		conn,
		tradeTypeList,
		2,
		scanTradeType,
		tradeTypeQuery+"order by id",
	)
}

// TradeTypeByID loads a single trade type by ID.
func TradeTypeByID(conn database.Queryable, tradeTypeID int) (model.TradeType, error) {
	var tradeType model.TradeType
	row := conn.QueryRow(tradeTypeQuery+"where id = $1", tradeTypeID)

	if err := scanTradeType(row, &tradeType); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return tradeType, apperror.NotFound("trade type not found")
		}

		return tradeType, err
	}

	return tradeType, nil
}

var triggerTypeQuery = `select id, name from crypto_trigger_type `

func scanTriggerType(row database.Row, triggerType *model.TriggerType) error {
	return row.Scan(&triggerType.ID, &triggerType.Name)
}

// LoadTriggerTypeList loads all trigger types into a list.
func LoadTriggerTypeList(conn database.Queryable, triggerTypeList *[]model.TriggerType) error {
	return model.LoadList(
		conn,
		triggerTypeList,
		10,
		scanTriggerType,
		triggerTypeQuery+"order by id",
	)
}

// TriggerTypeByID loads a single trigger type by ID.
func TriggerTypeByID(conn database.Queryable, triggerTypeID int) (model.TriggerType, error) {
	var triggerType model.TriggerType
	row := conn.QueryRow(triggerTypeQuery+"where id = $1", triggerTypeID)

	if err := scanTriggerType(row, &triggerType); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return triggerType, apperror.NotFound("trigger type not found")
		}

		return triggerType, err
	}

	return triggerType, nil
}

var statusQuery = `select id, name from crypto_status `

func scanStatus(row database.Row, status *model.Status) error {
	return row.Scan(&status.ID, &status.Name)
}

// LoadStatusList loads all user statuses into a list.
func LoadStatusList(conn database.Queryable, statusList *[]model.Status) error {
	return model.LoadList(
		conn,
		statusList,
		2,
		scanStatus,
		statusQuery+"order by id",
	)
}

// StatusByID loads a single status by ID.
func StatusByID(conn database.Queryable, statusID int) (model.Status, error) {
	var status model.Status
	row := conn.QueryRow(statusQuery+"where id = $1", statusID)

	if err := scanStatus(row, &status); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return status, apperror.NotFound("status not found")
		}

		return status, err
	}

	return status, nil
}

// StatusByName loads a single status by name, e.g. "VERIFIED".
func StatusByName(conn database.Queryable, name string) (model.Status, error) {
	var status model.Status
	row := conn.QueryRow(statusQuery+"where name = $1", name)

	if err := scanStatus(row, &status); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return status, apperror.NotFound("status not found")
		}

		return status, err
	}

	return status, nil
}

var indicatorQuery = `select id, name from crypto_indicator `

func scanIndicator(row database.Row, indicator *model.Indicator) error {
	return row.Scan(&indicator.ID, &indicator.Name)
}

// LoadIndicatorList loads all indicators into a list.
func LoadIndicatorList(conn database.Queryable, indicatorList *[]model.Indicator) error {
	return model.LoadList(
		conn,
		indicatorList,
		20,
		scanIndicator,
		indicatorQuery+"order by id",
	)
}

// IndicatorByID loads a single indicator by ID.
func IndicatorByID(conn database.Queryable, indicatorID int) (model.Indicator, error) {
	var indicator model.Indicator
	row := conn.QueryRow(indicatorQuery+"where id = $1", indicatorID)

	if err := scanIndicator(row, &indicator); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return indicator, apperror.NotFound("indicator not found")
		}

		return indicator, err
	}

	return indicator, nil
}
