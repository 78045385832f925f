// Package trade implements the trade settlement engine: it prices the
// traded currency, validates funds and holdings, and atomically applies
// the position deltas together with the immutable trade record.
package trade

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/ledger"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/refdata"
)

// PriceSource resolves a currency name to its current spot price in
// the base currency.
type PriceSource interface {
	SpotPrice(name string) (decimal.Decimal, error)
}

const (
	buyKind  = "BUY"
	sellKind = "SELL"
)

var minUSDAmount = decimal.NewFromInt(10)
var maxUSDAmount = decimal.NewFromInt(100000)

// Request is a trade order: spend or receive Amount base-currency
// units of the given currency.
type Request struct {
	CurrencyID  int             `json:"currencyId"`
	Amount      decimal.Decimal `json:"amount"`
	TradeTypeID int             `json:"tradeTypeId"`
}

// Validate reports every shape problem with the request. It never
// touches the store.
func (request *Request) Validate() error {
	var violations apperror.Violations

	violations = violations.Check(request.CurrencyID > 0, "currencyId", "must be a positive ID")
	violations = violations.Check(request.TradeTypeID > 0, "tradeTypeId", "must be a positive ID")
	violations = violations.Check(
		!request.Amount.LessThan(minUSDAmount) && !request.Amount.GreaterThan(maxUSDAmount),
		"amount",
		"must be between 10 and 100000 USD",
	)

	return violations.OrNil()
}

var tradeQuery = `select id, user_id, currency_id, trade_time, amount, trade_type_id from crypto_trade `

func scanTrade(row database.Row, trade *model.Trade) error {
	return row.Scan(
		&trade.ID,
		&trade.UserID,
		&trade.CurrencyID,
		&trade.TradeTime,
		&trade.Amount,
		&trade.TradeTypeID,
	)
}

// TradeByID loads a user's trade by row ID.
func TradeByID(conn database.Queryable, userID, tradeID int) (model.Trade, error) {
	var trade model.Trade
	row := conn.QueryRow(tradeQuery+"where id = $1 and user_id = $2", tradeID, userID)

	if err := scanTrade(row, &trade); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return trade, apperror.NotFound("trade not found")
		}

		return trade, err
	}

	return trade, nil
}

// LoadTradeList loads a user's trade history, newest first.
func LoadTradeList(conn database.Queryable, userID int, tradeList *[]model.Trade) error {
	return model.LoadList(
		conn,
		tradeList,
		20,
		scanTrade,
		tradeQuery+"where user_id = $1 order by trade_time desc",
		userID,
	)
}

// Create settles one trade for a user.
//
// Replaying an identical request settles again: trades are not
// deduplicated by payload. Any failure rolls back every position
// mutation along with the trade insert.
func Create(
	conn database.Transactor,
	prices PriceSource,
	userID int,
	request Request,
) (model.Trade, error) {
	var trade model.Trade

	if err := request.Validate(); err != nil {
		return trade, err
	}

	currency, err := refdata.CurrencyByID(conn, request.CurrencyID)

	if err != nil {
		return trade, err
	}

	tradeType, err := refdata.TradeTypeByID(conn, request.TradeTypeID)

	if err != nil {
		return trade, err
	}

	if tradeType.Name != buyKind && tradeType.Name != sellKind {
		return trade, apperror.Validation("unsupported trade type: " + tradeType.Name)
	}

	baseCurrency, err := refdata.CurrencyByName(conn, ledger.BaseCoinName)

	if err != nil {
		return trade, err
	}

	err = conn.WithTransaction(func(tx database.Queryable) error {
		basePosition, err := ledger.PositionByCurrency(tx, userID, baseCurrency.ID)

		if err != nil {
			return err
		}

		var assetPosition *model.Position
		position, err := ledger.PositionByCurrency(tx, userID, currency.ID)

		if err == nil {
			assetPosition = &position
		} else if apperror.KindOf(err) != apperror.KindNotFound {
			return err
		}

		spotPrice, err := prices.SpotPrice(currency.Name)

		if err != nil {
			return err
		}

		if !spotPrice.IsPositive() {
			return apperror.Infrastructure("price source returned a non-positive price", nil)
		}

		var plan settlement

		if tradeType.Name == buyKind {
			plan, err = planBuy(basePosition, assetPosition, spotPrice, request.Amount)
		} else {
			plan, err = planSell(basePosition, assetPosition, spotPrice, request.Amount)
		}

		if err != nil {
			return err
		}

		if err := applyPlan(tx, userID, currency.ID, basePosition, assetPosition, plan); err != nil {
			return err
		}

		row := tx.QueryRow(
			`insert into crypto_trade(user_id, currency_id, trade_time, amount, trade_type_id)
			values ($1, $2, now(), $3, $4)
			returning id, trade_time`,
			userID,
			currency.ID,
			request.Amount,
			tradeType.ID,
		)

		if err := row.Scan(&trade.ID, &trade.TradeTime); err != nil {
			return err
		}

		trade.UserID = userID
		trade.CurrencyID = currency.ID
		trade.Amount = request.Amount
		trade.TradeTypeID = tradeType.ID

		return nil
	})

	if err != nil {
		return model.Trade{}, err
	}

	return trade, nil
}

func applyPlan(
	tx database.Queryable,
	userID int,
	currencyID int,
	basePosition model.Position,
	assetPosition *model.Position,
	plan settlement,
) error {
	switch {
	case plan.createAsset:
		if _, err := ledger.CreatePosition(tx, userID, currencyID, plan.assetAmount); err != nil {
			return err
		}
	case plan.deleteAsset:
		if err := ledger.DeletePosition(tx, userID, assetPosition.ID); err != nil {
			return err
		}
	default:
		if _, err := ledger.UpdatePosition(tx, userID, assetPosition.ID, plan.assetAmount); err != nil {
			return err
		}
	}

	_, err := ledger.UpdatePosition(tx, userID, basePosition.ID, plan.baseAmount)

	return err
}

// Delete removes a trade record from the user's history.
func Delete(conn database.Queryable, userID, tradeID int) error {
	affected, err := conn.Exec(
		"delete from crypto_trade where id = $1 and user_id = $2",
		tradeID,
		userID,
	)

	if err != nil {
		return err
	}

	if affected == 0 {
		return apperror.NotFound("trade not found")
	}

	return nil
}
