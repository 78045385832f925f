// Package ledger owns the position table and its invariant: each user
// holds at most one position row per currency, and amounts never go
// negative.
//
// Every mutating operation takes a database.Queryable, so the
// settlement engine can compose several ledger operations into one
// shared transaction. Handed a bare connection, each operation commits
// on its own.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/refdata"
)

// BaseCoinName names the currency that denominates all cash balances.
// The base-currency position is seeded at registration and can never
// be deleted while the user exists.
const BaseCoinName = "Tether"

var positionQuery = `select id, user_id, currency_id, amount from crypto_position `

func scanPosition(row database.Row, position *model.Position) error {
	return row.Scan(
		&position.ID,
		&position.UserID,
		&position.CurrencyID,
		&position.Amount,
	)
}

// PositionByID loads a user's position by row ID.
func PositionByID(conn database.Queryable, userID, positionID int) (model.Position, error) {
	var position model.Position
	row := conn.QueryRow(
		positionQuery+"where id = $1 and user_id = $2",
		positionID,
		userID,
	)

	if err := scanPosition(row, &position); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return position, apperror.NotFound("position not found")
		}

		return position, err
	}

	return position, nil
}

// PositionByCurrency loads a user's position in one currency.
func PositionByCurrency(conn database.Queryable, userID, currencyID int) (model.Position, error) {
	var position model.Position
	row := conn.QueryRow(
		positionQuery+"where user_id = $1 and currency_id = $2",
		userID,
		currencyID,
	)

	if err := scanPosition(row, &position); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return position, apperror.NotFound("position not found")
		}

		return position, err
	}

	return position, nil
}

// LoadPositionList loads every position a user holds.
func LoadPositionList(conn database.Queryable, userID int, positionList *[]model.Position) error {
	return model.LoadList(
		conn,
		positionList,
		10,
		scanPosition,
		positionQuery+"where user_id = $1",
		userID,
	)
}

// CreatePosition inserts a new position row and returns it with its
// generated ID. The currency must exist, no position may exist yet for
// the (user, currency) pair, and the amount must be non-negative.
func CreatePosition(
	conn database.Queryable,
	userID int,
	currencyID int,
	amount decimal.Decimal,
) (model.Position, error) {
	position := model.Position{UserID: userID, CurrencyID: currencyID, Amount: amount}

	if amount.IsNegative() {
		return position, apperror.Validation("position amount can't be negative")
	}

	if _, err := refdata.CurrencyByID(conn, currencyID); err != nil {
		return position, err
	}

	var existingID int
	row := conn.QueryRow(
		"select id from crypto_position where user_id = $1 and currency_id = $2",
		userID,
		currencyID,
	)

	if err := row.Scan(&existingID); err == nil {
		return position, apperror.Conflict("position already exists for currency and user")
	} else if !errors.Is(err, database.ErrNoRows) {
		return position, err
	}

	row = conn.QueryRow(
		`insert into crypto_position(user_id, currency_id, amount)
		values ($1, $2, $3)
		returning id`,
		userID,
		currencyID,
		amount,
	)

	if err := row.Scan(&position.ID); err != nil {
		return position, err
	}

	return position, nil
}

// UpdatePosition overwrites the amount of an existing position.
func UpdatePosition(
	conn database.Queryable,
	userID int,
	positionID int,
	amount decimal.Decimal,
) (model.Position, error) {
	var position model.Position

	if amount.IsNegative() {
		return position, apperror.Validation("position amount can't be negative")
	}

	row := conn.QueryRow(
		`update crypto_position
		set amount = $1
		where id = $2 and user_id = $3
		returning id, user_id, currency_id, amount`,
		amount,
		positionID,
		userID,
	)

	if err := scanPosition(row, &position); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return position, apperror.NotFound("position not found")
		}

		return position, err
	}

	return position, nil
}

// DeletePosition removes a position row. The base-currency position
// can never be removed while the user exists.
func DeletePosition(conn database.Queryable, userID, positionID int) error {
	position, err := PositionByID(conn, userID, positionID)

	if err != nil {
		return err
	}

	currency, err := refdata.CurrencyByID(conn, position.CurrencyID)

	if err != nil {
		return err
	}

	if currency.Name == BaseCoinName {
		return apperror.Conflict("can't delete the base currency position")
	}

	affected, err := conn.Exec(
		"delete from crypto_position where id = $1 and user_id = $2",
		positionID,
		userID,
	)

	if err != nil {
		return err
	}

	if affected == 0 {
		return apperror.NotFound("position not found")
	}

	return nil
}
