// Package strategy manages named trading strategies and their triggers.
//
// A strategy is a user-owned name plus a set of triggers, each pairing
// an indicator with a threshold value and a trigger type. Each
// indicator appears at most once per strategy. Trigger rows are always
// rewritten wholesale with their strategy, inside one transaction.
package strategy

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/refdata"
)

// TriggerRequest is one trigger in a strategy request.
type TriggerRequest struct {
	IndicatorID    int             `json:"indicatorId"`
	IndicatorValue decimal.Decimal `json:"indicatorValue"`
	TriggerTypeID  int             `json:"triggerTypeId"`
}

// Request carries the fields for creating or updating a strategy.
type Request struct {
	Name     string           `json:"name"`
	Triggers []TriggerRequest `json:"triggers"`
}

// Validate reports every field problem in the request at once.
func (request *Request) Validate() error {
	var violations apperror.Violations

	violations = violations.Check(
		len(request.Name) >= 5 && len(request.Name) <= 20,
		"name",
		"must be between 5 and 20 characters",
	)

	seen := map[int]bool{}

	for _, trigger := range request.Triggers {
		if seen[trigger.IndicatorID] {
			violations = violations.Check(
				false,
				"triggers",
				"each indicator can appear at most once",
			)

			break
		}

		seen[trigger.IndicatorID] = true
	}

	return violations.OrNil()
}

var strategyQuery = `select id, name, user_id from crypto_strategy `

func scanStrategy(row database.Row, strategy *model.Strategy) error {
	return row.Scan(&strategy.ID, &strategy.Name, &strategy.UserID)
}

var triggerQuery = `
select id, strategy_id, indicator_id, indicator_value, trigger_type_id
from crypto_trigger `

func scanTrigger(row database.Row, trigger *model.Trigger) error {
	return row.Scan(
		&trigger.ID,
		&trigger.StrategyID,
		&trigger.IndicatorID,
		&trigger.IndicatorValue,
		&trigger.TriggerTypeID,
	)
}

func loadTriggers(conn database.Queryable, strategy *model.Strategy) error {
	return model.LoadList(
		conn,
		&strategy.Triggers,
		5,
		scanTrigger,
		triggerQuery+"where strategy_id = $1 order by id",
		strategy.ID,
	)
}

// StrategyByID loads a user's strategy with its triggers.
func StrategyByID(conn database.Queryable, userID, strategyID int) (model.Strategy, error) {
	var strategy model.Strategy
	row := conn.QueryRow(
		strategyQuery+"where id = $1 and user_id = $2",
		strategyID,
		userID,
	)

	if err := scanStrategy(row, &strategy); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return strategy, apperror.NotFound("strategy not found")
		}

		return strategy, err
	}

	if err := loadTriggers(conn, &strategy); err != nil {
		return strategy, err
	}

	return strategy, nil
}

// LoadStrategyList loads every strategy a user owns, triggers included.
func LoadStrategyList(conn database.Queryable, userID int, strategyList *[]model.Strategy) error {
	if err := model.LoadList(
		conn,
		strategyList,
		10,
		scanStrategy,
		strategyQuery+"where user_id = $1 order by id",
		userID,
	); err != nil {
		return err
	}

	for i := range *strategyList {
		if err := loadTriggers(conn, &(*strategyList)[i]); err != nil {
			return err
		}
	}

	return nil
}

func nameTaken(conn database.Queryable, userID int, name string, excludeStrategyID int) (bool, error) {
	var id int
	row := conn.QueryRow(
		"select id from crypto_strategy where user_id = $1 and name = $2 and id != $3",
		userID,
		name,
		excludeStrategyID,
	)

	if err := row.Scan(&id); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func checkTriggerReferences(conn database.Queryable, triggers []TriggerRequest) error {
	for _, trigger := range triggers {
		if _, err := refdata.IndicatorByID(conn, trigger.IndicatorID); err != nil {
			return err
		}

		if _, err := refdata.TriggerTypeByID(conn, trigger.TriggerTypeID); err != nil {
			return err
		}
	}

	return nil
}

func insertTriggers(tx database.Queryable, strategy *model.Strategy, triggers []TriggerRequest) error {
	strategy.Triggers = make([]model.Trigger, 0, len(triggers))

	for _, request := range triggers {
		trigger := model.Trigger{
			StrategyID:     strategy.ID,
			IndicatorID:    request.IndicatorID,
			IndicatorValue: request.IndicatorValue,
			TriggerTypeID:  request.TriggerTypeID,
		}
		row := tx.QueryRow(
			`insert into crypto_trigger(strategy_id, indicator_id, indicator_value, trigger_type_id)
			values ($1, $2, $3, $4)
			returning id`,
			trigger.StrategyID,
			trigger.IndicatorID,
			trigger.IndicatorValue,
			trigger.TriggerTypeID,
		)

		if err := row.Scan(&trigger.ID); err != nil {
			return err
		}

		strategy.Triggers = append(strategy.Triggers, trigger)
	}

	return nil
}

// Create stores a new strategy and its triggers.
func Create(conn database.Transactor, userID int, request Request) (model.Strategy, error) {
	strategy := model.Strategy{Name: request.Name, UserID: userID}

	if err := request.Validate(); err != nil {
		return strategy, err
	}

	if taken, err := nameTaken(conn, userID, request.Name, 0); err != nil {
		return strategy, err
	} else if taken {
		return strategy, apperror.Conflict("strategy name already exists")
	}

	if err := checkTriggerReferences(conn, request.Triggers); err != nil {
		return strategy, err
	}

	err := conn.WithTransaction(func(tx database.Queryable) error {
		row := tx.QueryRow(
			"insert into crypto_strategy(name, user_id) values ($1, $2) returning id",
			strategy.Name,
			strategy.UserID,
		)

		if err := row.Scan(&strategy.ID); err != nil {
			return err
		}

		return insertTriggers(tx, &strategy, request.Triggers)
	})

	if err != nil {
		return model.Strategy{}, err
	}

	return strategy, nil
}

// Update renames a strategy and replaces its full set of triggers.
func Update(conn database.Transactor, userID, strategyID int, request Request) (model.Strategy, error) {
	var strategy model.Strategy

	if err := request.Validate(); err != nil {
		return strategy, err
	}

	if _, err := StrategyByID(conn, userID, strategyID); err != nil {
		return strategy, err
	}

	if taken, err := nameTaken(conn, userID, request.Name, strategyID); err != nil {
		return strategy, err
	} else if taken {
		return strategy, apperror.Conflict("strategy name already exists")
	}

	if err := checkTriggerReferences(conn, request.Triggers); err != nil {
		return strategy, err
	}

	strategy.ID = strategyID
	strategy.Name = request.Name
	strategy.UserID = userID

	err := conn.WithTransaction(func(tx database.Queryable) error {
		if _, err := tx.Exec(
			"update crypto_strategy set name = $1 where id = $2 and user_id = $3",
			strategy.Name,
			strategy.ID,
			strategy.UserID,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(
			"delete from crypto_trigger where strategy_id = $1",
			strategy.ID,
		); err != nil {
			return err
		}

		return insertTriggers(tx, &strategy, request.Triggers)
	})

	if err != nil {
		return model.Strategy{}, err
	}

	return strategy, nil
}

// Delete removes a strategy and its triggers in one transaction.
func Delete(conn database.Transactor, userID, strategyID int) error {
	return conn.WithTransaction(func(tx database.Queryable) error {
		if _, err := tx.Exec(
			"delete from crypto_trigger where strategy_id = $1",
			strategyID,
		); err != nil {
			return err
		}

		affected, err := tx.Exec(
			"delete from crypto_strategy where id = $1 and user_id = $2",
			strategyID,
			userID,
		)

		if err != nil {
			return err
		}

		if affected == 0 {
			return apperror.NotFound("strategy not found")
		}

		return nil
	})
}
