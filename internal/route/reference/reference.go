// Package reference exposes the read-only reference tables.
package reference

import (
	"github.com/gorilla/mux"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/refdata"
	"github.com/dense-analysis/tradewarp/internal/route/util"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

func currencyListView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		currencyList := []model.Currency{}

		if err := refdata.LoadCurrencyList(conn, &currencyList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return currencyList
	})
}

func tradeTypeListView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		tradeTypeList := []model.TradeType{}

		if err := refdata.LoadTradeTypeList(conn, &tradeTypeList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return tradeTypeList
	})
}

func triggerTypeListView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		triggerTypeList := []model.TriggerType{}

		if err := refdata.LoadTriggerTypeList(conn, &triggerTypeList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return triggerTypeList
	})
}

func statusListView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		statusList := []model.Status{}

		if err := refdata.LoadStatusList(conn, &statusList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return statusList
	})
}

func indicatorListView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		indicatorList := []model.Indicator{}

		if err := refdata.LoadIndicatorList(conn, &indicatorList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return indicatorList
	})
}

// Register mounts the reference data routes on the router.
func Register(router *mux.Router, application *app.App) {
	router.Handle("/cryptos", lax.Wrap(lax.View{Get: currencyListView(application)}))
	router.Handle("/trade-types", lax.Wrap(lax.View{Get: tradeTypeListView(application)}))
	router.Handle("/trigger-types", lax.Wrap(lax.View{Get: triggerTypeListView(application)}))
	router.Handle("/statuses", lax.Wrap(lax.View{Get: statusListView(application)}))
	router.Handle("/indicators", lax.Wrap(lax.View{Get: indicatorListView(application)}))
}
