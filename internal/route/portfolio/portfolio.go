// Package portfolio implements the position and trade routes.
package portfolio

import (
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/ledger"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/route/util"
	"github.com/dense-analysis/tradewarp/internal/trade"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

func positionListView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		positionList := []model.Position{}

		if err := ledger.LoadPositionList(conn, current.ID, &positionList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return positionList
	})
}

type positionUpdateRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func positionUpdateView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		positionID, err := util.PathID(request, "id")

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		var body positionUpdateRequest

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		position, err := ledger.UpdatePosition(conn, current.ID, positionID, body.Amount)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return position
	})
}

func positionDeleteView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		positionID, err := util.PathID(request, "id")

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		if err := ledger.DeletePosition(conn, current.ID, positionID); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return nil
	})
}

func tradeListView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		tradeList := []model.Trade{}

		if err := trade.LoadTradeList(conn, current.ID, &tradeList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return tradeList
	})
}

func tradeCreateView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		var body trade.Request

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		settled, err := trade.Create(conn, application.Prices, current.ID, body)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return settled
	})
}

func tradeDeleteView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		tradeID, err := util.PathID(request, "id")

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		if err := trade.Delete(conn, current.ID, tradeID); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return nil
	})
}

// Register mounts the position and trade routes on the router.
func Register(router *mux.Router, application *app.App) {
	router.Handle("/positions", lax.Wrap(lax.View{Get: positionListView(application)}))
	router.Handle("/position/{id}", lax.Wrap(lax.View{
		Put:    positionUpdateView(application),
		Delete: positionDeleteView(application),
	}))
	router.Handle("/trades", lax.Wrap(lax.View{Get: tradeListView(application)}))
	router.Handle("/trade", lax.Wrap(lax.View{Post: tradeCreateView(application)}))
	router.Handle("/trade/{id}", lax.Wrap(lax.View{Delete: tradeDeleteView(application)}))
}
