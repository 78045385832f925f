// Package strategy implements the strategy routes.
package strategy

import (
	"github.com/gorilla/mux"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/route/util"
	"github.com/dense-analysis/tradewarp/internal/strategy"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

func listView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		strategyList := []model.Strategy{}

		if err := strategy.LoadStrategyList(conn, current.ID, &strategyList); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return strategyList
	})
}

func createView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		var body strategy.Request

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		created, err := strategy.Create(conn, current.ID, body)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return created
	})
}

func updateView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		strategyID, err := util.PathID(request, "id")

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		var body strategy.Request

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		updated, err := strategy.Update(conn, current.ID, strategyID, body)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return updated
	})
}

func deleteView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		strategyID, err := util.PathID(request, "id")

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		if err := strategy.Delete(conn, current.ID, strategyID); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return nil
	})
}

// Register mounts the strategy routes on the router.
func Register(router *mux.Router, application *app.App) {
	router.Handle("/strategies", lax.Wrap(lax.View{Get: listView(application)}))
	router.Handle("/strategy", lax.Wrap(lax.View{Post: createView(application)}))
	router.Handle("/strategy/{id}", lax.Wrap(lax.View{
		Put:    updateView(application),
		Delete: deleteView(application),
	}))
}
