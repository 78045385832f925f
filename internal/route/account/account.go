// Package account implements registration and account maintenance.
package account

import (
	"github.com/gorilla/mux"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/route/util"
	"github.com/dense-analysis/tradewarp/internal/user"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

func registerView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		var body user.Request

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		created, err := user.Create(conn, application.Mailer, application.Tokens, body)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return created
	})
}

func detailView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		return current
	})
}

func updateView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		var body user.Request

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		updated, err := user.Update(conn, current.ID, body)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return updated
	})
}

func deleteView(application *app.App) lax.MethodHandler {
	return util.Auth(application, func(conn *database.Conn, current *model.User, request *lax.Request) interface{} {
		if err := user.Delete(conn, current.ID); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		// The account is gone, so the session must go with it.
		if err := application.Sessions.Clear(request.Writer, request.Request); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return nil
	})
}

// Register mounts the account routes on the router.
func Register(router *mux.Router, application *app.App) {
	router.Handle("/user", lax.Wrap(lax.View{
		Post:   registerView(application),
		Get:    detailView(application),
		Put:    updateView(application),
		Delete: deleteView(application),
	}))
}
