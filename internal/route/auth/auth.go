// Package auth implements login, logout, and account verification.
package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/route/util"
	"github.com/dense-analysis/tradewarp/internal/user"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func loginView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		var body loginRequest

		if err := request.JSON(&body); err != nil {
			return lax.MakeBadRequestResponse(err)
		}

		loggedIn, err := user.Authenticate(conn, body.Username, body.Password)

		if err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		if err := application.Sessions.SaveUser(request.Writer, request.Request, &loggedIn); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return lax.MakeResponse(http.StatusOK, loggedIn)
	})
}

func logoutView(application *app.App) lax.MethodHandler {
	return func(request *lax.Request) interface{} {
		if err := application.Sessions.Clear(request.Writer, request.Request); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return lax.MakeResponse(http.StatusNoContent, nil)
	}
}

func verifyView(application *app.App) lax.MethodHandler {
	return util.DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		tokenString := mux.Vars(request.Request)["token"]

		if err := user.Verify(conn, application.Tokens, tokenString); err != nil {
			return util.ErrorResponse(application.Log, err)
		}

		return "account verified"
	})
}

// Register mounts the auth routes on the router.
func Register(router *mux.Router, application *app.App) {
	router.Handle("/login", lax.Wrap(lax.View{Post: loginView(application)}))
	router.Handle("/logout", lax.Wrap(lax.View{Post: logoutView(application)}))
	router.Handle("/validate/{token}", lax.Wrap(lax.View{Get: verifyView(application)}))
}
