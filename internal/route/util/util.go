// Package util maps engine errors to HTTP responses and adapts
// handlers that need database connections or a logged in user.
package util

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

// StatusForKind maps an error kind to an HTTP status code. The engine
// never sees transport codes; this is the only place they're decided.
func StatusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindInsufficientHoldings:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse turns an engine error into a response. Validation
// violations come back as an issue list, one entry per field problem.
func ErrorResponse(log *zap.SugaredLogger, err error) *lax.Response {
	var violations apperror.Violations

	if errors.As(err, &violations) {
		parts := make([]lax.IssueDescription, len(violations))

		for i, violation := range violations {
			parts[i] = lax.Issue(violation.Field, violation.Problem)
		}

		return lax.MakeErrorListResponse(parts...)
	}

	status := StatusForKind(apperror.KindOf(err))

	if status >= 500 {
		log.Errorw("request failed", "error", err)

		return lax.MakeResponse(status, "Internal Server Error")
	}

	return lax.MakeResponse(status, err.Error())
}

// PathID reads a numeric {id}-style path variable.
func PathID(request *lax.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(request.Request)[name])

	if err != nil || id <= 0 {
		return 0, apperror.Validation("invalid " + name)
	}

	return id, nil
}

// DB adapts a handler that needs a database connection, opening one
// per request and closing it when the handler returns.
func DB(
	application *app.App,
	fn func(conn *database.Conn, request *lax.Request) interface{},
) lax.MethodHandler {
	return func(request *lax.Request) interface{} {
		conn, err := database.Connect(&application.Config.Database)

		if err != nil {
			return ErrorResponse(application.Log, err)
		}

		defer conn.Close()

		return fn(conn, request)
	}
}

// Auth adapts a handler that requires a logged in user on top of DB.
func Auth(
	application *app.App,
	fn func(conn *database.Conn, user *model.User, request *lax.Request) interface{},
) lax.MethodHandler {
	return DB(application, func(conn *database.Conn, request *lax.Request) interface{} {
		var user model.User
		found, err := application.Sessions.LoadUser(conn, request.Request, &user)

		if err != nil {
			return ErrorResponse(application.Log, err)
		}

		if !found {
			return lax.MakeResponse(http.StatusUnauthorized, "login required")
		}

		return fn(conn, &user, request)
	})
}
