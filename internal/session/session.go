// Package session handles saving/loading users to/from sessions.
package session

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/model"
)

const sessionName = "sessionid"

// Store signs session cookies and resolves them back to users.
type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(secretKey string) *Store {
	return &Store{cookies: sessions.NewCookieStore([]byte(secretKey))}
}

// LoadUser loads the logged in user for a request, returning false when
// the session holds no valid user. A stale user ID in a signed cookie
// counts as logged out, not as an error.
func (store *Store) LoadUser(conn database.Queryable, request *http.Request, user *model.User) (bool, error) {
	session, err := store.cookies.Get(request, sessionName)

	if err != nil {
		return false, nil
	}

	userID, ok := session.Values["userID"].(int)

	if !ok {
		return false, nil
	}

	row := conn.QueryRow(
		"select id, username, email, date_created, status_id from crypto_user where id = $1",
		userID,
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DateCreated,
		&user.StatusID,
	); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// SaveUser records the user's ID in the session cookie.
func (store *Store) SaveUser(writer http.ResponseWriter, request *http.Request, user *model.User) error {
	session, _ := store.cookies.Get(request, sessionName)
	session.Values["userID"] = user.ID

	return session.Save(request, writer)
}

// Clear wipes the session, logging the user out.
func (store *Store) Clear(writer http.ResponseWriter, request *http.Request) error {
	session, _ := store.cookies.Get(request, sessionName)

	for key := range session.Values {
		delete(session.Values, key)
	}

	return session.Save(request, writer)
}
