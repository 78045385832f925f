// Package user implements registration, verification, authentication,
// and account maintenance.
package user

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/ledger"
	"github.com/dense-analysis/tradewarp/internal/mail"
	"github.com/dense-analysis/tradewarp/internal/model"
	"github.com/dense-analysis/tradewarp/internal/refdata"
	"github.com/dense-analysis/tradewarp/internal/token"
)

// User status names, as seeded in crypto_status.
const (
	StatusUnverified = "UNVERIFIED"
	StatusVerified   = "VERIFIED"
)

// Every new account starts with this much of the base currency.
var initialBalance = decimal.NewFromInt(1000)

var userQuery = `
select id, username, email, date_created, status_id, password, salt
from crypto_user `

func scanUser(row database.Row, user *model.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DateCreated,
		&user.StatusID,
		&user.Password,
		&user.Salt,
	)
}

// UserByID loads a user by ID.
func UserByID(conn database.Queryable, userID int) (model.User, error) {
	var user model.User
	row := conn.QueryRow(userQuery+"where id = $1", userID)

	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user, apperror.NotFound("user not found")
		}

		return user, err
	}

	return user, nil
}

// UserByUsername loads a user by username.
func UserByUsername(conn database.Queryable, username string) (model.User, error) {
	var user model.User
	row := conn.QueryRow(userQuery+"where username = $1", username)

	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user, apperror.NotFound("user not found")
		}

		return user, err
	}

	return user, nil
}

// Request carries the fields for creating or updating an account.
type Request struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Validate reports every field problem in the request at once.
func (request *Request) Validate() error {
	var violations apperror.Violations

	violations = violations.Check(
		len(request.Username) >= 5 && len(request.Username) <= 15,
		"username",
		"must be between 5 and 15 characters",
	)
	violations = violations.Check(
		len(request.Password) >= 7 && len(request.Password) <= 25,
		"password",
		"must be between 7 and 25 characters",
	)
	violations = violations.Check(
		len(request.Email) >= 10 && len(request.Email) <= 30,
		"email",
		"must be between 10 and 30 characters",
	)

	return violations.OrNil()
}

func newSalt() (string, error) {
	buffer := make([]byte, 32)

	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buffer), nil
}

func hashPassword(password, salt string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password+salt), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func checkPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword(
		[]byte(user.Password),
		[]byte(password+user.Salt),
	) == nil
}

func usernameTaken(conn database.Queryable, username string, excludeUserID int) (bool, error) {
	var id int
	row := conn.QueryRow(
		"select id from crypto_user where username = $1 and id != $2",
		username,
		excludeUserID,
	)

	if err := row.Scan(&id); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func emailTaken(conn database.Queryable, email string, excludeUserID int) (bool, error) {
	var id int
	row := conn.QueryRow(
		"select id from crypto_user where email = $1 and id != $2",
		email,
		excludeUserID,
	)

	if err := row.Scan(&id); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// create runs the shared registration flow: validation, uniqueness
// checks, hashing, and the transactional insert with the seeded base
// currency position. afterInsert runs inside the same transaction.
func create(
	conn database.Transactor,
	request Request,
	statusName string,
	afterInsert func(tx database.Queryable, user *model.User) error,
) (model.User, error) {
	var user model.User

	if err := request.Validate(); err != nil {
		return user, err
	}

	if taken, err := usernameTaken(conn, request.Username, 0); err != nil {
		return user, err
	} else if taken {
		return user, apperror.Conflict("username already exists")
	}

	if taken, err := emailTaken(conn, request.Email, 0); err != nil {
		return user, err
	} else if taken {
		return user, apperror.Conflict("email already exists")
	}

	status, err := refdata.StatusByName(conn, statusName)

	if err != nil {
		return user, err
	}

	salt, err := newSalt()

	if err != nil {
		return user, err
	}

	passwordHash, err := hashPassword(request.Password, salt)

	if err != nil {
		return user, err
	}

	user.Username = request.Username
	user.Email = request.Email
	user.StatusID = status.ID
	user.Password = passwordHash
	user.Salt = salt

	err = conn.WithTransaction(func(tx database.Queryable) error {
		row := tx.QueryRow(
			`insert into crypto_user(username, email, password, salt, status_id, date_created)
			values ($1, $2, $3, $4, $5, now())
			returning id, date_created`,
			user.Username,
			user.Email,
			user.Password,
			user.Salt,
			user.StatusID,
		)

		if err := row.Scan(&user.ID, &user.DateCreated); err != nil {
			// The pre-checks race with concurrent registrations; the
			// unique constraints are the authority.
			if database.IsUniqueViolation(err) {
				return apperror.Conflict("username or email already exists")
			}

			return err
		}

		baseCurrency, err := refdata.CurrencyByName(tx, ledger.BaseCoinName)

		if err != nil {
			return err
		}

		if _, err := ledger.CreatePosition(tx, user.ID, baseCurrency.ID, initialBalance); err != nil {
			return err
		}

		if afterInsert != nil {
			return afterInsert(tx, &user)
		}

		return nil
	})

	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

// Create registers a new account, seeds its base currency position, and
// mails out a verification link. The insert, the seed position, and the
// mail dispatch commit or fail as one unit.
func Create(
	conn database.Transactor,
	mailer mail.Mailer,
	tokens *token.Codec,
	request Request,
) (model.User, error) {
	return create(conn, request, StatusUnverified, func(tx database.Queryable, user *model.User) error {
		tokenString, err := tokens.Encrypt(user.Username)

		if err != nil {
			return err
		}

		return mailer.SendVerification(user.Email, tokenString)
	})
}

// Provision creates an account that is already verified, with no mail
// sent. The adduser command uses this to bootstrap accounts locally.
func Provision(conn database.Transactor, request Request) (model.User, error) {
	return create(conn, request, StatusVerified, nil)
}

// Authenticate checks a username and password pair and returns the
// matching user. Unknown usernames and bad passwords produce the same
// error, and unverified accounts can't log in.
func Authenticate(conn database.Queryable, username, password string) (model.User, error) {
	invalid := apperror.Unauthorized("invalid username or password")
	user, err := UserByUsername(conn, username)

	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return model.User{}, invalid
		}

		return model.User{}, err
	}

	if !checkPassword(&user, password) {
		return model.User{}, invalid
	}

	status, err := refdata.StatusByID(conn, user.StatusID)

	if err != nil {
		return model.User{}, err
	}

	if status.Name != StatusVerified {
		return model.User{}, apperror.Unauthorized("account not verified")
	}

	return user, nil
}

// Verify marks the account named in a verification token as verified.
func Verify(conn database.Queryable, tokens *token.Codec, tokenString string) error {
	username, err := tokens.Decrypt(tokenString)

	if err != nil {
		return err
	}

	user, err := UserByUsername(conn, username)

	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("invalid verification token")
		}

		return err
	}

	status, err := refdata.StatusByID(conn, user.StatusID)

	if err != nil {
		return err
	}

	if status.Name != StatusUnverified {
		return apperror.Validation("account already verified")
	}

	verified, err := refdata.StatusByName(conn, StatusVerified)

	if err != nil {
		return err
	}

	_, err = conn.Exec(
		"update crypto_user set status_id = $1 where id = $2",
		verified.ID,
		user.ID,
	)

	return err
}

// Update replaces a user's username, password, and email.
func Update(conn database.Queryable, userID int, request Request) (model.User, error) {
	var user model.User

	if err := request.Validate(); err != nil {
		return user, err
	}

	if taken, err := usernameTaken(conn, request.Username, userID); err != nil {
		return user, err
	} else if taken {
		return user, apperror.Conflict("username already exists")
	}

	if taken, err := emailTaken(conn, request.Email, userID); err != nil {
		return user, err
	} else if taken {
		return user, apperror.Conflict("email already exists")
	}

	salt, err := newSalt()

	if err != nil {
		return user, err
	}

	passwordHash, err := hashPassword(request.Password, salt)

	if err != nil {
		return user, err
	}

	row := conn.QueryRow(
		`update crypto_user
		set username = $1, email = $2, password = $3, salt = $4
		where id = $5
		returning id, username, email, date_created, status_id, password, salt`,
		request.Username,
		request.Email,
		passwordHash,
		salt,
		userID,
	)

	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user, apperror.NotFound("user not found")
		}

		if database.IsUniqueViolation(err) {
			return user, apperror.Conflict("username or email already exists")
		}

		return user, err
	}

	return user, nil
}

// Delete removes a user and everything they own: triggers, strategies,
// positions, and trades all go in the same transaction.
func Delete(conn database.Transactor, userID int) error {
	return conn.WithTransaction(func(tx database.Queryable) error {
		if _, err := tx.Exec(
			`delete from crypto_trigger
			where strategy_id in (select id from crypto_strategy where user_id = $1)`,
			userID,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(
			"delete from crypto_strategy where user_id = $1",
			userID,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(
			"delete from crypto_position where user_id = $1",
			userID,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(
			"delete from crypto_trade where user_id = $1",
			userID,
		); err != nil {
			return err
		}

		affected, err := tx.Exec("delete from crypto_user where id = $1", userID)

		if err != nil {
			return err
		}

		if affected == 0 {
			return apperror.NotFound("user not found")
		}

		return nil
	})
}
