package user

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/database"
	"github.com/dense-analysis/tradewarp/internal/token"
)

// step scripts the response for one statement the code under test is
// expected to run, matched by an SQL substring.
type step struct {
	wantSQL  string
	values   []any
	err      error
	affected int64
}

type fakeRow struct {
	values []any
	err    error
}

func (row *fakeRow) Scan(dest ...any) error {
	if row.err != nil {
		return row.err
	}

	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(row.values[i]))
	}

	return nil
}

type fakeRows struct {
	rows  []*fakeRow
	index int
}

func (rows *fakeRows) Next() bool {
	return rows.index < len(rows.rows)
}

func (rows *fakeRows) Scan(dest ...any) error {
	row := rows.rows[rows.index]
	rows.index++

	return row.Scan(dest...)
}

func (rows *fakeRows) Close() {}

func (rows *fakeRows) Err() error {
	return nil
}

type fakeConn struct {
	t          *testing.T
	steps      []step
	committed  bool
	rolledBack bool
}

func (conn *fakeConn) next(sql string) step {
	require.NotEmpty(conn.t, conn.steps, "unexpected statement: %s", sql)
	current := conn.steps[0]
	conn.steps = conn.steps[1:]
	require.Contains(conn.t, sql, current.wantSQL)

	return current
}

func (conn *fakeConn) Exec(sql string, arguments ...any) (int64, error) {
	current := conn.next(sql)

	return current.affected, current.err
}

func (conn *fakeConn) Query(sql string, arguments ...any) (database.Rows, error) {
	current := conn.next(sql)

	if current.err != nil {
		return nil, current.err
	}

	rows := &fakeRows{}

	if current.values != nil {
		rows.rows = append(rows.rows, &fakeRow{values: current.values})
	}

	return rows, nil
}

func (conn *fakeConn) QueryRow(sql string, arguments ...any) database.Row {
	current := conn.next(sql)

	return &fakeRow{values: current.values, err: current.err}
}

func (conn *fakeConn) WithTransaction(fn func(tx database.Queryable) error) error {
	if err := fn(conn); err != nil {
		conn.rolledBack = true

		return err
	}

	conn.committed = true

	return nil
}

func (conn *fakeConn) done() {
	assert.Empty(conn.t, conn.steps, "scripted statements left unexecuted")
}

type fakeMailer struct {
	address string
	token   string
	err     error
}

func (mailer *fakeMailer) SendVerification(address, tokenString string) error {
	if mailer.err != nil {
		return mailer.err
	}

	mailer.address = address
	mailer.token = tokenString

	return nil
}

func registrationSteps() []step {
	return []step{
		{wantSQL: "select id from crypto_user where username = $1", err: database.ErrNoRows},
		{wantSQL: "select id from crypto_user where email = $1", err: database.ErrNoRows},
		{wantSQL: "from crypto_status where name = $1", values: []any{1, StatusUnverified}},
		{wantSQL: "insert into crypto_user", values: []any{5, time.Now()}},
		// ledger.CreatePosition seeds the base currency holding.
		{wantSQL: "from crypto_currency where name = $1", values: []any{1, "USDT", "Tether"}},
		{wantSQL: "from crypto_currency where id = $1", values: []any{1, "USDT", "Tether"}},
		{wantSQL: "select id from crypto_position", err: database.ErrNoRows},
		{wantSQL: "insert into crypto_position", values: []any{9}},
	}
}

var testRequest = Request{
	Username: "w0rpl",
	Password: "hunter22",
	Email:    "w0rp@example.com",
}

func TestCreateSeedsPositionAndSendsMail(t *testing.T) {
	conn := &fakeConn{t: t, steps: registrationSteps()}
	mailer := &fakeMailer{}
	tokens := token.NewCodec("test-secret")

	created, err := Create(conn, mailer, tokens, testRequest)
	require.NoError(t, err)
	conn.done()

	assert.True(t, conn.committed)
	assert.Equal(t, 5, created.ID)
	assert.Equal(t, 1, created.StatusID)
	assert.Equal(t, "w0rp@example.com", mailer.address)

	// The mailed token must resolve back to the new username.
	username, err := tokens.Decrypt(mailer.token)
	require.NoError(t, err)
	assert.Equal(t, "w0rpl", username)
}

func TestCreateRollsBackWhenMailFails(t *testing.T) {
	conn := &fakeConn{t: t, steps: registrationSteps()}
	mailer := &fakeMailer{err: errors.New("smtp connection refused")}

	_, err := Create(conn, mailer, token.NewCodec("test-secret"), testRequest)

	require.Error(t, err)
	assert.True(t, conn.rolledBack)
	assert.False(t, conn.committed)
	conn.done()
}

func TestCreateMapsUniqueViolationToConflict(t *testing.T) {
	// A concurrent registration can win between the pre-checks and the
	// insert; the constraint error must not surface as a server error.
	conn := &fakeConn{t: t, steps: []step{
		{wantSQL: "select id from crypto_user where username = $1", err: database.ErrNoRows},
		{wantSQL: "select id from crypto_user where email = $1", err: database.ErrNoRows},
		{wantSQL: "from crypto_status where name = $1", values: []any{1, StatusUnverified}},
		{
			wantSQL: "insert into crypto_user",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "crypto_user_username_key"},
		},
	}}

	_, err := Create(conn, &fakeMailer{}, token.NewCodec("test-secret"), testRequest)

	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.True(t, conn.rolledBack)
	conn.done()
}

func TestCreateDuplicateUsernamePreCheck(t *testing.T) {
	conn := &fakeConn{t: t, steps: []step{
		{wantSQL: "select id from crypto_user where username = $1", values: []any{3}},
	}}

	_, err := Create(conn, &fakeMailer{}, token.NewCodec("test-secret"), testRequest)

	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	conn.done()
}

func TestProvisionCreatesVerifiedUser(t *testing.T) {
	steps := registrationSteps()
	steps[2] = step{wantSQL: "from crypto_status where name = $1", values: []any{2, StatusVerified}}
	conn := &fakeConn{t: t, steps: steps}

	created, err := Provision(conn, testRequest)
	require.NoError(t, err)
	conn.done()

	assert.True(t, conn.committed)
	assert.Equal(t, 2, created.StatusID)
}

func TestDeleteCascades(t *testing.T) {
	conn := &fakeConn{t: t, steps: []step{
		{wantSQL: "delete from crypto_trigger", affected: 2},
		{wantSQL: "delete from crypto_strategy", affected: 1},
		{wantSQL: "delete from crypto_position", affected: 3},
		{wantSQL: "delete from crypto_trade", affected: 4},
		{wantSQL: "delete from crypto_user", affected: 1},
	}}

	require.NoError(t, Delete(conn, 1))
	conn.done()
	assert.True(t, conn.committed)
}

func TestDeleteMissingUser(t *testing.T) {
	conn := &fakeConn{t: t, steps: []step{
		{wantSQL: "delete from crypto_trigger"},
		{wantSQL: "delete from crypto_strategy"},
		{wantSQL: "delete from crypto_position"},
		{wantSQL: "delete from crypto_trade"},
		{wantSQL: "delete from crypto_user", affected: 0},
	}}

	err := Delete(conn, 99)

	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.True(t, conn.rolledBack)
	conn.done()
}
