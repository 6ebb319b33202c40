package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/todo-keeper/internal/crypto"
	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var userCols = []string{"id", "username", "password_hash", "email"}

const selectUser = `SELECT id, username, password_hash, email FROM users WHERE `

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:       model.MustParseUserID("0123456789ab"),
		Username: "alice",
		Password: crypto.HashPassword("secret1!"),
	}
	const ins = `INSERT INTO users \(id, username, password_hash, email\) VALUES \(\$1, \$2, \$3, \$4\)`

	// OK
	mock.ExpectExec(ins).
		WithArgs(u.ID.String(), u.Username, u.Password.String(), u.Email).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	// Username clash
	mock.ExpectExec(ins).
		WithArgs(u.ID.String(), u.Username, u.Password.String(), u.Email).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usersUsernameKey})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrAlreadyExists)

	// Id clash
	mock.ExpectExec(ins).
		WithArgs(u.ID.String(), u.Username, u.Password.String(), u.Email).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usersPKey})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrIDConflict)

	// Other failure
	boom := errors.New("boom")
	mock.ExpectExec(ins).
		WithArgs(u.ID.String(), u.Username, u.Password.String(), u.Email).
		WillReturnError(boom)
	require.ErrorIs(t, r.Create(ctx, u), boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := model.MustParseUserID("abcdef012345")
	hash := crypto.HashPassword("secret1!")
	email := "a@example.com"

	mock.ExpectQuery(selectUser + `id=\$1`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id.String(), "alice", hash.String(), &email))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "alice", u.Username)
	require.True(t, u.Password.Matches("secret1!"))
	require.NotNil(t, u.Email)
	require.Equal(t, email, *u.Email)

	mock.ExpectQuery(selectUser + `id=\$1`).
		WithArgs(id.String()).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := model.MustParseUserID("abcdef012345")

	mock.ExpectQuery(selectUser + `username=\$1`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id.String(), "bob", crypto.HashPassword("x").String(), (*string)(nil)))
	u, err := r.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", u.Username)
	require.Nil(t, u.Email)

	mock.ExpectQuery(selectUser + `username=\$1`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)

	// Corrupt stored id surfaces as a plain error, not as not-found.
	mock.ExpectQuery(selectUser + `username=\$1`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("short", "bob", crypto.HashPassword("x").String(), (*string)(nil)))
	_, err = r.GetByUsername(ctx, "bob")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetBySessionToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	tok, err := model.NewSessionToken()
	require.NoError(t, err)
	id := model.MustParseUserID("00000000000f")
	const q = `SELECT u.id, u.username, u.password_hash, u.email FROM users u JOIN sessions s ON s.user_id = u.id WHERE s.token=\$1`

	mock.ExpectQuery(q).
		WithArgs(tok.String()).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id.String(), "carol", crypto.HashPassword("x").String(), (*string)(nil)))
	u, err := r.GetBySessionToken(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	mock.ExpectQuery(q).
		WithArgs(tok.String()).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetBySessionToken(ctx, tok)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_AttachDetachSessionToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	tok, err := model.NewSessionToken()
	require.NoError(t, err)
	const attach = `INSERT INTO sessions \(token, user_id\) SELECT \$1, id FROM users WHERE username=\$2`
	const detach = `DELETE FROM sessions WHERE token=\$1`

	mock.ExpectExec(attach).
		WithArgs(tok.String(), "alice").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.AttachSessionToken(ctx, "alice", tok))

	mock.ExpectExec(attach).
		WithArgs(tok.String(), "ghost").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	require.ErrorIs(t, r.AttachSessionToken(ctx, "ghost", tok), errs.ErrNotFound)

	mock.ExpectExec(detach).
		WithArgs(tok.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.DetachSessionToken(ctx, tok))

	// Unknown token is a no-op.
	mock.ExpectExec(detach).
		WithArgs(tok.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, r.DetachSessionToken(ctx, tok))

	mock.ExpectExec(detach).
		WithArgs(tok.String()).
		WillReturnError(errors.New("conn reset"))
	require.Error(t, r.DetachSessionToken(ctx, tok))

	require.NoError(t, mock.ExpectationsWereMet())
}
