package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var userCols = []string{
	"id", "username", "email", "name", "profile_image", "pwd_hash", "salt_auth",
	"is_verified", "verify_code", "verify_expiry", "reset_code", "reset_expiry",
	"refresh_token", "created_at", "updated_at",
}

func userRow(id uuid.UUID, username, email string, verified bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userCols).AddRow(
		id, username, email, "Name", "", []byte("h"), []byte("s"),
		verified, "", time.Time{}, "", time.Time{}, "", now, now)
}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "ada",
		Email:    "ada@example.com",
		Name:     "Ada",
		PwdHash:  []byte("h"),
		SaltAuth: []byte("s"),
	}

	// OK
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Username, u.Email, u.Name, u.ProfileImage,
			u.PwdHash, u.SaltAuth, u.IsVerified, u.VerifyCode, u.VerifyExpiry).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	// Unique violation on a verified account's email/username
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Username, u.Email, u.Name, u.ProfileImage,
			u.PwdHash, u.SaltAuth, u.IsVerified, u.VerifyCode, u.VerifyExpiry).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrAlreadyExists)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("ada@example.com").
		WillReturnRows(userRow(id, "ada", "ada@example.com", true))
	u, err := r.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.True(t, u.IsVerified)

	mock.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`FROM users WHERE username=\$1`).
		WithArgs("ada").
		WillReturnRows(userRow(id, "ada", "ada@example.com", false))
	u, err := r.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	require.Equal(t, "ada", u.Username)
	require.False(t, u.IsVerified)
}

func TestUserRepo_ReplaceUnverified(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "ada",
		Email:    "ada@example.com",
		PwdHash:  []byte("h"),
		SaltAuth: []byte("s"),
	}

	mock.ExpectExec(`UPDATE users`).
		WithArgs(u.ID, u.Username, u.Email, u.Name, u.ProfileImage,
			u.PwdHash, u.SaltAuth, u.VerifyCode, u.VerifyExpiry).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.ReplaceUnverified(ctx, u))

	// Row is already verified (or gone), so nothing is overwritten.
	mock.ExpectExec(`UPDATE users`).
		WithArgs(u.ID, u.Username, u.Email, u.Name, u.ProfileImage,
			u.PwdHash, u.SaltAuth, u.VerifyCode, u.VerifyExpiry).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.ReplaceUnverified(ctx, u), errs.ErrNotFound)
}

func TestUserRepo_MarkVerified(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`SET is_verified=true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.MarkVerified(ctx, id))

	// Another account verified the same email first.
	mock.ExpectExec(`SET is_verified=true`).
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.MarkVerified(ctx, id), errs.ErrAlreadyExists)

	mock.ExpectExec(`SET is_verified=true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.MarkVerified(ctx, id), errs.ErrNotFound)
}

func TestUserRepo_SetRefreshToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE users SET refresh_token=\$2`).
		WithArgs(id, "tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetRefreshToken(ctx, id, "tok"))

	// Clearing on logout uses the same statement with an empty value.
	mock.ExpectExec(`UPDATE users SET refresh_token=\$2`).
		WithArgs(id, "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetRefreshToken(ctx, id, ""))

	mock.ExpectExec(`UPDATE users SET refresh_token=\$2`).
		WithArgs(id, "tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SetRefreshToken(ctx, id, "tok"), errs.ErrNotFound)
}

func TestUserRepo_ResetPassword_ClearsCodeAndSession(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`reset_code='', reset_expiry='epoch',\s*refresh_token=''`).
		WithArgs(id, []byte("h2"), []byte("s2")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.ResetPassword(ctx, id, []byte("h2"), []byte("s2")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetPassword_KeepsSession(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE users SET pwd_hash=\$2, salt_auth=\$3, updated_at=now\(\) WHERE id=\$1`).
		WithArgs(id, []byte("h2"), []byte("s2")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetPassword(ctx, id, []byte("h2"), []byte("s2")))
	require.NoError(t, mock.ExpectationsWereMet())
}
