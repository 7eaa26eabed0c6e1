package member

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func TestCreateAndFindMember(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	cols := []string{"id", "name", "email", "password_hash", "role", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, name, email, password_hash, role, created_at")).
		WithArgs("Alex", "alex@example.com", "hash", "member").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Alex", "alex@example.com", "hash", "member", now))

	m, err := repo.Create(ctx, "Alex", "alex@example.com", "hash", "member")
	require.NoError(t, err)
	require.Equal(t, 3, m.ID)
	require.Equal(t, "member", m.Role)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, role, created_at FROM members WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Alex", "alex@example.com", "hash", "member", now))

	got, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "alex@example.com", got.Email)
}

func TestEmailExists(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM members WHERE email = $1)")).
		WithArgs("alex@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "alex@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}
