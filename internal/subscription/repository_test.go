package subscription

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

var (
	subCols     = []string{"id", "member_id", "plan_id", "status", "start_date", "end_date", "created_at", "updated_at"}
	balanceCols = []string{"id", "subscription_id", "group_name", "total_sessions", "sessions_remaining"}
)

func TestCreateSubscriptionSnapshotsPlanGroups(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	start := now
	end := now.AddDate(0, 1, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subscriptions (member_id, plan_id, status, start_date, end_date) VALUES ($1, $2, 'active', $3, $4) RETURNING id, member_id, plan_id, status, start_date, end_date, created_at, updated_at")).
		WithArgs(4, 2, start, end).
		WillReturnRows(sqlmock.NewRows(subCols).AddRow(11, 4, 2, "active", start, end, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO group_session_balances (subscription_id, group_name, total_sessions, sessions_remaining) SELECT $1, group_name, total_sessions, total_sessions FROM plan_groups WHERE plan_id = $2 RETURNING id, subscription_id, group_name, total_sessions, sessions_remaining")).
		WithArgs(11, 2).
		WillReturnRows(sqlmock.NewRows(balanceCols).
			AddRow(21, 11, "crossfit", 12, 12).
			AddRow(22, 11, "yoga", 8, 8))
	mock.ExpectCommit()

	sub, err := repo.CreateSubscription(context.Background(), 4, 2, start, end)
	require.NoError(t, err)
	require.Equal(t, 11, sub.ID)
	require.Len(t, sub.Balances, 2)
	require.Equal(t, 12, sub.Balances[0].SessionsRemaining)
	require.Equal(t, sub.Balances[0].TotalSessions, sub.Balances[0].SessionsRemaining)
}

func TestFindEligibleBalanceOrdersByExpiry(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.end_date ASC, b.id ASC LIMIT 1")).
		WithArgs(4, "crossfit", at).
		WillReturnRows(sqlmock.NewRows(balanceCols).AddRow(21, 11, "crossfit", 12, 3))

	b, err := repo.FindEligibleBalance(context.Background(), 4, "crossfit", at)
	require.NoError(t, err)
	require.Equal(t, 21, b.ID)
	require.Equal(t, 3, b.SessionsRemaining)
}

func TestDebitBalance(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// success: one row updated
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_session_balances SET sessions_remaining = sessions_remaining - 1 WHERE id = $1 AND sessions_remaining > 0")).
		WithArgs(21).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DebitBalance(context.Background(), 21))

	// exhausted: guard clause blocks the update
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_session_balances SET sessions_remaining = sessions_remaining - 1 WHERE id = $1 AND sessions_remaining > 0")).
		WithArgs(21).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DebitBalance(context.Background(), 21)
	require.Equal(t, ErrNoSessionsRemaining, err)
}

func TestCreditBalance(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_session_balances SET sessions_remaining = sessions_remaining + 1 WHERE id = $1 AND sessions_remaining < total_sessions")).
		WithArgs(21).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreditBalance(context.Background(), 21))

	// already at total: never exceed the snapshot
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_session_balances SET sessions_remaining = sessions_remaining + 1 WHERE id = $1 AND sessions_remaining < total_sessions")).
		WithArgs(21).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreditBalance(context.Background(), 21)
	require.Equal(t, ErrBalanceFull, err)
}

func TestCancelSubscription(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status = 'active'")).
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CancelSubscription(context.Background(), 11))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status = 'active'")).
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelSubscription(context.Background(), 11)
	require.Equal(t, ErrNotFoundOrInactive, err)
}

func TestExpireOverdue(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'expired', updated_at = NOW() WHERE status = 'active' AND end_date < $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireOverdue(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
}
