package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNoSessionsRemaining = errors.New("no sessions remaining on balance")
	ErrBalanceFull         = errors.New("balance already at total sessions")
	ErrNotFoundOrInactive  = errors.New("subscription not found or not active")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSubscription(ctx context.Context, memberID, planID int, startDate, endDate time.Time) (*SubscriptionWithBalances, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var sub Subscription
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (member_id, plan_id, status, start_date, end_date)
		VALUES ($1, $2, 'active', $3, $4)
		RETURNING id, member_id, plan_id, status, start_date, end_date, created_at, updated_at
	`, memberID, planID, startDate, endDate).StructScan(&sub)
	if err != nil {
		return nil, err
	}

	// Snapshot the plan's allocations so later plan edits never move
	// balances that already exist.
	balances := []GroupSessionBalance{}
	rows, err := tx.QueryxContext(ctx, `
		INSERT INTO group_session_balances (subscription_id, group_name, total_sessions, sessions_remaining)
		SELECT $1, group_name, total_sessions, total_sessions
		FROM plan_groups
		WHERE plan_id = $2
		RETURNING id, subscription_id, group_name, total_sessions, sessions_remaining
	`, sub.ID, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b GroupSessionBalance
		if err := rows.StructScan(&b); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &SubscriptionWithBalances{Subscription: sub, Balances: balances}, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT id, member_id, plan_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]SubscriptionWithBalances, error) {
	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, `
		SELECT id, member_id, plan_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE member_id = $1
		ORDER BY created_at DESC
	`, memberID)
	if err != nil {
		return nil, err
	}

	result := make([]SubscriptionWithBalances, 0, len(subs))
	for _, sub := range subs {
		balances, err := r.GetBalances(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, SubscriptionWithBalances{Subscription: sub, Balances: balances})
	}

	return result, nil
}

func (r *repository) GetBalances(ctx context.Context, subscriptionID int) ([]GroupSessionBalance, error) {
	balances := []GroupSessionBalance{}
	err := r.db.SelectContext(ctx, &balances, `
		SELECT id, subscription_id, group_name, total_sessions, sessions_remaining
		FROM group_session_balances
		WHERE subscription_id = $1
		ORDER BY group_name ASC
	`, subscriptionID)
	return balances, err
}

func (r *repository) GetBalanceByID(ctx context.Context, balanceID int) (*GroupSessionBalance, error) {
	var b GroupSessionBalance
	err := r.db.GetContext(ctx, &b, `
		SELECT id, subscription_id, group_name, total_sessions, sessions_remaining
		FROM group_session_balances
		WHERE id = $1
	`, balanceID)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// FindEligibleBalance picks the balance to debit for a booking: active
// subscription covering the given instant, matching group, sessions left.
// Earliest-expiring subscription wins the tie-break.
func (r *repository) FindEligibleBalance(ctx context.Context, memberID int, groupName string, at time.Time) (*GroupSessionBalance, error) {
	var b GroupSessionBalance
	err := r.db.GetContext(ctx, &b, `
		SELECT b.id, b.subscription_id, b.group_name, b.total_sessions, b.sessions_remaining
		FROM group_session_balances b
		JOIN subscriptions s ON b.subscription_id = s.id
		WHERE s.member_id = $1
		  AND s.status = 'active'
		  AND s.start_date <= $3
		  AND s.end_date >= $3
		  AND b.group_name = $2
		  AND b.sessions_remaining > 0
		ORDER BY s.end_date ASC, b.id ASC
		LIMIT 1
	`, memberID, groupName, at)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) DebitBalance(ctx context.Context, balanceID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE group_session_balances
		SET sessions_remaining = sessions_remaining - 1
		WHERE id = $1 AND sessions_remaining > 0
	`, balanceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoSessionsRemaining
	}

	return nil
}

func (r *repository) CreditBalance(ctx context.Context, balanceID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE group_session_balances
		SET sessions_remaining = sessions_remaining + 1
		WHERE id = $1 AND sessions_remaining < total_sessions
	`, balanceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBalanceFull
	}

	return nil
}

func (r *repository) CancelSubscription(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFoundOrInactive
	}

	return nil
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1
	`, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
