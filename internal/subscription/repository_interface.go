package subscription

import (
	"context"
	"time"
)

type Repository interface {
	CreateSubscription(ctx context.Context, memberID, planID int, startDate, endDate time.Time) (*SubscriptionWithBalances, error)
	GetByID(ctx context.Context, id int) (*Subscription, error)
	ListByMember(ctx context.Context, memberID int) ([]SubscriptionWithBalances, error)
	GetBalances(ctx context.Context, subscriptionID int) ([]GroupSessionBalance, error)
	GetBalanceByID(ctx context.Context, balanceID int) (*GroupSessionBalance, error)
	FindEligibleBalance(ctx context.Context, memberID int, groupName string, at time.Time) (*GroupSessionBalance, error)
	DebitBalance(ctx context.Context, balanceID int) error
	CreditBalance(ctx context.Context, balanceID int) error
	CancelSubscription(ctx context.Context, id int) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}
