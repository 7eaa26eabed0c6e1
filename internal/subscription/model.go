package subscription

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type Subscription struct {
	ID        int       `db:"id" json:"id"`
	MemberID  int       `db:"member_id" json:"member_id"`
	PlanID    int       `db:"plan_id" json:"plan_id"`
	Status    Status    `db:"status" json:"status"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GroupSessionBalance tracks how many sessions of a group a subscription
// still holds. TotalSessions is snapshotted from the plan at creation and
// never changes afterwards.
type GroupSessionBalance struct {
	ID                int    `db:"id" json:"id"`
	SubscriptionID    int    `db:"subscription_id" json:"subscription_id"`
	GroupName         string `db:"group_name" json:"group_name"`
	TotalSessions     int    `db:"total_sessions" json:"total_sessions"`
	SessionsRemaining int    `db:"sessions_remaining" json:"sessions_remaining"`
}

type SubscriptionWithBalances struct {
	Subscription
	Balances []GroupSessionBalance `json:"balances"`
}

type CreateSubscriptionRequest struct {
	MemberID  int    `json:"member_id" binding:"required"`
	PlanID    int    `json:"plan_id" binding:"required"`
	StartDate string `json:"start_date,omitempty"`
	Months    int    `json:"months,omitempty" binding:"omitempty,min=1,max=24"`
}
