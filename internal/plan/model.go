package plan

import "time"

type Plan struct {
	ID         int       `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	Currency   string    `db:"currency" json:"currency"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// GroupAllocation is the number of sessions a plan grants for one group.
// Subscriptions snapshot these totals at creation, so later plan edits
// never change balances that already exist.
type GroupAllocation struct {
	ID            int    `db:"id" json:"id"`
	PlanID        int    `db:"plan_id" json:"plan_id"`
	GroupName     string `db:"group_name" json:"group_name"`
	TotalSessions int    `db:"total_sessions" json:"total_sessions"`
}

type PlanWithGroups struct {
	Plan
	Groups []GroupAllocation `json:"groups"`
}

type CreatePlanRequest struct {
	Name       string                   `json:"name" binding:"required"`
	PriceCents int64                    `json:"price_cents" binding:"required,gte=0"`
	Groups     []GroupAllocationRequest `json:"groups" binding:"required,min=1,dive"`
}

type GroupAllocationRequest struct {
	GroupName     string `json:"group_name" binding:"required"`
	TotalSessions int    `json:"total_sessions" binding:"required,min=1"`
}
