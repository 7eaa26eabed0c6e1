package plan

import "context"

type Repository interface {
	CreatePlan(ctx context.Context, name string, priceCents int64, groups []GroupAllocationRequest) (*PlanWithGroups, error)
	GetPlanByID(ctx context.Context, id int) (*PlanWithGroups, error)
	GetAllPlans(ctx context.Context) ([]PlanWithGroups, error)
	GetGroupAllocations(ctx context.Context, planID int) ([]GroupAllocation, error)
}
