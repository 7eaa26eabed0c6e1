package plan

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(ctx context.Context, name string, priceCents int64, groups []GroupAllocationRequest) (*PlanWithGroups, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p Plan
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO plans (name, price_cents, currency)
		VALUES ($1, $2, 'EUR')
		RETURNING id, name, price_cents, currency, created_at
	`, name, priceCents).StructScan(&p)
	if err != nil {
		return nil, err
	}

	allocations := make([]GroupAllocation, 0, len(groups))
	for _, g := range groups {
		var a GroupAllocation
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO plan_groups (plan_id, group_name, total_sessions)
			VALUES ($1, $2, $3)
			RETURNING id, plan_id, group_name, total_sessions
		`, p.ID, g.GroupName, g.TotalSessions).StructScan(&a)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &PlanWithGroups{Plan: p, Groups: allocations}, nil
}

func (r *repository) GetPlanByID(ctx context.Context, id int) (*PlanWithGroups, error) {
	var p Plan
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, price_cents, currency, created_at
		FROM plans
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	groups, err := r.GetGroupAllocations(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PlanWithGroups{Plan: p, Groups: groups}, nil
}

func (r *repository) GetAllPlans(ctx context.Context) ([]PlanWithGroups, error) {
	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, name, price_cents, currency, created_at
		FROM plans
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}

	result := make([]PlanWithGroups, 0, len(plans))
	for _, p := range plans {
		groups, err := r.GetGroupAllocations(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, PlanWithGroups{Plan: p, Groups: groups})
	}

	return result, nil
}

func (r *repository) GetGroupAllocations(ctx context.Context, planID int) ([]GroupAllocation, error) {
	groups := []GroupAllocation{}
	err := r.db.SelectContext(ctx, &groups, `
		SELECT id, plan_id, group_name, total_sessions
		FROM plan_groups
		WHERE plan_id = $1
		ORDER BY group_name ASC
	`, planID)
	return groups, err
}
