package course

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateClass(ctx context.Context, name, groupName, trainerName string) (*Class, error) {
	query := `
		INSERT INTO classes (name, group_name, trainer_name)
		VALUES ($1, $2, $3)
		RETURNING id, name, group_name, trainer_name, created_at
	`

	var c Class
	err := r.db.GetContext(ctx, &c, query, name, groupName, trainerName)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetAllClasses(ctx context.Context) ([]Class, error) {
	query := `
		SELECT id, name, group_name, trainer_name, created_at
		FROM classes
		ORDER BY created_at DESC
	`

	var classes []Class
	err := r.db.SelectContext(ctx, &classes, query)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *repository) GetClassByID(ctx context.Context, id int) (*Class, error) {
	query := `
		SELECT id, name, group_name, trainer_name, created_at
		FROM classes
		WHERE id = $1
	`

	var c Class
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) CreateInstance(ctx context.Context, classID int, startTime, endTime time.Time, maxParticipants int) (*Instance, error) {
	query := `
		INSERT INTO course_instances (class_id, start_time, end_time, max_participants)
		VALUES ($1, $2, $3, $4)
		RETURNING id, class_id, start_time, end_time, max_participants, created_at
	`

	var inst Instance
	err := r.db.GetContext(ctx, &inst, query, classID, startTime, endTime, maxParticipants)
	if err != nil {
		return nil, err
	}

	return &inst, nil
}

func (r *repository) GetInstancesByClass(ctx context.Context, classID int, onlyFuture bool) ([]Instance, error) {
	query := `
		SELECT id, class_id, start_time, end_time, max_participants, created_at
		FROM course_instances
		WHERE class_id = $1
	`
	args := []interface{}{classID}

	if onlyFuture {
		query += " AND start_time > NOW()"
	}

	query += " ORDER BY start_time ASC"

	var instances []Instance
	err := r.db.SelectContext(ctx, &instances, query, args...)
	if err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *repository) GetInstanceByID(ctx context.Context, id int) (*Instance, error) {
	query := `
		SELECT id, class_id, start_time, end_time, max_participants, created_at
		FROM course_instances
		WHERE id = $1
	`

	var inst Instance
	err := r.db.GetContext(ctx, &inst, query, id)
	if err != nil {
		return nil, err
	}

	return &inst, nil
}

func (r *repository) GetInstanceGroup(ctx context.Context, id int) (string, error) {
	query := `
		SELECT c.group_name
		FROM course_instances ci
		JOIN classes c ON ci.class_id = c.id
		WHERE ci.id = $1
	`

	var group string
	err := r.db.GetContext(ctx, &group, query, id)
	if err != nil {
		return "", err
	}

	return group, nil
}

func (r *repository) GetInstancesWithAvailability(ctx context.Context, classID int, onlyFuture bool) ([]InstanceWithAvailability, error) {
	query := `
		SELECT
			ci.id,
			ci.class_id,
			ci.start_time,
			ci.end_time,
			ci.max_participants,
			ci.created_at,
			c.name AS class_name,
			c.group_name AS group_name,
			COUNT(r.id) FILTER (WHERE r.status IN ('registered', 'attended')) AS registered_count
		FROM course_instances ci
		JOIN classes c ON ci.class_id = c.id
		LEFT JOIN registrations r ON r.course_instance_id = ci.id
		WHERE ci.class_id = $1
	`
	args := []interface{}{classID}

	if onlyFuture {
		query += " AND ci.start_time > NOW()"
	}

	query += `
		GROUP BY ci.id, c.name, c.group_name
		ORDER BY ci.start_time ASC
	`

	var instances []InstanceWithAvailability
	err := r.db.SelectContext(ctx, &instances, query, args...)
	if err != nil {
		return nil, err
	}

	for i := range instances {
		instances[i].Available = instances[i].MaxParticipants - instances[i].RegisteredCount
		instances[i].IsFull = instances[i].Available <= 0
	}

	return instances, nil
}
