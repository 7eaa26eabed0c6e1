package course

import (
	"context"
	"time"
)

type Repository interface {
	CreateClass(ctx context.Context, name, groupName, trainerName string) (*Class, error)
	GetAllClasses(ctx context.Context) ([]Class, error)
	GetClassByID(ctx context.Context, id int) (*Class, error)
	CreateInstance(ctx context.Context, classID int, startTime, endTime time.Time, maxParticipants int) (*Instance, error)
	GetInstancesByClass(ctx context.Context, classID int, onlyFuture bool) ([]Instance, error)
	GetInstanceByID(ctx context.Context, id int) (*Instance, error)
	GetInstanceGroup(ctx context.Context, id int) (string, error)
	GetInstancesWithAvailability(ctx context.Context, classID int, onlyFuture bool) ([]InstanceWithAvailability, error)
}
