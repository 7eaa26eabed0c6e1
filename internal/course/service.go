package course

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrInvalidSchedule = errors.New("invalid course schedule")
)

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error)
	GetAllClasses(ctx context.Context) ([]Class, error)
	GetClassByID(ctx context.Context, id int) (*Class, error)
	CreateInstance(ctx context.Context, classID int, req CreateInstanceRequest) (*Instance, error)
	GetInstances(ctx context.Context, classID int, onlyFuture bool) ([]InstanceWithAvailability, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error) {
	return s.repo.CreateClass(ctx, req.Name, req.GroupName, req.TrainerName)
}

func (s *service) GetAllClasses(ctx context.Context) ([]Class, error) {
	return s.repo.GetAllClasses(ctx)
}

func (s *service) GetClassByID(ctx context.Context, id int) (*Class, error) {
	c, err := s.repo.GetClassByID(ctx, id)
	if err != nil {
		return nil, ErrClassNotFound
	}
	return c, nil
}

func (s *service) CreateInstance(ctx context.Context, classID int, req CreateInstanceRequest) (*Instance, error) {
	if _, err := s.repo.GetClassByID(ctx, classID); err != nil {
		return nil, ErrClassNotFound
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidSchedule
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrInvalidSchedule
	}

	if !endTime.After(startTime) {
		return nil, ErrInvalidSchedule
	}

	return s.repo.CreateInstance(ctx, classID, startTime, endTime, req.MaxParticipants)
}

func (s *service) GetInstances(ctx context.Context, classID int, onlyFuture bool) ([]InstanceWithAvailability, error) {
	if _, err := s.repo.GetClassByID(ctx, classID); err != nil {
		return nil, ErrClassNotFound
	}
	return s.repo.GetInstancesWithAvailability(ctx, classID, onlyFuture)
}
