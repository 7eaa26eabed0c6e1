package registration

import (
	"context"
	"time"
)

type Repository interface {
	Register(ctx context.Context, memberID, courseInstanceID, balanceID int, qrCode string) (*Registration, error)
	GetByID(ctx context.Context, id int) (*Registration, error)
	GetByQRCode(ctx context.Context, qrCode string) (*Registration, error)
	MemberHasActiveRegistration(ctx context.Context, memberID, courseInstanceID int) (bool, error)
	CountActiveForCourse(ctx context.Context, courseInstanceID int) (int, error)
	Cancel(ctx context.Context, id int, refund bool) error
	CreateCheckIn(ctx context.Context, registrationID int, checkinTime time.Time) (*CheckIn, bool, error)
	GetCheckIn(ctx context.Context, registrationID int) (*CheckIn, error)
	DeleteCheckIn(ctx context.Context, registrationID int) error
	CountCheckedInForCourse(ctx context.Context, courseInstanceID int) (int, error)
	ListByMember(ctx context.Context, memberID int) ([]RegistrationWithDetails, error)
	ListByCourse(ctx context.Context, courseInstanceID int) ([]RegistrationWithDetails, error)
	GetStatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error)
	GetStatsByClass(ctx context.Context, from, to time.Time) ([]StatsByClass, error)
}
