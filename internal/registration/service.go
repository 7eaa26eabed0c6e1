package registration

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"wildenergy/internal/course"
	"wildenergy/internal/logger"
	"wildenergy/internal/member"
	"wildenergy/internal/metrics"
	"wildenergy/internal/subscription"
)

var (
	ErrAlreadyRegistered     = errors.New("member already registered for this course")
	ErrCourseFull            = errors.New("course is full")
	ErrNoSessionsRemaining   = errors.New("no sessions remaining for this group")
	ErrCourseInPast          = errors.New("course has already started")
	ErrCourseNotFound        = errors.New("course instance not found")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrInvalidState          = errors.New("registration is not in a cancellable state")
	ErrRegistrationCancelled = errors.New("registration has been cancelled")
	ErrQRCodeNotFound        = errors.New("qr code not found")
)

// Mailer is the slice of the email service the ledger needs. Sends are best
// effort: a failed notification never rolls back a booking.
type Mailer interface {
	SendRegistrationConfirmation(ctx context.Context, to, memberName, className string, start time.Time, qrCode string) error
	SendCancellation(ctx context.Context, to, memberName, className string, start time.Time, forfeited bool) error
}

type Service interface {
	Register(ctx context.Context, memberID, courseInstanceID int) (*RegisterResponse, error)
	Cancel(ctx context.Context, memberID, registrationID int, now time.Time) (*CancelResult, error)
	CheckIn(ctx context.Context, req CheckInRequest, now time.Time) (*CheckInResult, error)
	CheckOut(ctx context.Context, registrationID int) error
	ResolveQRCode(ctx context.Context, qrCode string) (*QRCodeDetails, error)
	ListByMember(ctx context.Context, memberID int) ([]RegistrationWithDetails, error)
	ListByCourse(ctx context.Context, courseInstanceID int) ([]RegistrationWithDetails, error)
	StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error)
	StatsByClass(ctx context.Context, from, to time.Time) ([]StatsByClass, error)
}

type service struct {
	repo          Repository
	courses       course.Repository
	subscriptions subscription.Repository
	members       member.Repository
	mailer        Mailer
	now           func() time.Time
}

func NewService(repo Repository, courses course.Repository, subscriptions subscription.Repository, members member.Repository, mailer Mailer) Service {
	return &service{
		repo:          repo,
		courses:       courses,
		subscriptions: subscriptions,
		members:       members,
		mailer:        mailer,
		now:           time.Now,
	}
}

// Register books a member into a course instance. Eligibility is judged at
// the course start time: the member needs an active subscription covering
// that instant with sessions left in the course's group. The debit, the
// capacity check and the registration row commit together.
func (s *service) Register(ctx context.Context, memberID, courseInstanceID int) (*RegisterResponse, error) {
	instance, err := s.courses.GetInstanceByID(ctx, courseInstanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !instance.StartTime.After(s.now()) {
		return nil, ErrCourseInPast
	}

	already, err := s.repo.MemberHasActiveRegistration(ctx, memberID, courseInstanceID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyRegistered
	}

	groupName, err := s.courses.GetInstanceGroup(ctx, courseInstanceID)
	if err != nil {
		return nil, err
	}

	balance, err := s.subscriptions.FindEligibleBalance(ctx, memberID, groupName, instance.StartTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.RecordRegistration("rejected")
			return nil, ErrNoSessionsRemaining
		}
		return nil, err
	}

	qrCode := uuid.NewString()

	reg, err := s.repo.Register(ctx, memberID, courseInstanceID, balance.ID, qrCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityReached):
			metrics.RecordRegistration("rejected")
			return nil, ErrCourseFull
		case errors.Is(err, ErrBalanceExhausted):
			metrics.RecordRegistration("rejected")
			return nil, ErrNoSessionsRemaining
		case errors.Is(err, ErrDuplicateRegistration):
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	metrics.RecordRegistration("created")
	metrics.SetSessionsRemaining(strconv.Itoa(balance.SubscriptionID), groupName, float64(balance.SessionsRemaining-1))
	logger.Info("registration created",
		"registration_id", reg.ID,
		"member_id", memberID,
		"course_instance_id", courseInstanceID,
		"balance_id", balance.ID)

	s.notifyRegistration(ctx, reg, instance)

	return &RegisterResponse{Registration: reg, QRCode: reg.QRCode}, nil
}

// Cancel releases the member's spot. Inside the 24-hour window before the
// course starts the session is forfeited; before that it goes back to the
// balance it was debited from. Exactly 24 hours out still refunds.
func (s *service) Cancel(ctx context.Context, memberID, registrationID int, now time.Time) (*CancelResult, error) {
	reg, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	if memberID != 0 && reg.MemberID != memberID {
		return nil, ErrRegistrationNotFound
	}

	if reg.Status != StatusRegistered {
		return nil, ErrInvalidState
	}

	instance, err := s.courses.GetInstanceByID(ctx, reg.CourseInstanceID)
	if err != nil {
		return nil, err
	}

	within := now.After(instance.StartTime.Add(-24 * time.Hour))
	refund := !within && reg.BalanceID != nil

	if err := s.repo.Cancel(ctx, registrationID, refund); err != nil {
		if errors.Is(err, ErrNotFoundOrNotRegistered) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	metrics.RecordCancellation(within)
	logger.Info("registration cancelled",
		"registration_id", registrationID,
		"member_id", reg.MemberID,
		"within_24h", within,
		"refunded", refund)

	s.notifyCancellation(ctx, reg, instance, within)

	return &CancelResult{IsWithin24Hours: within, Refunded: refund}, nil
}

// CheckIn records attendance for a QR scan or an explicit registration id.
// Scanning twice is harmless: the second scan reports the original check-in
// time with AlreadyCheckedIn set.
func (s *service) CheckIn(ctx context.Context, req CheckInRequest, now time.Time) (*CheckInResult, error) {
	var (
		reg *Registration
		err error
	)

	switch {
	case req.QRCode != "":
		reg, err = s.repo.GetByQRCode(ctx, req.QRCode)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQRCodeNotFound
		}
	case req.RegistrationID != 0:
		reg, err = s.repo.GetByID(ctx, req.RegistrationID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
	default:
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}

	if reg.Status == StatusCancelled {
		metrics.RecordCheckIn("rejected")
		return nil, ErrRegistrationCancelled
	}

	ci, created, err := s.repo.CreateCheckIn(ctx, reg.ID, now)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.RecordCheckIn("created")
		logger.Info("member checked in", "registration_id", reg.ID, "member_id", reg.MemberID)
	} else {
		metrics.RecordCheckIn("duplicate")
	}

	return &CheckInResult{AlreadyCheckedIn: !created, CheckinTime: ci.CheckinTime}, nil
}

// CheckOut undoes a check-in, for scans of the wrong code at the front desk.
// The session stays consumed.
func (s *service) CheckOut(ctx context.Context, registrationID int) error {
	if _, err := s.repo.GetByID(ctx, registrationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return err
	}

	if err := s.repo.DeleteCheckIn(ctx, registrationID); err != nil {
		return err
	}

	metrics.RecordCheckOut()
	logger.Info("check-in reverted", "registration_id", registrationID)

	return nil
}

// ResolveQRCode returns everything the front desk needs to show before
// confirming a scan.
func (s *service) ResolveQRCode(ctx context.Context, qrCode string) (*QRCodeDetails, error) {
	reg, err := s.repo.GetByQRCode(ctx, qrCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}

	m, err := s.members.FindByID(ctx, reg.MemberID)
	if err != nil {
		return nil, err
	}

	instance, err := s.courses.GetInstanceByID(ctx, reg.CourseInstanceID)
	if err != nil {
		return nil, err
	}

	class, err := s.courses.GetClassByID(ctx, instance.ClassID)
	if err != nil {
		return nil, err
	}

	registered, err := s.repo.CountActiveForCourse(ctx, reg.CourseInstanceID)
	if err != nil {
		return nil, err
	}

	checkedIn, err := s.repo.CountCheckedInForCourse(ctx, reg.CourseInstanceID)
	if err != nil {
		return nil, err
	}

	return &QRCodeDetails{
		Registration: *reg,
		Member: MemberSummary{
			ID:    m.ID,
			Name:  m.Name,
			Email: m.Email,
		},
		Course: CourseSummary{
			ID:        instance.ID,
			ClassName: class.Name,
			GroupName: class.GroupName,
			StartTime: instance.StartTime,
			EndTime:   instance.EndTime,
		},
		RegisteredCount: registered,
		CheckedInCount:  checkedIn,
	}, nil
}

func (s *service) ListByMember(ctx context.Context, memberID int) ([]RegistrationWithDetails, error) {
	return s.repo.ListByMember(ctx, memberID)
}

func (s *service) ListByCourse(ctx context.Context, courseInstanceID int) ([]RegistrationWithDetails, error) {
	return s.repo.ListByCourse(ctx, courseInstanceID)
}

func (s *service) StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error) {
	return s.repo.GetStatsByDay(ctx, from, to)
}

func (s *service) StatsByClass(ctx context.Context, from, to time.Time) ([]StatsByClass, error) {
	return s.repo.GetStatsByClass(ctx, from, to)
}

func (s *service) notifyRegistration(ctx context.Context, reg *Registration, instance *course.Instance) {
	if s.mailer == nil {
		return
	}

	m, err := s.members.FindByID(ctx, reg.MemberID)
	if err != nil {
		logger.Error("failed to load member for confirmation email", "member_id", reg.MemberID, "error", err)
		return
	}

	class, err := s.courses.GetClassByID(ctx, instance.ClassID)
	if err != nil {
		logger.Error("failed to load class for confirmation email", "class_id", instance.ClassID, "error", err)
		return
	}

	if err := s.mailer.SendRegistrationConfirmation(ctx, m.Email, m.Name, class.Name, instance.StartTime, reg.QRCode); err != nil {
		logger.Error("failed to queue confirmation email", "member_id", m.ID, "error", err)
	}
}

func (s *service) notifyCancellation(ctx context.Context, reg *Registration, instance *course.Instance, forfeited bool) {
	if s.mailer == nil {
		return
	}

	m, err := s.members.FindByID(ctx, reg.MemberID)
	if err != nil {
		logger.Error("failed to load member for cancellation email", "member_id", reg.MemberID, "error", err)
		return
	}

	class, err := s.courses.GetClassByID(ctx, instance.ClassID)
	if err != nil {
		logger.Error("failed to load class for cancellation email", "class_id", instance.ClassID, "error", err)
		return
	}

	if err := s.mailer.SendCancellation(ctx, m.Email, m.Name, class.Name, instance.StartTime, forfeited); err != nil {
		logger.Error("failed to queue cancellation email", "member_id", m.ID, "error", err)
	}
}
