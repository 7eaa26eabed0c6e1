package registration

import "time"

const (
	StatusRegistered = "registered"
	StatusAttended   = "attended"
	StatusCancelled  = "cancelled"
	StatusAbsent     = "absent"
)

type Registration struct {
	ID               int       `db:"id" json:"id"`
	MemberID         int       `db:"member_id" json:"member_id"`
	CourseInstanceID int       `db:"course_instance_id" json:"course_instance_id"`
	SubscriptionID   *int      `db:"subscription_id" json:"subscription_id,omitempty"`
	BalanceID        *int      `db:"balance_id" json:"balance_id,omitempty"`
	QRCode           string    `db:"qr_code" json:"qr_code"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type CheckIn struct {
	ID             int       `db:"id" json:"id"`
	RegistrationID int       `db:"registration_id" json:"registration_id"`
	CheckinTime    time.Time `db:"checkin_time" json:"checkin_time"`
}

// RegistrationWithDetails carries the joined course and member columns for
// listings. Status is the effective status: a registration whose course has
// ended without a check-in reads as absent.
type RegistrationWithDetails struct {
	Registration
	ClassName   string    `db:"class_name" json:"class_name"`
	GroupName   string    `db:"group_name" json:"group_name"`
	CourseStart time.Time `db:"course_start" json:"course_start"`
	CourseEnd   time.Time `db:"course_end" json:"course_end"`
	MemberName  string    `db:"member_name" json:"member_name"`
	MemberEmail string    `db:"member_email" json:"member_email"`
}

type RegisterResponse struct {
	Registration *Registration `json:"registration"`
	QRCode       string        `json:"qr_code"`
}

type CancelResult struct {
	IsWithin24Hours bool `json:"is_within_24h"`
	Refunded        bool `json:"refunded"`
}

type CheckInRequest struct {
	QRCode         string `json:"qr_code,omitempty"`
	RegistrationID int    `json:"registration_id,omitempty"`
}

type CheckInResult struct {
	AlreadyCheckedIn bool      `json:"already_checked_in"`
	CheckinTime      time.Time `json:"checkin_time"`
}

type MemberSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CourseSummary struct {
	ID        int       `json:"id"`
	ClassName string    `json:"class_name"`
	GroupName string    `json:"group_name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type QRCodeDetails struct {
	Registration    Registration  `json:"registration"`
	Member          MemberSummary `json:"member"`
	Course          CourseSummary `json:"course"`
	RegisteredCount int           `json:"registered_count"`
	CheckedInCount  int           `json:"checked_in_count"`
}

type StatsByDay struct {
	Bucket    string `db:"bucket" json:"bucket"`
	Created   int    `db:"created" json:"created"`
	Cancelled int    `db:"cancelled" json:"cancelled"`
}

type StatsByClass struct {
	ClassID   int    `db:"class_id" json:"class_id"`
	ClassName string `db:"class_name" json:"class_name"`
	Created   int    `db:"created" json:"created"`
	Cancelled int    `db:"cancelled" json:"cancelled"`
}
