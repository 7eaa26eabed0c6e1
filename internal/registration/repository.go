package registration

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrCapacityReached         = errors.New("course instance at capacity")
	ErrBalanceExhausted        = errors.New("session balance exhausted")
	ErrDuplicateRegistration   = errors.New("member already registered for course instance")
	ErrNotFoundOrNotRegistered = errors.New("registration not found or not in registered state")
	ErrCheckInNotFound         = errors.New("check-in not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Register books one spot in a single transaction: the course row is locked
// for the capacity check, the balance debit is guarded by sessions_remaining,
// and the partial unique index on (member, course, registered) rejects
// double-booking. Either everything commits or nothing does.
func (r *repository) Register(ctx context.Context, memberID, courseInstanceID, balanceID int, qrCode string) (*Registration, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var maxParticipants int
	err = tx.GetContext(ctx, &maxParticipants, `
		SELECT max_participants
		FROM course_instances
		WHERE id = $1
		FOR UPDATE
	`, courseInstanceID)
	if err != nil {
		return nil, err
	}

	var activeCount int
	err = tx.GetContext(ctx, &activeCount, `
		SELECT COUNT(*)
		FROM registrations
		WHERE course_instance_id = $1 AND status IN ('registered', 'attended')
	`, courseInstanceID)
	if err != nil {
		return nil, err
	}

	if activeCount >= maxParticipants {
		return nil, ErrCapacityReached
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE group_session_balances
		SET sessions_remaining = sessions_remaining - 1
		WHERE id = $1 AND sessions_remaining > 0
	`, balanceID)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrBalanceExhausted
	}

	var reg Registration
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO registrations (member_id, course_instance_id, subscription_id, balance_id, qr_code, status)
		VALUES ($1, $2, (SELECT subscription_id FROM group_session_balances WHERE id = $3), $3, $4, 'registered')
		RETURNING id, member_id, course_instance_id, subscription_id, balance_id, qr_code, status, created_at
	`, memberID, courseInstanceID, balanceID, qrCode).StructScan(&reg)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &reg, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, `
		SELECT id, member_id, course_instance_id, subscription_id, balance_id, qr_code, status, created_at
		FROM registrations
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	return &reg, nil
}

func (r *repository) GetByQRCode(ctx context.Context, qrCode string) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, `
		SELECT id, member_id, course_instance_id, subscription_id, balance_id, qr_code, status, created_at
		FROM registrations
		WHERE qr_code = $1
	`, qrCode)
	if err != nil {
		return nil, err
	}

	return &reg, nil
}

func (r *repository) MemberHasActiveRegistration(ctx context.Context, memberID, courseInstanceID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM registrations
			WHERE member_id = $1 AND course_instance_id = $2 AND status = 'registered'
		)
	`, memberID, courseInstanceID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) CountActiveForCourse(ctx context.Context, courseInstanceID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM registrations
		WHERE course_instance_id = $1 AND status IN ('registered', 'attended')
	`, courseInstanceID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Cancel flips the registration to cancelled and, when refund is set, gives
// the debited session back to its balance. The credit is capped at the
// balance's snapshot total.
func (r *repository) Cancel(ctx context.Context, id int, refund bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE registrations
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'registered'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFoundOrNotRegistered
	}

	if refund {
		_, err = tx.ExecContext(ctx, `
			UPDATE group_session_balances
			SET sessions_remaining = sessions_remaining + 1
			WHERE id = (SELECT balance_id FROM registrations WHERE id = $1)
			  AND sessions_remaining < total_sessions
		`, id)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CreateCheckIn inserts the attendance record. The unique index on
// registration_id makes concurrent scans of the same QR code race-safe: the
// loser of the insert reads the winner's row and reports created=false.
func (r *repository) CreateCheckIn(ctx context.Context, registrationID int, checkinTime time.Time) (*CheckIn, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var ci CheckIn
	created := true
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO checkins (registration_id, checkin_time)
		VALUES ($1, $2)
		ON CONFLICT (registration_id) DO NOTHING
		RETURNING id, registration_id, checkin_time
	`, registrationID, checkinTime).StructScan(&ci)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, err
		}

		created = false
		err = tx.GetContext(ctx, &ci, `
			SELECT id, registration_id, checkin_time
			FROM checkins
			WHERE registration_id = $1
		`, registrationID)
		if err != nil {
			return nil, false, err
		}
	}

	if created {
		_, err = tx.ExecContext(ctx, `
			UPDATE registrations
			SET status = 'attended'
			WHERE id = $1 AND status = 'registered'
		`, registrationID)
		if err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	return &ci, created, nil
}

func (r *repository) GetCheckIn(ctx context.Context, registrationID int) (*CheckIn, error) {
	var ci CheckIn
	err := r.db.GetContext(ctx, &ci, `
		SELECT id, registration_id, checkin_time
		FROM checkins
		WHERE registration_id = $1
	`, registrationID)
	if err != nil {
		return nil, err
	}

	return &ci, nil
}

// DeleteCheckIn reverses a scan. The balance is untouched: the session was
// consumed at registration time, the check-in only records attendance.
func (r *repository) DeleteCheckIn(ctx context.Context, registrationID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM checkins
		WHERE registration_id = $1
	`, registrationID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCheckInNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE registrations
		SET status = 'registered'
		WHERE id = $1 AND status = 'attended'
	`, registrationID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) CountCheckedInForCourse(ctx context.Context, courseInstanceID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM checkins ck
		JOIN registrations r ON ck.registration_id = r.id
		WHERE r.course_instance_id = $1
	`, courseInstanceID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

const detailsSelect = `
	SELECT
		r.id,
		r.member_id,
		r.course_instance_id,
		r.subscription_id,
		r.balance_id,
		r.qr_code,
		CASE
			WHEN r.status = 'registered' AND ci.end_time < NOW() THEN 'absent'
			ELSE r.status
		END AS status,
		r.created_at,
		c.name AS class_name,
		c.group_name AS group_name,
		ci.start_time AS course_start,
		ci.end_time AS course_end,
		m.name AS member_name,
		m.email AS member_email
	FROM registrations r
	JOIN course_instances ci ON r.course_instance_id = ci.id
	JOIN classes c ON ci.class_id = c.id
	JOIN members m ON r.member_id = m.id
`

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]RegistrationWithDetails, error) {
	var regs []RegistrationWithDetails
	err := r.db.SelectContext(ctx, &regs, detailsSelect+`
		WHERE r.member_id = $1
		ORDER BY ci.start_time DESC
	`, memberID)
	if err != nil {
		return nil, err
	}

	return regs, nil
}

func (r *repository) ListByCourse(ctx context.Context, courseInstanceID int) ([]RegistrationWithDetails, error) {
	var regs []RegistrationWithDetails
	err := r.db.SelectContext(ctx, &regs, detailsSelect+`
		WHERE r.course_instance_id = $1
		ORDER BY r.created_at ASC
	`, courseInstanceID)
	if err != nil {
		return nil, err
	}

	return regs, nil
}

func (r *repository) GetStatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error) {
	query := `
		SELECT
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS bucket,
			COUNT(*) FILTER (WHERE status IN ('registered', 'attended')) AS created,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM registrations
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY DATE(created_at)
		ORDER BY bucket
	`

	var stats []StatsByDay
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repository) GetStatsByClass(ctx context.Context, from, to time.Time) ([]StatsByClass, error) {
	query := `
		SELECT
			c.id AS class_id,
			c.name AS class_name,
			COUNT(r.id) FILTER (WHERE r.status IN ('registered', 'attended')) AS created,
			COUNT(r.id) FILTER (WHERE r.status = 'cancelled') AS cancelled
		FROM classes c
		LEFT JOIN course_instances ci ON ci.class_id = c.id
		LEFT JOIN registrations r ON r.course_instance_id = ci.id AND r.created_at BETWEEN $1 AND $2
		GROUP BY c.id, c.name
		ORDER BY c.id
	`

	var stats []StatsByClass
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
