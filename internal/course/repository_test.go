package course

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func TestCreateClassAndInstance(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO classes (name, group_name, trainer_name) VALUES ($1, $2, $3) RETURNING id, name, group_name, trainer_name, created_at")).
		WithArgs("Pilates", "pilates", "Nora").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "group_name", "trainer_name", "created_at"}).
			AddRow(2, "Pilates", "pilates", "Nora", now))

	class, err := repo.CreateClass(ctx, "Pilates", "pilates", "Nora")
	require.NoError(t, err)
	require.Equal(t, 2, class.ID)

	start := now.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO course_instances (class_id, start_time, end_time, max_participants) VALUES ($1, $2, $3, $4) RETURNING id, class_id, start_time, end_time, max_participants, created_at")).
		WithArgs(2, start, end, 15).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "start_time", "end_time", "max_participants", "created_at"}).
			AddRow(7, 2, start, end, 15, now))

	inst, err := repo.CreateInstance(ctx, 2, start, end, 15)
	require.NoError(t, err)
	require.Equal(t, 7, inst.ID)
	require.Equal(t, 15, inst.MaxParticipants)
}

func TestGetInstanceGroup(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.group_name FROM course_instances ci JOIN classes c ON ci.class_id = c.id WHERE ci.id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"group_name"}).AddRow("pilates"))

	group, err := repo.GetInstanceGroup(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "pilates", group)
}

func TestGetInstanceByID(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, start_time, end_time, max_participants, created_at FROM course_instances WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "start_time", "end_time", "max_participants", "created_at"}).
			AddRow(7, 2, now.Add(time.Hour), now.Add(2*time.Hour), 15, now))

	inst, err := repo.GetInstanceByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, inst.ClassID)
}
