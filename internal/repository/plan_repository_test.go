package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athro-ai/athro-study-api/internal/models"
)

func TestCreatePlanDefaultsMeta(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO study_plans").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	plan := &models.StudyPlan{UserID: "u1", Status: models.PlanActive}
	err = repo.CreatePlan(context.Background(), tx, plan)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, []byte("{}"), []byte(plan.Meta))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionPairLinksRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO calendar_events").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO study_plan_sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	event := &models.CalendarEvent{UserID: "u1", Title: "Maths Study Session", EventType: models.EventStudySession, StartTime: time.Now(), EndTime: time.Now().Add(45 * time.Minute)}
	session := &models.StudyPlanSession{PlanID: "plan-1", Subject: "Maths", Confidence: models.ConfidenceLow, DayOfWeek: 1, DurationMinutes: 45}
	err = repo.CreateSessionPair(context.Background(), tx, event, session)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, event.ID)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, event.ID, session.CalendarEventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionPairAbortsOnEventFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO calendar_events").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	event := &models.CalendarEvent{UserID: "u1", EventType: models.EventStudySession}
	session := &models.StudyPlanSession{PlanID: "plan-1", Subject: "Maths"}
	err = repo.CreateSessionPair(context.Background(), tx, event, session)
	require.Error(t, err)
	require.NoError(t, tx.Rollback())

	// The session row never got written, so no event link exists.
	assert.Empty(t, session.CalendarEventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "status", "total_sessions", "failed_count", "meta", "created_at", "updated_at"}).
		AddRow("plan-1", "u1", string(models.PlanActive), 5, 0, []byte("{}"), now, now)
	mock.ExpectQuery(`SELECT .+ FROM study_plans WHERE user_id = \$1 AND status = \$2`).
		WithArgs("u1", string(models.PlanActive)).
		WillReturnRows(rows)

	plan, err := repo.GetActiveByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, 5, plan.TotalSessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveByUserMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM study_plans WHERE user_id = \$1 AND status = \$2`).
		WithArgs("u1", string(models.PlanActive)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActiveByUser(context.Background(), "u1")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePlanCascadeOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM calendar_events WHERE user_id = \$1 AND id IN`).
		WithArgs("u1", "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM study_plan_sessions WHERE plan_id").
		WithArgs("plan-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM study_plans WHERE id = \$1 AND user_id = \$2`).
		WithArgs("plan-1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.DeletePlanCascade(context.Background(), tx, "u1", "plan-1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
