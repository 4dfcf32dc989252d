package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athro-ai/athro-study-api/internal/models"
)

func calendarRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "subject", "topic", "description", "event_type", "start_time", "end_time", "recurrence_rule", "created_at", "updated_at"}).
		AddRow("ev-1", "u1", "Maths Study Session", "Maths", nil, "", string(models.EventStudySession), now, now.Add(45*time.Minute), nil, now, now)
}

func TestListFiltersByWindow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	now := time.Now()
	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM calendar_events WHERE user_id = \$1 AND end_time >= \$2 AND start_time <= \$3 ORDER BY start_time ASC`).
		WithArgs("u1", from, to).
		WillReturnRows(calendarRows(now))

	events, err := repo.List(context.Background(), models.CalendarFilter{UserID: "u1", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiltersByType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM calendar_events WHERE user_id = \$1 AND event_type = ANY\(\$2\) ORDER BY start_time ASC`).
		WithArgs("u1", pq.Array([]string{string(models.EventBlocked)})).
		WillReturnRows(calendarRows(now))

	_, err := repo.List(context.Background(), models.CalendarFilter{UserID: "u1", Types: []models.EventType{models.EventBlocked}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("INSERT INTO calendar_events").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.CalendarEvent{UserID: "u1", Title: "Revision", EventType: models.EventStudySession, StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("UPDATE calendar_events SET").WillReturnResult(sqlmock.NewResult(0, 0))

	event := &models.CalendarEvent{ID: "ghost", UserID: "u1"}
	err := repo.Update(context.Background(), event)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("DELETE FROM calendar_events WHERE id").
		WithArgs("ghost", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u1", "ghost")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDsSkipsBlankIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM calendar_events WHERE user_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs("u1", pq.Array([]string{"ev-1", "ev-2"})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.DeleteByIDs(context.Background(), tx, "u1", []string{"ev-1", "", "ev-2", " "})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDsNoopOnEmptyList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.DeleteByIDs(context.Background(), tx, "u1", nil)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
