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

func TestListSubjectPreferences(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectPreferenceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "subject", "confidence_label", "confidence_level", "created_at", "updated_at"}).
		AddRow("p1", "u1", "English", string(models.ConfidenceHigh), 4, now, now).
		AddRow("p2", "u1", "Maths", string(models.ConfidenceLow), 2, now, now)
	mock.ExpectQuery(`SELECT .+ FROM student_subject_preferences WHERE user_id = \$1 ORDER BY subject ASC`).
		WithArgs("u1").
		WillReturnRows(rows)

	prefs, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "English", prefs[0].Subject)
	assert.Equal(t, models.ConfidenceLow, prefs[1].ConfidenceLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSubjectPreferencesSwapsSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM student_subject_preferences WHERE user_id").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO student_subject_preferences").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_subject_preferences").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	prefs := []models.SubjectPreference{
		{Subject: "Maths", ConfidenceLabel: models.ConfidenceLow, ConfidenceLevel: 2},
		{Subject: "English", ConfidenceLabel: models.ConfidenceHigh, ConfidenceLevel: 4},
	}
	err := repo.ReplaceForUser(context.Background(), "u1", prefs)
	require.NoError(t, err)

	assert.NotEmpty(t, prefs[0].ID)
	assert.Equal(t, "u1", prefs[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSubjectPreferencesRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM student_subject_preferences WHERE user_id").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO student_subject_preferences").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.ReplaceForUser(context.Background(), "u1", []models.SubjectPreference{{Subject: "Maths"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
