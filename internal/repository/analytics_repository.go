package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// AnalyticsRepository runs the SQL aggregates behind the analytics payloads.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// SubjectStatsByUser aggregates planned study volume per subject across the
// user's active plan.
func (r *AnalyticsRepository) SubjectStatsByUser(ctx context.Context, userID string) ([]models.SubjectStat, error) {
	const query = `SELECT s.subject, COUNT(*) AS sessions, COALESCE(SUM(s.duration_minutes), 0) AS minutes, MIN(s.confidence) AS confidence_label
		FROM study_plan_sessions s
		JOIN study_plans p ON p.id = s.plan_id
		WHERE p.user_id = $1 AND p.status = 'active'
		GROUP BY s.subject
		ORDER BY s.subject ASC`
	var stats []models.SubjectStat
	if err := r.db.SelectContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("subject stats: %w", err)
	}
	return stats, nil
}

// ListStudentOverviews returns one row per student for the staff dashboard.
func (r *AnalyticsRepository) ListStudentOverviews(ctx context.Context) ([]models.StudentOverview, error) {
	const query = `SELECT u.id AS user_id, u.full_name, u.year_group,
			COALESCE(sp.subject_count, 0) AS subject_count,
			COALESCE(pl.planned_weekly, 0) AS planned_weekly,
			pl.last_plan_at
		FROM users u
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS subject_count
			FROM student_subject_preferences GROUP BY user_id
		) sp ON sp.user_id = u.id
		LEFT JOIN (
			SELECT user_id, SUM(total_sessions) AS planned_weekly, MAX(created_at) AS last_plan_at
			FROM study_plans WHERE status = 'active' GROUP BY user_id
		) pl ON pl.user_id = u.id
		WHERE u.role = 'STUDENT' AND u.active = TRUE
		ORDER BY u.full_name ASC`
	var overviews []models.StudentOverview
	if err := r.db.SelectContext(ctx, &overviews, query); err != nil {
		return nil, fmt.Errorf("list student overviews: %w", err)
	}
	return overviews, nil
}
