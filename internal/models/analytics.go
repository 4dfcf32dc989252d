package models

import "time"

// SubjectStat aggregates study volume for one subject.
type SubjectStat struct {
	Subject         string          `db:"subject" json:"subject"`
	Sessions        int             `db:"sessions" json:"sessions"`
	Minutes         int             `db:"minutes" json:"minutes"`
	ConfidenceLabel ConfidenceLabel `db:"confidence_label" json:"confidence_label"`
}

// StudySummary is the per-student analytics payload.
type StudySummary struct {
	UserID                 string         `json:"user_id"`
	TotalSessions          int            `json:"total_sessions"`
	TotalMinutes           int            `json:"total_minutes"`
	PerSubject             []SubjectStat  `json:"per_subject"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
	GeneratedAt            time.Time      `json:"generated_at"`
}

// StudentOverview is one row of the staff dashboard listing.
type StudentOverview struct {
	UserID        string     `db:"user_id" json:"user_id"`
	FullName      string     `db:"full_name" json:"full_name"`
	YearGroup     *int       `db:"year_group" json:"year_group,omitempty"`
	SubjectCount  int        `db:"subject_count" json:"subject_count"`
	PlannedWeekly int        `db:"planned_weekly" json:"planned_weekly"`
	LastPlanAt    *time.Time `db:"last_plan_at" json:"last_plan_at,omitempty"`
}

// SystemMetrics is a lightweight runtime snapshot for the staff dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
