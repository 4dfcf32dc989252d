package dto

import "time"

// CreateExportRequest queues a timetable export.
type CreateExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports the state of an export job.
type ExportJobResponse struct {
	ID          string     `json:"id"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	DownloadURL string     `json:"download_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
