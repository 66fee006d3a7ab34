package viewmodels

import "time"

type Job struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Assignment struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"job_id"`
	EmployeeID int64     `json:"employee_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Completed  bool      `json:"completed"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type LabourEntry struct {
	ID           int64     `json:"id"`
	JobID        int64     `json:"job_id"`
	AssignmentID *int64    `json:"assignment_id"`
	EmployeeID   int64     `json:"employee_id"`
	Hours        string    `json:"hours"`
	Rate         string    `json:"rate"`
	Total        string    `json:"total"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

type Activity struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Employee struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	HourlyRate *string `json:"hourly_rate"`
}

type BulkResult struct {
	Updated          []int64 `json:"updated"`
	Changed          []int64 `json:"changed"`
	LabourGenerated  int     `json:"labour_generated"`
	LabourRemoved    int64   `json:"labour_removed"`
	RecomputedJobIDs []int64 `json:"recomputed_job_ids"`
}

type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
