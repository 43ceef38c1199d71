package messagequeue

// AlertPayload is the schema for bencher.alerts.{project_id} messages,
// published best-effort on every persisted Alert (spec.md §4.14).
type AlertPayload struct {
	AlertID     string `json:"alert_id"`
	ReportID    string `json:"report_id"`
	ProjectID   string `json:"project_id"`
	BoundaryID  string `json:"boundary_id"`
	Side        string `json:"side"`
	BenchmarkID string `json:"benchmark_id"`
	MeasureID   string `json:"measure_id"`
}
