package domain

// Aggregate rows produced by analytics queries.
type (
	DatedCount struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}

	UserWorkload struct {
		Username          string `json:"username"`
		FullName          string `json:"full_name,omitempty"`
		ActiveAssignments int    `json:"active_assignments"`
	}

	ConfidenceBuckets struct {
		High   int `json:"high"`
		Medium int `json:"medium"`
		Low    int `json:"low"`
	}

	AssignmentStats struct {
		Total              int            `json:"total_assignments"`
		ByStatus           map[string]int `json:"status_distribution"`
		AvgCompletionHours float64        `json:"avg_completion_time_hours"`
	}

	DocumentHit struct {
		ID           string  `json:"id"`
		OriginalName string  `json:"original_name"`
		DocType      string  `json:"doc_type,omitempty"`
		Confidence   float64 `json:"confidence,omitempty"`
		Summary      string  `json:"summary,omitempty"`
		CreatedAt    string  `json:"created_at"`
	}
)

type DashboardReport struct {
	TotalDocuments  int            `json:"total_documents"`
	DocumentsByType map[string]int `json:"documents_by_type"`
	ProcessingStats map[string]int `json:"processing_stats"`
	UserWorkload    []UserWorkload `json:"user_workload"`
}

type TrendsReport struct {
	Days         int          `json:"days"`
	DailyUploads []DatedCount `json:"daily_uploads"`
}

type AccuracyReport struct {
	TotalClassified int                `json:"total_classified"`
	High            int                `json:"high_confidence"`
	Medium          int                `json:"medium_confidence"`
	Low             int                `json:"low_confidence"`
	Distribution    map[string]float64 `json:"accuracy_distribution"`
}

type RoutingReport struct {
	AssignmentStats
	UserWorkloads []UserWorkload `json:"user_workloads"`
}

type SearchReport struct {
	Query        string        `json:"query"`
	TotalResults int           `json:"total_results"`
	Results      []DocumentHit `json:"results"`
}
