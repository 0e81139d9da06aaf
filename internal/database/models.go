package database

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID               string
	ProfileURL       string
	StartedAt        string
	FinishedAt       string
	Status           string
	HTTPStatus       int
	PublicationCount int
	Error            *string
	OutputPath       *string
	ResultJSON       *string
}

// Stats contains aggregate run statistics.
type Stats struct {
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
	LastSuccessAt  string
}
