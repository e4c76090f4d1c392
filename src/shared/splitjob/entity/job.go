package entity

import "context"

type JobStatus string

const (
	StatusRequested  JobStatus = "requested"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// Job tracks a single asynchronous stem separation request from upload
// to finished stems. StemURLs is only populated once Status is done.
type Job struct {
	ID            string            `dynamo:"id" json:"id"`
	Status        JobStatus         `dynamo:"status" json:"status"`
	OriginalURL   string            `dynamo:"original_url" json:"original_url"`
	StemURLs      map[string]string `dynamo:"stem_urls,omitempty" json:"stem_urls,omitempty"`
	Outcome       string            `dynamo:"outcome,omitempty" json:"outcome,omitempty"`
	HighQuality   bool              `dynamo:"high_quality" json:"high_quality"`
	StatusMessage string            `dynamo:"status_message,omitempty" json:"status_message,omitempty"`
}

type Store interface {
	GetJob(ctx context.Context, jobID string) (Job, error)
	CreateJob(ctx context.Context, job Job) error
	UpdateJob(ctx context.Context, job Job) error
}
