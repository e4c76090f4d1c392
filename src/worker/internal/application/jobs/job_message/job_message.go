package job_message

// JobIdentifier is embedded in every queue message body so the router
// can attribute failures to a job without knowing the message shape.
type JobIdentifier struct {
	JobID string `json:"job_id"`
}
