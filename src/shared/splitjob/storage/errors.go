package jobstorage

import "github.com/cockroachdb/errors"

var (
	JobNotFoundMark  = errors.New("Job is not found")
	IDEmptyMark      = errors.New("Job ID is empty")
	DefaultErrorMark = errors.New("Internal DB error")
)
