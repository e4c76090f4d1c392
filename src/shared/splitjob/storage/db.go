package jobstorage

import (
	"context"

	"github.com/2highsebas/openarms-backend/src/shared/lib/errors/mark"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
)

const (
	JobsTable = "SplitJobs"
	idKey     = "id"
)

var _ entity.Store = DB{}

type DB struct {
	dynamoDB *dynamo.DB
}

func NewDB(dynamoDB *dynamo.DB) DB {
	return DB{
		dynamoDB: dynamoDB,
	}
}

func (d DB) GetJob(ctx context.Context, jobID string) (entity.Job, error) {
	if jobID == "" {
		return entity.Job{}, mark.Message(IDEmptyMark, "No job ID was provided")
	}

	job := entity.Job{}
	err := d.dynamoDB.Table(JobsTable).
		Get(idKey, jobID).
		OneWithContext(ctx, &job)

	if err != nil {
		switch {
		case errors.Is(err, dynamo.ErrNotFound):
			return entity.Job{}, mark.Wrap(err, JobNotFoundMark, "Job is not found")
		default:
			return entity.Job{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch job")
		}
	}

	return job, nil
}

func (d DB) CreateJob(ctx context.Context, job entity.Job) error {
	if job.ID == "" {
		return mark.Message(IDEmptyMark, "Job ID is not defined on the job")
	}

	err := d.dynamoDB.Table(JobsTable).
		Put(job).
		If("attribute_not_exists($)", idKey).
		RunWithContext(ctx)

	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to put the job in the DB")
	}

	return nil
}

func (d DB) UpdateJob(ctx context.Context, job entity.Job) error {
	if job.ID == "" {
		return mark.Message(IDEmptyMark, "Job ID is not defined on the job")
	}

	err := d.dynamoDB.Table(JobsTable).
		Put(job).
		RunWithContext(ctx)

	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to update the job in the DB")
	}

	return nil
}
