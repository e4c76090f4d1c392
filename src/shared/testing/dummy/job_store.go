package dummy

import (
	"context"
	"sync"

	"github.com/2highsebas/openarms-backend/src/shared/lib/errors/mark"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	jobstorage "github.com/2highsebas/openarms-backend/src/shared/splitjob/storage"
)

var _ entity.Store = &JobStore{}

func NewDummyJobStore() *JobStore {
	return &JobStore{
		Unavailable: false,
		State:       make(map[string]entity.Job),
	}
}

type JobStore struct {
	Unavailable bool
	State       map[string]entity.Job
	mutex       sync.RWMutex
}

func (j *JobStore) GetJob(ctx context.Context, jobID string) (entity.Job, error) {
	if j.Unavailable {
		return entity.Job{}, NetworkFailure
	}

	j.mutex.RLock()
	defer j.mutex.RUnlock()

	job, ok := j.State[jobID]
	if !ok {
		return entity.Job{}, mark.Wrap(NotFound, jobstorage.JobNotFoundMark, "Job is not found")
	}

	return job, nil
}

func (j *JobStore) CreateJob(ctx context.Context, job entity.Job) error {
	return j.UpdateJob(ctx, job)
}

func (j *JobStore) UpdateJob(ctx context.Context, job entity.Job) error {
	if j.Unavailable {
		return NetworkFailure
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	j.State[job.ID] = job
	return nil
}
