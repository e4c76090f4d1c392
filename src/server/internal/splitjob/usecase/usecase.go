package splitjobusecase

import (
	"context"
	"encoding/json"

	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	splitjoberrors "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/errors"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/rabbitmq"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	jobstorage "github.com/2highsebas/openarms-backend/src/shared/splitjob/storage"
	"github.com/cockroachdb/errors/markers"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const TransferJobType = "transfer_original"

type TransferJobParams struct {
	JobID       string `json:"job_id"`
	OriginalURL string `json:"original_url"`
}

func NewUsecase(db entity.Store, publisher rabbitmq.Publisher) Usecase {
	return Usecase{
		db:        db,
		publisher: publisher,
	}
}

type Usecase struct {
	db        entity.Store
	publisher rabbitmq.Publisher
}

// CreateJob registers a new separation job and queues the first stage of
// the async pipeline. The job is only returned once both the DB write
// and the publish succeed, so a caller holding a job can always poll it.
func (u Usecase) CreateJob(ctx context.Context, originalURL string) (entity.Job, *api.Error) {
	if originalURL == "" {
		err := cerr.Error("No original URL was provided")
		return entity.Job{}, api.CommitError(err,
			splitjoberrors.BadJobDataCode,
			"No audio URL was provided. Please submit a URL to a recording")
	}

	job := entity.Job{
		ID:          uuid.New().String(),
		Status:      entity.StatusRequested,
		OriginalURL: originalURL,
	}

	if err := u.db.CreateJob(ctx, job); err != nil {
		err = cerr.Wrap(err).Error("Failed to create the job record")
		return entity.Job{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to create the separation job")
	}

	if err := u.publishTransferJob(job); err != nil {
		err = cerr.Field("job_id", job.ID).
			Wrap(err).Error("Failed to publish the transfer job")

		u.markJobFailed(job)

		return entity.Job{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to queue the separation job")
	}

	return job, nil
}

func (u Usecase) GetJob(ctx context.Context, jobID string) (entity.Job, *api.Error) {
	job, err := u.db.GetJob(ctx, jobID)
	if err != nil {
		err = cerr.Field("job_id", jobID).
			Wrap(err).Error("Failed to get job from DB")

		switch {
		case markers.Is(err, jobstorage.JobNotFoundMark):
			return entity.Job{}, api.CommitError(err,
				splitjoberrors.JobNotFoundCode,
				"This separation job can't be found")

		case markers.Is(err, jobstorage.IDEmptyMark):
			return entity.Job{}, api.CommitError(err,
				splitjoberrors.BadJobDataCode,
				"No job ID was provided")

		default:
			return entity.Job{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to fetch the separation job")
		}
	}

	return job, nil
}

func (u Usecase) publishTransferJob(job entity.Job) error {
	jsonBytes, err := json.Marshal(TransferJobParams{
		JobID:       job.ID,
		OriginalURL: job.OriginalURL,
	})

	if err != nil {
		return cerr.Wrap(err).Error("Failed to marshal job params for the queue msg")
	}

	publishMsg := amqp091.Publishing{
		Type: TransferJobType,
		Body: jsonBytes,
	}

	if err := u.publisher.Publish(publishMsg); err != nil {
		return cerr.Wrap(err).Error("Failed to publish message to rabbitmq")
	}

	return nil
}

// markJobFailed is best effort. The job record already exists, so leaving
// it in error state beats leaving it permanently stuck in requested.
func (u Usecase) markJobFailed(job entity.Job) {
	job.Status = entity.StatusError
	job.StatusMessage = "Failed to queue the separation job"

	if err := u.db.UpdateJob(context.Background(), job); err != nil {
		cerr.Log(cerr.Field("job_id", job.ID).
			Wrap(err).Error("Failed to mark the job as errored"))
	}
}
