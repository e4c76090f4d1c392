package job_router

import (
	"context"
	"encoding/json"

	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/rabbitmq"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_message"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/separate"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/transfer"
	"github.com/apex/log"
	"github.com/rabbitmq/amqp091-go"
)

func NewJobRouter(
	jobStore entity.Store,
	publisher rabbitmq.Publisher,
	transferHandler transfer.TransferJobHandler,
	separateHandler separate.SeparateJobHandler,
) JobRouter {
	return JobRouter{
		jobStore:        jobStore,
		publisher:       publisher,
		transferHandler: transferHandler,
		separateHandler: separateHandler,
	}
}

// JobRouter dispatches queue messages to their stage handler and chains
// the next stage on success. Any stage failure is recorded on the job
// before the message gets nacked.
type JobRouter struct {
	jobStore        entity.Store
	publisher       rabbitmq.Publisher
	transferHandler transfer.TransferJobHandler
	separateHandler separate.SeparateJobHandler
}

func (j JobRouter) HandleMessage(message amqp091.Delivery) error {
	switch message.Type {
	case transfer.JobType:
		return j.handleTransferJob(message.Body)

	case separate.JobType:
		return j.handleSeparateJob(message.Body)

	default:
		return cerr.Field("message_type", message.Type).
			Error("Unrecognized message type")
	}
}

func (j JobRouter) handleTransferJob(message []byte) error {
	params, savedOriginalURL, err := j.transferHandler.HandleTransferJob(message)
	if err != nil {
		err = cerr.Wrap(err).Error("Failed to handle the transfer job")
		j.markJobFailed(message, transfer.ErrorMessage, err)
		return err
	}

	if err := j.publishSeparateJob(params.JobID, savedOriginalURL); err != nil {
		err = cerr.Wrap(err).Error("Failed to queue the separation stage")
		j.markJobFailed(message, transfer.ErrorMessage, err)
		return err
	}

	return nil
}

func (j JobRouter) handleSeparateJob(message []byte) error {
	if err := j.separateHandler.HandleSeparateJob(message); err != nil {
		err = cerr.Wrap(err).Error("Failed to handle the separate job")
		j.markJobFailed(message, separate.ErrorMessage, err)
		return err
	}

	return nil
}

func (j JobRouter) publishSeparateJob(jobID string, savedOriginalURL string) error {
	jsonBytes, err := json.Marshal(separate.JobParams{
		JobIdentifier:    job_message.JobIdentifier{JobID: jobID},
		SavedOriginalURL: savedOriginalURL,
	})

	if err != nil {
		return cerr.Wrap(err).Error("Failed to marshal the separate job params")
	}

	publishMsg := amqp091.Publishing{
		Type: separate.JobType,
		Body: jsonBytes,
	}

	if err := j.publisher.Publish(publishMsg); err != nil {
		return cerr.Wrap(err).Error("Failed to publish message to rabbitmq")
	}

	return nil
}

// markJobFailed is best effort: the message may not even parse far
// enough to name a job, and the DB write itself can fail. Either way the
// original error still propagates to the queue.
func (j JobRouter) markJobFailed(message []byte, errorMessage string, jobErr error) {
	identifier := job_message.JobIdentifier{}
	if err := json.Unmarshal(message, &identifier); err != nil || identifier.JobID == "" {
		log.Warn("Cannot attribute the failed message to a job")
		return
	}

	logger := log.WithField("job_id", identifier.JobID)

	job, err := j.jobStore.GetJob(context.Background(), identifier.JobID)
	if err != nil {
		logger.Error("Failed to get the job to mark it as errored")
		return
	}

	job.Status = entity.StatusError
	job.StatusMessage = errorMessage

	if err := j.jobStore.UpdateJob(context.Background(), job); err != nil {
		logger.Error("Failed to mark the job as errored")
	}

	cerr.Log(jobErr)
}
