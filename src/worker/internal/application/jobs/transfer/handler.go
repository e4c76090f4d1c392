package transfer

import (
	"context"
	"encoding/json"

	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_message"
)

const JobType string = "transfer_original"
const ErrorMessage string = "Failed to transfer the original audio to cloud storage"

type TransferJobHandler interface {
	HandleTransferJob(message []byte) (JobParams, string, error)
}

type JobParams struct {
	job_message.JobIdentifier
	OriginalURL string `json:"original_url"`
}

func NewJobHandler(transferrer Transferrer, jobStore entity.Store) JobHandler {
	return JobHandler{
		transferrer: transferrer,
		jobStore:    jobStore,
	}
}

type JobHandler struct {
	transferrer Transferrer
	jobStore    entity.Store
}

// HandleTransferJob moves the job into processing and saves the original
// into cloud storage. The saved URL comes back so the router can queue
// the separation stage.
func (d JobHandler) HandleTransferJob(message []byte) (JobParams, string, error) {
	params, err := unmarshalMessage(message)
	if err != nil {
		return JobParams{}, "", cerr.Wrap(err).Error("Failed to unmarshal message JSON")
	}

	errctx := cerr.Field("job_id", params.JobID)

	job, err := d.jobStore.GetJob(context.Background(), params.JobID)
	if err != nil {
		return JobParams{}, "", errctx.Wrap(err).Error("Failed to get the job from DB")
	}

	if job.Status != entity.StatusRequested {
		return JobParams{}, "", errctx.Field("status", job.Status).
			Error("Job is not in requested status, abort processing to be safe")
	}

	job.Status = entity.StatusProcessing
	if err := d.jobStore.UpdateJob(context.Background(), job); err != nil {
		return JobParams{}, "", errctx.Wrap(err).Error("Failed to set the job status")
	}

	savedOriginalURL, err := d.transferrer.Transfer(context.Background(), params.JobID, params.OriginalURL)
	if err != nil {
		return JobParams{}, "", errctx.Wrap(err).Error("Failed to transfer the original audio")
	}

	return params, savedOriginalURL, nil
}

func unmarshalMessage(message []byte) (JobParams, error) {
	params := JobParams{}
	err := json.Unmarshal(message, &params)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to unmarshal message JSON")
	}

	errctx := cerr.Field("job_params", params)

	if params.JobID == "" {
		return JobParams{}, errctx.Error("Missing job ID")
	}

	if params.OriginalURL == "" {
		return JobParams{}, errctx.Error("Missing original URL")
	}

	return params, nil
}
