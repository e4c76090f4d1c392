package separate

import (
	"context"
	"encoding/json"
	"os"
	"path"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	cloudstorage "github.com/2highsebas/openarms-backend/src/worker/internal/application/cloud_storage/entity"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_message"
	"github.com/2highsebas/openarms-backend/src/worker/internal/lib/storagepath"
	"github.com/apex/log"
)

const JobType string = "separate_stems"
const ErrorMessage string = "Failed to separate the audio into stems"

type SeparateJobHandler interface {
	HandleSeparateJob(message []byte) error
}

type JobParams struct {
	job_message.JobIdentifier
	SavedOriginalURL string `json:"saved_original_url"`
}

type Separator interface {
	Separate(ctx context.Context, inputPath string, outputDir string) (cascade.Result, error)
}

func NewJobHandler(separator Separator, jobStore entity.Store, fileStore cloudstorage.FileStore, pathGenerator storagepath.Generator, workingDirStr string) (JobHandler, error) {
	workingDir, err := working_dir.NewWorkingDir(workingDirStr)
	if err != nil {
		return JobHandler{}, cerr.Field("working_dir_str", workingDirStr).
			Wrap(err).Error("Failed to create working dir")
	}

	return JobHandler{
		separator:     separator,
		jobStore:      jobStore,
		fileStore:     fileStore,
		pathGenerator: pathGenerator,
		workingDir:    workingDir,
	}, nil
}

type JobHandler struct {
	separator     Separator
	jobStore      entity.Store
	fileStore     cloudstorage.FileStore
	pathGenerator storagepath.Generator
	workingDir    working_dir.WorkingDir
}

// HandleSeparateJob runs the whole separation pipeline for one queued
// job: fetch the saved original, separate it locally, push the stems to
// cloud storage, and record the result on the job.
func (d JobHandler) HandleSeparateJob(message []byte) error {
	params, err := unmarshalMessage(message)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to unmarshal message JSON")
	}

	errctx := cerr.Field("job_id", params.JobID).
		Field("saved_original_url", params.SavedOriginalURL)

	scope, err := d.workingDir.NewScope()
	if err != nil {
		return errctx.Wrap(err).Error("Failed to make a scratch dir for the job")
	}
	defer scope.Close()

	inputPath, err := d.fetchOriginal(params, scope)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to fetch the original audio")
	}

	result, err := d.separator.Separate(context.Background(), inputPath, scope.Join("stems"))
	if err != nil {
		return errctx.Wrap(err).Error("Separation pipeline failed")
	}

	stemURLs, err := d.uploadStems(params.JobID, result)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to upload the separated stems")
	}

	if err := d.recordResult(params.JobID, result, stemURLs); err != nil {
		return errctx.Wrap(err).Error("Failed to record the separation result")
	}

	return nil
}

func (d JobHandler) fetchOriginal(params JobParams, scope working_dir.Scope) (string, error) {
	fileContent, err := d.fileStore.GetFile(context.Background(), params.SavedOriginalURL)
	if err != nil {
		return "", cerr.Wrap(err).Error("Failed to read the original from cloud storage")
	}

	inputPath := scope.Join("original.mp3")
	if err := os.WriteFile(inputPath, fileContent, os.ModePerm); err != nil {
		return "", cerr.Field("input_path", inputPath).
			Wrap(err).Error("Failed to write the original to the scratch dir")
	}

	return inputPath, nil
}

func (d JobHandler) uploadStems(jobID string, result cascade.Result) (map[string]string, error) {
	stemURLs := map[string]string{}

	for stemName, stemPath := range result.StemPaths {
		fileContent, err := os.ReadFile(stemPath)
		if err != nil {
			return nil, cerr.Field("stem_path", stemPath).
				Wrap(err).Error("Failed to read a separated stem file")
		}

		destinationURL := d.pathGenerator.GeneratePath(jobID, path.Join("stems", audio.StemFileName(stemName)))

		log.WithField("destination_url", destinationURL).Info("Uploading stem")
		if err := d.fileStore.WriteFile(context.Background(), destinationURL, fileContent); err != nil {
			return nil, cerr.Field("destination_url", destinationURL).
				Wrap(err).Error("Failed to write a stem to cloud storage")
		}

		stemURLs[string(stemName)] = destinationURL
	}

	return stemURLs, nil
}

func (d JobHandler) recordResult(jobID string, result cascade.Result, stemURLs map[string]string) error {
	job, err := d.jobStore.GetJob(context.Background(), jobID)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to get the job from DB")
	}

	job.Status = entity.StatusDone
	job.StemURLs = stemURLs
	job.Outcome = string(result.Outcome)
	job.HighQuality = result.HighQuality

	if err := d.jobStore.UpdateJob(context.Background(), job); err != nil {
		return cerr.Wrap(err).Error("Failed to update the finished job")
	}

	return nil
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

	if params.SavedOriginalURL == "" {
		return JobParams{}, errctx.Error("Missing saved original URL")
	}

	return params, nil
}
