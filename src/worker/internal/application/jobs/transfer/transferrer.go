package transfer

import (
	"context"
	"os"

	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	cloudstorage "github.com/2highsebas/openarms-backend/src/worker/internal/application/cloud_storage/entity"
	"github.com/2highsebas/openarms-backend/src/worker/internal/lib/storagepath"
	"github.com/apex/log"
)

const savedOriginalLeafPath = "original/original.mp3"

type Downloader interface {
	Download(sourceURL string, outputFilePath string) error
}

func NewTransferrer(downloader Downloader, fileStore cloudstorage.FileStore, pathGenerator storagepath.Generator, workingDirStr string) (Transferrer, error) {
	workingDir, err := working_dir.NewWorkingDir(workingDirStr)
	if err != nil {
		return Transferrer{}, cerr.Field("working_dir_str", workingDirStr).
			Wrap(err).Error("Failed to create working dir")
	}

	return Transferrer{
		downloader:    downloader,
		fileStore:     fileStore,
		pathGenerator: pathGenerator,
		workingDir:    workingDir,
	}, nil
}

// Transferrer pulls the original audio from wherever the caller pointed
// at and lands a copy in cloud storage, where the rest of the pipeline
// expects to find it.
type Transferrer struct {
	downloader    Downloader
	fileStore     cloudstorage.FileStore
	pathGenerator storagepath.Generator
	workingDir    working_dir.WorkingDir
}

func (t Transferrer) Transfer(ctx context.Context, jobID string, originalURL string) (string, error) {
	errctx := cerr.Field("job_id", jobID).Field("original_url", originalURL)

	scope, err := t.workingDir.NewScope()
	if err != nil {
		return "", errctx.Wrap(err).Error("Failed to make a temp dir for the download")
	}
	defer scope.Close()

	tempFilePath := scope.Join("original.mp3")

	if err := t.downloader.Download(originalURL, tempFilePath); err != nil {
		return "", errctx.Wrap(err).Error("Failed to download the original audio")
	}

	log.Info("Reading downloaded file to memory")
	fileContent, err := os.ReadFile(tempFilePath)
	if err != nil {
		return "", errctx.Wrap(err).Error("Failed to read the downloaded audio")
	}

	destinationURL := t.pathGenerator.GeneratePath(jobID, savedOriginalLeafPath)

	log.Info("Writing file to remote file store")
	if err := t.fileStore.WriteFile(ctx, destinationURL, fileContent); err != nil {
		return "", errctx.Wrap(err).Error("Failed to write the original audio to the cloud")
	}

	return destinationURL, nil
}
