package transfer_test

import (
	"encoding/json"
	"os"

	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	testlib "github.com/2highsebas/openarms-backend/src/shared/testing"
	"github.com/2highsebas/openarms-backend/src/shared/testing/dummy"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_message"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/transfer"
	"github.com/2highsebas/openarms-backend/src/worker/internal/lib/storagepath"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

type fakeDownloader struct {
	content map[string][]byte
	err     error
}

func (f *fakeDownloader) Download(sourceURL string, outputFilePath string) error {
	if f.err != nil {
		return f.err
	}

	content, ok := f.content[sourceURL]
	if !ok {
		return errors.New("404 not found")
	}

	return os.WriteFile(outputFilePath, content, os.ModePerm)
}

var _ = Describe("JobHandler", func() {
	const (
		jobID       = "transfer-test-job"
		originalURL = "https://recordings.example.com/song.mp3"
		savedURL    = "https://storage.googleapis.com/split-bucket/transfer-test-job/original/original.mp3"
	)

	var (
		workingDirPath string
		audioContent   []byte
		message        []byte

		downloader *fakeDownloader
		fileStore  *dummy.FileStore
		jobStore   *dummy.JobStore
		handler    transfer.JobHandler
	)

	BeforeEach(func() {
		var err error
		workingDirPath, err = os.MkdirTemp("", "transfer-test-*")
		Expect(err).NotTo(HaveOccurred())

		audioContent = []byte("the original recording bytes")
		downloader = &fakeDownloader{
			content: map[string][]byte{originalURL: audioContent},
		}

		fileStore = dummy.NewDummyFileStore()
		jobStore = dummy.NewDummyJobStore()
		jobStore.State[jobID] = entity.Job{
			ID:          jobID,
			Status:      entity.StatusRequested,
			OriginalURL: originalURL,
		}

		pathGenerator := storagepath.Generator{
			Host:   "https://storage.googleapis.com",
			Bucket: "split-bucket",
		}

		transferrer := testlib.ExpectSuccess(
			transfer.NewTransferrer(downloader, fileStore, pathGenerator, workingDirPath))
		handler = transfer.NewJobHandler(transferrer, jobStore)

		message = testlib.ExpectSuccess(json.Marshal(transfer.JobParams{
			JobIdentifier: job_message.JobIdentifier{JobID: jobID},
			OriginalURL:   originalURL,
		}))
	})

	AfterEach(func() {
		Expect(os.RemoveAll(workingDirPath)).To(Succeed())
	})

	Describe("A well formed transfer job", func() {
		It("lands the original in cloud storage", func() {
			_, returnedURL, err := handler.HandleTransferJob(message)
			Expect(err).NotTo(HaveOccurred())

			Expect(returnedURL).To(Equal(savedURL))
			Expect(fileStore.State).To(HaveKeyWithValue(savedURL, audioContent))
		})

		It("moves the job into processing", func() {
			_, _, err := handler.HandleTransferJob(message)
			Expect(err).NotTo(HaveOccurred())

			Expect(jobStore.State[jobID].Status).To(Equal(entity.StatusProcessing))
		})

		It("echoes the parsed params back", func() {
			params, _, err := handler.HandleTransferJob(message)
			Expect(err).NotTo(HaveOccurred())

			Expect(params.JobID).To(Equal(jobID))
			Expect(params.OriginalURL).To(Equal(originalURL))
		})

		It("cleans up its scratch files", func() {
			_, _, err := handler.HandleTransferJob(message)
			Expect(err).NotTo(HaveOccurred())

			entries, err := os.ReadDir(workingDirPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("A job that isn't in requested status", func() {
		BeforeEach(func() {
			job := jobStore.State[jobID]
			job.Status = entity.StatusProcessing
			jobStore.State[jobID] = job
		})

		It("refuses to process it twice", func() {
			_, _, err := handler.HandleTransferJob(message)
			Expect(err).To(HaveOccurred())
			Expect(fileStore.State).To(BeEmpty())
		})
	})

	Describe("A job that doesn't exist", func() {
		BeforeEach(func() {
			delete(jobStore.State, jobID)
		})

		It("fails", func() {
			_, _, err := handler.HandleTransferJob(message)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Malformed messages", func() {
		It("rejects invalid JSON", func() {
			_, _, err := handler.HandleTransferJob([]byte("not json"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects a missing job ID", func() {
			badMessage := testlib.ExpectSuccess(json.Marshal(map[string]string{
				"original_url": originalURL,
			}))

			_, _, err := handler.HandleTransferJob(badMessage)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a missing original URL", func() {
			badMessage := testlib.ExpectSuccess(json.Marshal(map[string]string{
				"job_id": jobID,
			}))

			_, _, err := handler.HandleTransferJob(badMessage)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("The download failing", func() {
		BeforeEach(func() {
			downloader.err = errors.New("connection reset")
		})

		It("fails without writing to cloud storage", func() {
			_, _, err := handler.HandleTransferJob(message)
			Expect(err).To(HaveOccurred())
			Expect(fileStore.State).To(BeEmpty())
		})
	})

	Describe("Cloud storage being unavailable", func() {
		BeforeEach(func() {
			fileStore.Unavailable = true
		})

		It("fails", func() {
			_, _, err := handler.HandleTransferJob(message)
			Expect(err).To(HaveOccurred())
		})
	})
})
