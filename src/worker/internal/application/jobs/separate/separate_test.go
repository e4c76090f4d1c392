package separate_test

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	testlib "github.com/2highsebas/openarms-backend/src/shared/testing"
	"github.com/2highsebas/openarms-backend/src/shared/testing/dummy"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_message"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/separate"
	"github.com/2highsebas/openarms-backend/src/worker/internal/lib/storagepath"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("JobHandler", func() {
	const (
		jobID            = "separate-test-job"
		savedOriginalURL = "https://storage.googleapis.com/split-bucket/separate-test-job/original/original.mp3"
	)

	var (
		workingDirPath string
		audioContent   []byte
		message        []byte

		separator *dummy.Separator
		fileStore *dummy.FileStore
		jobStore  *dummy.JobStore
		handler   separate.JobHandler
	)

	stemURL := func(name audio.StemName) string {
		return fmt.Sprintf(
			"https://storage.googleapis.com/split-bucket/%s/stems/%s",
			jobID, audio.StemFileName(name))
	}

	BeforeEach(func() {
		var err error
		workingDirPath, err = os.MkdirTemp("", "separate-test-*")
		Expect(err).NotTo(HaveOccurred())

		audioContent = []byte("the saved original recording")

		separator = dummy.NewDummySeparator()
		fileStore = dummy.NewDummyFileStore()
		fileStore.State[savedOriginalURL] = audioContent

		jobStore = dummy.NewDummyJobStore()
		jobStore.State[jobID] = entity.Job{
			ID:     jobID,
			Status: entity.StatusProcessing,
		}

		pathGenerator := storagepath.Generator{
			Host:   "https://storage.googleapis.com",
			Bucket: "split-bucket",
		}

		handler = testlib.ExpectSuccess(
			separate.NewJobHandler(separator, jobStore, fileStore, pathGenerator, workingDirPath))

		message = testlib.ExpectSuccess(json.Marshal(separate.JobParams{
			JobIdentifier:    job_message.JobIdentifier{JobID: jobID},
			SavedOriginalURL: savedOriginalURL,
		}))
	})

	AfterEach(func() {
		Expect(os.RemoveAll(workingDirPath)).To(Succeed())
	})

	Describe("A well formed separate job", func() {
		It("feeds the saved original into the pipeline", func() {
			Expect(handler.HandleSeparateJob(message)).To(Succeed())

			Expect(separator.ReceivedRuns).To(HaveLen(1))
			Expect(separator.ReceivedRuns[0].InputContent).To(Equal(audioContent))
		})

		It("uploads every stem", func() {
			Expect(handler.HandleSeparateJob(message)).To(Succeed())

			for _, name := range audio.StemNames {
				Expect(fileStore.State).To(HaveKeyWithValue(stemURL(name), separator.StemContent))
			}
		})

		It("marks the job done with the stem URLs", func() {
			Expect(handler.HandleSeparateJob(message)).To(Succeed())

			job := jobStore.State[jobID]
			Expect(job.Status).To(Equal(entity.StatusDone))
			Expect(job.Outcome).To(Equal("model_separated"))
			Expect(job.HighQuality).To(BeTrue())

			Expect(job.StemURLs).To(HaveLen(len(audio.StemNames)))
			for _, name := range audio.StemNames {
				Expect(job.StemURLs).To(HaveKeyWithValue(string(name), stemURL(name)))
			}
		})

		It("cleans up its scratch files", func() {
			Expect(handler.HandleSeparateJob(message)).To(Succeed())

			entries, err := os.ReadDir(workingDirPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("A degraded separation", func() {
		BeforeEach(func() {
			separator.Outcome = cascade.FilterFallback
		})

		It("records the fallback outcome on the job", func() {
			Expect(handler.HandleSeparateJob(message)).To(Succeed())

			job := jobStore.State[jobID]
			Expect(job.Status).To(Equal(entity.StatusDone))
			Expect(job.Outcome).To(Equal("filter_fallback"))
			Expect(job.HighQuality).To(BeFalse())
		})
	})

	Describe("Malformed messages", func() {
		It("rejects invalid JSON", func() {
			Expect(handler.HandleSeparateJob([]byte("not json"))).NotTo(Succeed())
		})

		It("rejects a missing job ID", func() {
			badMessage := testlib.ExpectSuccess(json.Marshal(map[string]string{
				"saved_original_url": savedOriginalURL,
			}))

			Expect(handler.HandleSeparateJob(badMessage)).NotTo(Succeed())
		})

		It("rejects a missing saved original URL", func() {
			badMessage := testlib.ExpectSuccess(json.Marshal(map[string]string{
				"job_id": jobID,
			}))

			Expect(handler.HandleSeparateJob(badMessage)).NotTo(Succeed())
		})
	})

	Describe("The saved original missing from cloud storage", func() {
		BeforeEach(func() {
			delete(fileStore.State, savedOriginalURL)
		})

		It("fails without touching the pipeline", func() {
			Expect(handler.HandleSeparateJob(message)).NotTo(Succeed())
			Expect(separator.ReceivedRuns).To(BeEmpty())
		})
	})

	Describe("The pipeline failing", func() {
		BeforeEach(func() {
			separator.Err = errors.New("every tier failed")
		})

		It("fails and leaves the job unfinished", func() {
			Expect(handler.HandleSeparateJob(message)).NotTo(Succeed())
			Expect(jobStore.State[jobID].Status).To(Equal(entity.StatusProcessing))
		})
	})

	Describe("Cloud storage failing during upload", func() {
		BeforeEach(func() {
			fileStore.FailWrites = true
		})

		It("fails and leaves the job unfinished", func() {
			Expect(handler.HandleSeparateJob(message)).NotTo(Succeed())
			Expect(jobStore.State[jobID].Status).To(Equal(entity.StatusProcessing))
		})
	})
})
