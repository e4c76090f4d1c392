package job_router_test

import (
	"encoding/json"

	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	testlib "github.com/2highsebas/openarms-backend/src/shared/testing"
	"github.com/2highsebas/openarms-backend/src/shared/testing/dummy"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_message"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_router"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/separate"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/transfer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
)

type fakeTransferHandler struct {
	savedOriginalURL string
	err              error
	received         [][]byte
}

func (f *fakeTransferHandler) HandleTransferJob(message []byte) (transfer.JobParams, string, error) {
	f.received = append(f.received, message)

	if f.err != nil {
		return transfer.JobParams{}, "", f.err
	}

	params := transfer.JobParams{}
	if err := json.Unmarshal(message, &params); err != nil {
		return transfer.JobParams{}, "", err
	}

	return params, f.savedOriginalURL, nil
}

type fakeSeparateHandler struct {
	err      error
	received [][]byte
}

func (f *fakeSeparateHandler) HandleSeparateJob(message []byte) error {
	f.received = append(f.received, message)
	return f.err
}

var _ = Describe("JobRouter", func() {
	const (
		jobID            = "router-test-job"
		originalURL      = "https://recordings.example.com/song.mp3"
		savedOriginalURL = "https://storage.googleapis.com/split-bucket/router-test-job/original/original.mp3"
	)

	var (
		jobStore        *dummy.JobStore
		publisher       *dummy.Publisher
		transferHandler *fakeTransferHandler
		separateHandler *fakeSeparateHandler
		router          job_router.JobRouter
	)

	BeforeEach(func() {
		jobStore = dummy.NewDummyJobStore()
		jobStore.State[jobID] = entity.Job{
			ID:     jobID,
			Status: entity.StatusProcessing,
		}

		publisher = dummy.NewDummyPublisher()
		transferHandler = &fakeTransferHandler{savedOriginalURL: savedOriginalURL}
		separateHandler = &fakeSeparateHandler{}

		router = job_router.NewJobRouter(jobStore, publisher, transferHandler, separateHandler)
	})

	transferMessage := func() amqp091.Delivery {
		body := testlib.ExpectSuccess(json.Marshal(transfer.JobParams{
			JobIdentifier: job_message.JobIdentifier{JobID: jobID},
			OriginalURL:   originalURL,
		}))

		return amqp091.Delivery{Type: transfer.JobType, Body: body}
	}

	separateMessage := func() amqp091.Delivery {
		body := testlib.ExpectSuccess(json.Marshal(separate.JobParams{
			JobIdentifier:    job_message.JobIdentifier{JobID: jobID},
			SavedOriginalURL: savedOriginalURL,
		}))

		return amqp091.Delivery{Type: separate.JobType, Body: body}
	}

	Describe("A transfer message", func() {
		It("dispatches to the transfer stage", func() {
			Expect(router.HandleMessage(transferMessage())).To(Succeed())
			Expect(transferHandler.received).To(HaveLen(1))
			Expect(separateHandler.received).To(BeEmpty())
		})

		It("chains the separation stage on success", func() {
			Expect(router.HandleMessage(transferMessage())).To(Succeed())

			Expect(publisher.Published).To(HaveLen(1))
			message := publisher.Published[0]
			Expect(message.Type).To(Equal(separate.JobType))

			params := separate.JobParams{}
			Expect(json.Unmarshal(message.Body, &params)).To(Succeed())
			Expect(params.JobID).To(Equal(jobID))
			Expect(params.SavedOriginalURL).To(Equal(savedOriginalURL))
		})

		Describe("when the stage fails", func() {
			BeforeEach(func() {
				transferHandler.err = errors.New("download blew up")
			})

			It("propagates the error without chaining", func() {
				Expect(router.HandleMessage(transferMessage())).NotTo(Succeed())
				Expect(publisher.Published).To(BeEmpty())
			})

			It("marks the job as errored", func() {
				Expect(router.HandleMessage(transferMessage())).NotTo(Succeed())

				job := jobStore.State[jobID]
				Expect(job.Status).To(Equal(entity.StatusError))
				Expect(job.StatusMessage).To(Equal(transfer.ErrorMessage))
			})
		})

		Describe("when the next stage can't be queued", func() {
			BeforeEach(func() {
				publisher.Unavailable = true
			})

			It("propagates the error and marks the job", func() {
				Expect(router.HandleMessage(transferMessage())).NotTo(Succeed())
				Expect(jobStore.State[jobID].Status).To(Equal(entity.StatusError))
			})
		})
	})

	Describe("A separate message", func() {
		It("dispatches to the separation stage", func() {
			Expect(router.HandleMessage(separateMessage())).To(Succeed())
			Expect(separateHandler.received).To(HaveLen(1))
			Expect(transferHandler.received).To(BeEmpty())
		})

		It("queues nothing further", func() {
			Expect(router.HandleMessage(separateMessage())).To(Succeed())
			Expect(publisher.Published).To(BeEmpty())
		})

		Describe("when the stage fails", func() {
			BeforeEach(func() {
				separateHandler.err = errors.New("separation blew up")
			})

			It("propagates the error and marks the job", func() {
				Expect(router.HandleMessage(separateMessage())).NotTo(Succeed())

				job := jobStore.State[jobID]
				Expect(job.Status).To(Equal(entity.StatusError))
				Expect(job.StatusMessage).To(Equal(separate.ErrorMessage))
			})
		})
	})

	Describe("An unrecognized message type", func() {
		It("is rejected", func() {
			message := amqp091.Delivery{Type: "defragment_disk", Body: []byte("{}")}
			Expect(router.HandleMessage(message)).NotTo(Succeed())
		})
	})

	Describe("A failing message that names no job", func() {
		BeforeEach(func() {
			transferHandler.err = errors.New("download blew up")
		})

		It("propagates the error without touching any job", func() {
			message := amqp091.Delivery{Type: transfer.JobType, Body: []byte("{}")}
			Expect(router.HandleMessage(message)).NotTo(Succeed())

			Expect(jobStore.State[jobID].Status).To(Equal(entity.StatusProcessing))
		})
	})
})
