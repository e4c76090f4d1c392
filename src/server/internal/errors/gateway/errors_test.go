package gateway_test

import (
	"net/http"
	"net/http/httptest"

	analysiserrors "github.com/2highsebas/openarms-backend/src/server/internal/analysis/errors"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/gateway"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/upload"
	separationerrors "github.com/2highsebas/openarms-backend/src/server/internal/separation/errors"
	splitjoberrors "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/errors"
	testlib "github.com/2highsebas/openarms-backend/src/shared/testing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var allErrorCodes = []api.ErrorCode{
	api.DefaultErrorCode,
	upload.BadFileCode,
	separationerrors.UnreadableAudioCode,
	separationerrors.SeparationFailedCode,
	analysiserrors.AnalysisFailedCode,
	splitjoberrors.JobNotFoundCode,
	splitjoberrors.BadJobDataCode,
}

var _ = Describe("Errors", func() {
	Describe("HTTP status code handling for ErrorCodes", func() {
		makeContext := func(response http.ResponseWriter) func(*api.Error) {
			request := testlib.RequestFactory{
				Method: "GET",
				Target: "/",
			}.MakeFake()
			c := testlib.PrepareEchoContext(request, response)

			return func(apiError *api.Error) {
				gateway.ErrorResponse(c, apiError)
			}
		}

		for _, errorCode := range allErrorCodes {
			errorCode := errorCode
			It("processes ErrorCode "+string(errorCode), func() {
				apiError := &api.Error{
					ErrorCode:     errorCode,
					UserMessage:   "Something failed",
					InternalError: errors.New("Our DB blew up"),
				}

				respond := makeContext(httptest.NewRecorder())
				runTest := func() {
					respond(apiError)
				}
				Expect(runTest).NotTo(Panic())
			})
		}

		It("panics on an unmapped ErrorCode", func() {
			apiError := &api.Error{
				ErrorCode:     api.ErrorCode("new_unhandled_code"),
				UserMessage:   "Something failed",
				InternalError: errors.New("Our DB blew up"),
			}

			respond := makeContext(httptest.NewRecorder())
			runTest := func() {
				respond(apiError)
			}
			Expect(runTest).To(Panic())
		})

		It("serializes the error payload", func() {
			apiError := &api.Error{
				ErrorCode:     splitjoberrors.JobNotFoundCode,
				UserMessage:   "This separation job can't be found",
				InternalError: errors.New("no item in the table"),
			}

			response := httptest.NewRecorder()
			respond := makeContext(response)
			respond(apiError)

			Expect(response.Code).To(Equal(http.StatusNotFound))

			jsonErr := testlib.DecodeJSONError(response.Body)
			Expect(jsonErr.Code).To(Equal("job_not_found"))
			Expect(jsonErr.Msg).To(Equal("This separation job can't be found"))
			Expect(jsonErr.ErrorDetails).NotTo(BeEmpty())
		})
	})
})
