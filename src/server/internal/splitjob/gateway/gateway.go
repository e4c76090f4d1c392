package splitjobgateway

import (
	"net/http"

	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/gateway"
	"github.com/2highsebas/openarms-backend/src/server/internal/lib/request"
	splitjoberrors "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/errors"
	splitjobusecase "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/usecase"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/labstack/echo/v4"
)

type CreateJobRequest struct {
	OriginalURL string `json:"original_url"`
}

type Gateway struct {
	usecase splitjobusecase.Usecase
}

func NewGateway(usecase splitjobusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) CreateJob(c echo.Context) error {
	ctx := request.Context(c)

	createRequest := CreateJobRequest{}
	err := c.Bind(&createRequest)
	if err != nil {
		err = cerr.Wrap(err).Error("Failed to bind request body to the create job request")
		apiErr := api.CommitError(err,
			splitjoberrors.BadJobDataCode,
			"The job request data received was malformed. Please contact the developer")
		return gateway.ErrorResponse(c, apiErr)
	}

	job, apiErr := g.usecase.CreateJob(ctx, createRequest.OriginalURL)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to create split job")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusAccepted, job)
}

func (g Gateway) GetJob(c echo.Context, jobID string) error {
	ctx := request.Context(c)

	job, apiErr := g.usecase.GetJob(ctx, jobID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to get split job")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, job)
}
