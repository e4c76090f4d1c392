package analysisgateway

import (
	"net/http"

	analysisusecase "github.com/2highsebas/openarms-backend/src/server/internal/analysis/usecase"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/gateway"
	"github.com/2highsebas/openarms-backend/src/server/internal/lib/formfile"
	"github.com/2highsebas/openarms-backend/src/server/internal/lib/request"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/labstack/echo/v4"
)

type Gateway struct {
	usecase    analysisusecase.Usecase
	workingDir working_dir.WorkingDir
}

func NewGateway(usecase analysisusecase.Usecase, workingDir working_dir.WorkingDir) Gateway {
	return Gateway{
		usecase:    usecase,
		workingDir: workingDir,
	}
}

func (g Gateway) AnalyzeTempo(c echo.Context) error {
	ctx := request.Context(c)

	scope, err := g.workingDir.NewScope()
	if err != nil {
		err = cerr.Wrap(err).Error("Failed to create a scratch dir for the upload")
		apiErr := api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to receive the uploaded file")
		return gateway.ErrorResponse(c, apiErr)
	}
	defer scope.Close()

	inputPath, apiErr := formfile.SaveToScope(c, scope)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	result, apiErr := g.usecase.AnalyzeTempo(ctx, inputPath)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to analyze tempo")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, result)
}
