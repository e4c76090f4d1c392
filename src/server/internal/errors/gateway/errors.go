package gateway

import (
	"fmt"
	"net/http"

	"github.com/2highsebas/openarms-backend/src/server/api_error"
	analysiserrors "github.com/2highsebas/openarms-backend/src/server/internal/analysis/errors"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/upload"
	separationerrors "github.com/2highsebas/openarms-backend/src/server/internal/separation/errors"
	splitjoberrors "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/errors"
	"github.com/labstack/echo/v4"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:                  http.StatusInternalServerError,
	upload.BadFileCode:                    http.StatusBadRequest,
	separationerrors.UnreadableAudioCode:  http.StatusBadRequest,
	separationerrors.SeparationFailedCode: http.StatusInternalServerError,
	analysiserrors.AnalysisFailedCode:     http.StatusInternalServerError,
	splitjoberrors.JobNotFoundCode:        http.StatusNotFound,
	splitjoberrors.BadJobDataCode:         http.StatusBadRequest,
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode, ok := httpStatusCodeMap[err.ErrorCode]
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", err.ErrorCode)
		panic(msg)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Code:         string(err.ErrorCode),
		Msg:          err.UserMessage,
		ErrorDetails: err.Error(),
	})
}
