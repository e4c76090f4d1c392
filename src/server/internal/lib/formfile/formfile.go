package formfile

import (
	"io"
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/upload"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/labstack/echo/v4"
)

const FileField = "file"

// SaveToScope copies the uploaded form file into the request's scratch
// scope and hands back its path. The caller owns the scope lifetime.
func SaveToScope(c echo.Context, scope working_dir.Scope) (string, *api.Error) {
	fileHeader, err := c.FormFile(FileField)
	if err != nil {
		err = cerr.Wrap(err).Error("No file was attached to the request")
		return "", api.CommitError(err,
			upload.BadFileCode,
			"No audio file was found in the request. Please attach one under the 'file' field")
	}

	if fileHeader.Filename == "" {
		err = cerr.Error("Uploaded file has an empty filename")
		return "", api.CommitError(err,
			upload.BadFileCode,
			"The uploaded file has no name. Please choose a file and try again")
	}

	source, err := fileHeader.Open()
	if err != nil {
		err = cerr.Wrap(err).Error("Failed to open the uploaded file")
		return "", api.CommitError(err,
			upload.BadFileCode,
			"The uploaded file could not be read. Please try again")
	}
	defer source.Close()

	destinationPath := scope.Join(filepath.Base(fileHeader.Filename))
	destination, err := os.Create(destinationPath)
	if err != nil {
		err = cerr.Field("destination_path", destinationPath).
			Wrap(err).Error("Failed to create the scratch copy of the upload")
		return "", api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to receive the uploaded file")
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		err = cerr.Field("destination_path", destinationPath).
			Wrap(err).Error("Failed to write the scratch copy of the upload")
		return "", api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to receive the uploaded file")
	}

	return destinationPath, nil
}
