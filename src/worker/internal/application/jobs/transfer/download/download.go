package download

import (
	"io"
	"net/http"
	"os"

	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
)

func NewGenericDLer() GenericDLer {
	return GenericDLer{}
}

// GenericDLer fetches a plain HTTP(S) URL to a local file.
type GenericDLer struct{}

func (GenericDLer) Download(sourceURL string, outputFilePath string) error {
	errctx := cerr.Field("source_url", sourceURL)

	response, err := http.Get(sourceURL)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to fetch the source URL")
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return errctx.Field("status_code", response.StatusCode).
			Error("Source URL responded with a non-success status")
	}

	outputFile, err := os.Create(outputFilePath)
	if err != nil {
		return errctx.Field("output_file_path", outputFilePath).
			Wrap(err).Error("Failed to create the output file")
	}
	defer outputFile.Close()

	if _, err := io.Copy(outputFile, response.Body); err != nil {
		return errctx.Field("output_file_path", outputFilePath).
			Wrap(err).Error("Failed to write the downloaded contents")
	}

	return outputFile.Close()
}
