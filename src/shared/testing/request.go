package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/onsi/gomega"
)

type RequestFactory struct {
	Method  string
	Target  string
	JSONObj interface{}
}

func (r RequestFactory) MakeFake() *http.Request {
	var body io.Reader

	if r.JSONObj != nil {
		buf := &bytes.Buffer{}
		err := json.NewEncoder(buf).Encode(r.JSONObj)
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

		body = buf
	}

	request := httptest.NewRequest(r.Method, r.Target, body)

	isJSONBody := body != nil
	if isJSONBody {
		request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	return request
}

// MakeFileUploadRequest fakes a browser form upload with one attached
// file under the given field name.
func MakeFileUploadRequest(target string, fieldName string, fileName string, fileContent []byte) *http.Request {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	filePart, err := writer.CreateFormFile(fieldName, fileName)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	_, err = filePart.Write(fileContent)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	err = writer.Close()
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	request := httptest.NewRequest("POST", target, buf)
	request.Header.Set(echo.HeaderContentType, writer.FormDataContentType())

	return request
}
